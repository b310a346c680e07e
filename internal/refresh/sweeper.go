package refresh

import (
	"context"
	"time"

	"log/slog"

	"github.com/go-co-op/gocron"
)

// ScheduleSweep initialises a gocron job that periodically refreshes every
// stored credential pair expiring within the sweep interval. The sweep goes
// through the same Coordinator as the request path, so a sweep refresh and a
// request-triggered refresh for the same session coalesce into one upstream
// call. This call blocks and is meant to run in its own goroutine.
func ScheduleSweep(ctx context.Context, coordinator *Coordinator, interval time.Duration) error {
	scheduler := gocron.NewScheduler(time.UTC)
	job, err := scheduler.Every(interval).Do(sweepExpiringCredentials, ctx, coordinator, interval)
	if err != nil {
		slog.Error("CREDENTIAL SWEEP", "message", "starting the gocron job failed", "error", err)
		return err
	}
	slog.Info("CREDENTIAL SWEEP", "message", "job starting", "job", job, "interval", interval)
	scheduler.StartBlocking()
	return nil
}

// sweepExpiringCredentials refreshes every credential pair that expires before
// the next sweep would run.
func sweepExpiringCredentials(ctx context.Context, coordinator *Coordinator, interval time.Duration) error {
	now := time.Now().UTC()
	expiringIDs, err := coordinator.ExpiringSessionIDs(ctx, now, now.Add(interval))
	if err != nil {
		slog.Error("CREDENTIAL SWEEP", "message", "listing expiring credentials failed", "error", err)
		return err
	}
	if len(expiringIDs) == 0 {
		return nil
	}
	slog.Info("CREDENTIAL SWEEP", "message", "refreshing expiring credentials", "count", len(expiringIDs))
	for _, sessionID := range expiringIDs {
		_, err := coordinator.Refresh(ctx, sessionID)
		if err != nil {
			// a failed refresh already tore the session's credentials down,
			// nothing more for the sweep to do
			slog.Warn("CREDENTIAL SWEEP", "message", "refreshing a session failed", "sessionID", sessionID, "error", err)
		}
	}
	return nil
}

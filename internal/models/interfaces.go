package models

import (
	"context"
	"time"
)

type Encryptor interface {
	Encrypt(value string) (encrypted string, err error)
	Decrypt(value string) (decrypted string, err error)
}

type IDGenerator interface {
	ID() (string, error)
}

type CredentialGetter interface {
	GetCredentials(ctx context.Context, sessionID string) (CredentialPair, error)
	GetExpiringCredentialIDs(ctx context.Context, expiryStart time.Time, expiryEnd time.Time) ([]string, error)
}

type CredentialSetter interface {
	SetCredentials(context.Context, CredentialPair) error
}

type CredentialRemover interface {
	RemoveCredentials(ctx context.Context, sessionID string) error
}

// CredentialRepository is the full set of operations the gateway needs from
// the persisted credential store.
type CredentialRepository interface {
	CredentialGetter
	CredentialSetter
	CredentialRemover
}

type SessionGetter interface {
	GetSession(context.Context, string) (Session, error)
}

type SessionSetter interface {
	SetSession(context.Context, Session) error
}

type SessionRemover interface {
	RemoveSession(context.Context, string) error
}

type SessionRepository interface {
	SessionGetter
	SessionSetter
	SessionRemover
}

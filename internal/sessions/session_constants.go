package sessions

// Note the console UI depends on the cookie name, changing it logs every user out
const (
	SessionCookieName = "_console_session"
	SessionCtxKey     = "console_session"
)

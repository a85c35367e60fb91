package core

import "context"

const SessionContextKey contextKey = "session"

// ContextSession is the resolved caller identity placed in the request
// context by the authentication middleware.
type ContextSession struct {
	UserID uint64
}

func Session(ctx context.Context) ContextSession {
	session, ok := ctx.Value(SessionContextKey).(ContextSession)
	if !ok {
		return ContextSession{}
	}

	return session
}

package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context. A nil result means
// the request is unauthenticated.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// UserIDFromContext returns the authenticated user id, or nil when there is
// no session. The pointer form gives the access guard an explicit
// "unauthenticated" value to short-circuit on.
func UserIDFromContext(ctx context.Context) *int64 {
	sess := SessionFromContext(ctx)
	if sess == nil {
		return nil
	}
	id := sess.UserID
	return &id
}

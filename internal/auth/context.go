package auth

import "context"

// Context carries the resolved user and session of a request. It is passed
// by value through the request context, there is no ambient session state.
type Context struct {
	User    *User
	Session *Session
}

type contextKey struct{}

func NewContext(ctx context.Context, authCtx Context) context.Context {
	return context.WithValue(ctx, contextKey{}, authCtx)
}

func FromContext(ctx context.Context) (Context, bool) {
	authCtx, ok := ctx.Value(contextKey{}).(Context)
	return authCtx, ok
}

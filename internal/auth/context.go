package auth

import "context"

// Identity is the authenticated caller as seen by handlers. It is passed
// into core operations explicitly rather than read from ambient state there.
type Identity struct {
	UserID   string
	SchoolID string
	ClassID  string
}

type ctxKey struct{}

var ctxKeyIdentity = ctxKey{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

func IdentityFromContext(ctx context.Context) Identity {
	if v := ctx.Value(ctxKeyIdentity); v != nil {
		if id, ok := v.(Identity); ok {
			return id
		}
	}
	return Identity{}
}

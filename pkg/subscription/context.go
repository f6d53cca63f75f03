package subscription

import "context"

type grantCtxKey struct{}

// WithGrant attaches the outcome of a successful quota check to ctx, so
// downstream handlers can reuse the resolved subscription and snapshot.
func WithGrant(ctx context.Context, g *Grant) context.Context {
	return context.WithValue(ctx, grantCtxKey{}, g)
}

func GrantFromContext(ctx context.Context) (*Grant, bool) {
	g, ok := ctx.Value(grantCtxKey{}).(*Grant)
	return g, ok && g != nil
}

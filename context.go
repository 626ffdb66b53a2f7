package zenject

import "context"

type containerContextKey struct{}

// WithContainer returns a copy of ctx carrying c.
func WithContainer(ctx context.Context, c *Container) context.Context {
	return context.WithValue(ctx, containerContextKey{}, c)
}

// FromContext returns the container attached with WithContainer.
func FromContext(ctx context.Context) (*Container, error) {
	c, ok := ctx.Value(containerContextKey{}).(*Container)
	if !ok || c == nil {
		return nil, ErrNoContainer
	}
	return c, nil
}

package tables

import "context"

type managerKey struct{}

func WithManager(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, managerKey{}, m)
}

// FromContext returns the Manager attached by WithManager. Calling it on a
// context without one is a programming error and panics.
func FromContext(ctx context.Context) *Manager {
	m, ok := ctx.Value(managerKey{}).(*Manager)
	if !ok || m == nil {
		panic("tables: FromContext called outside a WithManager scope")
	}
	return m
}

package crash

import "context"

type hookKey struct{}

// WithHook attaches the hook handle to context.
func WithHook(ctx context.Context, h *Hook) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, hookKey{}, h)
}

// HookFromContext returns the hook attached to ctx, or nil.
func HookFromContext(ctx context.Context) *Hook {
	if ctx == nil {
		return nil
	}
	h, _ := ctx.Value(hookKey{}).(*Hook)
	return h
}

package fxutil

import (
	"context"

	"go.uber.org/fx"
)

// WithLifecycle derives a context that is canceled once the app stops.
func WithLifecycle(ctx context.Context, lc fx.Lifecycle) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
	return ctx
}

// If returns opts when cond holds and an empty option otherwise.
func If(cond bool, opts ...fx.Option) fx.Option {
	if !cond {
		return fx.Options()
	}
	return fx.Options(opts...)
}

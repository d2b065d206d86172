package relay

import (
	"context"
	"time"
)

type Option func(*Options)

type Options struct {
	StageTimeout time.Duration
	Context      context.Context
}

func WithStageTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.StageTimeout = d
		}
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		StageTimeout: 30 * time.Second,
		Context:      context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

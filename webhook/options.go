package webhook

import "context"

type Option func(*Options)

type Options struct {
	VerifyToken string
	Context     context.Context
}

func WithVerifyToken(token string) Option {
	return func(o *Options) {
		o.VerifyToken = token
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

package retriever

import "context"

type Option func(*Options)

type Options struct {
	TopK    int
	Context context.Context
}

func WithTopK(k int) Option {
	return func(o *Options) {
		o.TopK = k
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		TopK:    3,
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

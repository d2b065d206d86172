package generator

import "context"

type Generator interface {
	Generate(ctx context.Context, system string, prompt string) (string, error)
}

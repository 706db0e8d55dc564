// Package generator forwards a prompt to a language model and returns the
// raw text it answers with.
package generator

import (
	"context"
	"errors"
)

var (
	ErrMissingAPIKey = errors.New("не задан ключ API генератора")
	ErrEmptyResponse = errors.New("генератор вернул пустой ответ")
)

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Func adapts a plain function to Generator.
type Func func(ctx context.Context, prompt string) (string, error)

func (f Func) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

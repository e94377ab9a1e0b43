package ai

import "context"

// Client отправляет один промпт во внешнюю модель и возвращает текст ответа.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

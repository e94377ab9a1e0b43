package ai

import (
	"context"
	"errors"
	"log/slog"
)

const (
	FlowGenerate = "generate"
	FlowSearch   = "search"
)

// endpoint описывает различие двух потоков: промпт строится снаружи, здесь только нормализация.
type endpoint struct {
	name      string
	normalize func(completion string) (Document, error)
}

var (
	planEndpoint   = endpoint{name: FlowGenerate, normalize: NormalizePlan}
	searchEndpoint = endpoint{name: FlowSearch, normalize: NormalizeSearch}
)

type Service struct {
	client Client
	model  string
	logger *slog.Logger
}

// NewService создает сервис работы с AI-клиентом.
func NewService(client Client, model string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{client: client, model: model, logger: logger}
}

// GeneratePlan запрашивает у модели недельный план и проверяет ответ.
func (s *Service) GeneratePlan(ctx context.Context, input GenerateRequest) (Document, error) {
	prompt, err := BuildPlanPrompt(input)
	if err != nil {
		return nil, BadRequest(err.Error())
	}

	return s.run(ctx, planEndpoint, prompt)
}

// Search отвечает на свободный вопрос по данным о блюдах.
func (s *Service) Search(ctx context.Context, input SearchRequest) (Document, error) {
	prompt, err := BuildSearchPrompt(input)
	if err != nil {
		return nil, BadRequest(err.Error())
	}

	return s.run(ctx, searchEndpoint, prompt)
}

func (s *Service) run(ctx context.Context, ep endpoint, prompt string) (Document, error) {
	completion, err := s.client.Generate(ctx, prompt)
	if err != nil {
		failure := AsFailure(err)
		s.logFailure(ctx, ep, failure)
		return nil, failure
	}

	document, err := ep.normalize(completion)
	if err != nil {
		failure := AsFailure(err)
		s.logFailure(ctx, ep, failure)
		return nil, failure
	}

	s.logger.InfoContext(ctx, "ai reply accepted",
		slog.String("flow", ep.name),
		slog.String("model", s.model),
	)
	return document, nil
}

func (s *Service) logFailure(ctx context.Context, ep endpoint, failure *Failure) {
	attrs := []any{
		slog.String("flow", ep.name),
		slog.String("model", s.model),
		slog.String("kind", string(failure.Kind)),
	}
	if failure.Kind == KindUpstreamHTTP {
		attrs = append(attrs, slog.Int("upstream_status", failure.Status))
	}
	if failure.Message != "" {
		attrs = append(attrs, slog.String("error", failure.Message))
	}

	s.logger.WarnContext(ctx, "ai request failed", attrs...)
}

// AsFailure приводит произвольную ошибку клиента к upstream_error.
func AsFailure(err error) *Failure {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure
	}

	return UpstreamError(err)
}

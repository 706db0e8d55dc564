package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"planup/internal/generator"
	"planup/internal/logger"
)

// ScheduleService forwards a ready prompt to the generator unchanged.
type ScheduleService struct {
	generator generator.Generator
}

func NewScheduleService(gen generator.Generator) *ScheduleService {
	return &ScheduleService{generator: gen}
}

func (s *ScheduleService) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", NewValidationError("prompt", "не может быть пустым")
	}

	start := time.Now()
	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", generationError(err)
	}

	logger.Info("Service: Ответ генератора получен",
		zap.Int("prompt_len", len(prompt)),
		zap.Int("response_len", len(raw)),
		zap.Duration("ms", time.Since(start)),
	)
	return raw, nil
}

func generationError(err error) *BusinessError {
	if errors.Is(err, generator.ErrMissingAPIKey) {
		logger.Error("Service: Генератор не настроен", err)
		return NewBusinessError(CodeGeneratorUnconfigured, "Schedule generator is not configured").Wrap(err)
	}
	logger.Error("Service: Ошибка генератора", err)
	return NewBusinessError(CodeGenerationFailed, "Could not generate schedule").Wrap(err)
}

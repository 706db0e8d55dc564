package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"planup/internal/handlers/dto"
	"planup/internal/logger"
	"planup/internal/service"
)

type GenerateHandler struct {
	ScheduleService ScheduleService
}

func NewGenerateHandler(scheduleService ScheduleService) GenerateHandler {
	return GenerateHandler{ScheduleService: scheduleService}
}

// GenerateSchedule forwards a client-built prompt and returns the model's
// raw answer as a string.
func (h *GenerateHandler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.GenerateRequest
	if err := decodeJSON(w, r, &request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	if strings.TrimSpace(request.Prompt) == "" {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "prompt"),
			zap.String("error", "empty_field"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	raw, err := h.ScheduleService.Generate(r.Context(), request.Prompt)
	if err != nil {
		message := "Failed to generate schedule"
		var businessErr *service.BusinessError
		if errors.As(err, &businessErr) {
			message = businessErr.Message
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "generate_schedule"),
			zap.Duration("ms", time.Since(start)))
		responseWithError(w, http.StatusInternalServerError, message)
		return
	}

	logger.Info("HTTP_OUT: Расписание сгенерировано",
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("schedule", raw))
}

package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"planup/internal/logger"
	"planup/internal/service"
)

func handleBusinessError(w http.ResponseWriter, err error) bool {
	var businessErr *service.BusinessError
	if !errors.As(err, &businessErr) {
		return false
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)

	logger.Warn("HTTP: Бизнес-ошибка",
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode))

	responseWithJSON(w, statusCode,
		toPayload("error", businessErr.Code),
		toPayload("message", businessErr.Message),
		toPayload("details", businessErr.Details),
	)
	return true
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound, service.CodeNoSchedule:
		return http.StatusNotFound
	case service.CodeValidation, service.CodeUserExists, service.CodeUserNotFound, service.CodeInvalidCredentials:
		return http.StatusBadRequest
	case service.CodeOnboardingRequired, service.CodeEmptyTaskList, service.CodeStaleGeneration:
		return http.StatusConflict
	case service.CodeGenerationFailed, service.CodeMalformedSchedule:
		return http.StatusBadGateway
	case service.CodeGeneratorUnconfigured:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// handleServiceError answers with the business error if err is one and with
// a 500 otherwise.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	if handleBusinessError(w, err) {
		return
	}
	logger.Error("HTTP: Ошибка Service", err,
		zap.String("operation", operation),
		zap.String("client_ip", r.RemoteAddr))
	responseWithError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
}

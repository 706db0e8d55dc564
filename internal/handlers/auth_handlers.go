package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"planup/internal/handlers/dto"
	"planup/internal/logger"
	"planup/internal/middleware"
	"planup/internal/service"
)

const msgServerError = "Server error"

type AuthHandler struct {
	AuthService AuthService
}

func NewAuthHandler(authService AuthService) AuthHandler {
	return AuthHandler{AuthService: authService}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.RegisterRequest
	if err := decodeJSON(w, r, &request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.AuthService.Register(r.Context(), request.Username, request.Email, request.Password)
	if err != nil {
		h.authError(w, r, err, "register")
		return
	}

	logger.Info("HTTP_OUT: Пользователь зарегистрирован",
		zap.String("user_id", res.UserID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("msg", service.MsgRegistered),
		toPayload("token", res.Token),
	)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.LoginRequest
	if err := decodeJSON(w, r, &request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.AuthService.Login(r.Context(), request.Email, request.Password)
	if err != nil {
		h.authError(w, r, err, "login")
		return
	}

	logger.Info("HTTP_OUT: Пользователь вошёл",
		zap.String("user_id", res.UserID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("msg", service.MsgLoggedIn),
		toPayload("userId", res.UserID),
		toPayload("token", res.Token),
	)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		responseWithMsg(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	h.AuthService.Logout(r.Context(), userID)

	logger.Info("HTTP_OUT: Сессия завершена",
		zap.String("user_id", userID),
		zap.Int("http_status", http.StatusNoContent))
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := h.AuthService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Сервис недоступен", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("error", err.Error()),
		)
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("status", "ok"))
}

// authError answers in the {msg} shape: business errors as 400, the rest
// as a generic 500.
func (h *AuthHandler) authError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	var businessErr *service.BusinessError
	if errors.As(err, &businessErr) {
		logger.Warn("HTTP: Бизнес-ошибка",
			zap.String("operation", operation),
			zap.String("error_code", businessErr.Code),
			zap.Int("http_status", http.StatusBadRequest))
		responseWithMsg(w, http.StatusBadRequest, businessErr.Message)
		return
	}

	logger.Error("HTTP: Ошибка Service", err,
		zap.String("operation", operation),
		zap.String("client_ip", r.RemoteAddr))
	responseWithMsg(w, http.StatusInternalServerError, msgServerError)
}

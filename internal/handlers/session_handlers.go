package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"planup/internal/handlers/dto"
	"planup/internal/logger"
	"planup/internal/middleware"
)

type SessionHandler struct {
	Planner PlannerService
}

func NewSessionHandler(planner PlannerService) SessionHandler {
	return SessionHandler{Planner: planner}
}

func (h *SessionHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		logger.Warn("HTTP: Запрос без пользователя", zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusUnauthorized, "unauthorized")
	}
	return userID, ok
}

func (h *SessionHandler) requireJSON(w http.ResponseWriter, r *http.Request) bool {
	if checkContentType(r, "application/json") {
		return true
	}
	logger.Warn("HTTP: Неверный тип контента",
		zap.String("expected", "application/json"),
		zap.String("received", r.Header.Get("Content-Type")),
		zap.String("client_ip", r.RemoteAddr))
	responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
	return false
}

func logOut(msg string, start time.Time, status int, userID string) {
	logger.Info("HTTP_OUT: "+msg,
		zap.String("user_id", userID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", status))
}

func (h *SessionHandler) PutOnboarding(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := h.userID(w, r)
	if !ok || !h.requireJSON(w, r) {
		return
	}

	var request dto.OnboardingRequest
	if err := decodeJSON(w, r, &request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON", zap.Error(err), zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	answers := request.ToAnswers()
	if err := h.Planner.SetOnboarding(r.Context(), userID, answers); err != nil {
		handleServiceError(w, r, err, "set_onboarding")
		return
	}

	logOut("Онбординг сохранён", start, http.StatusOK, userID)
	responseWithJSON(w, http.StatusOK, toPayload("onboarding", dto.FromAnswers(answers)))
}

func (h *SessionHandler) GetOnboarding(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	answers, err := h.Planner.GetOnboarding(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err, "get_onboarding")
		return
	}

	logOut("Онбординг получен", start, http.StatusOK, userID)
	responseWithJSON(w, http.StatusOK, toPayload("onboarding", dto.FromAnswers(answers)))
}

func (h *SessionHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	tasks := h.Planner.ListTasks(r.Context(), userID)

	logOut("Задачи получены", start, http.StatusOK, userID)
	responseWithJSON(w, http.StatusOK, toPayload("tasks", dto.FromTaskList(tasks)))
}

// SaveTask creates a task when the body carries no id and updates it
// otherwise.
func (h *SessionHandler) SaveTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := h.userID(w, r)
	if !ok || !h.requireJSON(w, r) {
		return
	}

	var request dto.TaskRequest
	if err := decodeJSON(w, r, &request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON", zap.Error(err), zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	input, err := request.ToInput()
	if err != nil {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "task"),
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.Planner.SaveTask(r.Context(), userID, input)
	if err != nil {
		handleServiceError(w, r, err, "save_task")
		return
	}

	status := http.StatusCreated
	if request.ID != "" {
		status = http.StatusOK
	}
	logOut("Задача сохранена", start, status, userID)
	responseWithJSON(w, status, toPayload("task", dto.FromTask(saved)))
}

func (h *SessionHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	taskID := chi.URLParam(r, "id")
	if taskID == "" {
		responseWithError(w, http.StatusBadRequest, "id не может быть пустым")
		return
	}

	if err := h.Planner.DeleteTask(r.Context(), userID, taskID); err != nil {
		handleServiceError(w, r, err, "delete_task")
		return
	}

	logOut("Задача удалена", start, http.StatusNoContent, userID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	set := h.Planner.GetOptions(r.Context(), userID)

	logOut("Опции получены", start, http.StatusOK, userID)
	responseWithJSON(w, http.StatusOK, toPayload("options", dto.FromOptions(set)))
}

func (h *SessionHandler) ToggleOption(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	set, err := h.Planner.ToggleOption(r.Context(), userID, chi.URLParam(r, "key"))
	if err != nil {
		handleServiceError(w, r, err, "toggle_option")
		return
	}

	logOut("Опция переключена", start, http.StatusOK, userID)
	responseWithJSON(w, http.StatusOK, toPayload("options", dto.FromOptions(set)))
}

func (h *SessionHandler) GetPrompt(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	text, err := h.Planner.Prompt(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err, "build_prompt")
		return
	}

	logOut("Промпт собран", start, http.StatusOK, userID)
	responseWithJSON(w, http.StatusOK, toPayload("prompt", text))
}

func (h *SessionHandler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	sched, err := h.Planner.GenerateSchedule(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err, "generate_schedule")
		return
	}

	logOut("Расписание сгенерировано", start, http.StatusOK, userID)
	responseWithSchedule(w, dto.FromSchedule(sched))
}

func (h *SessionHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	sched, err := h.Planner.GetSchedule(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err, "get_schedule")
		return
	}

	logOut("Расписание получено", start, http.StatusOK, userID)
	responseWithSchedule(w, dto.FromSchedule(sched))
}

func (h *SessionHandler) DiscardSchedule(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	h.Planner.DiscardSchedule(r.Context(), userID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) CancelGeneration(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	cancelled := h.Planner.CancelGeneration(r.Context(), userID)
	responseWithJSON(w, http.StatusOK, toPayload("cancelled", cancelled))
}

func (h *SessionHandler) CompleteEntry(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	sched, err := h.Planner.CompleteEntry(r.Context(), userID, chi.URLParam(r, "entryID"))
	if err != nil {
		handleServiceError(w, r, err, "complete_entry")
		return
	}

	logOut("Задача выполнена", start, http.StatusOK, userID)
	responseWithSchedule(w, dto.FromSchedule(sched))
}

func (h *SessionHandler) CompleteSubEntry(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	sched, err := h.Planner.CompleteSubEntry(r.Context(), userID, chi.URLParam(r, "entryID"), chi.URLParam(r, "subID"))
	if err != nil {
		handleServiceError(w, r, err, "complete_sub_entry")
		return
	}

	logOut("Подзадача выполнена", start, http.StatusOK, userID)
	responseWithSchedule(w, dto.FromSchedule(sched))
}

func responseWithSchedule(w http.ResponseWriter, resp dto.ScheduleResponse) {
	responseWithJSON(w, http.StatusOK,
		toPayload("schedule", resp.Schedule),
		toPayload("exhausted", resp.Exhausted),
	)
}

package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planup/internal/app"
	"planup/internal/config"
)

const modelAnswer = `{"schedule":[
	{"taskName":"Start of your day","startTime":"08:00","endTime":"08:10","duration":10,"priority":"low","subTasks":[]},
	{"taskName":"Study math","startTime":"08:10","endTime":"09:40","duration":90,"priority":"high","subTasks":[
		{"name":"Algebra","startTime":"08:10","endTime":"08:55","duration":45},
		{"name":"Geometry","startTime":"08:55","endTime":"09:40","duration":45}
	]}
]}`

type client struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func (c *client) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)

	var out map[string]any
	if rr.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	}
	return rr.Code, out
}

func newTestApp(t *testing.T) *client {
	t.Helper()

	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content, _ := json.Marshal(modelAnswer)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":` +
			string(content) + `},"finish_reason":"stop"}]}`))
	}))
	t.Cleanup(llm.Close)

	cfg := config.Default()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.BcryptCost = 4
	cfg.Generator.APIKey = "test-key"
	cfg.Generator.BaseURL = llm.URL
	cfg.Generator.Timeout = 5 * time.Second

	a := app.New(cfg)
	require.NoError(t, a.Init(context.Background()))

	return &client{t: t, handler: a.Router()}
}

func TestApp_PlanningFlow(t *testing.T) {
	c := newTestApp(t)

	code, body := c.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	code, body = c.do(http.MethodPost, "/users/register", map[string]string{
		"username": "student", "email": "student@example.com", "password": "Passw0rdX",
	})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "User registered successfully", body["msg"])

	code, body = c.do(http.MethodPost, "/users/login", map[string]string{
		"email": "student@example.com", "password": "Passw0rdX",
	})
	require.Equal(t, http.StatusOK, code, body)
	c.token = body["token"].(string)

	code, _ = c.do(http.MethodPost, "/session/schedule", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, body = c.do(http.MethodPut, "/session/onboarding", map[string]any{
		"purpose":                 "studying",
		"timeManagementTechnique": "pomodoro",
		"startTime":               "2026-10-16T08:00:00Z",
	})
	require.Equal(t, http.StatusOK, code, body)

	code, _ = c.do(http.MethodPost, "/session/schedule", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, body = c.do(http.MethodPost, "/session/tasks", map[string]any{
		"taskName": "Study math",
		"priority": "high",
		"taskTime": "flex",
		"subTasks": []map[string]string{{"name": "Algebra"}, {"name": "Geometry"}},
	})
	require.Equal(t, http.StatusCreated, code, body)

	code, body = c.do(http.MethodPost, "/session/options/studyHours/toggle", nil)
	require.Equal(t, http.StatusOK, code, body)

	code, body = c.do(http.MethodGet, "/session/prompt", nil)
	require.Equal(t, http.StatusOK, code)
	text := body["prompt"].(string)
	assert.Contains(t, text, "1. Task: Study math")
	assert.Contains(t, text, "Time: flexible time")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(text), `"Schedule Data:".`))

	code, body = c.do(http.MethodPost, "/session/schedule", nil)
	require.Equal(t, http.StatusOK, code, body)
	entries := body["schedule"].([]any)
	require.Len(t, entries, 2)

	study := entries[1].(map[string]any)
	assert.Equal(t, "#FF9800", study["color"])
	subs := study["subTasks"].([]any)
	entryID := study["id"].(string)
	subID := subs[0].(map[string]any)["id"].(string)

	code, body = c.do(http.MethodPost, "/session/schedule/entries/"+entryID+"/subtasks/"+subID+"/complete", nil)
	require.Equal(t, http.StatusOK, code, body)

	first := body["schedule"].([]any)[0].(map[string]any)["id"].(string)
	code, _ = c.do(http.MethodPost, "/session/schedule/entries/"+first+"/complete", nil)
	require.Equal(t, http.StatusOK, code)

	code, body = c.do(http.MethodPost, "/session/schedule/entries/"+entryID+"/complete", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["exhausted"])

	code, _ = c.do(http.MethodPost, "/users/logout", nil)
	assert.Equal(t, http.StatusNoContent, code)
}

func TestApp_SessionRequiresToken(t *testing.T) {
	c := newTestApp(t)

	code, body := c.do(http.MethodGet, "/session/tasks", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "unauthorized", body["error"])

	c.token = "garbage"
	code, _ = c.do(http.MethodGet, "/session/tasks", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestApp_GenerateScheduleRoute(t *testing.T) {
	c := newTestApp(t)

	code, body := c.do(http.MethodPost, "/gpt3/generate-schedule", map[string]string{"prompt": "plan"})
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, modelAnswer, body["schedule"].(string))

	code, body = c.do(http.MethodPost, "/gpt3/generate-schedule", map[string]string{"prompt": ""})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Prompt is required", body["error"])
}

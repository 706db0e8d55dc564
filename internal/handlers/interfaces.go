package handlers

import (
	"context"

	"planup/internal/models/onboarding"
	"planup/internal/models/option"
	"planup/internal/models/schedule"
	"planup/internal/models/task"
	"planup/internal/service"
)

type AuthService interface {
	HealthCheck(context.Context) error
	Register(ctx context.Context, username, email, password string) (service.AuthResult, error)
	Login(ctx context.Context, email, password string) (service.AuthResult, error)
	Logout(ctx context.Context, userID string)
}

type ScheduleService interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type PlannerService interface {
	SetOnboarding(ctx context.Context, userID string, answers onboarding.Answers) error
	GetOnboarding(ctx context.Context, userID string) (onboarding.Answers, error)
	ListTasks(ctx context.Context, userID string) []task.Task
	SaveTask(ctx context.Context, userID string, in service.TaskInput) (task.Task, error)
	DeleteTask(ctx context.Context, userID, taskID string) error
	GetOptions(ctx context.Context, userID string) option.Set
	ToggleOption(ctx context.Context, userID, key string) (option.Set, error)
	Prompt(ctx context.Context, userID string) (string, error)
	GenerateSchedule(ctx context.Context, userID string) (schedule.Schedule, error)
	GetSchedule(ctx context.Context, userID string) (schedule.Schedule, error)
	DiscardSchedule(ctx context.Context, userID string)
	CancelGeneration(ctx context.Context, userID string) bool
	CompleteEntry(ctx context.Context, userID, entryID string) (schedule.Schedule, error)
	CompleteSubEntry(ctx context.Context, userID, entryID, subID string) (schedule.Schedule, error)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"planup/internal/editor"
	"planup/internal/generator"
	"planup/internal/logger"
	"planup/internal/models/onboarding"
	"planup/internal/models/option"
	"planup/internal/models/schedule"
	"planup/internal/models/task"
	"planup/internal/prompt"
	"planup/internal/session"
)

type SubTaskInput struct {
	ID   string
	Name string
}

// TaskInput is one submission of the task editor. An empty ID creates a
// task; a nil Time means flex.
type TaskInput struct {
	ID       string
	Name     string
	Priority task.Priority
	Time     *time.Time
	SubTasks []SubTaskInput
}

type PlannerService struct {
	sessions   SessionStore
	generator  generator.Generator
	builder    *prompt.Builder
	editorOpts []editor.Option
	flights    singleflight.Group
}

func NewPlannerService(sessions SessionStore, gen generator.Generator, builder *prompt.Builder, editorOpts ...editor.Option) *PlannerService {
	if builder == nil {
		builder = prompt.NewBuilder()
	}
	return &PlannerService{
		sessions:   sessions,
		generator:  gen,
		builder:    builder,
		editorOpts: editorOpts,
	}
}

func (s *PlannerService) session(userID string) *session.Session {
	return s.sessions.GetOrStart(userID)
}

// SetOnboarding records the answers and discards any schedule built from
// earlier ones.
func (s *PlannerService) SetOnboarding(ctx context.Context, userID string, answers onboarding.Answers) error {
	if err := answers.Validate(); err != nil {
		return onboardingValidationError(err)
	}
	if err := s.session(userID).SetAnswers(answers); err != nil {
		return sessionError(err)
	}
	logger.Info("Service: Онбординг пройден",
		zap.String("user_id", userID),
		zap.String("purpose", string(answers.Purpose.Key)),
		zap.String("technique", string(answers.Technique)),
	)
	return nil
}

func (s *PlannerService) GetOnboarding(ctx context.Context, userID string) (onboarding.Answers, error) {
	answers, ok := s.session(userID).Answers()
	if !ok {
		return onboarding.Answers{}, NewBusinessError(CodeOnboardingRequired, "Onboarding has not been completed")
	}
	return answers, nil
}

func (s *PlannerService) ListTasks(ctx context.Context, userID string) []task.Task {
	return s.session(userID).Tasks().List()
}

// SaveTask runs the input through the task editor and upserts the result.
func (s *PlannerService) SaveTask(ctx context.Context, userID string, in TaskInput) (task.Task, error) {
	sess := s.session(userID)

	var saved task.Task
	_, err := sess.UpdateTasks(func(store task.Store) (task.Store, error) {
		var existing *task.Task
		if in.ID != "" {
			found, ok := store.Get(in.ID)
			if !ok {
				return store, NewNotFound("task", in.ID)
			}
			existing = &found
		}

		ed := editor.New(existing, s.editorOpts...)
		if err := applyInput(ed, in); err != nil {
			return store, err
		}

		confirmed, err := ed.Confirm()
		if err != nil {
			return store, NewValidationError("taskName", "не может быть пустым").Wrap(err)
		}
		if err := confirmed.Validate(); err != nil {
			return store, NewValidationError("task", err.Error()).Wrap(err)
		}

		saved = confirmed
		return store.Upsert(confirmed), nil
	})
	if err != nil {
		return task.Task{}, sessionError(err)
	}

	logger.Info("Service: Задача сохранена",
		zap.String("user_id", userID),
		zap.String("task_id", saved.ID),
		zap.Bool("edited", in.ID != ""),
	)
	return saved, nil
}

func applyInput(ed *editor.Editor, in TaskInput) error {
	ed.SetName(in.Name)

	if in.Priority != "" {
		if err := ed.SetPriority(in.Priority); err != nil {
			return NewValidationError("priority", fmt.Sprintf("ожидается одно из %v", task.Priorities)).Wrap(err)
		}
	}

	if in.Time != nil {
		if !ed.TimeSpecified() {
			ed.ToggleSpecifyTime()
		}
		ed.SetTime(*in.Time)
	} else if ed.TimeSpecified() {
		ed.ToggleSpecifyTime()
	}

	wanted := make(map[string]string, len(in.SubTasks))
	for _, sub := range in.SubTasks {
		if sub.ID != "" {
			wanted[sub.ID] = sub.Name
		}
	}
	for _, sub := range ed.SubTasks() {
		name, keep := wanted[sub.ID]
		if !keep {
			_ = ed.RemoveSubTask(sub.ID)
			continue
		}
		_ = ed.RenameSubTask(sub.ID, name)
		delete(wanted, sub.ID)
	}
	order := make([]string, 0, len(in.SubTasks))
	for _, sub := range in.SubTasks {
		if _, known := wanted[sub.ID]; sub.ID != "" && !known {
			order = append(order, sub.ID)
			continue
		}
		id := ed.AddSubTask()
		_ = ed.RenameSubTask(id, sub.Name)
		order = append(order, id)
	}
	return ed.ReorderSubTasks(order)
}

func (s *PlannerService) DeleteTask(ctx context.Context, userID, taskID string) error {
	_, err := s.session(userID).UpdateTasks(func(store task.Store) (task.Store, error) {
		next, err := store.Delete(taskID)
		if errors.Is(err, task.ErrNotFound) {
			return store, NewNotFound("task", taskID)
		}
		return next, err
	})
	if err != nil {
		return sessionError(err)
	}
	logger.Info("Service: Задача удалена", zap.String("user_id", userID), zap.String("task_id", taskID))
	return nil
}

func (s *PlannerService) GetOptions(ctx context.Context, userID string) option.Set {
	return s.session(userID).Options()
}

func (s *PlannerService) ToggleOption(ctx context.Context, userID, rawKey string) (option.Set, error) {
	key, err := option.ParseKey(rawKey)
	if err != nil {
		return option.Set{}, NewValidationError("key", fmt.Sprintf("ожидается одно из %v", option.Keys)).Wrap(err)
	}

	next, err := s.session(userID).UpdateOptions(func(set option.Set) (option.Set, error) {
		return set.Toggle(key)
	})
	if err != nil {
		return option.Set{}, sessionError(err)
	}
	return next, nil
}

// Prompt renders the prompt the next generation would send.
func (s *PlannerService) Prompt(ctx context.Context, userID string) (string, error) {
	snap := s.session(userID).Snapshot()
	if !snap.HasAnswers {
		return "", NewBusinessError(CodeOnboardingRequired, "Onboarding has not been completed")
	}
	return s.builder.Build(snap.Answers, snap.Tasks.List(), snap.Options), nil
}

// GenerateSchedule builds the prompt, calls the generator and stores the
// parsed schedule. Concurrent calls for one user share a single upstream
// request.
func (s *PlannerService) GenerateSchedule(ctx context.Context, userID string) (schedule.Schedule, error) {
	sess := s.session(userID)
	snap := sess.Snapshot()
	if !snap.HasAnswers {
		return schedule.Schedule{}, NewBusinessError(CodeOnboardingRequired, "Onboarding has not been completed")
	}
	if snap.Tasks.Len() == 0 {
		return schedule.Schedule{}, NewBusinessError(CodeEmptyTaskList, "Add at least one task before generating a schedule")
	}

	v, err, shared := s.flights.Do(userID, func() (any, error) {
		return s.generate(ctx, sess, s.builder.Build(snap.Answers, snap.Tasks.List(), snap.Options))
	})
	if shared {
		logger.Info("Service: Повторный запрос генерации объединён", zap.String("user_id", userID))
	}
	if err != nil {
		return schedule.Schedule{}, err
	}
	return v.(schedule.Schedule), nil
}

func (s *PlannerService) generate(ctx context.Context, sess *session.Session, text string) (schedule.Schedule, error) {
	// генерация переживает обрыв клиента и отменяется только через сессию
	token, genCtx, err := sess.BeginGeneration(context.WithoutCancel(ctx))
	if err != nil {
		return schedule.Schedule{}, sessionError(err)
	}

	start := time.Now()
	raw, err := s.generator.Generate(genCtx, text)
	if err != nil {
		if !sess.AbortGeneration(token) {
			return schedule.Schedule{}, staleError(err)
		}
		return schedule.Schedule{}, generationError(err)
	}

	parsed, err := schedule.Parse(raw)
	if err != nil {
		sess.AbortGeneration(token)
		logger.Error("Service: Некорректный ответ генератора", err,
			zap.String("user_id", sess.UserID()),
			zap.Int("response_len", len(raw)),
		)
		return schedule.Schedule{}, NewBusinessError(CodeMalformedSchedule, "Could not generate schedule").Wrap(err)
	}

	if err := sess.CommitSchedule(token, parsed); err != nil {
		return schedule.Schedule{}, staleError(err)
	}

	logger.Info("Service: Расписание сохранено",
		zap.String("user_id", sess.UserID()),
		zap.Int("entries", parsed.Len()),
		zap.Duration("ms", time.Since(start)),
	)
	return parsed, nil
}

func (s *PlannerService) GetSchedule(ctx context.Context, userID string) (schedule.Schedule, error) {
	sched, ok := s.session(userID).Schedule()
	if !ok {
		return schedule.Schedule{}, noScheduleError()
	}
	return sched, nil
}

func (s *PlannerService) DiscardSchedule(ctx context.Context, userID string) {
	s.session(userID).DiscardSchedule()
}

// CancelGeneration reports whether a generation was in flight.
func (s *PlannerService) CancelGeneration(ctx context.Context, userID string) bool {
	cancelled := s.session(userID).CancelGeneration()
	if cancelled {
		logger.Info("Service: Генерация отменена", zap.String("user_id", userID))
	}
	return cancelled
}

func (s *PlannerService) CompleteEntry(ctx context.Context, userID, entryID string) (schedule.Schedule, error) {
	return s.reduce(userID, func(sched schedule.Schedule) (schedule.Schedule, error) {
		return schedule.CompleteTaskByID(sched, entryID)
	}, "entry", entryID)
}

func (s *PlannerService) CompleteSubEntry(ctx context.Context, userID, entryID, subID string) (schedule.Schedule, error) {
	return s.reduce(userID, func(sched schedule.Schedule) (schedule.Schedule, error) {
		return schedule.CompleteSubTaskByID(sched, entryID, subID)
	}, "sub-entry", subID)
}

func (s *PlannerService) CompleteTaskByName(ctx context.Context, userID, taskName string) (schedule.Schedule, error) {
	return s.reduce(userID, func(sched schedule.Schedule) (schedule.Schedule, error) {
		return schedule.CompleteTask(sched, taskName), nil
	}, "task", taskName)
}

func (s *PlannerService) CompleteSubTaskByName(ctx context.Context, userID, parentName, subName string) (schedule.Schedule, error) {
	return s.reduce(userID, func(sched schedule.Schedule) (schedule.Schedule, error) {
		return schedule.CompleteSubTask(sched, parentName, subName), nil
	}, "sub-task", subName)
}

func (s *PlannerService) reduce(userID string, fn func(schedule.Schedule) (schedule.Schedule, error), resource, id string) (schedule.Schedule, error) {
	next, err := s.session(userID).UpdateSchedule(fn)
	switch {
	case errors.Is(err, session.ErrNoSchedule):
		return schedule.Schedule{}, noScheduleError()
	case errors.Is(err, schedule.ErrEntryNotFound):
		return schedule.Schedule{}, NewNotFound(resource, id).Wrap(err)
	case err != nil:
		return schedule.Schedule{}, err
	}

	if next.Exhausted() {
		logger.Info("Service: Расписание выполнено", zap.String("user_id", userID))
	}
	return next, nil
}

func noScheduleError() *BusinessError {
	return NewBusinessError(CodeNoSchedule, "No schedule has been generated yet")
}

func staleError(err error) *BusinessError {
	return NewBusinessError(CodeStaleGeneration, "Schedule generation was cancelled or superseded").Wrap(err)
}

// sessionError passes business errors through and maps session sentinels.
func sessionError(err error) error {
	var busErr *BusinessError
	if errors.As(err, &busErr) {
		return busErr
	}
	if errors.Is(err, session.ErrEnded) {
		return staleError(err)
	}
	return err
}

func onboardingValidationError(err error) *BusinessError {
	switch {
	case errors.Is(err, onboarding.ErrUnknownPurpose):
		return NewValidationError("purpose", "неизвестная цель").Wrap(err)
	case errors.Is(err, onboarding.ErrUnknownTechnique):
		return NewValidationError("timeManagementTechnique", "ожидается pomodoro или eisenhower").Wrap(err)
	default:
		return NewValidationError("startTime", "обязательное поле").Wrap(err)
	}
}

package dto

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"planup/internal/models/onboarding"
	"planup/internal/models/option"
	"planup/internal/models/schedule"
	"planup/internal/models/task"
	"planup/internal/service"
)

var ErrNameTooLong = fmt.Errorf("название задачи длиннее %d символов", task.MaxNameLength)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

// OnboardingRequest accepts the purpose either as its key or as the text
// shown on the onboarding screen.
type OnboardingRequest struct {
	Purpose   string    `json:"purpose"`
	Technique string    `json:"timeManagementTechnique"`
	StartTime time.Time `json:"startTime"`
}

func (r OnboardingRequest) ToAnswers() onboarding.Answers {
	purpose, err := onboarding.PurposeByKey(onboarding.PurposeKey(r.Purpose))
	if err != nil {
		if byText, ok := onboarding.MatchPurposeText(r.Purpose); ok {
			purpose = byText
		} else {
			purpose = onboarding.Purpose{Key: onboarding.PurposeKey(r.Purpose)}
		}
	}

	technique, err := onboarding.ParseTechnique(r.Technique)
	if err != nil {
		technique = onboarding.Technique(r.Technique)
	}

	return onboarding.Answers{Purpose: purpose, Technique: technique, StartTime: r.StartTime}
}

type SubTaskRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TaskRequest is an editor submission. A missing or empty id creates a task;
// taskTime is "flex", null or an RFC3339 timestamp.
type TaskRequest struct {
	ID       string           `json:"id"`
	TaskName string           `json:"taskName"`
	Priority string           `json:"priority"`
	TaskTime *string          `json:"taskTime"`
	SubTasks []SubTaskRequest `json:"subTasks"`
}

func (r TaskRequest) ToInput() (service.TaskInput, error) {
	if strings.TrimSpace(r.TaskName) == "" {
		return service.TaskInput{}, task.ErrEmptyName
	}
	if utf8.RuneCountInString(r.TaskName) > task.MaxNameLength {
		return service.TaskInput{}, ErrNameTooLong
	}

	in := service.TaskInput{
		ID:       r.ID,
		Name:     r.TaskName,
		SubTasks: make([]service.SubTaskInput, 0, len(r.SubTasks)),
	}

	if r.Priority != "" {
		in.Priority = task.Priority(r.Priority)
		if p, ok := schedule.Priority(r.Priority).TaskPriority(); ok {
			in.Priority = p
		}
	}

	if r.TaskTime != nil {
		tt, err := task.ParseTaskTime(*r.TaskTime)
		if err != nil {
			return service.TaskInput{}, err
		}
		if at, ok := tt.Time(); ok {
			in.Time = &at
		}
	}

	for _, sub := range r.SubTasks {
		in.SubTasks = append(in.SubTasks, service.SubTaskInput{ID: sub.ID, Name: sub.Name})
	}
	return in, nil
}

type OnboardingResponse struct {
	Purpose   onboarding.Purpose   `json:"purpose"`
	Technique onboarding.Technique `json:"timeManagementTechnique"`
	StartTime time.Time            `json:"startTime"`
}

func FromAnswers(a onboarding.Answers) OnboardingResponse {
	return OnboardingResponse{Purpose: a.Purpose, Technique: a.Technique, StartTime: a.StartTime}
}

type TaskResponse struct {
	ID            string         `json:"id"`
	TaskName      string         `json:"taskName"`
	Priority      task.Priority  `json:"priority"`
	PriorityLabel string         `json:"priorityLabel"`
	TaskTime      task.TaskTime  `json:"taskTime"`
	SubTasks      []task.SubTask `json:"subTasks"`
}

func FromTask(t task.Task) TaskResponse {
	subTasks := t.SubTasks
	if subTasks == nil {
		subTasks = []task.SubTask{}
	}
	return TaskResponse{
		ID:            t.ID,
		TaskName:      t.Name,
		Priority:      t.Priority,
		PriorityLabel: t.Priority.Label(),
		TaskTime:      t.Time,
		SubTasks:      subTasks,
	}
}

func FromTaskList(tasks []task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

type OptionResponse struct {
	Key         option.Key `json:"key"`
	Selected    bool       `json:"selected"`
	Text        string     `json:"text"`
	Description string     `json:"description"`
}

func FromOptions(set option.Set) []OptionResponse {
	all := set.All()
	result := make([]OptionResponse, len(all))
	for i, o := range all {
		result[i] = OptionResponse{Key: o.Key, Selected: o.Selected, Text: o.Text, Description: o.Description}
	}
	return result
}

type SubEntryResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	StartTime string           `json:"startTime"`
	EndTime   string           `json:"endTime"`
	Duration  schedule.Minutes `json:"duration"`
}

type EntryResponse struct {
	ID        string             `json:"id"`
	TaskName  string             `json:"taskName"`
	StartTime string             `json:"startTime"`
	EndTime   string             `json:"endTime"`
	Duration  schedule.Minutes   `json:"duration"`
	Priority  schedule.Priority  `json:"priority"`
	Color     string             `json:"color"`
	SubTasks  []SubEntryResponse `json:"subTasks"`
}

type ScheduleResponse struct {
	Schedule  []EntryResponse `json:"schedule"`
	Exhausted bool            `json:"exhausted"`
}

func FromSchedule(s schedule.Schedule) ScheduleResponse {
	entries := s.Entries()
	out := ScheduleResponse{
		Schedule:  make([]EntryResponse, len(entries)),
		Exhausted: s.Exhausted(),
	}
	for i, e := range entries {
		subs := make([]SubEntryResponse, len(e.SubTasks))
		for j, sub := range e.SubTasks {
			subs[j] = SubEntryResponse{
				ID:        sub.ID,
				Name:      sub.Name,
				StartTime: sub.StartTime,
				EndTime:   sub.EndTime,
				Duration:  sub.Duration,
			}
		}
		out.Schedule[i] = EntryResponse{
			ID:        e.ID,
			TaskName:  e.TaskName,
			StartTime: e.StartTime,
			EndTime:   e.EndTime,
			Duration:  e.Duration,
			Priority:  e.Priority,
			Color:     e.Priority.Color(),
			SubTasks:  subs,
		}
	}
	return out
}

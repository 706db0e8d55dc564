package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const MaxNameLength = 32

type Task struct {
	ID       string    `json:"id"`
	Name     string    `json:"taskName"`
	SubTasks []SubTask `json:"subTasks"`
	Priority Priority  `json:"priority"`
	Time     TaskTime  `json:"taskTime"`
}

type SubTask struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Priority string

const PriorityLow Priority = "low"
const PriorityMedium Priority = "medium"
const PriorityHigh Priority = "high"
const PriorityVeryHigh Priority = "veryhigh"

const DefaultPriority = PriorityMedium

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityVeryHigh}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityVeryHigh:
		return true
	}
	return false
}

// Label is the human-readable form shown by the client.
func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityVeryHigh:
		return "Very High"
	}
	return string(p)
}

// FlexSentinel is the wire value of a task without a fixed time.
const FlexSentinel = "flex"

// TaskTime is either a point in time or flex. The zero value is flex.
type TaskTime struct {
	at time.Time
}

func Flex() TaskTime {
	return TaskTime{}
}

func At(t time.Time) TaskTime {
	return TaskTime{at: t}
}

func (tt TaskTime) IsFlex() bool {
	return tt.at.IsZero()
}

func (tt TaskTime) Time() (time.Time, bool) {
	return tt.at, !tt.at.IsZero()
}

func (tt TaskTime) String() string {
	if tt.IsFlex() {
		return FlexSentinel
	}
	return tt.at.Format(time.RFC3339)
}

func (tt TaskTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(tt.String())
}

func (tt *TaskTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*tt = Flex()
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("taskTime: %w", err)
	}
	parsed, err := ParseTaskTime(raw)
	if err != nil {
		return err
	}
	*tt = parsed
	return nil
}

func ParseTaskTime(raw string) (TaskTime, error) {
	if raw == "" || raw == FlexSentinel {
		return Flex(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return TaskTime{}, fmt.Errorf("taskTime %q: ожидается %q или RFC3339: %w", raw, FlexSentinel, err)
	}
	return At(t), nil
}

// Validate checks the rules enforced when a task is submitted.
func (t Task) Validate() error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return fmt.Errorf("taskName: %w", ErrEmptyName)
	}
	if utf8.RuneCountInString(t.Name) > MaxNameLength {
		return fmt.Errorf("taskName: %w", ErrNameTooLong)
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("priority %q: %w", t.Priority, ErrInvalidPriority)
	}
	seen := make(map[string]struct{}, len(t.SubTasks))
	for _, sub := range t.SubTasks {
		if _, dup := seen[sub.ID]; dup {
			return fmt.Errorf("subTask %q: %w", sub.ID, ErrDuplicateSubTask)
		}
		seen[sub.ID] = struct{}{}
	}
	return nil
}

// Clone returns a copy that shares no slices with t.
func (t Task) Clone() Task {
	out := t
	if t.SubTasks != nil {
		out.SubTasks = append([]SubTask(nil), t.SubTasks...)
	}
	return out
}

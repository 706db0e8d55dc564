package schedule

import (
	"strings"

	"planup/internal/models/task"
)

// Priority is the schedule-side priority vocabulary. It differs from
// task.Priority in the spelling of the highest level.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityVeryHigh Priority = "very_high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityVeryHigh}

const UnknownPriorityColor = "#FFFFFF"

func (p Priority) Known() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityVeryHigh:
		return true
	}
	return false
}

// Normalize maps the spellings a model tends to produce onto the schedule
// vocabulary. Values it cannot recognise are returned unchanged.
func (p Priority) Normalize() Priority {
	s := strings.ToLower(strings.TrimSpace(string(p)))
	s = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
	switch s {
	case "low":
		return PriorityLow
	case "medium":
		return PriorityMedium
	case "high":
		return PriorityHigh
	case "veryhigh":
		return PriorityVeryHigh
	}
	return p
}

func (p Priority) Color() string {
	switch p {
	case PriorityLow:
		return "#E0E0E0"
	case PriorityMedium:
		return "#FFC107"
	case PriorityHigh:
		return "#FF9800"
	case PriorityVeryHigh:
		return "#FF5722"
	}
	return UnknownPriorityColor
}

func FromTaskPriority(p task.Priority) Priority {
	switch p {
	case task.PriorityLow:
		return PriorityLow
	case task.PriorityMedium:
		return PriorityMedium
	case task.PriorityHigh:
		return PriorityHigh
	case task.PriorityVeryHigh:
		return PriorityVeryHigh
	}
	return Priority(p).Normalize()
}

func (p Priority) TaskPriority() (task.Priority, bool) {
	switch p.Normalize() {
	case PriorityLow:
		return task.PriorityLow, true
	case PriorityMedium:
		return task.PriorityMedium, true
	case PriorityHigh:
		return task.PriorityHigh, true
	case PriorityVeryHigh:
		return task.PriorityVeryHigh, true
	}
	return "", false
}

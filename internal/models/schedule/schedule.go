// Package schedule holds the parsed model response and the pure reducers
// applied to it as the user completes tasks.
package schedule

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrMalformed     = errors.New("не удалось разобрать расписание")
	ErrEntryNotFound = errors.New("запись расписания не найдена")
)

// MaxMinutes bounds a single duration to one day.
const MaxMinutes = 24 * 60

// Minutes decodes from either a JSON number or a numeric string in the range
// 0..MaxMinutes.
type Minutes int

func (m *Minutes) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*m = 0
			return nil
		}
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("duration %q: %w", raw, err)
	}
	if !(f >= 0 && f <= MaxMinutes) {
		return fmt.Errorf("duration %q: вне диапазона 0..%d", raw, MaxMinutes)
	}
	*m = Minutes(math.Round(f))
	return nil
}

type SubEntry struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
	Duration  Minutes `json:"duration"`
}

type Entry struct {
	ID        string     `json:"id"`
	TaskName  string     `json:"taskName"`
	StartTime string     `json:"startTime"`
	EndTime   string     `json:"endTime"`
	Duration  Minutes    `json:"duration"`
	Priority  Priority   `json:"priority"`
	SubTasks  []SubEntry `json:"subTasks"`
}

func (e Entry) clone() Entry {
	out := e
	out.SubTasks = append([]SubEntry{}, e.SubTasks...)
	return out
}

// Schedule is an immutable list of entries. Reducers return new values.
type Schedule struct {
	entries []Entry
}

func New(entries ...Entry) Schedule {
	s := Schedule{entries: make([]Entry, 0, len(entries))}
	for _, e := range entries {
		s.entries = append(s.entries, e.clone())
	}
	return s
}

// Entries returns a detached copy of the entries in order.
func (s Schedule) Entries() []Entry {
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.clone())
	}
	return out
}

func (s Schedule) Len() int {
	return len(s.entries)
}

func (s Schedule) Exhausted() bool {
	return len(s.entries) == 0
}

func (s Schedule) Entry(id string) (Entry, bool) {
	for _, e := range s.entries {
		if e.ID == id {
			return e.clone(), true
		}
	}
	return Entry{}, false
}

type document struct {
	Schedule []Entry `json:"schedule"`
}

func (s Schedule) MarshalJSON() ([]byte, error) {
	return json.Marshal(document{Schedule: s.Entries()})
}

// Parse decodes the model output. Every entry and sub-entry gets a fresh id.
func Parse(raw string) (Schedule, error) {
	return ParseWithIDs(raw, uuid.NewString)
}

func ParseWithIDs(raw string, newID func() string) (Schedule, error) {
	var doc struct {
		Schedule *[]Entry `json:"schedule"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return Schedule{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.Schedule == nil {
		return Schedule{}, fmt.Errorf("%w: нет поля schedule", ErrMalformed)
	}

	entries := *doc.Schedule
	for i := range entries {
		entries[i].ID = newID()
		entries[i].Priority = entries[i].Priority.Normalize()
		if entries[i].SubTasks == nil {
			entries[i].SubTasks = []SubEntry{}
		}
		for j := range entries[i].SubTasks {
			entries[i].SubTasks[j].ID = newID()
		}
	}
	return Schedule{entries: entries}, nil
}

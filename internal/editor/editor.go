// Package editor implements the create/edit flow of a single task.
package editor

import (
	"errors"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"planup/internal/models/task"
)

var (
	ErrEmptyName       = task.ErrEmptyName
	ErrSubTaskNotFound = errors.New("подзадача не найдена")
)

// Default hour and minute the time picker resets to when a time is specified.
const (
	DefaultHour   = 8
	DefaultMinute = 0
)

type Option func(*Editor)

func WithClock(now func() time.Time) Option {
	return func(e *Editor) {
		if now != nil {
			e.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(e *Editor) {
		if newID != nil {
			e.newID = newID
		}
	}
}

func WithLocation(loc *time.Location) Option {
	return func(e *Editor) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// Editor holds the editable state of one task. It is not safe for
// concurrent use.
type Editor struct {
	id            string
	name          string
	priority      task.Priority
	subTasks      []task.SubTask
	at            time.Time
	timeSpecified bool

	now   func() time.Time
	newID func() string
	loc   *time.Location
}

// New opens the editor. A nil existing task means create mode.
func New(existing *task.Task, opts ...Option) *Editor {
	e := &Editor{
		priority: task.DefaultPriority,
		subTasks: []task.SubTask{},
		now:      time.Now,
		newID:    uuid.NewString,
		loc:      time.Local,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	if existing == nil {
		e.at = e.now().In(e.loc)
		return e
	}

	src := existing.Clone()
	e.id = src.ID
	e.name = src.Name
	if src.Priority != "" {
		e.priority = src.Priority
	}
	if src.SubTasks != nil {
		e.subTasks = src.SubTasks
	}
	if at, ok := src.Time.Time(); ok {
		e.at = at
		e.timeSpecified = true
	} else {
		e.at = e.now().In(e.loc)
	}
	return e
}

func (e *Editor) Editing() bool {
	return e.id != ""
}

func (e *Editor) Name() string {
	return e.name
}

// SetName stores the name, cut to task.MaxNameLength characters.
func (e *Editor) SetName(name string) {
	if utf8.RuneCountInString(name) > task.MaxNameLength {
		name = string([]rune(name)[:task.MaxNameLength])
	}
	e.name = name
}

func (e *Editor) Priority() task.Priority {
	return e.priority
}

func (e *Editor) SetPriority(p task.Priority) error {
	if !p.Valid() {
		return task.ErrInvalidPriority
	}
	e.priority = p
	return nil
}

func (e *Editor) SubTasks() []task.SubTask {
	return slices.Clone(e.subTasks)
}

// AddSubTask appends an unnamed sub-task and returns its id.
func (e *Editor) AddSubTask() string {
	id := e.newID()
	e.subTasks = append(e.subTasks, task.SubTask{ID: id})
	return id
}

func (e *Editor) RenameSubTask(id, name string) error {
	for i := range e.subTasks {
		if e.subTasks[i].ID == id {
			e.subTasks[i].Name = name
			return nil
		}
	}
	return ErrSubTaskNotFound
}

func (e *Editor) RemoveSubTask(id string) error {
	for i := range e.subTasks {
		if e.subTasks[i].ID == id {
			e.subTasks = slices.Delete(e.subTasks, i, i+1)
			return nil
		}
	}
	return ErrSubTaskNotFound
}

// ReorderSubTasks rearranges the sub-tasks to follow ids. Sub-tasks missing
// from ids keep their relative order after the listed ones.
func (e *Editor) ReorderSubTasks(ids []string) error {
	rank := make(map[string]int, len(ids))
	for i, id := range ids {
		if !slices.ContainsFunc(e.subTasks, func(s task.SubTask) bool { return s.ID == id }) {
			return ErrSubTaskNotFound
		}
		rank[id] = i
	}
	slices.SortStableFunc(e.subTasks, func(a, b task.SubTask) int {
		ra, okA := rank[a.ID]
		rb, okB := rank[b.ID]
		switch {
		case okA && okB:
			return ra - rb
		case okA:
			return -1
		case okB:
			return 1
		}
		return 0
	})
	return nil
}

func (e *Editor) TimeSpecified() bool {
	return e.timeSpecified
}

// Time is the time held in memory, whether or not it is specified.
func (e *Editor) Time() time.Time {
	return e.at
}

func (e *Editor) SetTime(t time.Time) {
	e.at = t
}

// ToggleSpecifyTime flips the specify-time switch. Turning it on resets the
// time to 08:00 today; turning it off keeps the time but ignores it.
func (e *Editor) ToggleSpecifyTime() {
	e.timeSpecified = !e.timeSpecified
	if e.timeSpecified {
		now := e.now().In(e.loc)
		e.at = time.Date(now.Year(), now.Month(), now.Day(), DefaultHour, DefaultMinute, 0, 0, e.loc)
	}
}

// Confirm builds the task. On an empty name the editor is left as is.
func (e *Editor) Confirm() (task.Task, error) {
	if strings.TrimSpace(e.name) == "" {
		return task.Task{}, ErrEmptyName
	}

	if e.id == "" {
		e.id = e.newID()
	}
	id := e.id

	when := task.WithFlexTime()
	if e.timeSpecified {
		when = task.WithTime(e.at)
	}

	return task.New(id,
		task.WithName(strings.TrimSpace(e.name)),
		task.WithPriority(e.priority),
		task.WithSubTasks(slices.Clone(e.subTasks)),
		when,
	), nil
}

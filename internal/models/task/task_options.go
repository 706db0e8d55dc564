package task

import (
	"time"
)

type TaskOption func(*Task)

// New builds a task with the defaults of an empty editor and applies opts.
// Nil options are skipped.
func New(id string, opts ...TaskOption) Task {
	t := Task{
		ID:       id,
		SubTasks: []SubTask{},
		Priority: DefaultPriority,
		Time:     Flex(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&t)
		}
	}
	return t
}

func WithName(name string) TaskOption {
	return func(task *Task) {
		task.Name = name
	}
}

func WithPriority(priority Priority) TaskOption {
	if priority == "" {
		return nil
	}
	return func(task *Task) {
		task.Priority = priority
	}
}

func WithTime(at time.Time) TaskOption {
	return func(task *Task) {
		task.Time = At(at)
	}
}

func WithFlexTime() TaskOption {
	return func(task *Task) {
		task.Time = Flex()
	}
}

func WithSubTasks(subTasks []SubTask) TaskOption {
	return func(task *Task) {
		task.SubTasks = append([]SubTask{}, subTasks...)
	}
}

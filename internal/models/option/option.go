// Package option holds the fixed set of schedule toggles offered before a
// schedule is generated.
package option

import (
	"encoding/json"
	"errors"
	"fmt"
)

type Key string

const (
	SubTaskDuration Key = "subTaskDuration"
	StudyHours      Key = "studyHours"
	WellbeingHours  Key = "wellbeingHours"
)

// Keys is the closed key set in prompt order.
var Keys = [...]Key{SubTaskDuration, StudyHours, WellbeingHours}

var ErrUnknownKey = errors.New("неизвестная опция")

type Option struct {
	Key         Key    `json:"-"`
	Selected    bool   `json:"selected"`
	Text        string `json:"text"`
	Description string `json:"description"`
}

// Set is an immutable option set. The zero value is not usable, call Default.
type Set struct {
	options [len(Keys)]Option
}

func Default() Set {
	return Set{options: [len(Keys)]Option{
		{
			Key:         SubTaskDuration,
			Text:        "Approximate sub-tasks duration",
			Description: "Estimate the duration of sub-tasks based on the average time typically required for similar actions, ensuring a more accurate schedule.",
		},
		{
			Key:         StudyHours,
			Text:        "Fill up your schedule with study hours",
			Description: "Add dedicated study hours to your schedule to ensure you have enough time for learning and skill development.",
		},
		{
			Key:         WellbeingHours,
			Text:        "Fill up your schedule with wellbeing hours",
			Description: "Include time for self-care, exercise, and relaxation to maintain a healthy work-life balance.",
		},
	}}
}

func ParseKey(raw string) (Key, error) {
	for _, k := range Keys {
		if string(k) == raw {
			return k, nil
		}
	}
	return "", fmt.Errorf("%q: %w", raw, ErrUnknownKey)
}

// Toggle returns a copy of s with only key's Selected flag flipped.
func (s Set) Toggle(key Key) (Set, error) {
	idx, err := indexOf(key)
	if err != nil {
		return s, err
	}
	s.options[idx].Selected = !s.options[idx].Selected
	return s, nil
}

// WithSelected returns a copy of s with key's Selected flag set to selected.
func (s Set) WithSelected(key Key, selected bool) (Set, error) {
	idx, err := indexOf(key)
	if err != nil {
		return s, err
	}
	s.options[idx].Selected = selected
	return s, nil
}

func (s Set) Get(key Key) (Option, bool) {
	idx, err := indexOf(key)
	if err != nil {
		return Option{}, false
	}
	return s.options[idx], true
}

func (s Set) Selected(key Key) bool {
	opt, _ := s.Get(key)
	return opt.Selected
}

// All returns the options in key order.
func (s Set) All() []Option {
	out := make([]Option, len(s.options))
	copy(out, s.options[:])
	return out
}

// MarshalJSON encodes the set as an object keyed by option key.
func (s Set) MarshalJSON() ([]byte, error) {
	out := make(map[Key]Option, len(s.options))
	for _, opt := range s.options {
		out[opt.Key] = opt
	}
	return json.Marshal(out)
}

func indexOf(key Key) (int, error) {
	for i, k := range Keys {
		if k == key {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%q: %w", key, ErrUnknownKey)
}

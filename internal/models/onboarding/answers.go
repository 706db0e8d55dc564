package onboarding

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUnknownPurpose   = errors.New("неизвестная цель")
	ErrUnknownTechnique = errors.New("неизвестная техника тайм-менеджмента")
	ErrMissingStartTime = errors.New("не задано время начала дня")
)

type PurposeKey string

const (
	PurposeStudying        PurposeKey = "studying"
	PurposeWorkLifeBalance PurposeKey = "workLifeBalance"
	PurposeSelfImprovement PurposeKey = "selfImprovement"
)

type Purpose struct {
	Key  PurposeKey `json:"key"`
	Text string     `json:"text"`
}

// Purposes is every purpose offered on the welcome screen, in display order.
var Purposes = []Purpose{
	{Key: PurposeStudying, Text: "Studying"},
	{Key: PurposeWorkLifeBalance, Text: "Work-life balance"},
	{Key: PurposeSelfImprovement, Text: "Self-improvement"},
}

func PurposeByKey(key PurposeKey) (Purpose, error) {
	for _, p := range Purposes {
		if p.Key == key {
			return p, nil
		}
	}
	return Purpose{}, fmt.Errorf("%q: %w", key, ErrUnknownPurpose)
}

// MatchPurposeText resolves free display text to a known purpose,
// ignoring case.
func MatchPurposeText(text string) (Purpose, bool) {
	for _, p := range Purposes {
		if strings.EqualFold(p.Text, text) {
			return p, true
		}
	}
	return Purpose{}, false
}

type Technique string

const (
	TechniquePomodoro   Technique = "pomodoro"
	TechniqueEisenhower Technique = "eisenhower"
)

type TechniqueInfo struct {
	Key                 Technique `json:"key"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	DetailedDescription string    `json:"detailedDescription"`
}

var Techniques = []TechniqueInfo{
	{
		Key:                 TechniquePomodoro,
		Title:               "Pomodoro Technique",
		Description:         "Breaks down work into intervals, traditionally 25 minutes in length, separated by short breaks.",
		DetailedDescription: "The Pomodoro Technique can help individuals develop more efficient work habits. Through effective time management, they can get more done in less time, while achieving a sense of accomplishment and reducing the potential for burnout.",
	},
	{
		Key:                 TechniqueEisenhower,
		Title:               "Eisenhower Matrix",
		Description:         "Prioritizes tasks based on urgency and importance, across four quadrants.",
		DetailedDescription: "The Eisenhower Matrix is a simple decision-making tool that helps you make the distinction between tasks that are important, not important, urgent, and not urgent. It splits tasks into four boxes that prioritize which tasks you should focus on first and which you should delegate or delete.",
	},
}

func ParseTechnique(raw string) (Technique, error) {
	for _, info := range Techniques {
		if strings.EqualFold(string(info.Key), raw) {
			return info.Key, nil
		}
	}
	return "", fmt.Errorf("%q: %w", raw, ErrUnknownTechnique)
}

// IsPomodoro reports a case-insensitive match; anything else, including an
// empty technique, is treated as non-pomodoro.
func (t Technique) IsPomodoro() bool {
	return strings.EqualFold(string(t), string(TechniquePomodoro))
}

type Answers struct {
	Purpose   Purpose   `json:"purpose"`
	Technique Technique `json:"timeManagementTechnique"`
	StartTime time.Time `json:"startTime"`
}

func (a Answers) Validate() error {
	if _, err := PurposeByKey(a.Purpose.Key); err != nil {
		return err
	}
	if _, err := ParseTechnique(string(a.Technique)); err != nil {
		return err
	}
	if a.StartTime.IsZero() {
		return ErrMissingStartTime
	}
	return nil
}

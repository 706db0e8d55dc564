// Package prompt turns onboarding answers, tasks and schedule options into
// the instruction text sent to the schedule generator.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"planup/internal/models/onboarding"
	"planup/internal/models/option"
	"planup/internal/models/schedule"
	"planup/internal/models/task"
)

const (
	StartTaskName = "Start of your day"
	FlexibleTime  = "flexible time"
	clockLayout   = "15:04"
)

const outputFormat = `Please create a schedule using the following JSON format:
{
  "schedule": [
    {
      "taskName": "string",
      "startTime": "string (HH:mm format)",
      "endTime": "string (HH:mm format)",
      "duration": "number (in minutes)",
      "priority": "low | medium | high | very_high",
      "subTasks": [
        {
          "name": "string",
          "startTime": "string (HH:mm format)",
          "endTime": "string (HH:mm format)",
          "duration": "number (in minutes)"
        }
      ]
    }
  ]
}
The tasks should be sorted in ascending order of time. Remember, the JSON output must include all main tasks and any specified sub-tasks, ensuring accurate representation of the schedule as described.
This output has to solely contain the parseable JSON code as per the outlined format, without any extraneous characters or backticks that could interfere with JSON parsing.
This means that the message should solely contain the JSON code, eg you cannot begin the message with "Schedule Data:".
`

type Option func(*Builder)

// WithLocation formats every clock time in loc instead of the zone the
// timestamp carries.
func WithLocation(loc *time.Location) Option {
	return func(b *Builder) {
		b.loc = loc
	}
}

type Builder struct {
	loc *time.Location
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Build is deterministic: equal inputs give byte-identical output.
func Build(answers onboarding.Answers, tasks []task.Task, options option.Set) string {
	return NewBuilder().Build(answers, tasks, options)
}

func (b *Builder) Build(answers onboarding.Answers, tasks []task.Task, options option.Set) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are an AI within the \"Planup\" app focusing on %s.\n\n", strings.ToLower(answers.Purpose.Text))
	fmt.Fprintf(&sb, "- The user's day initiates at %s with a starting task named %q.\n", b.clock(answers.StartTime), StartTaskName)

	if purpose, ok := onboarding.MatchPurposeText(answers.Purpose.Text); ok {
		writeLines(&sb, purposeInstructions(purpose.Key))
	}
	writeLines(&sb, optionInstructions(options, answers.Technique))

	fmt.Fprintf(&sb, "\nTime Management Technique: %s\n\nTasks:\n", answers.Technique)

	for i, t := range tasks {
		b.writeTask(&sb, i+1, t)
	}

	sb.WriteString("\n")
	sb.WriteString(outputFormat)
	return sb.String()
}

func (b *Builder) writeTask(sb *strings.Builder, n int, t task.Task) {
	when := FlexibleTime
	if at, ok := t.Time.Time(); ok {
		when = "at " + b.clock(at)
	}

	fmt.Fprintf(sb, "\n%d. Task: %s\n", n, t.Name)
	fmt.Fprintf(sb, "Priority: %s\n", schedule.FromTaskPriority(t.Priority))
	fmt.Fprintf(sb, "Time: %s\n", when)

	if len(t.SubTasks) == 0 {
		return
	}
	sb.WriteString("Sub-tasks:\n")
	for i, sub := range t.SubTasks {
		fmt.Fprintf(sb, "%d. %s\n", i+1, sub.Name)
	}
}

func (b *Builder) clock(t time.Time) string {
	if b.loc != nil {
		t = t.In(b.loc)
	}
	return t.Format(clockLayout)
}

func writeLines(sb *strings.Builder, lines []string) {
	for _, line := range lines {
		sb.WriteString("- ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
}

func purposeInstructions(key onboarding.PurposeKey) []string {
	switch key {
	case onboarding.PurposeStudying:
		return []string{
			"Tasks with keywords 'study', 'studying' should be given high priority.",
		}
	case onboarding.PurposeWorkLifeBalance:
		return nil
	case onboarding.PurposeSelfImprovement:
		return []string{
			"Set tasks related to meditation or exercise/workout to have 'high' priority.",
			"Tasks with keywords 'exercise', 'workout', 'meditate', 'jog' should have high priority.",
		}
	}
	return nil
}

func optionInstructions(options option.Set, technique onboarding.Technique) []string {
	var lines []string
	for _, key := range option.Keys {
		if !options.Selected(key) {
			continue
		}
		switch key {
		case option.SubTaskDuration:
			lines = append(lines,
				"To your best ability, estimate the duration of sub-tasks based on the average time typically required for those actions based on their name and assign them duration.",
			)
		case option.StudyHours:
			if technique.IsPomodoro() {
				lines = append(lines,
					"Add a two hour long task that is going to follow the pomodoro technique. It will consist of subtasks which are 25 minute study, 5 minute break, alternating until the total time adds up to two hours.",
					"The names of breaks and pomodoro sessions should have incrementing numbers, eg Pomodoro 1, Pomodoro 2, Break 1, Break 2 etc...",
				)
			} else {
				lines = append(lines,
					"Add two additional hours of study which should be added as a task with another task which is a 30 minute break right after.",
				)
			}
		case option.WellbeingHours:
			lines = append(lines,
				"Add 2 hours of wellbeing activities, broken down into 30-minute sessions with high priority.",
			)
		}
	}
	return lines
}

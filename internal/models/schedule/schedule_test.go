package schedule_test

import (
	"encoding/json"
	"fmt"
	"planup/internal/models/schedule"
	"planup/internal/models/task"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
  "schedule": [
    {"taskName": "Start of your day", "startTime": "08:00", "endTime": "08:15", "duration": 15, "priority": "low", "subTasks": []},
    {"taskName": "Write report", "startTime": "08:15", "endTime": "10:15", "duration": "120", "priority": "very_high",
     "subTasks": [
       {"name": "Outline", "startTime": "08:15", "endTime": "08:45", "duration": 30},
       {"name": "Draft", "startTime": "08:45", "endTime": "10:15", "duration": "90"}
     ]},
    {"taskName": "Gym", "startTime": "10:30", "endTime": "11:30", "duration": 60, "priority": "veryhigh"}
  ]
}`

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func parseSample(t *testing.T) schedule.Schedule {
	t.Helper()
	s, err := schedule.ParseWithIDs(sample, sequentialIDs())
	require.NoError(t, err)
	return s
}

func names(s schedule.Schedule) []string {
	var out []string
	for _, e := range s.Entries() {
		out = append(out, e.TaskName)
	}
	return out
}

func TestParse(t *testing.T) {
	s := parseSample(t)

	entries := s.Entries()
	require.Len(t, entries, 3)

	assert.Equal(t, "id-1", entries[0].ID)
	assert.Equal(t, schedule.Minutes(120), entries[1].Duration)
	assert.Equal(t, schedule.PriorityVeryHigh, entries[1].Priority)
	assert.Equal(t, schedule.PriorityVeryHigh, entries[2].Priority)
	require.Len(t, entries[1].SubTasks, 2)
	assert.Equal(t, schedule.Minutes(90), entries[1].SubTasks[1].Duration)
	assert.NotEmpty(t, entries[1].SubTasks[0].ID)
	assert.NotNil(t, entries[2].SubTasks)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "prose", raw: "Schedule Data: here you go"},
		{name: "fenced", raw: "```json\n{\"schedule\": []}\n```"},
		{name: "missing schedule key", raw: `{"tasks": []}`},
		{name: "bad duration", raw: `{"schedule": [{"taskName": "x", "duration": "two hours"}]}`},
		{name: "huge duration", raw: `{"schedule": [{"taskName": "x", "duration": 1e300}]}`},
		{name: "negative duration", raw: `{"schedule": [{"taskName": "x", "duration": -5}]}`},
		{name: "NaN duration", raw: `{"schedule": [{"taskName": "x", "duration": "NaN"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := schedule.Parse(tt.raw)
			assert.ErrorIs(t, err, schedule.ErrMalformed)
			assert.Equal(t, 0, s.Len())
		})
	}
}

func TestSchedule_MarshalJSON(t *testing.T) {
	s := parseSample(t)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded struct {
		Schedule []map[string]any `json:"schedule"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Schedule, 3)
	assert.Equal(t, "Write report", decoded.Schedule[1]["taskName"])
	assert.Equal(t, float64(120), decoded.Schedule[1]["duration"])
}

func TestCompleteTask(t *testing.T) {
	s := parseSample(t)

	next := schedule.CompleteTask(s, "Write report")

	assert.Equal(t, []string{"Start of your day", "Gym"}, names(next))
	assert.Equal(t, 3, s.Len(), "исходное расписание не должно меняться")
}

func TestCompleteTask_ExactMatchOnly(t *testing.T) {
	s := schedule.New(
		schedule.Entry{ID: "1", TaskName: "Read"},
		schedule.Entry{ID: "2", TaskName: "read"},
		schedule.Entry{ID: "3", TaskName: "Read "},
		schedule.Entry{ID: "4", TaskName: "Read"},
		schedule.Entry{ID: "5", TaskName: "Walk"},
	)

	next := schedule.CompleteTask(s, "Read")

	assert.Equal(t, []string{"read", "Read ", "Walk"}, names(next))
}

func TestCompleteSubTask(t *testing.T) {
	s := parseSample(t)

	next := schedule.CompleteSubTask(s, "Write report", "Outline")

	entries := next.Entries()
	require.Len(t, entries, 3)
	require.Len(t, entries[1].SubTasks, 1)
	assert.Equal(t, "Draft", entries[1].SubTasks[0].Name)
	assert.Equal(t, s.Entries()[0], entries[0])
	assert.Equal(t, s.Entries()[2], entries[2])

	original := s.Entries()
	assert.Len(t, original[1].SubTasks, 2)
}

func TestCompleteSubTask_OtherParentUntouched(t *testing.T) {
	s := schedule.New(
		schedule.Entry{ID: "1", TaskName: "A", SubTasks: []schedule.SubEntry{{ID: "a1", Name: "x"}, {ID: "a2", Name: "y"}}},
		schedule.Entry{ID: "2", TaskName: "B", SubTasks: []schedule.SubEntry{{ID: "b1", Name: "x"}}},
	)

	next := schedule.CompleteSubTask(s, "A", "x")

	entries := next.Entries()
	require.Len(t, entries[0].SubTasks, 1)
	assert.Equal(t, "y", entries[0].SubTasks[0].Name)
	require.Len(t, entries[1].SubTasks, 1)
	assert.Equal(t, "x", entries[1].SubTasks[0].Name)
}

func TestCompleteByID(t *testing.T) {
	s := schedule.New(
		schedule.Entry{ID: "1", TaskName: "Same", SubTasks: []schedule.SubEntry{{ID: "s1", Name: "dup"}, {ID: "s2", Name: "dup"}}},
		schedule.Entry{ID: "2", TaskName: "Same"},
	)

	next, err := schedule.CompleteTaskByID(s, "2")
	require.NoError(t, err)
	require.Equal(t, 1, next.Len())
	assert.Equal(t, "1", next.Entries()[0].ID)

	next, err = schedule.CompleteSubTaskByID(next, "1", "s2")
	require.NoError(t, err)
	subs := next.Entries()[0].SubTasks
	require.Len(t, subs, 1)
	assert.Equal(t, "s1", subs[0].ID)

	_, err = schedule.CompleteTaskByID(s, "missing")
	assert.ErrorIs(t, err, schedule.ErrEntryNotFound)

	_, err = schedule.CompleteSubTaskByID(s, "1", "missing")
	assert.ErrorIs(t, err, schedule.ErrEntryNotFound)

	_, err = schedule.CompleteSubTaskByID(s, "missing", "s1")
	assert.ErrorIs(t, err, schedule.ErrEntryNotFound)
}

func TestRoundTrip_CompletingEverythingExhausts(t *testing.T) {
	store := task.NewStore(
		task.New("1", task.WithName("Write report"), task.WithPriority(task.PriorityVeryHigh),
			task.WithSubTasks([]task.SubTask{{ID: "a", Name: "Outline"}})),
		task.New("2", task.WithName("Gym")),
		task.New("3", task.WithName("Gym")),
	)

	var doc struct {
		Schedule []map[string]any `json:"schedule"`
	}
	for _, tk := range store.List() {
		subs := []map[string]any{}
		for _, sub := range tk.SubTasks {
			subs = append(subs, map[string]any{"name": sub.Name, "duration": 10})
		}
		doc.Schedule = append(doc.Schedule, map[string]any{
			"taskName": tk.Name,
			"priority": schedule.FromTaskPriority(tk.Priority),
			"duration": 30,
			"subTasks": subs,
		})
	}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	s, err := schedule.Parse(string(raw))
	require.NoError(t, err)
	require.Equal(t, store.Len(), s.Len())
	assert.False(t, s.Exhausted())

	for _, tk := range store.List() {
		s = schedule.CompleteTask(s, tk.Name)
	}
	assert.True(t, s.Exhausted())

	s, err = schedule.Parse(string(raw))
	require.NoError(t, err)
	for _, e := range s.Entries() {
		s, err = schedule.CompleteTaskByID(s, e.ID)
		require.NoError(t, err)
	}
	assert.True(t, s.Exhausted())
}

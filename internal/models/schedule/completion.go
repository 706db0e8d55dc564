package schedule

import "fmt"

// CompleteTask removes every entry named exactly taskName.
func CompleteTask(s Schedule, taskName string) Schedule {
	return s.without(func(e Entry) bool { return e.TaskName == taskName })
}

// CompleteSubTask removes sub-entries named subTaskName from every entry
// named parentTaskName.
func CompleteSubTask(s Schedule, parentTaskName, subTaskName string) Schedule {
	return s.mapSubTasks(
		func(e Entry) bool { return e.TaskName == parentTaskName },
		func(sub SubEntry) bool { return sub.Name == subTaskName },
	)
}

func CompleteTaskByID(s Schedule, entryID string) (Schedule, error) {
	if _, ok := s.Entry(entryID); !ok {
		return s, fmt.Errorf("entry %q: %w", entryID, ErrEntryNotFound)
	}
	return s.without(func(e Entry) bool { return e.ID == entryID }), nil
}

func CompleteSubTaskByID(s Schedule, entryID, subID string) (Schedule, error) {
	entry, ok := s.Entry(entryID)
	if !ok {
		return s, fmt.Errorf("entry %q: %w", entryID, ErrEntryNotFound)
	}
	found := false
	for _, sub := range entry.SubTasks {
		if sub.ID == subID {
			found = true
			break
		}
	}
	if !found {
		return s, fmt.Errorf("entry %q sub-task %q: %w", entryID, subID, ErrEntryNotFound)
	}

	return s.mapSubTasks(
		func(e Entry) bool { return e.ID == entryID },
		func(sub SubEntry) bool { return sub.ID == subID },
	), nil
}

func (s Schedule) without(drop func(Entry) bool) Schedule {
	out := Schedule{entries: make([]Entry, 0, len(s.entries))}
	for _, e := range s.entries {
		if drop(e) {
			continue
		}
		out.entries = append(out.entries, e.clone())
	}
	return out
}

func (s Schedule) mapSubTasks(parent func(Entry) bool, drop func(SubEntry) bool) Schedule {
	out := Schedule{entries: make([]Entry, 0, len(s.entries))}
	for _, e := range s.entries {
		next := e.clone()
		if parent(e) {
			next.SubTasks = make([]SubEntry, 0, len(e.SubTasks))
			for _, sub := range e.SubTasks {
				if !drop(sub) {
					next.SubTasks = append(next.SubTasks, sub)
				}
			}
		}
		out.entries = append(out.entries, next)
	}
	return out
}

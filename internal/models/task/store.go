package task

// Store is an ordered collection of tasks. It is a value: every mutation
// returns a new Store and leaves the receiver untouched.
type Store struct {
	tasks []Task
}

func NewStore(tasks ...Task) Store {
	s := Store{}
	for _, t := range tasks {
		s = s.Upsert(t)
	}
	return s
}

// Upsert replaces the task with the same id in place, or appends it.
func (s Store) Upsert(t Task) Store {
	next := make([]Task, 0, len(s.tasks)+1)
	replaced := false
	for _, existing := range s.tasks {
		if existing.ID == t.ID {
			next = append(next, t.Clone())
			replaced = true
			continue
		}
		next = append(next, existing)
	}
	if !replaced {
		next = append(next, t.Clone())
	}
	return Store{tasks: next}
}

// Delete removes the task with id. Deleting an unknown id returns ErrNotFound
// and the unchanged store.
func (s Store) Delete(id string) (Store, error) {
	idx := s.index(id)
	if idx < 0 {
		return s, ErrNotFound
	}
	next := make([]Task, 0, len(s.tasks)-1)
	next = append(next, s.tasks[:idx]...)
	next = append(next, s.tasks[idx+1:]...)
	return Store{tasks: next}, nil
}

func (s Store) Get(id string) (Task, bool) {
	idx := s.index(id)
	if idx < 0 {
		return Task{}, false
	}
	return s.tasks[idx].Clone(), true
}

// List returns the tasks in insertion order.
func (s Store) List() []Task {
	out := make([]Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (s Store) Len() int {
	return len(s.tasks)
}

func (s Store) index(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

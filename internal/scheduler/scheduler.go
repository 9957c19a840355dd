package scheduler

import "math"

// DefaultCapacity is the initial storage size used when none is given.
const DefaultCapacity = 10

// Task is a named unit of work. Smaller priority values are more urgent.
type Task struct {
	Name     string  `json:"name"`
	Priority float64 `json:"priority"`
}

// Scheduler is a min-heap of tasks keyed by priority with unique names.
type Scheduler struct {
	heap  []Task
	index map[string]int // name -> position in heap
}

// New creates an empty scheduler with room for initialCapacity tasks.
// A non-positive capacity selects DefaultCapacity.
func New(initialCapacity int) *Scheduler {
	if initialCapacity <= 0 {
		initialCapacity = DefaultCapacity
	}
	return &Scheduler{
		heap:  make([]Task, 0, initialCapacity),
		index: make(map[string]int, initialCapacity),
	}
}

// Len returns the number of live tasks.
func (s *Scheduler) Len() int {
	return len(s.heap)
}

// Cap returns the current storage capacity.
func (s *Scheduler) Cap() int {
	return cap(s.heap)
}

// Contains reports whether a task with the given name exists.
func (s *Scheduler) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Get returns a copy of the named task.
func (s *Scheduler) Get(name string) (Task, bool) {
	i, ok := s.index[name]
	if !ok {
		return Task{}, false
	}
	return s.heap[i], true
}

// Insert adds a task. Empty names, duplicate names and NaN priorities are
// rejected without modifying the scheduler.
func (s *Scheduler) Insert(name string, priority float64) error {
	if name == "" {
		return &TaskError{Op: "insert", Err: ErrEmptyName}
	}
	if math.IsNaN(priority) {
		return &TaskError{Op: "insert", Name: name, Err: ErrInvalidPriority}
	}
	if s.Contains(name) {
		return &TaskError{Op: "insert", Name: name, Err: ErrDuplicateName}
	}

	if len(s.heap) == cap(s.heap) {
		s.grow()
	}

	i := len(s.heap)
	s.heap = append(s.heap, Task{Name: name, Priority: priority})
	s.index[name] = i
	s.up(i)
	return nil
}

// Peek returns the most urgent task without removing it.
// The boolean is false when the scheduler is empty.
func (s *Scheduler) Peek() (Task, bool) {
	if len(s.heap) == 0 {
		return Task{}, false
	}
	return s.heap[0], true
}

// Pop removes and returns the most urgent task.
// The boolean is false when the scheduler is empty.
func (s *Scheduler) Pop() (Task, bool) {
	if len(s.heap) == 0 {
		return Task{}, false
	}

	root := s.heap[0]
	last := len(s.heap) - 1
	delete(s.index, root.Name)

	if last > 0 {
		s.heap[0] = s.heap[last]
		s.index[s.heap[0].Name] = 0
	}
	s.heap[last] = Task{}
	s.heap = s.heap[:last]

	if len(s.heap) > 0 {
		s.down(0)
	}
	return root, true
}

// UpdatePriority changes the priority of the named task and returns the
// previous value.
func (s *Scheduler) UpdatePriority(name string, priority float64) (float64, error) {
	i, ok := s.index[name]
	if !ok {
		return 0, &TaskError{Op: "update", Name: name, Err: ErrNotFound}
	}
	if math.IsNaN(priority) {
		return 0, &TaskError{Op: "update", Name: name, Err: ErrInvalidPriority}
	}

	old := s.heap[i].Priority
	s.heap[i].Priority = priority

	switch {
	case priority < old:
		s.up(i)
	case priority > old:
		s.down(i)
	}
	return old, nil
}

// Tasks returns a copy of all tasks in storage order.
func (s *Scheduler) Tasks() []Task {
	out := make([]Task, len(s.heap))
	copy(out, s.heap)
	return out
}

// grow doubles storage capacity (minimum 1) without reordering entries.
func (s *Scheduler) grow() {
	newCap := cap(s.heap) * 2
	if newCap == 0 {
		newCap = 1
	}
	grown := make([]Task, len(s.heap), newCap)
	copy(grown, s.heap)
	s.heap = grown
}

func (s *Scheduler) swap(i, j int) {
	s.heap[i], s.heap[j] = s.heap[j], s.heap[i]
	s.index[s.heap[i].Name] = i
	s.index[s.heap[j].Name] = j
}

func (s *Scheduler) less(i, j int) bool {
	return s.heap[i].Priority < s.heap[j].Priority
}

// up moves the entry at i toward the root until its parent is not larger.
func (s *Scheduler) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !s.less(i, parent) {
			break
		}
		s.swap(i, parent)
		i = parent
	}
}

// down moves the entry at i toward the leaves until no child is smaller.
// Ties between children go to the left child.
func (s *Scheduler) down(i int) {
	n := len(s.heap)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2

		if left < n && s.less(left, smallest) {
			smallest = left
		}
		if right < n && s.less(right, smallest) {
			smallest = right
		}
		if smallest == i {
			return
		}
		s.swap(i, smallest)
		i = smallest
	}
}

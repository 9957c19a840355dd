package scheduler

import "github.com/google/btree"

const sortedDegree = 8

// byPriority orders tasks by priority, then by name. Names are unique, so
// the order is total.
func byPriority(a, b Task) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.Name < b.Name
}

// Sorted returns a copy of all tasks ordered from most to least urgent.
// Heap storage is not modified.
func (s *Scheduler) Sorted() []Task {
	tree := btree.NewG[Task](sortedDegree, byPriority)
	for _, t := range s.heap {
		tree.ReplaceOrInsert(t)
	}

	out := make([]Task, 0, tree.Len())
	tree.Ascend(func(t Task) bool {
		out = append(out, t)
		return true
	})
	return out
}

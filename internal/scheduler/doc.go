// Package scheduler holds named tasks ordered by a numeric priority.
//
// A Scheduler is an array-backed binary min-heap: the task with the smallest
// priority value is the most urgent and sits at index 0. Names are unique
// within a Scheduler and are tracked in an index so lookups by name do not
// scan the heap.
//
// # Ordering
//
//   - Insert appends at the end of storage and sifts up toward the root.
//   - Pop moves the last entry to the root and sifts down.
//   - UpdatePriority sifts up when the priority decreases and down when it
//     increases; an equal priority leaves storage untouched.
//   - When sifting down between two children of equal priority the left child
//     wins. Equal priorities otherwise have no guaranteed extraction order.
//
// # Storage order
//
// Tasks returns entries in heap array order, not sorted order. Persisted task
// files are written in this order, so a save/load cycle reproduces the same
// set of tasks but not necessarily the same sequence. Use Sorted for a view
// ordered by priority.
//
// # Capacity
//
// Storage grows by doubling (minimum 1) when an insert finds it full. Growth
// copies entries in place and never reorders them.
//
// A Scheduler is not safe for concurrent use.
package scheduler

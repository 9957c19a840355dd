// Package session binds a scheduler to its task file.
//
// A Session is the single owner of one scheduler. It is not safe for
// concurrent use; front ends drive it from one goroutine.
package session

import (
	"errors"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskheap/internal/logging"
	"github.com/nibzard/taskheap/internal/scheduler"
	"github.com/nibzard/taskheap/internal/taskfile"
)

// Session wraps a scheduler and the task file it is persisted to.
type Session struct {
	sched    *scheduler.Scheduler
	capacity int
	path     string
	opts     taskfile.Options
	logger   *log.Logger
	dirty    bool
}

// New creates a session over sched. A nil sched is replaced by an empty
// scheduler with the default capacity.
func New(sched *scheduler.Scheduler, path string, opts taskfile.Options, logger *log.Logger) *Session {
	if sched == nil {
		sched = scheduler.New(scheduler.DefaultCapacity)
	}
	if logger == nil {
		logger = logging.NewDiscard()
	}
	return &Session{
		sched:    sched,
		capacity: sched.Cap(),
		path:     path,
		opts:     opts,
		logger:   logger,
	}
}

// Path returns the task file path.
func (s *Session) Path() string {
	return s.path
}

// Dirty reports whether tasks changed since the last load or save.
func (s *Session) Dirty() bool {
	return s.dirty
}

// Load merges the task file into the scheduler. A file that exists but
// cannot be read is treated like a missing one; a corrupt file is an error.
func (s *Session) Load() (*taskfile.LoadResult, error) {
	res, err := taskfile.Load(s.sched, s.path, s.opts)
	if errors.Is(err, taskfile.ErrUnreadable) {
		s.logger.Warn("Task file unavailable", "file", s.path, "error", err)
		res, err = &taskfile.LoadResult{Path: s.path, Fresh: true}, nil
	}
	if err != nil {
		s.logger.Error("Failed to load tasks", "file", s.path, "error", err)
		return nil, err
	}
	s.report(res)
	return res, nil
}

// Reload replaces the scheduler contents with the task file. On error the
// current tasks are kept.
func (s *Session) Reload() (*taskfile.LoadResult, error) {
	fresh := scheduler.New(s.capacity)
	res, err := taskfile.Load(fresh, s.path, s.opts)
	if err != nil {
		s.logger.Error("Failed to reload tasks", "file", s.path, "error", err)
		return nil, err
	}
	s.sched = fresh
	s.dirty = false
	s.report(res)
	return res, nil
}

func (s *Session) report(res *taskfile.LoadResult) {
	if res.Fresh {
		s.logger.Warn("No previous task file found. Starting fresh.", "file", res.Path)
		return
	}
	for _, sk := range res.Skipped {
		s.logger.Warn("Skipped task line", "file", res.Path, "line", sk.Line, "reason", sk.Reason)
	}
	for _, rj := range res.Rejected {
		s.logger.Warn("Rejected task", "file", res.Path, "record", rj.Record, "task", rj.Name, "error", rj.Err)
	}
	s.logger.Info("Tasks successfully loaded", "file", res.Path, "format", res.Format, "count", res.Loaded)
}

// Save writes all tasks to the task file in storage order.
func (s *Session) Save() error {
	if err := taskfile.Save(s.sched, s.path, s.opts); err != nil {
		s.logger.Error("Failed to save tasks", "file", s.path, "error", err)
		return err
	}
	s.dirty = false
	s.logger.Info("Tasks successfully saved", "file", s.path, "count", s.sched.Len())
	return nil
}

// Add inserts a task. The name must survive a round trip through the task
// file.
func (s *Session) Add(name string, priority float64) error {
	if err := taskfile.ValidateName(name); err != nil {
		s.logger.Debug("Rejected task name", "task", name, "error", err)
		return &scheduler.TaskError{Op: "add", Name: name, Err: err}
	}
	if err := s.sched.Insert(name, priority); err != nil {
		s.logger.Debug("Task not added", "task", name, "error", err)
		return err
	}
	s.dirty = true
	s.logger.Debug("Task added", "task", name, "priority", priority)
	return nil
}

// RemoveMostUrgent removes and returns the most urgent task.
func (s *Session) RemoveMostUrgent() (scheduler.Task, bool) {
	t, ok := s.sched.Pop()
	if !ok {
		s.logger.Debug("Scheduler is empty")
		return t, false
	}
	s.dirty = true
	s.logger.Debug("Removed most urgent task", "task", t.Name, "priority", t.Priority)
	return t, true
}

// MostUrgent returns the most urgent task without removing it.
func (s *Session) MostUrgent() (scheduler.Task, bool) {
	return s.sched.Peek()
}

// UpdatePriority changes the priority of the named task and returns the
// previous value.
func (s *Session) UpdatePriority(name string, priority float64) (float64, error) {
	old, err := s.sched.UpdatePriority(name, priority)
	if err != nil {
		s.logger.Debug("Priority not changed", "task", name, "error", err)
		return 0, err
	}
	s.dirty = true
	s.logger.Debug("Priority updated", "task", name, "from", old, "to", priority)
	return old, nil
}

// Exists reports whether the named task is scheduled.
func (s *Session) Exists(name string) bool {
	return s.sched.Contains(name)
}

// Count returns the number of scheduled tasks.
func (s *Session) Count() int {
	return s.sched.Len()
}

// Tasks returns the tasks in storage order.
func (s *Session) Tasks() []scheduler.Task {
	return s.sched.Tasks()
}

// Sorted returns the tasks from most to least urgent.
func (s *Session) Sorted() []scheduler.Task {
	return s.sched.Sorted()
}

package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nibzard/taskheap/internal/scheduler"
	"github.com/nibzard/taskheap/internal/session"
)

// Option configures the interactive front ends.
type Option func(*options)

type options struct {
	autosave bool
}

// WithAutosave controls whether leaving the menu without an explicit save
// (end of input, q in the TUI) writes the task file.
func WithAutosave(enabled bool) Option {
	return func(o *options) {
		o.autosave = enabled
	}
}

func buildOptions(opts []Option) *options {
	o := &options{autosave: true}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

const menuTitle = "--- Interactive Priority-Based Task Scheduler ---"

// RunMenu runs the line-oriented menu, reading choices from in and writing
// prompts and results to out. It returns when the user saves and quits, when
// in is exhausted, or when ctx is cancelled.
func RunMenu(ctx context.Context, sess *session.Session, in io.Reader, out io.Writer, opts ...Option) error {
	o := buildOptions(opts)
	m := &lineMenu{sess: sess, in: bufio.NewReader(in), out: out}

	fmt.Fprintln(out, menuTitle)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.printMenu()
		line, ok := m.readLine()
		if !ok {
			if !o.autosave {
				fmt.Fprintln(out, "\nExiting without saving.")
				return nil
			}
			return m.saveAndQuit()
		}

		choice, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			choice = 0
		}

		switch choice {
		case 1:
			m.add()
		case 2:
			m.removeMostUrgent()
		case 3:
			m.peek()
		case 4:
			m.updatePriority()
		case 5:
			m.exists()
		case 6:
			fmt.Fprintf(out, "Total number of pending tasks: %d\n", sess.Count())
		case 7:
			return m.saveAndQuit()
		case 8:
			_ = m.save()
		case 9:
			m.reload()
		default:
			fmt.Fprintln(out, "Invalid choice. Please enter a number between 1 and 9.")
		}
	}
}

type lineMenu struct {
	sess *session.Session
	in   *bufio.Reader
	out  io.Writer
}

func (m *lineMenu) printMenu() {
	fmt.Fprintf(m.out, "\nScheduler Menu (Tasks: %d):\n", m.sess.Count())
	fmt.Fprintln(m.out, "1. Add Task")
	fmt.Fprintln(m.out, "2. Remove Most Urgent Task")
	fmt.Fprintln(m.out, "3. Get Most Urgent Task (Peek)")
	fmt.Fprintln(m.out, "4. Change Task Priority")
	fmt.Fprintln(m.out, "5. Check if Task Exists")
	fmt.Fprintln(m.out, "6. Get Total Task Count")
	fmt.Fprintln(m.out, "7. Exit (Save & Quit)")
	fmt.Fprintln(m.out, "8. Save Now")
	fmt.Fprintln(m.out, "9. Reload From File")
	fmt.Fprint(m.out, "Enter your choice: ")
}

// readLine returns the next input line without its line ending. ok is false
// once input is exhausted.
func (m *lineMenu) readLine() (string, bool) {
	line, err := m.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}

func (m *lineMenu) prompt(text string) (string, bool) {
	fmt.Fprint(m.out, text)
	return m.readLine()
}

func (m *lineMenu) promptPriority(text string) (float64, bool) {
	raw, ok := m.prompt(text)
	if !ok {
		return 0, false
	}
	p, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		fmt.Fprintln(m.out, "Invalid priority input.")
		return 0, false
	}
	return p, true
}

func (m *lineMenu) add() {
	name, ok := m.prompt("Enter task name (max 49 chars): ")
	if !ok {
		return
	}
	priority, ok := m.promptPriority("Enter priority (smaller is more urgent, e.g., 1.0): ")
	if !ok {
		return
	}
	if err := m.sess.Add(name, priority); err != nil {
		m.printError(name, err)
		return
	}
	fmt.Fprintf(m.out, "Task '%s' added with priority %.2f.\n", name, priority)
}

func (m *lineMenu) removeMostUrgent() {
	t, ok := m.sess.RemoveMostUrgent()
	if !ok {
		fmt.Fprintln(m.out, "The scheduler is currently empty.")
		return
	}
	fmt.Fprintf(m.out, "SUCCESS: Removed most urgent task: '%s'\n", t.Name)
}

func (m *lineMenu) peek() {
	t, ok := m.sess.MostUrgent()
	if !ok {
		fmt.Fprintln(m.out, "The scheduler is currently empty.")
		return
	}
	fmt.Fprintf(m.out, "The most urgent task is: '%s'\n", t.Name)
}

func (m *lineMenu) updatePriority() {
	name, ok := m.prompt("Enter task name to update: ")
	if !ok {
		return
	}
	priority, ok := m.promptPriority("Enter NEW priority (smaller is more urgent): ")
	if !ok {
		return
	}
	old, err := m.sess.UpdatePriority(name, priority)
	if err != nil {
		m.printError(name, err)
		return
	}
	fmt.Fprintf(m.out, "Priority of task '%s' updated from %.2f to %.2f.\n", name, old, priority)
}

func (m *lineMenu) exists() {
	name, ok := m.prompt("Enter task name to check: ")
	if !ok {
		return
	}
	if m.sess.Exists(name) {
		fmt.Fprintf(m.out, "Task '%s' EXISTS in the scheduler.\n", name)
		return
	}
	fmt.Fprintf(m.out, "Task '%s' DOES NOT exist in the scheduler.\n", name)
}

func (m *lineMenu) save() error {
	if err := m.sess.Save(); err != nil {
		fmt.Fprintf(m.out, "Error: could not save tasks: %v\n", err)
		return err
	}
	fmt.Fprintf(m.out, "Tasks successfully saved to '%s'.\n", m.sess.Path())
	return nil
}

func (m *lineMenu) reload() {
	res, err := m.sess.Reload()
	if err != nil {
		fmt.Fprintf(m.out, "Error: could not reload tasks: %v\n", err)
		return
	}
	fmt.Fprintln(m.out, describeLoad(res.Fresh, res.Path, res.Loaded, len(res.Skipped)+len(res.Rejected)))
}

func (m *lineMenu) saveAndQuit() error {
	fmt.Fprintln(m.out, "\nSaving tasks before exit...")
	if err := m.save(); err != nil {
		return fmt.Errorf("save tasks on exit: %w", err)
	}
	fmt.Fprintln(m.out, "Exiting scheduler. Goodbye!")
	return nil
}

func (m *lineMenu) printError(name string, err error) {
	fmt.Fprintf(m.out, "Error: %s\n", describeError(name, err))
}

// describeError turns a session error into the message shown to the user.
func describeError(name string, err error) string {
	switch {
	case errors.Is(err, scheduler.ErrDuplicateName):
		return fmt.Sprintf("Task '%s' already exists. Use option 4 to change its priority.", name)
	case errors.Is(err, scheduler.ErrNotFound):
		return fmt.Sprintf("Task '%s' not found. Cannot change priority.", name)
	default:
		return err.Error()
	}
}

func describeLoad(fresh bool, path string, loaded, dropped int) string {
	if fresh {
		return "No previous task file found. Starting fresh."
	}
	msg := fmt.Sprintf("Tasks successfully loaded from '%s' (%d loaded", path, loaded)
	if dropped > 0 {
		msg += fmt.Sprintf(", %d skipped", dropped)
	}
	return msg + ")."
}

// Package ui provides the interactive front ends for a task session.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/taskheap/internal/session"
	"github.com/nibzard/taskheap/internal/taskfile"
)

const (
	maxPriorityInput = 32
	visibleTasks     = 10
)

// RunTUI starts the full-screen menu for sess.
func RunTUI(ctx context.Context, sess *session.Session, opts ...Option) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	return runProgram(ctx, newTUIModel(sess, buildOptions(opts)))
}

func runProgram(ctx context.Context, model *tuiModel) error {
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(*tuiModel); ok && m.saveErr != nil {
		return m.saveErr
	}
	return nil
}

// inputMode is what the text field is currently collecting.
type inputMode int

const (
	modeMenu inputMode = iota
	modeName
	modePriority
)

// action is the menu entry waiting for input.
type action int

const (
	actionNone action = iota
	actionAdd
	actionUpdate
	actionCheck
)

type tuiModel struct {
	sess     *session.Session
	opts     *options
	mode     inputMode
	pending  action
	input    string
	name     string // name collected before asking for a priority
	status   string
	isError  bool
	showHelp bool
	saveErr  error
	quitting bool
}

func newTUIModel(sess *session.Session, opts *options) *tuiModel {
	return &tuiModel{
		sess: sess,
		opts: opts,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if key.Type == tea.KeyCtrlC {
		return m.quit(m.opts.autosave)
	}
	if m.mode != modeMenu {
		return m.updateInput(key)
	}

	switch key.String() {
	case "q", "esc":
		return m.quit(m.opts.autosave)
	case "h", "?":
		m.showHelp = !m.showHelp
	case "1":
		m.startInput(actionAdd, modeName)
	case "2":
		if t, ok := m.sess.RemoveMostUrgent(); ok {
			m.setStatus(fmt.Sprintf("Removed most urgent task: '%s'", t.Name), false)
		} else {
			m.setStatus("The scheduler is currently empty.", false)
		}
	case "3":
		if t, ok := m.sess.MostUrgent(); ok {
			m.setStatus(fmt.Sprintf("The most urgent task is: '%s' (%.2f)", t.Name, t.Priority), false)
		} else {
			m.setStatus("The scheduler is currently empty.", false)
		}
	case "4":
		m.startInput(actionUpdate, modeName)
	case "5":
		m.startInput(actionCheck, modeName)
	case "6":
		m.setStatus(fmt.Sprintf("Total number of pending tasks: %d", m.sess.Count()), false)
	case "7":
		return m.quit(true)
	case "8":
		m.save()
	case "9":
		m.reload()
	}
	return m, nil
}

func (m *tuiModel) updateInput(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.resetInput()
		m.setStatus("Cancelled.", false)
	case tea.KeyEnter:
		m.submit()
	case tea.KeyBackspace:
		if m.input != "" {
			_, size := utf8.DecodeLastRuneInString(m.input)
			m.input = m.input[:len(m.input)-size]
		}
	case tea.KeySpace:
		m.appendInput(" ")
	case tea.KeyRunes:
		m.appendInput(string(key.Runes))
	}
	return m, nil
}

func (m *tuiModel) appendInput(s string) {
	limit := taskfile.MaxNameLength
	if m.mode == modePriority {
		limit = maxPriorityInput
	}
	for _, r := range s {
		if utf8.RuneCountInString(m.input) >= limit {
			return
		}
		m.input += string(r)
	}
}

func (m *tuiModel) startInput(a action, mode inputMode) {
	m.pending = a
	m.mode = mode
	m.input = ""
	m.name = ""
	m.status = ""
	m.isError = false
}

func (m *tuiModel) resetInput() {
	m.pending = actionNone
	m.mode = modeMenu
	m.input = ""
	m.name = ""
}

func (m *tuiModel) submit() {
	if m.mode == modeName {
		name := m.input
		if m.pending == actionCheck {
			m.resetInput()
			if m.sess.Exists(name) {
				m.setStatus(fmt.Sprintf("Task '%s' EXISTS in the scheduler.", name), false)
			} else {
				m.setStatus(fmt.Sprintf("Task '%s' DOES NOT exist in the scheduler.", name), false)
			}
			return
		}
		m.name = name
		m.input = ""
		m.mode = modePriority
		return
	}

	name, pending := m.name, m.pending
	priority, err := strconv.ParseFloat(strings.TrimSpace(m.input), 64)
	m.resetInput()
	if err != nil {
		m.setStatus("Invalid priority input.", true)
		return
	}

	switch pending {
	case actionAdd:
		if err := m.sess.Add(name, priority); err != nil {
			m.setStatus(describeError(name, err), true)
			return
		}
		m.setStatus(fmt.Sprintf("Task '%s' added with priority %.2f.", name, priority), false)
	case actionUpdate:
		old, err := m.sess.UpdatePriority(name, priority)
		if err != nil {
			m.setStatus(describeError(name, err), true)
			return
		}
		m.setStatus(fmt.Sprintf("Priority of task '%s' updated from %.2f to %.2f.", name, old, priority), false)
	}
}

func (m *tuiModel) save() {
	if err := m.sess.Save(); err != nil {
		m.setStatus(fmt.Sprintf("Could not save tasks: %v", err), true)
		return
	}
	m.setStatus(fmt.Sprintf("Tasks successfully saved to '%s'.", m.sess.Path()), false)
}

func (m *tuiModel) reload() {
	res, err := m.sess.Reload()
	if err != nil {
		m.setStatus(fmt.Sprintf("Could not reload tasks: %v", err), true)
		return
	}
	m.setStatus(describeLoad(res.Fresh, res.Path, res.Loaded, len(res.Skipped)+len(res.Rejected)), false)
}

func (m *tuiModel) quit(save bool) (tea.Model, tea.Cmd) {
	if save {
		if err := m.sess.Save(); err != nil {
			m.saveErr = fmt.Errorf("save tasks on exit: %w", err)
		}
	}
	m.quitting = true
	return m, tea.Quit
}

func (m *tuiModel) setStatus(msg string, isError bool) {
	m.status = msg
	m.isError = isError
}

func (m *tuiModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.mode)
		return b.String()
	}

	writeTasks(&b, m.sess)
	writeMenu(&b, m.sess.Count())
	m.writePrompt(&b)
	if m.status != "" {
		if m.isError {
			b.WriteString("Error: ")
		}
		b.WriteString(m.status + "\n\n")
	}
	writeFooter(&b, m.mode)
	return b.String()
}

func (m *tuiModel) writePrompt(b *strings.Builder) {
	switch m.mode {
	case modeName:
		label := "Task name"
		switch m.pending {
		case actionUpdate:
			label = "Task name to update"
		case actionCheck:
			label = "Task name to check"
		}
		fmt.Fprintf(b, "%s (max %d chars): %s_\n\n", label, taskfile.MaxNameLength, m.input)
	case modePriority:
		label := "Priority (smaller is more urgent)"
		if m.pending == actionUpdate {
			label = "NEW priority for '" + m.name + "'"
		}
		fmt.Fprintf(b, "%s: %s_\n\n", label, m.input)
	}
}

func writeTitle(b *strings.Builder) {
	title := "taskheap"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeTasks(b *strings.Builder, sess *session.Session) {
	tasks := sess.Sorted()
	dirty := ""
	if sess.Dirty() {
		dirty = " (unsaved changes)"
	}
	fmt.Fprintf(b, "Tasks: %d%s\n\n", len(tasks), dirty)
	if len(tasks) == 0 {
		b.WriteString("  No pending tasks.\n\n")
		return
	}
	for i, t := range tasks {
		if i == visibleTasks {
			fmt.Fprintf(b, "  ... and %d more\n", len(tasks)-visibleTasks)
			break
		}
		marker := " "
		if i == 0 {
			marker = ">"
		}
		fmt.Fprintf(b, "  %s %8.2f  %s\n", marker, t.Priority, t.Name)
	}
	b.WriteString("\n")
}

func writeMenu(b *strings.Builder, count int) {
	fmt.Fprintf(b, "Scheduler Menu (Tasks: %d)\n\n", count)
	b.WriteString("  1 Add task             4 Change priority    7 Save & quit\n")
	b.WriteString("  2 Remove most urgent   5 Check if exists    8 Save now\n")
	b.WriteString("  3 Peek most urgent     6 Count tasks        9 Reload from file\n\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  1-9          Menu choices\n")
	b.WriteString("  q, esc       Quit (saves when autosave is on)\n")
	b.WriteString("  ctrl+c       Quit (saves when autosave is on)\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  enter        Confirm input\n")
	b.WriteString("  esc          Cancel input\n\n")
}

func writeFooter(b *strings.Builder, mode inputMode) {
	if mode != modeMenu {
		b.WriteString("enter to confirm | esc to cancel\n")
		return
	}
	b.WriteString("Press h for help | q to quit\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

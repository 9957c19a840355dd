package ui

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/taskheap/internal/scheduler"
	"github.com/nibzard/taskheap/internal/session"
	"github.com/nibzard/taskheap/internal/taskfile"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, opts ...Option) *tuiModel {
	t.Helper()
	return newTUIModel(newTestSession(t), buildOptions(opts))
}

// send feeds messages to the model and returns the last command.
func send(m *tuiModel, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

// typeText feeds one key per rune, using KeySpace for spaces.
func typeText(m *tuiModel, s string) {
	for _, r := range s {
		if r == ' ' {
			send(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			continue
		}
		send(m, keyRunes(string(r)))
	}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestTUIAddTask(t *testing.T) {
	m := newTestModel(t)

	send(m, keyRunes("1"))
	if m.mode != modeName {
		t.Fatalf("mode = %v, want name input", m.mode)
	}
	typeText(m, "Fix bug")
	send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modePriority || m.name != "Fix bug" {
		t.Fatalf("mode = %v name = %q, want priority input for Fix bug", m.mode, m.name)
	}
	typeText(m, "1.5")
	send(m, tea.KeyMsg{Type: tea.KeyEnter})

	if !m.sess.Exists("Fix bug") {
		t.Fatal("task was not added")
	}
	if m.mode != modeMenu {
		t.Errorf("mode = %v, want menu", m.mode)
	}
	if m.status != "Task 'Fix bug' added with priority 1.50." || m.isError {
		t.Errorf("status = %q (error %v)", m.status, m.isError)
	}

	view := m.View()
	for _, want := range []string{"Tasks: 1 (unsaved changes)", "1.50  Fix bug", "Scheduler Menu (Tasks: 1)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestTUIInputEditing(t *testing.T) {
	m := newTestModel(t)

	send(m, keyRunes("1"))
	typeText(m, "abc")
	send(m, tea.KeyMsg{Type: tea.KeyBackspace})
	if m.input != "ab" {
		t.Errorf("input after backspace = %q, want ab", m.input)
	}
	if !strings.Contains(m.View(), "Task name (max 49 chars): ab_") {
		t.Errorf("view should show the input field:\n%s", m.View())
	}

	send(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeMenu || m.input != "" {
		t.Errorf("esc should cancel input, mode = %v input = %q", m.mode, m.input)
	}
	if m.sess.Count() != 0 {
		t.Error("cancelled input must not add a task")
	}
}

func TestTUINameLimit(t *testing.T) {
	m := newTestModel(t)

	send(m, keyRunes("1"))
	send(m, keyRunes(strings.Repeat("é", taskfile.MaxNameLength+10)))
	if n := len([]rune(m.input)); n != taskfile.MaxNameLength {
		t.Errorf("input length = %d, want %d", n, taskfile.MaxNameLength)
	}
}

func TestTUIErrors(t *testing.T) {
	m := newTestModel(t)

	send(m, keyRunes("1"))
	typeText(m, "A")
	send(m, tea.KeyMsg{Type: tea.KeyEnter})
	typeText(m, "soon")
	send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.isError || m.status != "Invalid priority input." {
		t.Errorf("status = %q (error %v), want invalid priority", m.status, m.isError)
	}

	send(m, keyRunes("4"))
	typeText(m, "missing")
	send(m, tea.KeyMsg{Type: tea.KeyEnter})
	typeText(m, "1")
	send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.isError || !strings.Contains(m.status, "not found") {
		t.Errorf("status = %q (error %v), want not found", m.status, m.isError)
	}
	if !strings.Contains(m.View(), "Error: Task 'missing' not found.") {
		t.Errorf("view should show the error:\n%s", m.View())
	}

	send(m, keyRunes("2"))
	if m.status != "The scheduler is currently empty." {
		t.Errorf("status = %q", m.status)
	}
}

func TestTUIMenuActions(t *testing.T) {
	m := newTestModel(t)
	for _, task := range []scheduler.Task{{Name: "A", Priority: 3}, {Name: "B", Priority: 1}} {
		if err := m.sess.Add(task.Name, task.Priority); err != nil {
			t.Fatal(err)
		}
	}

	send(m, keyRunes("3"))
	if m.status != "The most urgent task is: 'B' (1.00)" {
		t.Errorf("peek status = %q", m.status)
	}

	send(m, keyRunes("4"))
	typeText(m, "A")
	send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.View(), "NEW priority for 'A'") {
		t.Errorf("expected update prompt:\n%s", m.View())
	}
	typeText(m, "0.5")
	send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.status != "Priority of task 'A' updated from 3.00 to 0.50." {
		t.Errorf("update status = %q", m.status)
	}

	send(m, keyRunes("5"))
	typeText(m, "B")
	send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.status != "Task 'B' EXISTS in the scheduler." {
		t.Errorf("check status = %q", m.status)
	}

	send(m, keyRunes("6"))
	if m.status != "Total number of pending tasks: 2" {
		t.Errorf("count status = %q", m.status)
	}

	send(m, keyRunes("2"))
	if m.status != "Removed most urgent task: 'A'" {
		t.Errorf("remove status = %q", m.status)
	}

	send(m, keyRunes("8"))
	if m.sess.Dirty() {
		t.Error("save should clear unsaved changes")
	}
	if got := readFile(t, m.sess.Path()); got != "Task,Priority\nB,1.00\n" {
		t.Errorf("saved file = %q", got)
	}

	if err := m.sess.Add("C", 9); err != nil {
		t.Fatal(err)
	}
	send(m, keyRunes("9"))
	if m.sess.Exists("C") {
		t.Error("reload should discard unsaved task")
	}
	if !strings.Contains(m.status, "(1 loaded)") {
		t.Errorf("reload status = %q", m.status)
	}

	send(m, keyRunes("h"))
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("h should show help")
	}
}

func TestTUIQuit(t *testing.T) {
	t.Run("q saves with autosave", func(t *testing.T) {
		m := newTestModel(t)
		if err := m.sess.Add("A", 1); err != nil {
			t.Fatal(err)
		}
		if cmd := send(m, keyRunes("q")); !isQuit(cmd) {
			t.Fatal("q should quit")
		}
		if got := readFile(t, m.sess.Path()); got != "Task,Priority\nA,1.00\n" {
			t.Errorf("saved file = %q", got)
		}
		if m.View() != "" {
			t.Error("view should be empty after quitting")
		}
	})

	t.Run("q without autosave", func(t *testing.T) {
		m := newTestModel(t, WithAutosave(false))
		if err := m.sess.Add("A", 1); err != nil {
			t.Fatal(err)
		}
		if cmd := send(m, tea.KeyMsg{Type: tea.KeyCtrlC}); !isQuit(cmd) {
			t.Fatal("ctrl+c should quit")
		}
		if _, err := os.Stat(m.sess.Path()); !os.IsNotExist(err) {
			t.Errorf("task file should not exist, stat err = %v", err)
		}
	})

	t.Run("7 always saves", func(t *testing.T) {
		m := newTestModel(t, WithAutosave(false))
		if cmd := send(m, keyRunes("7")); !isQuit(cmd) {
			t.Fatal("7 should quit")
		}
		if got := readFile(t, m.sess.Path()); got != "Task,Priority\n" {
			t.Errorf("saved file = %q", got)
		}
	})

	t.Run("save failure is reported", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "tasks.csv")
		sess := session.New(scheduler.New(4), path, taskfile.Options{}, nil)
		m := newTUIModel(sess, buildOptions(nil))
		send(m, keyRunes("7"))
		if m.saveErr == nil {
			t.Fatal("expected save error")
		}
	})

	t.Run("q while typing is text", func(t *testing.T) {
		m := newTestModel(t)
		send(m, keyRunes("1"), keyRunes("q"))
		if m.input != "q" || m.quitting {
			t.Errorf("input = %q quitting = %v", m.input, m.quitting)
		}
	})
}

func TestIsTTY(t *testing.T) {
	if IsTTY(&bytes.Buffer{}) {
		t.Error("buffer is not a TTY")
	}
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if IsTTY(f) {
		t.Error("regular file is not a TTY")
	}
}

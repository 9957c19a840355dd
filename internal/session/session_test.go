package session

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nibzard/taskheap/internal/logging"
	"github.com/nibzard/taskheap/internal/scheduler"
	"github.com/nibzard/taskheap/internal/taskfile"
)

func newSession(t *testing.T, name string) (*Session, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := logging.NewFromConfig(&buf, "debug", "logfmt", false, false)
	path := filepath.Join(t.TempDir(), name)
	return New(scheduler.New(4), path, taskfile.Options{}, logger), &buf
}

func TestLoadMissingFileStartsFresh(t *testing.T) {
	s, logs := newSession(t, "tasks.csv")

	res, err := s.Load()
	require.NoError(t, err)
	assert.True(t, res.Fresh)
	assert.Equal(t, 0, s.Count())
	assert.Contains(t, logs.String(), "No previous task file found. Starting fresh.")
	assert.Contains(t, logs.String(), "level=warn")
}

func TestLoadReportsSkippedLines(t *testing.T) {
	s, logs := newSession(t, "tasks.csv")
	require.NoError(t, os.WriteFile(s.Path(), []byte("Task,Priority\nA,1.00\nbroken\nA,2.00\n"), 0644))

	res, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, res.Loaded)
	assert.Len(t, res.Skipped, 1)
	assert.Len(t, res.Rejected, 1)
	assert.False(t, s.Dirty())

	out := logs.String()
	assert.Contains(t, out, "Skipped task line")
	assert.Contains(t, out, "line=3")
	assert.Contains(t, out, "Rejected task")
	assert.Contains(t, out, "count=1")
}

func TestSessionOperations(t *testing.T) {
	s, _ := newSession(t, "tasks.csv")

	require.NoError(t, s.Add("Write report", 3))
	require.NoError(t, s.Add("Fix bug", 1))
	require.NoError(t, s.Add("Email", 2))
	assert.True(t, s.Dirty())
	assert.Equal(t, 3, s.Count())
	assert.True(t, s.Exists("Email"))
	assert.False(t, s.Exists("email"))

	top, ok := s.MostUrgent()
	require.True(t, ok)
	assert.Equal(t, "Fix bug", top.Name)

	old, err := s.UpdatePriority("Write report", 0.5)
	require.NoError(t, err)
	assert.Equal(t, 3.0, old)

	got, ok := s.RemoveMostUrgent()
	require.True(t, ok)
	assert.Equal(t, scheduler.Task{Name: "Write report", Priority: 0.5}, got)

	assert.Equal(t, []scheduler.Task{
		{Name: "Fix bug", Priority: 1},
		{Name: "Email", Priority: 2},
	}, s.Sorted())
	assert.Len(t, s.Tasks(), 2)
}

func TestAddRejectsUnstorableNames(t *testing.T) {
	s, _ := newSession(t, "tasks.csv")

	tests := []struct {
		name string
		want error
	}{
		{"", scheduler.ErrEmptyName},
		{"a,b", taskfile.ErrNameCharacters},
		{"line\nbreak", taskfile.ErrNameCharacters},
		{string(bytes.Repeat([]byte("x"), taskfile.MaxNameLength+1)), taskfile.ErrNameTooLong},
	}
	for _, tt := range tests {
		err := s.Add(tt.name, 1)
		require.Error(t, err)
		assert.ErrorIs(t, err, tt.want)
		var te *scheduler.TaskError
		assert.True(t, errors.As(err, &te))
	}
	assert.Equal(t, 0, s.Count())
	assert.False(t, s.Dirty())

	require.NoError(t, s.Add(string(bytes.Repeat([]byte("x"), taskfile.MaxNameLength)), 1))
}

func TestFailedMutationsLeaveSessionClean(t *testing.T) {
	s, _ := newSession(t, "tasks.csv")
	require.NoError(t, s.Add("A", 1))
	require.NoError(t, s.Save())
	require.False(t, s.Dirty())

	assert.ErrorIs(t, s.Add("A", 2), scheduler.ErrDuplicateName)
	_, err := s.UpdatePriority("missing", 2)
	assert.ErrorIs(t, err, scheduler.ErrNotFound)
	assert.False(t, s.Dirty())

	_, ok := s.RemoveMostUrgent()
	require.True(t, ok)
	_, ok = s.RemoveMostUrgent()
	assert.False(t, ok)
	_, ok = s.MostUrgent()
	assert.False(t, ok)
}

func TestSaveAndReload(t *testing.T) {
	s, logs := newSession(t, "tasks.csv")
	require.NoError(t, s.Add("A", 3))
	require.NoError(t, s.Add("B", 1))
	require.NoError(t, s.Save())
	assert.Contains(t, logs.String(), "Tasks successfully saved")

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "Task,Priority\nB,1.00\nA,3.00\n", string(data))

	require.NoError(t, s.Add("C", 0))
	res, err := s.Reload()
	require.NoError(t, err)
	assert.Equal(t, 2, res.Loaded)
	assert.False(t, s.Exists("C"))
	assert.False(t, s.Dirty())
	assert.Equal(t, []scheduler.Task{{Name: "B", Priority: 1}, {Name: "A", Priority: 3}}, s.Tasks())
}

func TestReloadKeepsTasksOnError(t *testing.T) {
	s, logs := newSession(t, "tasks.json")
	require.NoError(t, s.Add("A", 1))
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0644))

	_, err := s.Reload()
	var corrupt *taskfile.CorruptError
	require.ErrorAs(t, err, &corrupt)
	assert.True(t, s.Exists("A"))
	assert.True(t, s.Dirty())
	assert.Contains(t, logs.String(), "Failed to reload tasks")
}

func TestSaveError(t *testing.T) {
	s, logs := newSession(t, "tasks.csv")
	s.path = filepath.Join(s.path, "missing-dir", "tasks.csv")
	require.NoError(t, s.Add("A", 1))

	require.Error(t, s.Save())
	assert.True(t, s.Dirty())
	assert.Equal(t, 1, s.Count())
	assert.Contains(t, logs.String(), "Failed to save tasks")
}

func TestNewDefaults(t *testing.T) {
	s := New(nil, "tasks.csv", taskfile.Options{}, nil)
	require.NoError(t, s.Add("A", 1))
	assert.Equal(t, 1, s.Count())
}

func TestLoadUnreadableFileStartsFresh(t *testing.T) {
	dir := t.TempDir()
	s := New(scheduler.New(4), dir, taskfile.Options{}, nil)

	res, err := s.Load()
	require.NoError(t, err)
	assert.True(t, res.Fresh)
	assert.Equal(t, 0, s.Count())

	// Reload keeps the current tasks instead.
	require.NoError(t, s.Add("A", 1))
	_, err = s.Reload()
	require.ErrorIs(t, err, taskfile.ErrUnreadable)
	assert.True(t, s.Exists("A"))
}

func TestLoadCorruptFileIsAnError(t *testing.T) {
	s, _ := newSession(t, "tasks.json")
	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"schema_version":2,"tasks":[]}`), 0644))

	_, err := s.Load()
	var corrupt *taskfile.CorruptError
	require.ErrorAs(t, err, &corrupt)
}

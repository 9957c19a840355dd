package taskfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/nibzard/taskheap/internal/scheduler"
)

// MaxNameLength is the longest task name, in runes, that the CSV format
// accepts on load.
const MaxNameLength = 49

// Format identifies a task file encoding.
type Format string

const (
	FormatAuto Format = ""
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

var (
	// ErrNameTooLong is returned for names longer than MaxNameLength runes.
	ErrNameTooLong = fmt.Errorf("task name longer than %d characters", MaxNameLength)
	// ErrNameCharacters is returned for names containing a separator or line break.
	ErrNameCharacters = errors.New("task name must not contain commas or line breaks")
	// ErrUnreadable wraps failures to read an existing task file.
	ErrUnreadable = errors.New("task file unreadable")
)

// ParseFormat parses a configured format name. An empty string or "auto"
// selects detection by file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown task file format %q (expected csv|json)", s)
	}
}

// DetectFormat picks a format from the file extension: .json selects JSON,
// anything else CSV.
func DetectFormat(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatCSV
}

// Options controls how task files are read and written.
type Options struct {
	// Format overrides extension-based detection when set.
	Format Format
	// SchemaPath is an optional JSON Schema file used instead of the
	// embedded schema when loading JSON files.
	SchemaPath string
}

func (o Options) formatFor(path string) Format {
	if o.Format != FormatAuto {
		return o.Format
	}
	return DetectFormat(path)
}

// SkippedLine describes a CSV line that could not be parsed.
type SkippedLine struct {
	Line   int    // 1-based line number
	Text   string // raw line content
	Reason string
}

// Rejection describes a parsed task the scheduler refused, such as a
// duplicate name.
type Rejection struct {
	Record int // 1-based CSV line or JSON task position
	Name   string
	Err    error
}

// LoadResult summarizes a load.
type LoadResult struct {
	Path     string
	Format   Format
	Fresh    bool // file did not exist; nothing was loaded
	Loaded   int
	Skipped  []SkippedLine
	Rejected []Rejection
}

type record struct {
	pos  int
	task scheduler.Task
}

// Load reads the task file at path and inserts its tasks into s.
//
// A missing file yields a result with Fresh set and a nil error. Other read
// failures wrap ErrUnreadable. Malformed
// CSV lines and rejected inserts are reported in the result, not as errors.
// A JSON file that cannot be parsed or validated returns a *CorruptError and
// leaves s unchanged.
func Load(s *scheduler.Scheduler, path string, opts Options) (*LoadResult, error) {
	result := &LoadResult{
		Path:   path,
		Format: opts.formatFor(path),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			result.Fresh = true
			return result, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	var records []record
	switch result.Format {
	case FormatJSON:
		records, err = decodeJSON(path, data, opts.SchemaPath)
		if err != nil {
			return nil, err
		}
	default:
		records, result.Skipped = decodeCSV(data)
	}

	for _, r := range records {
		if err := s.Insert(r.task.Name, r.task.Priority); err != nil {
			result.Rejected = append(result.Rejected, Rejection{
				Record: r.pos,
				Name:   r.task.Name,
				Err:    err,
			})
			continue
		}
		result.Loaded++
	}

	return result, nil
}

// Save writes every task in s to path in storage order. The scheduler is
// never modified, even when the write fails.
func Save(s *scheduler.Scheduler, path string, opts Options) error {
	tasks := s.Tasks()

	var data []byte
	switch opts.formatFor(path) {
	case FormatJSON:
		var err error
		data, err = encodeJSON(tasks)
		if err != nil {
			return fmt.Errorf("marshal task file: %w", err)
		}
	default:
		data = encodeCSV(tasks)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write task file: %w", err)
	}
	return nil
}

// ValidateName reports whether name can be stored in a task file and read
// back unchanged.
func ValidateName(name string) error {
	if name == "" {
		return scheduler.ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return ErrNameTooLong
	}
	if strings.ContainsAny(name, ",\r\n") {
		return ErrNameCharacters
	}
	return nil
}

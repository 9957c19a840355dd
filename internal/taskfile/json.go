package taskfile

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/taskheap/internal/scheduler"
)

// SchemaVersion is the version written to and required in JSON task files.
const SchemaVersion = 1

const schemaURL = "https://github.com/nibzard/taskheap/schema/tasks.json"

//go:embed schema.json
var schemaJSON string

// SchemaJSON returns the embedded JSON Schema for task files.
func SchemaJSON() string {
	return schemaJSON
}

type document struct {
	SchemaVersion int              `json:"schema_version"`
	Tasks         []scheduler.Task `json:"tasks"`
}

// ValidationError is a single schema violation inside a JSON task file.
type ValidationError struct {
	Path string // dotted path to the offending value
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// CorruptError reports a task file that could not be loaded at all.
type CorruptError struct {
	Path   string
	Errors []error
}

func (e *CorruptError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("task file %s is corrupt", e.Path)
	}
	msg := fmt.Sprintf("task file %s is corrupt: %v", e.Path, e.Errors[0])
	if n := len(e.Errors) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}
	return msg
}

// Unwrap returns the individual problems.
func (e *CorruptError) Unwrap() []error {
	return e.Errors
}

func encodeJSON(tasks []scheduler.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []scheduler.Task{}
	}
	data, err := json.MarshalIndent(document{SchemaVersion: SchemaVersion, Tasks: tasks}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func decodeJSON(path string, data []byte, schemaPath string) ([]record, error) {
	schema, err := compileSchema(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("compile task file schema: %w", err)
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &CorruptError{Path: path, Errors: []error{err}}
	}
	if err := schema.Validate(raw); err != nil {
		return nil, &CorruptError{Path: path, Errors: schemaErrors(err)}
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &CorruptError{Path: path, Errors: []error{err}}
	}

	records := make([]record, 0, len(doc.Tasks))
	for i, t := range doc.Tasks {
		records = append(records, record{pos: i + 1, task: t})
	}
	return records, nil
}

// compileSchema compiles the schema at schemaPath, or the embedded schema
// when schemaPath is empty.
func compileSchema(schemaPath string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	if schemaPath != "" {
		absPath, err := filepath.Abs(schemaPath)
		if err != nil {
			return nil, fmt.Errorf("invalid schema path: %w", err)
		}
		return compiler.Compile(absPath)
	}

	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaURL)
}

func schemaErrors(err error) []error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []error{err}
	}
	var errs []error
	collectSchemaErrors(&errs, ve)
	return errs
}

func collectSchemaErrors(errs *[]error, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		*errs = append(*errs, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(errs, cause)
	}
}

// jsonPointerToPath converts "/tasks/0/name" to "tasks[0].name".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

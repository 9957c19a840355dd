package taskfile

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nibzard/taskheap/internal/scheduler"
)

// Header is the first line of every CSV task file.
const Header = "Task,Priority"

func encodeCSV(tasks []scheduler.Task) []byte {
	var buf bytes.Buffer
	buf.WriteString(Header)
	buf.WriteByte('\n')
	for _, t := range tasks {
		fmt.Fprintf(&buf, "%s,%.2f\n", t.Name, t.Priority)
	}
	return buf.Bytes()
}

// decodeCSV parses every line after the header. Lines that fail to parse are
// returned as skipped; they never abort decoding.
func decodeCSV(data []byte) ([]record, []SkippedLine) {
	lines := strings.Split(string(data), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var records []record
	var skipped []SkippedLine
	for i, line := range lines {
		if i == 0 {
			continue
		}
		line = strings.TrimSuffix(line, "\r")
		task, reason := parseLine(line)
		if reason != "" {
			skipped = append(skipped, SkippedLine{Line: i + 1, Text: line, Reason: reason})
			continue
		}
		records = append(records, record{pos: i + 1, task: task})
	}
	return records, skipped
}

// parseLine parses "<name>,<priority>". A non-empty reason means the line
// is unusable.
func parseLine(line string) (scheduler.Task, string) {
	if strings.TrimSpace(line) == "" {
		return scheduler.Task{}, "blank line"
	}

	sep := strings.IndexByte(line, ',')
	if sep < 0 {
		return scheduler.Task{}, "missing separator"
	}
	name := line[:sep]
	if name == "" {
		return scheduler.Task{}, "empty name"
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return scheduler.Task{}, fmt.Sprintf("name longer than %d characters", MaxNameLength)
	}

	raw := strings.TrimSpace(line[sep+1:])
	priority, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(priority) {
		return scheduler.Task{}, fmt.Sprintf("invalid priority %q", raw)
	}

	return scheduler.Task{Name: name, Priority: priority}, ""
}

// Package taskfile reads and writes scheduler state.
//
// Two formats are supported, selected by file extension unless
// Options.Format says otherwise.
//
// # CSV (default)
//
//	Task,Priority
//	Write report,1.00
//	Review PR,2.50
//
// The first line is a header and is always skipped on load. Every other
// line is <name>,<priority> with the priority written to two decimal places.
// Names are at most MaxNameLength runes and end at the first comma. Lines
// that do not parse are skipped and reported in LoadResult.Skipped; loading
// continues with the next line.
//
// # JSON (.json)
//
//	{
//	  "schema_version": 1,
//	  "tasks": [
//	    {"name": "Write report", "priority": 1},
//	    {"name": "Review PR", "priority": 2.5}
//	  ]
//	}
//
// JSON files are validated against an embedded JSON Schema (or the schema at
// Options.SchemaPath). A JSON file that fails to parse or validate is
// rejected as a whole with a *CorruptError.
//
// # Ordering
//
// Both formats are written in scheduler storage order (heap array order), not
// sorted by priority. Loading inserts tasks one by one, so a reloaded
// scheduler holds the same tasks but may store them in a different order.
//
// # Missing files
//
// Loading a file that does not exist is not an error: the returned
// LoadResult has Fresh set and the scheduler is left empty.
package taskfile

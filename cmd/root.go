// Package cmd implements the CLI command structure for taskheap.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskheap/internal/config"
	"github.com/nibzard/taskheap/internal/logging"
	"github.com/nibzard/taskheap/internal/scheduler"
	"github.com/nibzard/taskheap/internal/session"
	"github.com/nibzard/taskheap/internal/taskfile"
	"github.com/nibzard/taskheap/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// streams are the standard streams a command talks to.
type streams struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

// Run executes the taskheap CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, streams{in: os.Stdin, out: os.Stdout, errOut: os.Stderr})
}

func run(ctx context.Context, args []string, s streams) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("taskheap", flag.ContinueOnError)
	fs.SetOutput(s.errOut)
	fs.Usage = func() {
		printUsage(fs, s.errOut)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, s.out)
		return nil
	}
	if *showVersion {
		return versionCommand(s.out)
	}

	// Determine the subcommand
	subcommand := "menu"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "version":
		return versionCommand(s.out)
	case "help":
		printUsage(fs, s.out)
		return nil
	case "config":
		fmt.Fprint(s.out, config.ExampleConfig())
		return nil
	}

	logOut, closer, err := logging.OpenOutput(cfg.LogFile, s.errOut)
	if err != nil {
		return err
	}
	defer closer.Close()
	logger := logging.NewFromConfig(logOut, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)

	switch subcommand {
	case "menu":
		return menuCommand(ctx, cfg, logger, remainingArgs, s)
	case "tui":
		return tuiCommand(ctx, cfg, logger, remainingArgs)
	case "add":
		return addCommand(cfg, logger, remainingArgs, s)
	case "pop":
		return popCommand(cfg, logger, remainingArgs, s)
	case "peek":
		return peekCommand(cfg, logger, remainingArgs, s)
	case "update":
		return updateCommand(cfg, logger, remainingArgs, s)
	case "has":
		return hasCommand(cfg, logger, remainingArgs, s)
	case "count":
		return countCommand(cfg, logger, remainingArgs, s)
	case "ls":
		return lsCommand(cfg, logger, remainingArgs, s)
	case "doctor":
		return doctorCommand(cws, remainingArgs, s)
	default:
		fmt.Fprintf(s.errOut, "Unknown command: %s\n", subcommand)
		printUsage(fs, s.errOut)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// openSession creates a session over a fresh scheduler and loads the task file.
func openSession(cfg *config.Config, logger *log.Logger) (*session.Session, error) {
	sched := scheduler.New(cfg.InitialCapacity)
	sess := session.New(sched, cfg.TaskFile, cfg.FileOptions(), logger)
	if _, err := sess.Load(); err != nil {
		return nil, fmt.Errorf("loading task file: %w", err)
	}
	return sess, nil
}

// expectArgs checks the positional argument count of a one-shot command.
func expectArgs(name string, args []string, want int, usage string) error {
	if len(args) != want {
		return fmt.Errorf("usage: taskheap %s %s", name, usage)
	}
	return nil
}

// parsePriority parses a priority argument. A leading "--" separator is not
// needed for negative values because one-shot commands take no flags.
func parsePriority(s string) (float64, error) {
	p, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid priority %q", s)
	}
	return p, nil
}

// menuCommand runs the interactive menu: the TUI on a terminal, the line
// menu otherwise.
func menuCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string, s streams) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	sess, err := openSession(cfg, logger)
	if err != nil {
		return err
	}

	if ui.IsTTY(s.out) && isTerminalInput(s.in) {
		return runTUI(ctx, cfg, logger, sess)
	}
	return ui.RunMenu(ctx, sess, s.in, s.out, ui.WithAutosave(cfg.Autosave))
}

func isTerminalInput(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// tuiCommand launches the TUI.
func tuiCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	sess, err := openSession(cfg, logger)
	if err != nil {
		return err
	}
	return runTUI(ctx, cfg, logger, sess)
}

// runTUI runs the full-screen menu. Without a log file, logging is silenced
// while the alternate screen is active.
func runTUI(ctx context.Context, cfg *config.Config, logger *log.Logger, sess *session.Session) error {
	if cfg.LogFile == "" {
		logger.SetOutput(io.Discard)
	}
	return ui.RunTUI(ctx, sess, ui.WithAutosave(cfg.Autosave))
}

func addCommand(cfg *config.Config, logger *log.Logger, args []string, s streams) error {
	if err := expectArgs("add", args, 2, "NAME PRIORITY"); err != nil {
		return err
	}
	name := args[0]
	priority, err := parsePriority(args[1])
	if err != nil {
		return err
	}

	sess, err := openSession(cfg, logger)
	if err != nil {
		return err
	}
	if err := sess.Add(name, priority); err != nil {
		return err
	}
	if err := sess.Save(); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Task '%s' added with priority %.2f.\n", name, priority)
	return nil
}

func popCommand(cfg *config.Config, logger *log.Logger, args []string, s streams) error {
	if err := expectArgs("pop", args, 0, ""); err != nil {
		return err
	}
	sess, err := openSession(cfg, logger)
	if err != nil {
		return err
	}
	t, ok := sess.RemoveMostUrgent()
	if !ok {
		fmt.Fprintln(s.out, "The scheduler is currently empty.")
		return nil
	}
	if err := sess.Save(); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Removed most urgent task: '%s' (%.2f)\n", t.Name, t.Priority)
	return nil
}

func peekCommand(cfg *config.Config, logger *log.Logger, args []string, s streams) error {
	if err := expectArgs("peek", args, 0, ""); err != nil {
		return err
	}
	sess, err := openSession(cfg, logger)
	if err != nil {
		return err
	}
	t, ok := sess.MostUrgent()
	if !ok {
		fmt.Fprintln(s.out, "The scheduler is currently empty.")
		return nil
	}
	fmt.Fprintf(s.out, "The most urgent task is: '%s' (%.2f)\n", t.Name, t.Priority)
	return nil
}

func updateCommand(cfg *config.Config, logger *log.Logger, args []string, s streams) error {
	if err := expectArgs("update", args, 2, "NAME PRIORITY"); err != nil {
		return err
	}
	name := args[0]
	priority, err := parsePriority(args[1])
	if err != nil {
		return err
	}

	sess, err := openSession(cfg, logger)
	if err != nil {
		return err
	}
	old, err := sess.UpdatePriority(name, priority)
	if err != nil {
		return err
	}
	if err := sess.Save(); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Priority of task '%s' updated from %.2f to %.2f.\n", name, old, priority)
	return nil
}

func hasCommand(cfg *config.Config, logger *log.Logger, args []string, s streams) error {
	if err := expectArgs("has", args, 1, "NAME"); err != nil {
		return err
	}
	sess, err := openSession(cfg, logger)
	if err != nil {
		return err
	}
	if sess.Exists(args[0]) {
		fmt.Fprintf(s.out, "Task '%s' EXISTS in the scheduler.\n", args[0])
		return nil
	}
	fmt.Fprintf(s.out, "Task '%s' DOES NOT exist in the scheduler.\n", args[0])
	return nil
}

func countCommand(cfg *config.Config, logger *log.Logger, args []string, s streams) error {
	if err := expectArgs("count", args, 0, ""); err != nil {
		return err
	}
	sess, err := openSession(cfg, logger)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, sess.Count())
	return nil
}

// lsCommand lists tasks in storage order, or by urgency with -sorted.
func lsCommand(cfg *config.Config, logger *log.Logger, args []string, s streams) error {
	fs := flag.NewFlagSet("taskheap ls", flag.ContinueOnError)
	fs.SetOutput(s.errOut)
	sorted := fs.Bool("sorted", false, "List from most to least urgent")
	asJSON := fs.Bool("json", false, "Print tasks as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	sess, err := openSession(cfg, logger)
	if err != nil {
		return err
	}
	tasks := sess.Tasks()
	if *sorted {
		tasks = sess.Sorted()
	}

	if *asJSON {
		if tasks == nil {
			tasks = []scheduler.Task{}
		}
		enc := json.NewEncoder(s.out)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	}

	if len(tasks) == 0 {
		fmt.Fprintln(s.out, "No pending tasks.")
		return nil
	}
	for _, t := range tasks {
		fmt.Fprintf(s.out, "%8.2f  %s\n", t.Priority, t.Name)
	}
	return nil
}

// doctorCommand prints the resolved configuration and checks the task file.
func doctorCommand(cws *config.ConfigWithSources, args []string, s streams) error {
	if len(args) > 1 {
		return fmt.Errorf("unexpected arguments: %v", args[1:])
	}
	cfg := cws.Config
	path := cfg.TaskFile
	if len(args) == 1 {
		path = args[0]
	}
	out := s.out

	fmt.Fprintln(out, "taskheap doctor")
	fmt.Fprintln(out, "===============")
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Config files:")
	if len(cws.Files) == 0 {
		fmt.Fprintln(out, "  (none, run 'taskheap config' for an example)")
	}
	for _, f := range cws.Files {
		fmt.Fprintf(out, "  %s\n", f)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Settings:")
	for _, field := range config.Fields() {
		value := cfg.Value(field)
		if value == "" {
			value = "(empty)"
		}
		fmt.Fprintf(out, "  %-17s %-40s [%s]\n", field, value, cws.Sources[field])
	}
	fmt.Fprintln(out)

	opts := cfg.FileOptions()
	format := opts.Format
	if format == taskfile.FormatAuto {
		format = taskfile.DetectFormat(path)
	}
	fmt.Fprintf(out, "Task file: %s (%s)\n", path, format)

	res, err := taskfile.Load(scheduler.New(cfg.InitialCapacity), path, opts)
	if err != nil {
		var corrupt *taskfile.CorruptError
		if errors.As(err, &corrupt) {
			fmt.Fprintln(out, "  ❌ Invalid:")
			for _, e := range corrupt.Errors {
				fmt.Fprintf(out, "     - %v\n", e)
			}
		} else {
			fmt.Fprintf(out, "  ❌ Error: %v\n", err)
		}
		return fmt.Errorf("task file check failed")
	}
	if res.Fresh {
		fmt.Fprintln(out, "  ⚠️  Not found (a new file will be created on save)")
		return nil
	}

	fmt.Fprintf(out, "  ✅ %d tasks loaded\n", res.Loaded)
	for _, sk := range res.Skipped {
		fmt.Fprintf(out, "  ⚠️  line %d skipped: %s\n", sk.Line, sk.Reason)
	}
	for _, rj := range res.Rejected {
		fmt.Fprintf(out, "  ⚠️  record %d rejected: %v\n", rj.Record, rj.Err)
	}
	return nil
}

// versionCommand prints version information.
func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "taskheap version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "taskheap - An interactive priority-based task scheduler")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  taskheap [options] [command] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  menu                  Interactive menu (default; full screen on a terminal)")
	fmt.Fprintln(w, "  tui                   Full-screen interactive menu")
	fmt.Fprintln(w, "  add NAME PRIORITY     Add a task (smaller priority is more urgent)")
	fmt.Fprintln(w, "  pop                   Remove the most urgent task")
	fmt.Fprintln(w, "  peek                  Show the most urgent task")
	fmt.Fprintln(w, "  update NAME PRIORITY  Change the priority of a task")
	fmt.Fprintln(w, "  has NAME              Check whether a task exists")
	fmt.Fprintln(w, "  count                 Show the number of pending tasks")
	fmt.Fprintln(w, "  ls [-sorted] [-json]  List tasks (storage order unless -sorted)")
	fmt.Fprintln(w, "  doctor [file]         Show configuration and check the task file")
	fmt.Fprintln(w, "  config                Print an example configuration file")
	fmt.Fprintln(w, "  version               Show version information")
	fmt.Fprintln(w, "  help                  Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options (before the command):")
	fs.SetOutput(w)
	fs.PrintDefaults()
}

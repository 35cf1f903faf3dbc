// Package cmd implements the CLI command structure for the task tracker.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/nibzard/task-tracker/internal/config"
	"github.com/nibzard/task-tracker/internal/logging"
	"github.com/nibzard/task-tracker/internal/store"
	"github.com/nibzard/task-tracker/internal/task"
)

// Version is set via ldflags at build time.
var Version = "dev"

// app carries the state shared by subcommands for one invocation.
type app struct {
	cws    *config.ConfigWithSources
	cfg    *config.Config
	logger *logging.Logger
	store  *store.FileStore
	tasks  *task.Collection
	stdout io.Writer
	stderr io.Writer
}

// taskCommand operates on the loaded collection. Mutating commands cause the
// collection to be saved when they finish, even after a reported task error.
type taskCommand struct {
	run    func(ctx context.Context, a *app, args []string) error
	mutate bool
	tui    bool
}

var taskCommands = map[string]taskCommand{
	"add":    {run: addCommand, mutate: true},
	"del":    {run: delCommand, mutate: true},
	"delete": {run: delCommand, mutate: true},
	"rm":     {run: delCommand, mutate: true},
	"update": {run: updateCommand, mutate: true},
	"mark":   {run: markCommand, mutate: true},
	"list":   {run: listCommand},
	"ls":     {run: listCommand},
	"tui":    {run: tuiCommand, mutate: true, tui: true},
}

// Run executes the task tracker CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("tasks", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if errors.Is(err, flag.ErrHelp) {
		printUsage(fs, stdout)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand(stdout)
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		printUsage(fs, stderr)
		return errors.New("missing command")
	}
	subcommand, remaining := remaining[0], remaining[1:]

	switch subcommand {
	case "version":
		return versionCommand(stdout)
	case "help":
		printUsage(fs, stdout)
		return nil
	}

	cmd, isTaskCommand := taskCommands[subcommand]
	if !isTaskCommand && subcommand != "doctor" && subcommand != "config" {
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}

	a := &app{
		cws:    cws,
		cfg:    cws.Config,
		stdout: stdout,
		stderr: stderr,
	}
	// The TUI owns the terminal, so console logs are dropped unless a log
	// file is configured.
	console := stderr
	if cmd.tui {
		console = io.Discard
	}
	a.logger, err = logging.Open(console, a.cfg.LogOptions())
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer a.logger.Close()
	for _, w := range cws.Warnings {
		a.logger.Warn(w)
	}

	format, err := store.ParseFormat(a.cfg.Format)
	if err != nil {
		return err
	}
	a.store = store.New(store.WithFormat(format), store.WithLogger(a.logger.Logger))

	switch subcommand {
	case "doctor":
		return doctorCommand(a, remaining)
	case "config":
		return configCommand(a, remaining)
	}

	a.tasks, err = a.store.Load(a.cfg.TaskFile)
	if err != nil {
		return fmt.Errorf("loading task file: %w", err)
	}

	cmdErr := cmd.run(ctx, a, remaining)
	switch {
	case cmdErr == nil:
	case errors.Is(cmdErr, flag.ErrHelp):
		return nil
	case isTaskError(cmdErr):
		fmt.Fprintf(stderr, "Error: %v\n", cmdErr)
		cmdErr = nil
	case errors.Is(cmdErr, context.Canceled) && cmd.tui:
		// Keep edits made before the interrupt.
	default:
		return cmdErr
	}

	if cmd.mutate {
		if err := a.save(); err != nil {
			return fmt.Errorf("saving task file: %w", err)
		}
	}
	return cmdErr
}

// save writes the collection back to the task file.
func (a *app) save() error {
	return a.store.Save(a.tasks, a.cfg.TaskFile)
}

// isTaskError reports whether err is a per-task failure that is reported
// without aborting the run.
func isTaskError(err error) bool {
	var ve *task.ValidationError
	return errors.Is(err, task.ErrNotFound) ||
		errors.Is(err, task.ErrInvalidStatus) ||
		errors.As(err, &ve)
}

// versionCommand prints version information.
func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "tasks version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Tasks - A personal task list manager")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tasks [global options] <command> [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  add <name> [description]      Add a task")
	fmt.Fprintln(w, "  del <id>                      Delete a task (aliases: delete, rm)")
	fmt.Fprintln(w, "  update <id> [-n name] [-d description]")
	fmt.Fprintln(w, "                                Change a task's name and/or description")
	fmt.Fprintln(w, "  mark <id> <status>            Set status: todo, skip, in_progress, done")
	fmt.Fprintln(w, "  list [status] [-v]            List tasks, optionally by status (alias: ls)")
	fmt.Fprintln(w, "  tui                           Launch the interactive terminal UI")
	fmt.Fprintln(w, "  doctor                        Check config and task file validity")
	fmt.Fprintln(w, "  config [-init] [-force]       Show effective config or write an example file")
	fmt.Fprintln(w, "  version                       Show version information")
	fmt.Fprintln(w, "  help                          Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fs.SetOutput(io.Discard)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  TASKS_FILE, TASKS_FORMAT, TASKS_LOG_LEVEL, TASKS_LOG_FORMAT,")
	fmt.Fprintln(w, "  TASKS_LOG_FILE, TASKS_LOG_TIMESTAMPS, TASKS_LOG_CALLER")
}

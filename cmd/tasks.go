package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nibzard/task-tracker/internal/task"
	"github.com/nibzard/task-tracker/internal/ui"
)

// addCommand adds a task: add <name> [description].
func addCommand(_ context.Context, a *app, args []string) error {
	fs := a.newFlagSet("add", "<name> [description]")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) == 0 || len(positional) > 2 {
		return fmt.Errorf("add takes a name and an optional description")
	}
	name := strings.TrimSpace(positional[0])
	if name == "" {
		return fmt.Errorf("task name must not be empty")
	}
	description := ""
	if len(positional) == 2 {
		description = positional[1]
	}

	t := a.tasks.Add(name, description)
	a.logger.Info("added task", "task_id", t.ID)
	fmt.Fprintf(a.stdout, "Added task #%d: %s\n", t.ID, t.Name)
	return nil
}

// delCommand deletes a task: del <id>.
func delCommand(_ context.Context, a *app, args []string) error {
	fs := a.newFlagSet("del", "<id>")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("del takes exactly one task id")
	}
	id, err := parseID(positional[0])
	if err != nil {
		return err
	}

	t, err := a.tasks.Delete(id)
	if err != nil {
		return err
	}
	a.logger.Info("deleted task", "task_id", t.ID)
	fmt.Fprintf(a.stdout, "Deleted task #%d: %s\n", t.ID, t.Name)
	return nil
}

// updateCommand changes a task's name and/or description:
// update <id> [-n name] [-d description].
func updateCommand(_ context.Context, a *app, args []string) error {
	fs := a.newFlagSet("update", "<id> [-n name] [-d description]")
	name := fs.String("name", "", "New task name")
	fs.StringVar(name, "n", "", "New task name (shorthand)")
	description := fs.String("description", "", "New task description")
	fs.StringVar(description, "d", "", "New task description (shorthand)")

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("update takes exactly one task id")
	}
	id, err := parseID(positional[0])
	if err != nil {
		return err
	}

	var namePtr, descPtr *string
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name", "n":
			namePtr = name
		case "description", "d":
			descPtr = description
		}
	})
	if namePtr == nil && descPtr == nil {
		return fmt.Errorf("update requires -name or -description")
	}
	if namePtr != nil && strings.TrimSpace(*namePtr) == "" {
		return fmt.Errorf("task name must not be empty")
	}

	t, err := a.tasks.Update(id, namePtr, descPtr)
	if err != nil {
		return err
	}
	a.logger.Info("updated task", "task_id", t.ID)
	fmt.Fprintf(a.stdout, "Updated task #%d: %s\n", t.ID, t.Name)
	return nil
}

// markCommand sets a task's status: mark <id> <status>.
func markCommand(_ context.Context, a *app, args []string) error {
	fs := a.newFlagSet("mark", "<id> <status>")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 2 {
		return fmt.Errorf("mark takes a task id and a status")
	}
	id, err := parseID(positional[0])
	if err != nil {
		return err
	}
	status, err := task.ParseStatus(positional[1])
	if err != nil {
		return err
	}

	t, err := a.tasks.Mark(id, status)
	if err != nil {
		return err
	}
	a.logger.Info("marked task", "task_id", t.ID, "status", t.Status)
	fmt.Fprintf(a.stdout, "Marked task #%d as %s\n", t.ID, t.Status.Label())
	return nil
}

// listCommand lists tasks, optionally filtered by status:
// list [status] [-status S] [-v].
func listCommand(_ context.Context, a *app, args []string) error {
	fs := a.newFlagSet("list", "[status] [-v]")
	statusFilter := fs.String("status", "", "Filter by status (todo|skip|in_progress|done)")
	verbose := fs.Bool("v", false, "Show descriptions and timestamps")

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) > 1 {
		return fmt.Errorf("unexpected arguments: %v", positional[1:])
	}
	if len(positional) == 1 {
		if *statusFilter != "" {
			return fmt.Errorf("status given twice: %q and %q", *statusFilter, positional[0])
		}
		*statusFilter = positional[0]
	}

	var status task.Status
	if *statusFilter != "" {
		status, err = task.ParseStatus(*statusFilter)
		if err != nil {
			return err
		}
	}

	printSummary(a.stdout, a.tasks.Counts())
	printTaskList(a.stdout, a.tasks.ListByStatus(status), *verbose)
	return nil
}

// tuiCommand launches the interactive view over the loaded collection.
func tuiCommand(ctx context.Context, a *app, args []string) error {
	fs := a.newFlagSet("tui", "")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return ui.RunTUI(ctx, a.tasks,
		ui.WithSaveFunc(a.save),
		ui.WithLogger(a.logger.Logger),
		ui.WithTitle(a.cfg.TaskFile),
	)
}

// newFlagSet creates a subcommand flag set whose usage goes to stderr.
func (a *app) newFlagSet(name, synopsis string) *flag.FlagSet {
	fs := flag.NewFlagSet("tasks "+name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: tasks %s %s\n", name, synopsis)
		fs.PrintDefaults()
	}
	return fs
}

// parseInterspersed parses flags that may appear before, between or after
// positional arguments. Everything after "--" is positional.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		consumed := len(args) - len(rest)
		if consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q: must be a non-negative integer", s)
	}
	return id, nil
}

// printSummary prints the per-status counts on one line.
func printSummary(w io.Writer, counts map[task.Status]int) {
	parts := make([]string, 0, len(counts))
	for _, status := range task.Statuses() {
		parts = append(parts, fmt.Sprintf("%s: %d", status.Label(), counts[status]))
	}
	fmt.Fprintln(w, strings.Join(parts, "  "))
	fmt.Fprintln(w)
}

// printTaskList prints tasks in collection order.
func printTaskList(w io.Writer, tasks []task.Task, verbose bool) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found.")
		return
	}
	for _, t := range tasks {
		printTask(w, t, verbose)
	}
}

// printTask prints a single task.
func printTask(w io.Writer, t task.Task, verbose bool) {
	fmt.Fprintf(w, "  [%s] #%d %s\n", ui.StatusIcon(t.Status), t.ID, t.Name)
	if !verbose {
		return
	}
	fmt.Fprintf(w, "      Status: %s\n", t.Status.Label())
	if t.Description != "" {
		fmt.Fprintf(w, "      Description: %s\n", t.Description)
	}
	fmt.Fprintf(w, "      Created: %s  Updated: %s\n",
		t.Created.Local().Format(time.DateTime),
		t.Updated.Local().Format(time.DateTime),
	)
}

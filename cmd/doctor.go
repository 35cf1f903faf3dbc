package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nibzard/task-tracker/internal/config"
)

// doctorCommand checks the configuration and the task file.
func doctorCommand(a *app, args []string) error {
	flags := a.newFlagSet("doctor", "[-v]")
	verbose := flags.Bool("v", false, "Verbose output")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if flags.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", flags.Args())
	}

	w := a.stdout
	fmt.Fprintln(w, "Tasks Doctor")
	fmt.Fprintln(w, "============")
	fmt.Fprintln(w)

	allOK := true

	// Check config
	fmt.Fprintln(w, "Config:")
	if len(a.cws.Files) == 0 {
		fmt.Fprintln(w, "  ✅ No config files (using defaults)")
	}
	for _, path := range a.cws.Files {
		fmt.Fprintf(w, "  ✅ %s\n", path)
	}
	for _, warning := range a.cws.Warnings {
		fmt.Fprintf(w, "  ⚠️  %s\n", warning)
	}
	if *verbose {
		for _, s := range a.cws.Settings() {
			fmt.Fprintf(w, "    %-14s %q (%s)\n", s.Key, s.Value, s.Source)
		}
	}
	fmt.Fprintln(w)

	// Check task file
	path := a.cfg.TaskFile
	fmt.Fprintf(w, "Task file: %s\n", path)
	result, err := a.store.Validate(path)
	switch {
	case err != nil:
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		allOK = false
	case !result.Exists:
		fmt.Fprintf(w, "  Format: %s\n", result.Format)
		fmt.Fprintln(w, "  ⚠️  Not found (will be created on first change)")
	case result.Valid:
		fmt.Fprintf(w, "  Format: %s\n", result.Format)
		fmt.Fprintf(w, "  ✅ Valid (%d tasks)\n", result.Tasks)
	default:
		fmt.Fprintf(w, "  Format: %s\n", result.Format)
		fmt.Fprintln(w, "  ❌ Validation failed:")
		for _, e := range result.Errors {
			fmt.Fprintf(w, "     - %v\n", e)
		}
		allOK = false
	}
	if err == nil && result.Exists {
		if !checkWritable(w, filepath.Dir(path)) {
			allOK = false
		}
	}
	fmt.Fprintln(w)

	// Check log file
	if a.cfg.LogFile != "" {
		fmt.Fprintf(w, "Log file: %s\n", a.cfg.LogFile)
		if info, err := os.Stat(a.cfg.LogFile); err != nil {
			fmt.Fprintf(w, "  ❌ Error: %v\n", err)
			allOK = false
		} else if info.IsDir() {
			fmt.Fprintln(w, "  ❌ Error: path is a directory")
			allOK = false
		} else {
			fmt.Fprintln(w, "  ✅ OK")
		}
		fmt.Fprintln(w)
	}

	// Overall status
	if allOK {
		fmt.Fprintln(w, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(w, "⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}

// checkWritable reports whether new files can be created in dir, which the
// atomic save needs.
func checkWritable(w io.Writer, dir string) bool {
	f, err := os.CreateTemp(dir, ".tasks-doctor-*")
	if err != nil {
		fmt.Fprintf(w, "  ❌ Directory not writable: %v\n", err)
		return false
	}
	name := f.Name()
	f.Close()
	if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(w, "  ⚠️  Could not remove probe file %s: %v\n", name, err)
	}
	return true
}

// configCommand prints the effective configuration, or writes an example
// project config file with -init.
func configCommand(a *app, args []string) error {
	flags := a.newFlagSet("config", "[-init] [-force]")
	initFile := flags.Bool("init", false, "Write an example task-tracker.toml to the working directory")
	force := flags.Bool("force", false, "Overwrite an existing file with -init")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if flags.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", flags.Args())
	}

	if *initFile {
		path := filepath.Join(a.cfg.ProjectRoot, config.ProjectConfigNames[0])
		if _, err := os.Stat(path); err == nil && !*force {
			return fmt.Errorf("%s already exists (use -force to overwrite)", path)
		}
		if err := os.WriteFile(path, []byte(config.ExampleConfig()), 0o644); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
		a.logger.Info("wrote config file", "path", path)
		fmt.Fprintf(a.stdout, "Wrote %s\n", path)
		return nil
	}

	if path := a.cws.ActiveFile(); path != "" {
		fmt.Fprintf(a.stdout, "Config file: %s\n", path)
	}
	for _, s := range a.cws.Settings() {
		fmt.Fprintf(a.stdout, "%-14s %q (%s)\n", s.Key, s.Value, s.Source)
	}
	return nil
}

// Package config tests configuration loading.
package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
)

var taskEnvVars = []string{
	"TASKS_FILE",
	"TASKS_FORMAT",
	"TASKS_LOG_LEVEL",
	"TASKS_LOG_FORMAT",
	"TASKS_LOG_FILE",
	"TASKS_LOG_TIMESTAMPS",
	"TASKS_LOG_CALLER",
}

// isolate points HOME and XDG_CONFIG_HOME at empty temp dirs, clears TASKS_*
// and moves into a fresh working directory, which it returns.
func isolate(t *testing.T) (home, wd string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	for _, name := range taskEnvVars {
		t.Setenv(name, "")
	}
	wd = t.TempDir()
	prevWD, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(wd); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prevWD) })
	// Resolve symlinks (macOS /var -> /private/var) so path comparisons hold.
	if resolved, err := os.Getwd(); err == nil {
		wd = resolved
	}
	return home, wd
}

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("tasks", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if cfg.TaskFile != DefaultTaskFile {
		t.Errorf("TaskFile: got %q, want %q", cfg.TaskFile, DefaultTaskFile)
	}
	if cfg.Format != "" {
		t.Errorf("Format: got %q, want empty", cfg.Format)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel: got %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.LogFormat != DefaultLogFormat {
		t.Errorf("LogFormat: got %q, want %q", cfg.LogFormat, DefaultLogFormat)
	}
}

func TestLoadDefaults(t *testing.T) {
	_, wd := isolate(t)

	cws, err := LoadWithSources(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	if want := filepath.Join(wd, DefaultTaskFile); cws.Config.TaskFile != want {
		t.Errorf("TaskFile: got %q, want %q", cws.Config.TaskFile, want)
	}
	if cws.Config.ProjectRoot != wd {
		t.Errorf("ProjectRoot: got %q, want %q", cws.Config.ProjectRoot, wd)
	}
	for _, field := range configFields() {
		if got := cws.Sources[field]; got != SourceDefault {
			t.Errorf("Sources[%s]: got %q, want %q", field, got, SourceDefault)
		}
	}
	if len(cws.Files) != 0 {
		t.Errorf("Files: got %v, want none", cws.Files)
	}
	if cws.ActiveFile() != "" {
		t.Errorf("ActiveFile: got %q, want empty", cws.ActiveFile())
	}
}

func TestLoadFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TASKS_FILE", "custom.yaml")
	t.Setenv("TASKS_FORMAT", "toml")
	t.Setenv("TASKS_LOG_LEVEL", "debug")
	t.Setenv("TASKS_LOG_FORMAT", "json")
	t.Setenv("TASKS_LOG_TIMESTAMPS", "yes")
	t.Setenv("TASKS_LOG_CALLER", "0")

	cfg := &Config{}
	setDefaults(cfg)
	sources := map[string]ConfigSource{}
	loadFromEnv(cfg, sources)

	if cfg.TaskFile != "custom.yaml" {
		t.Errorf("TaskFile: got %q, want custom.yaml", cfg.TaskFile)
	}
	if cfg.Format != "toml" {
		t.Errorf("Format: got %q, want toml", cfg.Format)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q, want debug", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat: got %q, want json", cfg.LogFormat)
	}
	if !cfg.LogTimestamps {
		t.Error("LogTimestamps: got false, want true")
	}
	if cfg.LogCaller {
		t.Error("LogCaller: got true, want false")
	}
	for _, field := range []string{"task_file", "format", "log_level", "log_format", "log_timestamps", "log_caller"} {
		if sources[field] != SourceEnv {
			t.Errorf("Sources[%s]: got %q, want %q", field, sources[field], SourceEnv)
		}
	}
	if _, ok := sources["log_file"]; ok {
		t.Error("log_file should not be sourced from an empty env var")
	}
}

func TestBoolFromString(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{" yes ", true},
		{"on", true},
		{"0", false},
		{"false", false},
		{"nope", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := boolFromString(tt.in); got != tt.want {
			t.Errorf("boolFromString(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "task-tracker.toml")
	writeFile(t, configFile, `task_file = "custom.json"
log_level = "info"
log_caller = true
`)

	cws := &ConfigWithSources{Config: &Config{}, Sources: map[string]ConfigSource{}}
	setDefaults(cws.Config)
	if err := loadConfigFile(cws, configFile, SourceProjFile); err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}

	if cws.Config.TaskFile != "custom.json" {
		t.Errorf("TaskFile: got %q, want custom.json", cws.Config.TaskFile)
	}
	if cws.Config.LogLevel != "info" {
		t.Errorf("LogLevel: got %q, want info", cws.Config.LogLevel)
	}
	if !cws.Config.LogCaller {
		t.Error("LogCaller: got false, want true")
	}
	if cws.Config.LogFormat != DefaultLogFormat {
		t.Errorf("LogFormat: got %q, want default", cws.Config.LogFormat)
	}
	if cws.Sources["task_file"] != SourceProjFile || cws.Sources["log_caller"] != SourceProjFile {
		t.Errorf("Sources: got %v", cws.Sources)
	}
	if _, ok := cws.Sources["log_format"]; ok {
		t.Error("log_format was not in the file and should have no file source")
	}
	if len(cws.Files) != 1 || cws.Files[0] != configFile {
		t.Errorf("Files: got %v", cws.Files)
	}
	if len(cws.Warnings) != 0 {
		t.Errorf("Warnings: got %v, want none", cws.Warnings)
	}
}

func TestLoadConfigFileUnknownKeys(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "task-tracker.toml")
	writeFile(t, configFile, `task_file = "a.json"
max_iterations = 3
colour = "blue"
`)

	cws := &ConfigWithSources{Config: &Config{}, Sources: map[string]ConfigSource{}}
	if err := loadConfigFile(cws, configFile, SourceProjFile); err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}
	if len(cws.Warnings) != 1 {
		t.Fatalf("Warnings: got %v, want one", cws.Warnings)
	}
	if !strings.Contains(cws.Warnings[0], "colour, max_iterations") {
		t.Errorf("warning should list sorted unknown keys, got %q", cws.Warnings[0])
	}
}

func TestLoadConfigFileSyntaxError(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "task-tracker.toml")
	writeFile(t, configFile, "task_file = \n")

	cws := &ConfigWithSources{Config: &Config{}, Sources: map[string]ConfigSource{}}
	if err := loadConfigFile(cws, configFile, SourceProjFile); err == nil {
		t.Fatal("expected a TOML parse error")
	}
}

func TestLoadPrecedence(t *testing.T) {
	home, wd := isolate(t)
	writeFile(t, filepath.Join(home, ".task-tracker", "config.toml"), `task_file = "user.json"
log_level = "info"
log_format = "logfmt"
`)
	writeFile(t, filepath.Join(wd, "task-tracker.toml"), `task_file = "project.json"
log_level = "error"
`)
	t.Setenv("TASKS_LOG_LEVEL", "debug")

	fs := newFlagSet()
	cws, err := LoadWithSources(fs, []string{"-f", "flag.toml", "list"})
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	cfg := cws.Config

	if want := filepath.Join(wd, "flag.toml"); cfg.TaskFile != want {
		t.Errorf("TaskFile: got %q, want %q", cfg.TaskFile, want)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q, want debug", cfg.LogLevel)
	}
	if cfg.LogFormat != "logfmt" {
		t.Errorf("LogFormat: got %q, want logfmt", cfg.LogFormat)
	}

	wantSources := map[string]ConfigSource{
		"task_file":  SourceFlag,
		"log_level":  SourceEnv,
		"log_format": SourceUserFile,
		"format":     SourceDefault,
	}
	for field, want := range wantSources {
		if got := cws.Sources[field]; got != want {
			t.Errorf("Sources[%s]: got %q, want %q", field, got, want)
		}
	}
	if len(cws.Files) != 2 {
		t.Fatalf("Files: got %v, want user then project", cws.Files)
	}
	if cws.ActiveFile() != filepath.Join(wd, "task-tracker.toml") {
		t.Errorf("ActiveFile: got %q", cws.ActiveFile())
	}
	if args := fs.Args(); len(args) != 1 || args[0] != "list" {
		t.Errorf("remaining args: got %v, want [list]", args)
	}
}

func TestLoadXDGUserConfig(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG lookup only applies on linux")
	}
	home, wd := isolate(t)
	writeFile(t, filepath.Join(home, "xdg", "task-tracker", "config.toml"), `task_file = "xdg.json"`)

	cws, err := LoadWithSources(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	if want := filepath.Join(wd, "xdg.json"); cws.Config.TaskFile != want {
		t.Errorf("TaskFile: got %q, want %q", cws.Config.TaskFile, want)
	}
	if cws.Sources["task_file"] != SourceUserFile {
		t.Errorf("Sources[task_file]: got %q", cws.Sources["task_file"])
	}
}

func TestFindProjectConfigFile(t *testing.T) {
	dir := t.TempDir()
	if got := findProjectConfigFile(dir); got != "" {
		t.Errorf("empty dir: got %q", got)
	}

	hidden := filepath.Join(dir, ".task-tracker.toml")
	writeFile(t, hidden, "")
	if got := findProjectConfigFile(dir); got != hidden {
		t.Errorf("hidden only: got %q, want %q", got, hidden)
	}

	visible := filepath.Join(dir, "task-tracker.toml")
	writeFile(t, visible, "")
	if got := findProjectConfigFile(dir); got != visible {
		t.Errorf("both present: got %q, want %q", got, visible)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"format", []string{"-format", "xml"}, "invalid format"},
		{"log level", []string{"-log-level", "loud"}, "invalid log level"},
		{"log format", []string{"-log-format", "xml"}, "invalid log format"},
		{"empty file", []string{"-file", "  "}, "task file path is empty"},
		{"unknown flag", []string{"-bogus"}, "parsing flags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, err := Load(newFlagSet(), tt.args)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error: got %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestLoadHelpFlag(t *testing.T) {
	isolate(t)
	_, err := Load(newFlagSet(), []string{"-h"})
	if err == nil || !strings.Contains(err.Error(), flag.ErrHelp.Error()) {
		t.Fatalf("expected help error, got %v", err)
	}
}

func TestLoadResolvesLogFile(t *testing.T) {
	home, _ := isolate(t)
	t.Setenv("TASKS_LOG_FILE", "~/logs/tasks.log")

	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := filepath.Join(home, "logs", "tasks.log"); cfg.LogFile != want {
		t.Errorf("LogFile: got %q, want %q", cfg.LogFile, want)
	}
	opts := cfg.LogOptions()
	if opts.File != cfg.LogFile || opts.Level != cfg.LogLevel || opts.Format != cfg.LogFormat {
		t.Errorf("LogOptions: got %+v", opts)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/test", filepath.Join(home, "test")},
		{"~", home},
		{"/absolute/path", "/absolute/path"},
		{"relative", "relative"},
		{"", ""},
	}
	if runtime.GOOS == "windows" {
		t.Setenv("TASKS_TEST_HOME", home)
		tests = append(tests, struct {
			input string
			want  string
		}{
			input: `%TASKS_TEST_HOME%\logs`,
			want:  filepath.Join(home, "logs"),
		})
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := expandPath(tt.input)
			if got != tt.want {
				t.Errorf("expandPath(%q): got %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolvePath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses unix paths")
	}
	t.Setenv("TASKS_TEST_DIR", "/data")

	tests := []struct {
		path string
		root string
		want string
	}{
		{"tasks.json", "/work", "/work/tasks.json"},
		{"sub/../tasks.json", "/work", "/work/tasks.json"},
		{"/abs/tasks.json", "/work", "/abs/tasks.json"},
		{"$TASKS_TEST_DIR/tasks.yaml", "/work", "/data/tasks.yaml"},
		{"tasks.json", "", "tasks.json"},
	}
	for _, tt := range tests {
		if got := resolvePath(tt.path, tt.root); got != tt.want {
			t.Errorf("resolvePath(%q, %q): got %q, want %q", tt.path, tt.root, got, tt.want)
		}
	}
}

func TestExampleConfigDecodes(t *testing.T) {
	cfg := &Config{}
	md, err := toml.Decode(ExampleConfig(), cfg)
	if err != nil {
		t.Fatalf("example config does not parse: %v", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		t.Errorf("example config has unknown keys: %v", undecoded)
	}
	if cfg.TaskFile != DefaultTaskFile || cfg.LogLevel != DefaultLogLevel || cfg.LogFormat != DefaultLogFormat {
		t.Errorf("example config should show defaults, got %+v", cfg)
	}
}

func TestSettings(t *testing.T) {
	_, wd := isolate(t)
	t.Setenv("TASKS_LOG_CALLER", "true")

	cws, err := LoadWithSources(newFlagSet(), []string{"-format", "yaml"})
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	settings := cws.Settings()
	if len(settings) != len(configFields()) {
		t.Fatalf("Settings: got %d entries, want %d", len(settings), len(configFields()))
	}

	want := map[string]Setting{
		"task_file":  {Key: "task_file", Value: filepath.Join(wd, DefaultTaskFile), Source: SourceDefault},
		"format":     {Key: "format", Value: "yaml", Source: SourceFlag},
		"log_caller": {Key: "log_caller", Value: "true", Source: SourceEnv},
		"log_file":   {Key: "log_file", Value: "", Source: SourceDefault},
	}
	for i, s := range settings {
		if s.Key != configFields()[i] {
			t.Errorf("Settings[%d]: got key %q, want %q", i, s.Key, configFields()[i])
		}
		if w, ok := want[s.Key]; ok && s != w {
			t.Errorf("Settings[%s]: got %+v, want %+v", s.Key, s, w)
		}
	}
}

// Package store loads and saves task collections to a local file.
package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/nibzard/task-tracker/internal/task"
)

// SchemaVersion is the task file layout version written by Save.
const SchemaVersion = 1

// Adapter is the load/save boundary between a Collection and durable storage.
type Adapter interface {
	Load(path string) (*task.Collection, error)
	Save(c *task.Collection, path string) error
}

// document is the on-disk shape of a task file.
type document struct {
	SchemaVersion int         `json:"schema_version" toml:"schema_version" yaml:"schema_version"`
	NextID        uint64      `json:"next_id" toml:"next_id" yaml:"next_id"`
	Tasks         []task.Task `json:"tasks" toml:"tasks" yaml:"tasks"`
}

// ValidationError represents a schema violation with its location.
type ValidationError struct {
	Path string // Dotted path to the error location, e.g. "tasks[0].status"
	Err  error  // Underlying error
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

// ValidationResult contains validation results for a task file.
type ValidationResult struct {
	Valid  bool
	Exists bool
	Format Format
	Tasks  int
	Errors []error
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithFormat forces an encoding instead of detecting it from the extension.
func WithFormat(f Format) Option {
	return func(s *FileStore) {
		s.format = f
	}
}

// WithLogger sets the logger used for load/save diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(s *FileStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTaskOptions passes options to collections created by Load.
func WithTaskOptions(opts ...task.Option) Option {
	return func(s *FileStore) {
		s.taskOpts = append(s.taskOpts, opts...)
	}
}

// FileStore persists a collection as a single JSON, TOML or YAML file.
type FileStore struct {
	format   Format
	logger   *log.Logger
	taskOpts []task.Option
}

var _ Adapter = (*FileStore)(nil)

// New creates a FileStore.
func New(opts ...Option) *FileStore {
	s := &FileStore{
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the task file at path. A missing file yields an empty collection.
func (s *FileStore) Load(path string) (*task.Collection, error) {
	format := FormatFor(path, s.format)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("task file not found, starting empty", "path", path)
		return task.New(s.taskOpts...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}

	doc, result, err := s.decode(data, format)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, fmt.Errorf("invalid task file %s: %w", path, errors.Join(result.Errors...))
	}

	c, err := task.Restore(doc.Tasks, doc.NextID, s.taskOpts...)
	if err != nil {
		return nil, fmt.Errorf("invalid task file %s: %w", path, err)
	}
	s.logger.Debug("loaded task file", "path", path, "format", format, "tasks", c.Len(), "next_id", c.NextID())
	return c, nil
}

// Save writes the full collection to path, replacing any previous file
// atomically.
func (s *FileStore) Save(c *task.Collection, path string) error {
	format := FormatFor(path, s.format)
	doc := &document{
		SchemaVersion: SchemaVersion,
		NextID:        c.NextID(),
		Tasks:         c.Tasks(),
	}
	data, err := codecFor(format).marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal task file: %w", err)
	}
	if err := writeFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("write task file: %w", err)
	}
	s.logger.Debug("saved task file", "path", path, "format", format, "tasks", c.Len(), "next_id", c.NextID())
	return nil
}

// Validate checks the task file at path against the schema and the collection
// invariants without loading it. A missing file is valid.
func (s *FileStore) Validate(path string) (*ValidationResult, error) {
	format := FormatFor(path, s.format)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &ValidationResult{Valid: true, Format: format}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}

	doc, result, err := s.decode(data, format)
	if err != nil {
		return &ValidationResult{Exists: true, Format: format, Errors: []error{err}}, nil
	}
	result.Exists = true
	if !result.Valid {
		return result, nil
	}
	result.Tasks = len(doc.Tasks)
	if _, err := task.Restore(doc.Tasks, doc.NextID); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err)
	}
	return result, nil
}

// decode parses data, validating it against the schema before decoding it
// into a document. A non-nil error means the data could not be parsed at all.
func (s *FileStore) decode(data []byte, format Format) (*document, *ValidationResult, error) {
	c := codecFor(format)
	result := &ValidationResult{Valid: true, Format: format}

	generic, err := c.generic(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s task file: %w", format, err)
	}
	if err := validateSchema(generic, result); err != nil {
		return nil, nil, err
	}
	if !result.Valid {
		return nil, result, nil
	}

	var doc document
	if err := c.unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parse %s task file: %w", format, err)
	}
	return &doc, result, nil
}

// writeFileAtomic writes data to a temp file next to path and renames it into
// place, so readers see either the old or the new file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

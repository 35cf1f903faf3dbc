package task

import "time"

// Task represents a single item in the task list.
type Task struct {
	ID          uint64    `json:"id" toml:"id" yaml:"id"`
	Name        string    `json:"name" toml:"name" yaml:"name"`
	Description string    `json:"description" toml:"description" yaml:"description"`
	Status      Status    `json:"status" toml:"status" yaml:"status"`
	Created     time.Time `json:"created" toml:"created" yaml:"created"`
	Updated     time.Time `json:"updated" toml:"updated" yaml:"updated"`
}

func newTask(id uint64, name, description string, now time.Time) Task {
	return Task{
		ID:          id,
		Name:        name,
		Description: description,
		Status:      StatusTodo,
		Created:     now,
		Updated:     now,
	}
}

// touch refreshes Updated. Updated never moves backwards, so a wall clock
// stepping back cannot break updated >= created.
func (t *Task) touch(now time.Time) {
	if now.After(t.Updated) {
		t.Updated = now
	}
}

func (t *Task) setName(name string, now time.Time) {
	t.Name = name
	t.touch(now)
}

func (t *Task) setDescription(description string, now time.Time) {
	t.Description = description
	t.touch(now)
}

func (t *Task) setStatus(status Status, now time.Time) {
	t.Status = status
	t.touch(now)
}

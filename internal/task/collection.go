package task

import (
	"fmt"
	"time"
)

// Option configures a Collection.
type Option func(*Collection)

// WithClock overrides the time source used for created/updated stamps.
func WithClock(now func() time.Time) Option {
	return func(c *Collection) {
		if now != nil {
			c.now = now
		}
	}
}

// Collection is the ordered task list plus its id allocator.
// It is not safe for concurrent use.
type Collection struct {
	tasks  []Task
	nextID uint64
	now    func() time.Time
}

// New returns an empty collection whose first task gets id 0.
func New(opts ...Option) *Collection {
	c := &Collection{
		tasks: make([]Task, 0),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Restore rebuilds a collection from persisted tasks and id counter.
// It rejects duplicate ids, unknown statuses, tasks updated before they were
// created, and a counter that does not exceed every id.
func Restore(tasks []Task, nextID uint64, opts ...Option) (*Collection, error) {
	c := New(opts...)
	seen := make(map[uint64]int, len(tasks))
	for i, t := range tasks {
		path := fmt.Sprintf("tasks[%d]", i)
		if first, ok := seen[t.ID]; ok {
			return nil, &ValidationError{
				Path: path + ".id",
				Err:  fmt.Errorf("duplicate id %d (also used by tasks[%d])", t.ID, first),
			}
		}
		seen[t.ID] = i
		if !t.Status.Valid() {
			return nil, &ValidationError{
				Path: path + ".status",
				Err:  fmt.Errorf("%w %q", ErrInvalidStatus, t.Status),
			}
		}
		if t.Updated.Before(t.Created) {
			return nil, &ValidationError{
				Path: path + ".updated",
				Err:  fmt.Errorf("updated %s is before created %s", t.Updated.Format(time.RFC3339), t.Created.Format(time.RFC3339)),
			}
		}
		if t.ID >= nextID {
			return nil, &ValidationError{
				Path: "next_id",
				Err:  fmt.Errorf("next_id %d must be greater than id %d at %s", nextID, t.ID, path),
			}
		}
	}
	c.tasks = append(c.tasks, tasks...)
	c.nextID = nextID
	return c, nil
}

// Len returns the number of tasks.
func (c *Collection) Len() int {
	return len(c.tasks)
}

// NextID returns the id the next Add will assign.
func (c *Collection) NextID() uint64 {
	return c.nextID
}

// Tasks returns a copy of all tasks in collection order.
func (c *Collection) Tasks() []Task {
	out := make([]Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// Add appends a new todo task and returns it.
func (c *Collection) Add(name, description string) Task {
	t := newTask(c.nextID, name, description, c.now())
	c.tasks = append(c.tasks, t)
	c.nextID++
	return t
}

// Get returns the task with the given id.
func (c *Collection) Get(id uint64) (Task, error) {
	i := c.indexOf(id)
	if i < 0 {
		return Task{}, &NotFoundError{ID: id}
	}
	return c.tasks[i], nil
}

// Delete removes the task with the given id and returns it.
func (c *Collection) Delete(id uint64) (Task, error) {
	i := c.indexOf(id)
	if i < 0 {
		return Task{}, &NotFoundError{ID: id}
	}
	removed := c.tasks[i]
	c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
	return removed, nil
}

// Update replaces the name and/or description of a task. A nil argument leaves
// that field untouched. Callers are expected to supply at least one.
func (c *Collection) Update(id uint64, name, description *string) (Task, error) {
	i := c.indexOf(id)
	if i < 0 {
		return Task{}, &NotFoundError{ID: id}
	}
	t := &c.tasks[i]
	if name != nil {
		t.setName(*name, c.now())
	}
	if description != nil {
		t.setDescription(*description, c.now())
	}
	return *t, nil
}

// Mark sets the status of a task.
func (c *Collection) Mark(id uint64, status Status) (Task, error) {
	if !status.Valid() {
		return Task{}, fmt.Errorf("%w %q", ErrInvalidStatus, status)
	}
	i := c.indexOf(id)
	if i < 0 {
		return Task{}, &NotFoundError{ID: id}
	}
	t := &c.tasks[i]
	t.setStatus(status, c.now())
	return *t, nil
}

// ListByStatus returns tasks with the given status in collection order.
// The zero Status matches every task.
func (c *Collection) ListByStatus(status Status) []Task {
	if status == "" {
		return c.Tasks()
	}
	out := make([]Task, 0)
	for _, t := range c.tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// Counts returns the number of tasks per status. Every status has an entry.
func (c *Collection) Counts() map[Status]int {
	counts := make(map[Status]int, 4)
	for _, s := range Statuses() {
		counts[s] = 0
	}
	for _, t := range c.tasks {
		counts[t.Status]++
	}
	return counts
}

func (c *Collection) indexOf(id uint64) int {
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

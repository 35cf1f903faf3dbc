// Package task holds the in-memory task list.
//
// A Collection owns an ordered list of tasks and the counter used to allocate
// their ids. Ids start at 0, grow by one on every Add and are never reused,
// even after the task that held them is deleted.
//
// # Task Status Values
//
//   - "todo": Task is pending (initial status)
//   - "skip": Task was deliberately skipped
//   - "in_progress": Task is being worked on
//   - "done": Task is complete
//
// Any status may move to any other status through Mark.
//
// # Lookups
//
// Lookups by id scan the list in insertion order. The list is a personal to-do
// list, so no index is kept.
//
// Operations return Task values rather than pointers into the collection, so
// stored tasks only change through Update, Mark and Delete.
package task

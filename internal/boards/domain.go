package boards

import "time"

// Workspace groups boards for a team or department.
type Workspace struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Board is a task board inside a workspace.
type Board struct {
	ID          int64
	WorkspaceID int64
	Name        string
	CreatedAt   time.Time
}

// Task statuses. Moves outside this set are rejected.
const (
	StatusTodo  = "todo"
	StatusDoing = "doing"
	StatusDone  = "done"
)

// Task is a unit of work on a board.
type Task struct {
	ID         int64
	BoardID    int64
	Title      string
	Status     string
	AssigneeID *int64
	DueAt      *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ValidStatus reports whether s is a known task status.
func ValidStatus(s string) bool {
	return s == StatusTodo || s == StatusDoing || s == StatusDone
}

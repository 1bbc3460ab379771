package boards

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hr/meridian/internal/shared"
)

// RepositoryPort defines data access for workspaces, boards and tasks.
type RepositoryPort interface {
	ListWorkspaces(ctx context.Context) ([]Workspace, error)
	CreateWorkspace(ctx context.Context, name string) (*Workspace, error)
	DeleteWorkspace(ctx context.Context, id int64) error

	ListBoards(ctx context.Context, workspaceID int64) ([]Board, error)
	CreateBoard(ctx context.Context, workspaceID int64, name string) (*Board, error)
	DeleteBoard(ctx context.Context, id int64) error

	ListTasks(ctx context.Context, boardID int64) ([]Task, error)
	CreateTask(ctx context.Context, t Task) (*Task, error)
	UpdateTask(ctx context.Context, t Task) error
	DeleteTask(ctx context.Context, id int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListWorkspaces returns all workspaces.
func (r *Repository) ListWorkspaces(ctx context.Context) ([]Workspace, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM workspaces ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var workspaces []Workspace
	for rows.Next() {
		var ws Workspace
		if err := rows.Scan(&ws.ID, &ws.Name, &ws.CreatedAt); err != nil {
			return nil, err
		}
		workspaces = append(workspaces, ws)
	}
	return workspaces, rows.Err()
}

// CreateWorkspace inserts a workspace.
func (r *Repository) CreateWorkspace(ctx context.Context, name string) (*Workspace, error) {
	var ws Workspace
	ws.Name = name
	err := r.pool.QueryRow(ctx, `
		INSERT INTO workspaces (name, created_at) VALUES ($1, NOW())
		RETURNING id, created_at`, name).Scan(&ws.ID, &ws.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

// DeleteWorkspace removes a workspace and cascades to its boards and tasks.
func (r *Repository) DeleteWorkspace(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, `DELETE FROM workspaces WHERE id = $1`, id)
}

// ListBoards returns the boards of a workspace.
func (r *Repository) ListBoards(ctx context.Context, workspaceID int64) ([]Board, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, workspace_id, name, created_at FROM boards
		WHERE workspace_id = $1 ORDER BY name`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var boards []Board
	for rows.Next() {
		var b Board
		if err := rows.Scan(&b.ID, &b.WorkspaceID, &b.Name, &b.CreatedAt); err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

// CreateBoard inserts a board.
func (r *Repository) CreateBoard(ctx context.Context, workspaceID int64, name string) (*Board, error) {
	var b Board
	b.WorkspaceID = workspaceID
	b.Name = name
	err := r.pool.QueryRow(ctx, `
		INSERT INTO boards (workspace_id, name, created_at) VALUES ($1, $2, NOW())
		RETURNING id, created_at`, workspaceID, name).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// DeleteBoard removes a board.
func (r *Repository) DeleteBoard(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, `DELETE FROM boards WHERE id = $1`, id)
}

// ListTasks returns the tasks of a board.
func (r *Repository) ListTasks(ctx context.Context, boardID int64) ([]Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, board_id, title, status, assignee_id, due_at, created_at, updated_at
		FROM tasks WHERE board_id = $1 ORDER BY id`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.BoardID, &t.Title, &t.Status, &t.AssigneeID, &t.DueAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CreateTask inserts a task.
func (r *Repository) CreateTask(ctx context.Context, t Task) (*Task, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (board_id, title, status, assignee_id, due_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		t.BoardID, t.Title, t.Status, t.AssigneeID, t.DueAt).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTask rewrites a task's mutable fields.
func (r *Repository) UpdateTask(ctx context.Context, t Task) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks SET title = $2, status = $3, assignee_id = $4, due_at = $5, updated_at = NOW()
		WHERE id = $1`, t.ID, t.Title, t.Status, t.AssigneeID, t.DueAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteTask removes a task.
func (r *Repository) DeleteTask(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, `DELETE FROM tasks WHERE id = $1`, id)
}

func (r *Repository) deleteByID(ctx context.Context, query string, id int64) error {
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)

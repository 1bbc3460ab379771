package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hr/meridian/internal/platform/db"
	"github.com/meridian-hr/meridian/internal/rbac"
	"github.com/meridian-hr/meridian/internal/shared"
)

// Repository defines data access for user management.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListUsers(ctx context.Context, limit, offset int) ([]User, int, error)
	GetUser(ctx context.Context, id int64) (*User, error)
}

// TxRepository exposes the mutations that must run inside one transaction
// with the admin-safety checks.
type TxRepository interface {
	GetUserForUpdate(ctx context.Context, id int64) (*User, error)
	CountActiveAdminsExcluding(ctx context.Context, excludeUserID int64) (int, error)
	GetRoleID(ctx context.Context, name string) (int64, error)
	InsertUser(ctx context.Context, email, passwordHash, name string, roleID int64) (*User, error)
	UpdateUser(ctx context.Context, id int64, name string, roleID int64) error
	SetActive(ctx context.Context, id int64, active bool) error
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const selectUser = `
	SELECT u.id, u.email, u.name, u.role_id, r.name, u.is_active, u.created_at, u.updated_at
	FROM users u
	JOIN roles r ON r.id = u.role_id`

// WithTx runs fn inside a transaction.
func (r *PGRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgTxRepository{tx: tx})
	})
}

// ListUsers returns a page of users plus the total count.
func (r *PGRepository) ListUsers(ctx context.Context, limit, offset int) ([]User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, selectUser+` ORDER BY u.id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		var u User
		if err := scanUser(rows, &u); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// GetUser fetches a single user.
func (r *PGRepository) GetUser(ctx context.Context, id int64) (*User, error) {
	var u User
	err := scanUser(r.pool.QueryRow(ctx, selectUser+` WHERE u.id = $1`, id), &u)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

type pgTxRepository struct {
	tx pgx.Tx
}

// GetUserForUpdate locks the target row for the rest of the transaction so
// the subsequent admin count cannot race a concurrent mutation of the same
// user.
func (r *pgTxRepository) GetUserForUpdate(ctx context.Context, id int64) (*User, error) {
	var u User
	err := scanUser(r.tx.QueryRow(ctx, `
		SELECT u.id, u.email, u.name, u.role_id, r.name, u.is_active, u.created_at, u.updated_at
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.id = $1
		FOR UPDATE OF u`, id), &u)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// CountActiveAdminsExcluding locks the counted rows, not just the target.
// Two transactions each demoting one of the last two administrators would
// otherwise both count the other as still active and both commit; with the
// locks they collide on each other's rows and one aborts.
func (r *pgTxRepository) CountActiveAdminsExcluding(ctx context.Context, excludeUserID int64) (int, error) {
	var count int
	err := r.tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM (
			SELECT u.id
			FROM users u
			JOIN roles r ON r.id = u.role_id
			WHERE r.name = $1 AND u.is_active AND u.id <> $2
			FOR UPDATE OF u
		) admins`,
		rbac.RoleAdministrator, excludeUserID).Scan(&count)
	return count, err
}

func (r *pgTxRepository) GetRoleID(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `SELECT id FROM roles WHERE name = $1`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return id, nil
}

func (r *pgTxRepository) InsertUser(ctx context.Context, email, passwordHash, name string, roleID int64) (*User, error) {
	var u User
	err := scanUser(r.tx.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO users (email, password_hash, name, role_id, is_active, created_at, updated_at)
			VALUES (LOWER($1), $2, $3, $4, TRUE, NOW(), NOW())
			RETURNING id, email, name, role_id, is_active, created_at, updated_at
		)
		SELECT i.id, i.email, i.name, i.role_id, r.name, i.is_active, i.created_at, i.updated_at
		FROM inserted i
		JOIN roles r ON r.id = i.role_id`, email, passwordHash, name, roleID), &u)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, shared.ErrDuplicate
		}
		return nil, err
	}
	return &u, nil
}

func (r *pgTxRepository) UpdateUser(ctx context.Context, id int64, name string, roleID int64) error {
	tag, err := r.tx.Exec(ctx, `
		UPDATE users SET name = $2, role_id = $3, updated_at = NOW() WHERE id = $1`,
		id, name, roleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgTxRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.tx.Exec(ctx, `
		UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row, u *User) error {
	return row.Scan(&u.ID, &u.Email, &u.Name, &u.RoleID, &u.RoleName, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ Repository = (*PGRepository)(nil)
var _ TxRepository = (*pgTxRepository)(nil)

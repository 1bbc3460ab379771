package rbac

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-hr/meridian/internal/platform/db"
)

// SeedStore is the storage surface the seeder writes through. All methods
// use upsert semantics keyed on natural uniqueness: role name, the
// (module, action) pair, and the (role, permission) pair.
type SeedStore interface {
	UpsertRole(ctx context.Context, name, description string) (int64, error)
	UpsertPermission(ctx context.Context, module, action string) (int64, error)
	EnsureGrant(ctx context.Context, roleID, permissionID int64) error
	CountActiveUsersWithRole(ctx context.Context, roleName string) (int, error)
	InsertUser(ctx context.Context, email, passwordHash, name string, roleID int64) error
}

// BootstrapAdmin describes the initial Administrator account created when the
// system has no active Administrator yet.
type BootstrapAdmin struct {
	Email    string
	Password string
	Name     string
}

// Seed materializes roles, the permission catalog and role grants, and
// guarantees an active Administrator exists. The whole pass runs in a single
// transaction; any failure rolls everything back so the service never starts
// with a partial permission matrix.
//
// Seeding is idempotent and additive: re-running resets role descriptions to
// their canonical text but never removes permissions or revokes grants, so
// manually adjusted grants survive restarts.
func Seed(ctx context.Context, pool *pgxpool.Pool, admin BootstrapAdmin) error {
	return db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		return runSeed(ctx, &pgSeedStore{tx: tx}, admin)
	})
}

func runSeed(ctx context.Context, store SeedStore, admin BootstrapAdmin) error {
	roleIDs := make(map[string]int64, 3)
	for _, role := range []string{RoleAdministrator, RoleDirector, RoleHRSpecialist} {
		id, err := store.UpsertRole(ctx, role, roleDescriptions[role])
		if err != nil {
			return fmt.Errorf("rbac: upsert role %s: %w", role, err)
		}
		roleIDs[role] = id
	}

	for _, entry := range Catalog() {
		permID, err := store.UpsertPermission(ctx, entry.Module, entry.Action)
		if err != nil {
			return fmt.Errorf("rbac: upsert permission %s:%s: %w", entry.Module, entry.Action, err)
		}
		for role, roleID := range roleIDs {
			if !entry.GrantedTo(role) {
				continue
			}
			if err := store.EnsureGrant(ctx, roleID, permID); err != nil {
				return fmt.Errorf("rbac: grant %s:%s to %s: %w", entry.Module, entry.Action, role, err)
			}
		}
	}

	return ensureAdmin(ctx, store, admin, roleIDs[RoleAdministrator])
}

// ensureAdmin creates the bootstrap Administrator when no active one exists.
func ensureAdmin(ctx context.Context, store SeedStore, admin BootstrapAdmin, adminRoleID int64) error {
	if admin.Email == "" || admin.Password == "" {
		return nil
	}
	count, err := store.CountActiveUsersWithRole(ctx, RoleAdministrator)
	if err != nil {
		return fmt.Errorf("rbac: count administrators: %w", err)
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("rbac: hash bootstrap password: %w", err)
	}
	if err := store.InsertUser(ctx, admin.Email, string(hash), admin.Name, adminRoleID); err != nil {
		return fmt.Errorf("rbac: create bootstrap administrator: %w", err)
	}
	return nil
}

type pgSeedStore struct {
	tx pgx.Tx
}

func (s *pgSeedStore) UpsertRole(ctx context.Context, name, description string) (int64, error) {
	var id int64
	err := s.tx.QueryRow(ctx, `
		INSERT INTO roles (name, description)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description, updated_at = NOW()
		RETURNING id`, name, description).Scan(&id)
	return id, err
}

func (s *pgSeedStore) UpsertPermission(ctx context.Context, module, action string) (int64, error) {
	// The no-op DO UPDATE keeps RETURNING usable on conflict. Existing rows
	// are never deleted even if the in-code catalog shrinks.
	var id int64
	err := s.tx.QueryRow(ctx, `
		INSERT INTO permissions (module, action)
		VALUES ($1, $2)
		ON CONFLICT (module, action) DO UPDATE SET module = EXCLUDED.module
		RETURNING id`, module, action).Scan(&id)
	return id, err
}

func (s *pgSeedStore) EnsureGrant(ctx context.Context, roleID, permissionID int64) error {
	_, err := s.tx.Exec(ctx, `
		INSERT INTO role_permissions (role_id, permission_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, roleID, permissionID)
	return err
}

func (s *pgSeedStore) CountActiveUsersWithRole(ctx context.Context, roleName string) (int, error) {
	var count int
	err := s.tx.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE r.name = $1 AND u.is_active`, roleName).Scan(&count)
	return count, err
}

func (s *pgSeedStore) InsertUser(ctx context.Context, email, passwordHash, name string, roleID int64) error {
	_, err := s.tx.Exec(ctx, `
		INSERT INTO users (email, password_hash, name, role_id, is_active, created_at, updated_at)
		VALUES (LOWER($1), $2, $3, $4, TRUE, NOW(), NOW())
		ON CONFLICT (email) DO NOTHING`, email, passwordHash, name, roleID)
	return err
}

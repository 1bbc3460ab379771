package users

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/meridian-hr/meridian/internal/auth"
	"github.com/meridian-hr/meridian/internal/rbac"
	"github.com/meridian-hr/meridian/internal/shared"
)

// AuditRecorder persists account mutations for the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles user account management, including the admin-safety
// invariant: after every committed mutation at least one active
// Administrator must exist.
type Service struct {
	repo   Repository
	audit  AuditRecorder
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, audit AuditRecorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

// List returns a page of users.
func (s *Service) List(ctx context.Context, page, perPage int) ([]User, shared.Pagination, error) {
	p := shared.NewPagination(page, perPage, 0)
	users, total, err := s.repo.ListUsers(ctx, p.PerPage, p.Offset())
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("users: list: %w", err)
	}
	return users, shared.NewPagination(p.Page, p.PerPage, total), nil
}

// Get fetches one user.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

// Create adds a new account with a hashed password.
func (s *Service) Create(ctx context.Context, actor rbac.Identity, input CreateUserInput) (*User, error) {
	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("users: hash password: %w", err)
	}
	var created *User
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		roleID, err := tx.GetRoleID(ctx, input.RoleName)
		if err != nil {
			return fmt.Errorf("%w: unknown role", shared.ErrValidation)
		}
		created, err = tx.InsertUser(ctx, input.Email, hash, input.Name, roleID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "user.create", created.ID, map[string]any{"role": created.RoleName})
	return created, nil
}

// Update changes a user's name and role. A user may never change their own
// role, and an active Administrator cannot lose the role if no other active
// Administrator remains.
func (s *Service) Update(ctx context.Context, actor rbac.Identity, id int64, input UpdateUserInput) (*User, error) {
	var updated *User
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		target, err := tx.GetUserForUpdate(ctx, id)
		if err != nil {
			return err
		}
		roleChanged := input.RoleName != target.RoleName
		if roleChanged && actor.UserID == target.ID {
			return shared.ErrSelfRoleChange
		}
		if roleChanged && target.RoleName == rbac.RoleAdministrator && target.IsActive {
			if err := s.guardLastAdmin(ctx, tx, target.ID); err != nil {
				return err
			}
		}
		roleID, err := tx.GetRoleID(ctx, input.RoleName)
		if err != nil {
			return fmt.Errorf("%w: unknown role", shared.ErrValidation)
		}
		if err := tx.UpdateUser(ctx, target.ID, input.Name, roleID); err != nil {
			return err
		}
		updated = target
		updated.Name = input.Name
		updated.RoleID = roleID
		updated.RoleName = input.RoleName
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "user.update", updated.ID, map[string]any{"role": updated.RoleName})
	return updated, nil
}

// Deactivate soft-disables an account. Deactivating the last active
// Administrator is blocked inside the same transaction as the write.
func (s *Service) Deactivate(ctx context.Context, actor rbac.Identity, id int64) (*User, error) {
	return s.setActive(ctx, actor, id, false)
}

// Activate re-enables an account.
func (s *Service) Activate(ctx context.Context, actor rbac.Identity, id int64) (*User, error) {
	return s.setActive(ctx, actor, id, true)
}

func (s *Service) setActive(ctx context.Context, actor rbac.Identity, id int64, active bool) (*User, error) {
	var updated *User
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		target, err := tx.GetUserForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if target.IsActive == active {
			updated = target
			return nil
		}
		if !active && target.RoleName == rbac.RoleAdministrator {
			if err := s.guardLastAdmin(ctx, tx, target.ID); err != nil {
				return err
			}
		}
		if err := tx.SetActive(ctx, target.ID, active); err != nil {
			return err
		}
		updated = target
		updated.IsActive = active
		return nil
	})
	if err != nil {
		return nil, err
	}
	action := "user.deactivate"
	if active {
		action = "user.activate"
	}
	s.recordAudit(ctx, actor, action, updated.ID, nil)
	return updated, nil
}

// guardLastAdmin blocks a mutation that would leave zero active
// Administrators. The count runs inside the caller's transaction, after the
// target row has been locked, so two concurrent "remove the last two admins"
// requests serialize and the second observes the first.
func (s *Service) guardLastAdmin(ctx context.Context, tx TxRepository, targetID int64) error {
	remaining, err := tx.CountActiveAdminsExcluding(ctx, targetID)
	if err != nil {
		return fmt.Errorf("users: count administrators: %w", err)
	}
	if remaining == 0 {
		return shared.ErrLastAdmin
	}
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actor rbac.Identity, action string, targetID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.UserID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(targetID, 10),
		Meta:     meta,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("audit record", slog.Any("error", err))
	}
}

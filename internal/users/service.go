package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ortizlabs/storefront-backend/pkg/db/models"
	"github.com/ortizlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/ortizlabs/storefront-backend/pkg/errors"
	"github.com/ortizlabs/storefront-backend/pkg/pagination"
)

// Service exposes account management operations.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListByRole(ctx context.Context, role enums.UserRole, params pagination.Params) ([]models.User, string, error)
	SetActive(ctx context.Context, actorID, targetID uuid.UUID, active bool) error
	SetRole(ctx context.Context, actorID, targetID uuid.UUID, role enums.UserRole) error
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*models.User, error)
}

// UpdateProfileInput carries the fields a user may change on their own account.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Address   *string
}

type service struct {
	repo UserRepository
}

// NewService builds a users service backed by the provided repository.
func NewService(repo UserRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func (s *service) ListByRole(ctx context.Context, role enums.UserRole, params pagination.Params) ([]models.User, string, error) {
	if !role.IsValid() {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid role filter")
	}
	rows, next, err := s.repo.ListByRole(ctx, role, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return rows, next, nil
}

// SetActive blocks or unblocks an account. Admins cannot deactivate themselves.
func (s *service) SetActive(ctx context.Context, actorID, targetID uuid.UUID, active bool) error {
	if targetID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "target user id is required")
	}
	if !active && actorID == targetID {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot deactivate own account")
	}
	if _, err := s.GetByID(ctx, targetID); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, targetID, active); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update active flag")
	}
	return nil
}

// SetRole changes an account's role. Admins cannot demote themselves.
func (s *service) SetRole(ctx context.Context, actorID, targetID uuid.UUID, role enums.UserRole) error {
	if targetID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "target user id is required")
	}
	if !role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if actorID == targetID && role != enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot change own role")
	}
	if _, err := s.GetByID(ctx, targetID); err != nil {
		return err
	}
	if err := s.repo.SetRole(ctx, targetID, role); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update role")
	}
	return nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*models.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.Address != nil {
		user.Address = input.Address
	}
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	return updated, nil
}

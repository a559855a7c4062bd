package users

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ortizlabs/storefront-backend/pkg/db/models"
	"github.com/ortizlabs/storefront-backend/pkg/enums"
	"github.com/ortizlabs/storefront-backend/pkg/pagination"
)

// UserRepository defines the persistence surface required by the users service.
type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ListByRole(ctx context.Context, role enums.UserRole, params pagination.Params) ([]models.User, string, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	SetRole(ctx context.Context, id uuid.UUID, role enums.UserRole) error
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
}

package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ortizlabs/storefront-backend/pkg/db/models"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error)
	FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.CartItem, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	Create(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

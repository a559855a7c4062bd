package wishlist

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ortizlabs/storefront-backend/pkg/db/models"
)

// WishlistRepository defines the persistence surface required by the service.
type WishlistRepository interface {
	WithTx(tx *gorm.DB) WishlistRepository
	FindByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*models.WishlistItem, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error)
	Create(ctx context.Context, item *models.WishlistItem) (*models.WishlistItem, error)
	Delete(ctx context.Context, userID, productID uuid.UUID) error
}

// Repository exposes persistence operations for wishlist rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a wishlist repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) WishlistRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByUserAndProduct returns the wishlist row for a (user, product) pair.
func (r *Repository) FindByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*models.WishlistItem, error) {
	var item models.WishlistItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByUser returns the user's wishlist with products preloaded, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	var rows []models.WishlistItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Create inserts a new wishlist row.
func (r *Repository) Create(ctx context.Context, item *models.WishlistItem) (*models.WishlistItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes a product from the user's wishlist.
func (r *Repository) Delete(ctx context.Context, userID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{}).Error
}

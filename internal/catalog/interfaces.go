package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ortizlabs/storefront-backend/pkg/db/models"
	"github.com/ortizlabs/storefront-backend/pkg/pagination"
)

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID   *uuid.UUID
	Search       string
	FeaturedOnly bool
}

// ProductRepository defines the persistence surface for catalog listings.
type ProductRepository interface {
	WithTx(tx *gorm.DB) ProductRepository
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filter ProductFilter, params pagination.Params) ([]models.Product, string, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int64, error)
}

// CategoryRepository defines the persistence surface for categories.
type CategoryRepository interface {
	WithTx(tx *gorm.DB) CategoryRepository
	Create(ctx context.Context, category *models.Category) (*models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, category *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

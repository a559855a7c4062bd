package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ortizlabs/storefront-backend/pkg/db/models"
	"github.com/ortizlabs/storefront-backend/pkg/pagination"
)

// ProductRepo exposes persistence operations for product listings.
type ProductRepo struct {
	db *gorm.DB
}

// NewProductRepo constructs a product repository bound to the provided DB.
func NewProductRepo(db *gorm.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// WithTx binds the repository to a transaction.
func (r *ProductRepo) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &ProductRepo{db: tx}
}

// Create inserts a new product.
func (r *ProductRepo) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// FindByID loads a product with its category preloaded.
func (r *ProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns a filtered page of products, newest first.
func (r *ProductRepo) List(ctx context.Context, filter ProductFilter, params pagination.Params) ([]models.Product, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Preload("Category").
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if filter.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Product
	if err := query.Find(&rows).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}

// Update saves the provided product record.
func (r *ProductRepo) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes a product.
func (r *ProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}

// AdjustStock applies a guarded stock delta. Returns the number of rows
// updated; zero means the product was missing or the decrement would have
// driven stock negative.
func (r *ProductRepo) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id)
	if delta < 0 {
		query = query.Where("stock >= ?", -delta)
	}
	result := query.Update("stock", gorm.Expr("stock + ?", delta))
	return result.RowsAffected, result.Error
}

// CategoryRepo exposes persistence operations for categories.
type CategoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepo constructs a category repository bound to the provided DB.
func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// WithTx binds the repository to a transaction.
func (r *CategoryRepo) WithTx(tx *gorm.DB) CategoryRepository {
	if tx == nil {
		return r
	}
	return &CategoryRepo{db: tx}
}

// Create inserts a new category.
func (r *CategoryRepo) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// FindByID loads a category by primary key.
func (r *CategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// List returns all categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update saves the provided category record.
func (r *CategoryRepo) Update(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes a category. Products cascade via the FK constraint.
func (r *CategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{}).Error
}

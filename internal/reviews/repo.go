package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ortizlabs/storefront-backend/pkg/db/models"
)

// ReviewRepository defines the persistence surface required by the service.
type ReviewRepository interface {
	WithTx(tx *gorm.DB) ReviewRepository
	Create(ctx context.Context, review *models.Review) (*models.Review, error)
	FindByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*models.Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error)
	AverageRating(ctx context.Context, productID uuid.UUID) (float64, int64, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// Repository exposes persistence operations for product reviews.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a review repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) ReviewRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new review.
func (r *Repository) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// FindByUserAndProduct returns the user's existing review for a product.
func (r *Repository) FindByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ListByProduct returns a product's reviews, newest first.
func (r *Repository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error) {
	var rows []models.Review
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// AverageRating returns the mean rating and review count for a product.
func (r *Repository) AverageRating(ctx context.Context, productID uuid.UUID) (float64, int64, error) {
	var row struct {
		Avg   float64
		Total int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS total").
		Where("product_id = ?", productID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Avg, row.Total, nil
}

// Delete removes a review owned by the user.
func (r *Repository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Review{}).Error
}

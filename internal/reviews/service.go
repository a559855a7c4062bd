package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ortizlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ortizlabs/storefront-backend/pkg/errors"
)

type productLoader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// CreateInput carries a new review submission.
type CreateInput struct {
	ProductID uuid.UUID
	Rating    int
	Comment   string
}

// ProductRating is the aggregate shown on product pages.
type ProductRating struct {
	Average float64
	Count   int64
}

// Service exposes review operations.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, *ProductRating, error)
	Delete(ctx context.Context, userID, reviewID uuid.UUID) error
}

type service struct {
	repo    ReviewRepository
	catalog productLoader
}

// NewService builds a reviews service backed by the provided stack.
func NewService(repo ReviewRepository, catalog productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("review repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, catalog: catalog}, nil
}

// Create records a review. One review per customer per product.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.Review, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	if _, err := s.catalog.GetProduct(ctx, input.ProductID); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByUserAndProduct(ctx, userID, input.ProductID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already reviewed")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing review")
	}

	review := &models.Review{
		UserID:    userID,
		ProductID: input.ProductID,
		Rating:    input.Rating,
		Comment:   strings.TrimSpace(input.Comment),
	}
	created, err := s.repo.Create(ctx, review)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}
	return created, nil
}

func (s *service) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, *ProductRating, error) {
	if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
		return nil, nil, err
	}
	rows, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	avg, count, err := s.repo.AverageRating(ctx, productID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate ratings")
	}
	return rows, &ProductRating{Average: avg, Count: count}, nil
}

func (s *service) Delete(ctx context.Context, userID, reviewID uuid.UUID) error {
	if userID == uuid.Nil || reviewID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id and review id are required")
	}
	if err := s.repo.Delete(ctx, reviewID, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete review")
	}
	return nil
}

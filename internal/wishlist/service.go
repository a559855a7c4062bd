package wishlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ortizlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ortizlabs/storefront-backend/pkg/errors"
)

type productLoader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes wishlist operations for customers.
type Service interface {
	Add(ctx context.Context, userID, productID uuid.UUID) (*models.WishlistItem, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error)
}

type service struct {
	repo    WishlistRepository
	catalog productLoader
}

// NewService builds a wishlist service backed by the provided stack.
func NewService(repo WishlistRepository, catalog productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wishlist repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, catalog: catalog}, nil
}

// Add is idempotent; re-adding a wished product returns the existing row.
func (s *service) Add(ctx context.Context, userID, productID uuid.UUID) (*models.WishlistItem, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByUserAndProduct(ctx, userID, productID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist item")
	}

	created, err := s.repo.Create(ctx, &models.WishlistItem{UserID: userID, ProductID: productID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create wishlist item")
	}
	return created, nil
}

func (s *service) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	if userID == uuid.Nil || productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id and product id are required")
	}
	if err := s.repo.Delete(ctx, userID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete wishlist item")
	}
	return nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlist")
	}
	return rows, nil
}

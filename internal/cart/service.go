package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ortizlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ortizlabs/storefront-backend/pkg/errors"
)

type productLoader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Summary is a cart snapshot with the computed total.
type Summary struct {
	Items []models.CartItem
	Total decimal.Decimal
}

// Service exposes cart operations for customers.
type Service interface {
	Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartItem, error)
	SetQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.CartItem, error)
	Remove(ctx context.Context, userID, itemID uuid.UUID) error
	Get(ctx context.Context, userID uuid.UUID) (*Summary, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo    CartRepository
	catalog productLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, catalog productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, catalog: catalog}, nil
}

// Add puts a product in the cart. Re-adding an existing product increments
// its quantity instead of creating a second row.
func (s *service) Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartItem, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if quantity <= 0 {
		quantity = 1
	}

	if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByUserAndProduct(ctx, userID, productID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
		}
		item := &models.CartItem{
			UserID:    userID,
			ProductID: productID,
			Quantity:  quantity,
		}
		created, createErr := s.repo.Create(ctx, item)
		if createErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "create cart item")
		}
		return created, nil
	}

	existing.Quantity += quantity
	if err := s.repo.UpdateQuantity(ctx, existing.ID, existing.Quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment cart item")
	}
	return existing, nil
}

// SetQuantity replaces an item's quantity. Quantities below one are rejected;
// removal is an explicit operation.
func (s *service) SetQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	item, err := s.findOwned(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateQuantity(ctx, item.ID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart quantity")
	}
	item.Quantity = quantity
	return item, nil
}

// Remove deletes an item from the user's cart.
func (s *service) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	if _, err := s.findOwned(ctx, userID, itemID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, itemID, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
	}
	return nil
}

// Get returns the cart contents and the live-price total.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart items")
	}
	return &Summary{Items: items, Total: Total(items)}, nil
}

// Clear drops every item in the user's cart.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// Total sums quantity times current product price across the cart.
func Total(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		line := item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total
}

func (s *service) findOwned(ctx context.Context, userID, itemID uuid.UUID) (*models.CartItem, error) {
	if userID == uuid.Nil || itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and item id are required")
	}
	item, err := s.repo.FindByIDAndUser(ctx, itemID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	return item, nil
}

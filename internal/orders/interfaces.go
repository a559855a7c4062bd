package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ortizlabs/storefront-backend/pkg/db/models"
	"github.com/ortizlabs/storefront-backend/pkg/enums"
	"github.com/ortizlabs/storefront-backend/pkg/pagination"
)

// OrderFilter narrows admin order listings.
type OrderFilter struct {
	Status     *enums.OrderStatus
	CustomerID *uuid.UUID
}

// OrderRepository defines the persistence surface required by the orders service.
type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIDAndCustomer(ctx context.Context, id, customerID uuid.UUID) (*models.Order, error)
	FindByIDAndDeliveryPerson(ctx context.Context, id, deliveryPersonID uuid.UUID) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
	ListByDeliveryPerson(ctx context.Context, deliveryPersonID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
	List(ctx context.Context, filter OrderFilter, params pagination.Params) ([]models.Order, string, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
	AssignDeliveryPerson(ctx context.Context, id, deliveryPersonID uuid.UUID, status enums.OrderStatus) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	FindPaymentByOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)

	CreateDeliveryEvent(ctx context.Context, event *models.DeliveryEvent) (*models.DeliveryEvent, error)
	ListDeliveryEvents(ctx context.Context, orderID uuid.UUID) ([]models.DeliveryEvent, error)
}

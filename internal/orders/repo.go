package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ortizlabs/storefront-backend/pkg/db/models"
	"github.com/ortizlabs/storefront-backend/pkg/enums"
	"github.com/ortizlabs/storefront-backend/pkg/pagination"
)

// Repository exposes persistence operations for orders, payments, and
// delivery events.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an order repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new order together with its items.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.Status == "" {
		order.Status = enums.OrderStatusPending
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindByID loads an order with items and products preloaded.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDAndCustomer returns an order restricted to the owning customer.
func (r *Repository) FindByIDAndCustomer(ctx context.Context, id, customerID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Where("id = ? AND customer_id = ?", id, customerID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDAndDeliveryPerson returns an order restricted to its assigned courier.
func (r *Repository) FindByIDAndDeliveryPerson(ctx context.Context, id, deliveryPersonID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND delivery_person_id = ?", id, deliveryPersonID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByCustomer returns the customer's orders, newest first.
func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	return r.listOrders(ctx, params, func(query *gorm.DB) *gorm.DB {
		return query.Where("customer_id = ?", customerID)
	})
}

// ListByDeliveryPerson returns the courier's assigned orders, newest first.
func (r *Repository) ListByDeliveryPerson(ctx context.Context, deliveryPersonID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	return r.listOrders(ctx, params, func(query *gorm.DB) *gorm.DB {
		return query.Where("delivery_person_id = ?", deliveryPersonID)
	})
}

// List returns a filtered page of all orders for admin views.
func (r *Repository) List(ctx context.Context, filter OrderFilter, params pagination.Params) ([]models.Order, string, error) {
	return r.listOrders(ctx, params, func(query *gorm.DB) *gorm.DB {
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.CustomerID != nil {
			query = query.Where("customer_id = ?", *filter.CustomerID)
		}
		return query
	})
}

func (r *Repository) listOrders(ctx context.Context, params pagination.Params, scope func(*gorm.DB) *gorm.DB) ([]models.Order, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := scope(r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Order("created_at DESC, id DESC").
		Limit(limit + 1))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
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

// UpdateStatus sets the order's projected status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// AssignDeliveryPerson writes the courier and projected status in one update.
func (r *Repository) AssignDeliveryPerson(ctx context.Context, id, deliveryPersonID uuid.UUID, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"delivery_person_id": deliveryPersonID,
			"status":             status,
		}).Error
}

// Delete removes an order row. Items, payments, and delivery events are
// dropped by the OnDelete:CASCADE constraints on their foreign keys.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Order{}).Error
}

// CreatePayment inserts a payment record.
func (r *Repository) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if payment.Status == "" {
		payment.Status = enums.PaymentStatusPending
	}
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

// FindPaymentByOrder loads the payment tied to an order.
func (r *Repository) FindPaymentByOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// CreateDeliveryEvent appends a delivery history record.
func (r *Repository) CreateDeliveryEvent(ctx context.Context, event *models.DeliveryEvent) (*models.DeliveryEvent, error) {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// ListDeliveryEvents returns an order's delivery history, oldest first.
func (r *Repository) ListDeliveryEvents(ctx context.Context, orderID uuid.UUID) ([]models.DeliveryEvent, error) {
	var rows []models.DeliveryEvent
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ortizlabs/storefront-backend/internal/cart"
	"github.com/ortizlabs/storefront-backend/internal/catalog"
	"github.com/ortizlabs/storefront-backend/pkg/config"
	"github.com/ortizlabs/storefront-backend/pkg/db/models"
	"github.com/ortizlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/ortizlabs/storefront-backend/pkg/errors"
	"github.com/ortizlabs/storefront-backend/pkg/logger"
	"github.com/ortizlabs/storefront-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// PlaceOrderInput captures the checkout payload shared by cart checkout and
// buy-now.
type PlaceOrderInput struct {
	Address       string
	PaymentMethod enums.PaymentMethod
}

// UpdateDeliveryInput carries a courier's progress report.
type UpdateDeliveryInput struct {
	Status enums.DeliveryStatus
	Notes  *string
}

// Service exposes the order lifecycle: placement, assignment, delivery
// progress, and queries.
type Service interface {
	CheckoutCart(ctx context.Context, customerID uuid.UUID, input PlaceOrderInput) (*models.Order, error)
	BuyNow(ctx context.Context, customerID, productID uuid.UUID, quantity int, input PlaceOrderInput) (*models.Order, error)

	GetOwn(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error)
	ListOwn(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
	CancelOwn(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error)

	List(ctx context.Context, filter OrderFilter, params pagination.Params) ([]models.Order, string, error)
	Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	SetStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*models.Order, error)
	AssignDelivery(ctx context.Context, orderID, deliveryPersonID uuid.UUID) (*models.Order, error)
	Delete(ctx context.Context, orderID uuid.UUID) error

	ListAssigned(ctx context.Context, deliveryPersonID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
	UpdateDeliveryStatus(ctx context.Context, deliveryPersonID, orderID uuid.UUID, input UpdateDeliveryInput) (*models.Order, error)
	DeliveryHistory(ctx context.Context, orderID uuid.UUID) ([]models.DeliveryEvent, error)
	DeliveryHistoryFor(ctx context.Context, deliveryPersonID, orderID uuid.UUID) ([]models.DeliveryEvent, error)
	GetPayment(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
}

type service struct {
	repo     OrderRepository
	cartRepo cart.CartRepository
	products catalog.ProductRepository
	users    userLoader
	tx       txRunner
	cfg      config.CheckoutConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds an orders service backed by the provided stack.
func NewService(
	repo OrderRepository,
	cartRepo cart.CartRepository,
	products catalog.ProductRepository,
	users userLoader,
	tx txRunner,
	cfg config.CheckoutConfig,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user loader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		cartRepo: cartRepo,
		products: products,
		users:    users,
		tx:       tx,
		cfg:      cfg,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// CheckoutCart converts the customer's cart into an order atomically. Line
// prices are snapshotted at placement time and the cart is emptied in the
// same transaction.
func (s *service) CheckoutCart(ctx context.Context, customerID uuid.UUID, input PlaceOrderInput) (*models.Order, error) {
	if err := validatePlaceOrderInput(customerID, input); err != nil {
		return nil, err
	}
	address, err := s.resolveAddress(ctx, customerID, input.Address)
	if err != nil {
		return nil, err
	}
	input.Address = address

	items, err := s.cartRepo.ListByUser(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	lines := make([]orderLine, 0, len(items))
	for _, item := range items {
		if item.Product == nil {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart references a missing product")
		}
		lines = append(lines, orderLine{
			productID: item.ProductID,
			quantity:  item.Quantity,
			price:     item.Product.Price,
		})
	}

	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		placed, txErr := s.placeOrder(ctx, tx, customerID, lines, input)
		if txErr != nil {
			return txErr
		}
		if txErr := s.cartRepo.WithTx(tx).DeleteByUser(ctx, customerID); txErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "clear cart")
		}
		order = placed
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id": order.ID.String(),
		"total":    order.TotalAmount.String(),
	}), "order placed from cart")
	return order, nil
}

// BuyNow places a single-product order without touching the cart. A missing
// or non-positive quantity defaults to one.
func (s *service) BuyNow(ctx context.Context, customerID, productID uuid.UUID, quantity int, input PlaceOrderInput) (*models.Order, error) {
	if err := validatePlaceOrderInput(customerID, input); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity < 1 {
		quantity = 1
	}
	address, err := s.resolveAddress(ctx, customerID, input.Address)
	if err != nil {
		return nil, err
	}
	input.Address = address

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	lines := []orderLine{{productID: product.ID, quantity: quantity, price: product.Price}}

	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		placed, txErr := s.placeOrder(ctx, tx, customerID, lines, input)
		if txErr != nil {
			return txErr
		}
		order = placed
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "order_id", order.ID.String()), "buy-now order placed")
	return order, nil
}

func (s *service) GetOwn(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error) {
	if customerID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id and order id are required")
	}
	order, err := s.repo.FindByIDAndCustomer(ctx, orderID, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListOwn(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	if customerID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	rows, next, err := s.repo.ListByCustomer(ctx, customerID, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, next, nil
}

// CancelOwn lets a customer cancel an order that is still pending.
func (s *service) CancelOwn(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.GetOwn(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(
			pkgerrors.CodeStateConflict,
			fmt.Sprintf("order in status %s can no longer be cancelled", order.Status),
		)
	}
	if err := s.repo.UpdateStatus(ctx, order.ID, enums.OrderStatusCancelled); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}
	order.Status = enums.OrderStatusCancelled
	return order, nil
}

func (s *service) List(ctx context.Context, filter OrderFilter, params pagination.Params) ([]models.Order, string, error) {
	rows, next, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, next, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// SetStatus lets an admin force a lifecycle transition, subject to the same
// guard table as every other status change.
func (s *service) SetStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := GuardTransition(order.Status, status); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, order.ID, status); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	order.Status = status
	return order, nil
}

// AssignDelivery hands an order to a courier. The courier reference, the
// projected status, and the opening delivery event are written in one
// transaction.
func (s *service) AssignDelivery(ctx context.Context, orderID, deliveryPersonID uuid.UUID) (*models.Order, error) {
	if deliveryPersonID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery person id is required")
	}

	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := GuardTransition(order.Status, enums.OrderStatusProcessing); err != nil {
		return nil, err
	}

	courier, err := s.users.FindByID(ctx, deliveryPersonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery person not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery person")
	}
	if courier.Role != enums.UserRoleDelivery {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignee is not delivery personnel")
	}
	if !courier.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery person is deactivated")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if txErr := repo.AssignDeliveryPerson(ctx, order.ID, courier.ID, enums.OrderStatusProcessing); txErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "assign delivery person")
		}
		event := &models.DeliveryEvent{
			OrderID:          order.ID,
			DeliveryPersonID: &courier.ID,
			Status:           enums.DeliveryStatusAssigned,
		}
		if _, txErr := repo.CreateDeliveryEvent(ctx, event); txErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "record assignment event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.DeliveryPersonID = &courier.ID
	order.Status = enums.OrderStatusProcessing

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":           order.ID.String(),
		"delivery_person_id": courier.ID.String(),
	}), "order assigned to courier")
	return order, nil
}

// Delete removes an order outright; items, payments, and delivery events
// follow through the declared cascades.
func (s *service) Delete(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, order.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	s.logg.Info(s.logg.WithField(ctx, "order_id", order.ID.String()), "order deleted")
	return nil
}

func (s *service) ListAssigned(ctx context.Context, deliveryPersonID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	if deliveryPersonID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "delivery person id is required")
	}
	rows, next, err := s.repo.ListByDeliveryPerson(ctx, deliveryPersonID, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assigned orders")
	}
	return rows, next, nil
}

// UpdateDeliveryStatus appends a delivery event and refreshes the order's
// projected status in the same transaction. Couriers only see orders
// assigned to them; anything else reads as not found.
func (s *service) UpdateDeliveryStatus(ctx context.Context, deliveryPersonID, orderID uuid.UUID, input UpdateDeliveryInput) (*models.Order, error) {
	if deliveryPersonID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery person id and order id are required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery status")
	}

	order, err := s.repo.FindByIDAndDeliveryPerson(ctx, orderID, deliveryPersonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	projected, err := ProjectDeliveryStatus(input.Status)
	if err != nil {
		return nil, err
	}
	if projected != order.Status {
		if err := GuardTransition(order.Status, projected); err != nil {
			return nil, err
		}
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		event := &models.DeliveryEvent{
			OrderID:          order.ID,
			DeliveryPersonID: &deliveryPersonID,
			Status:           input.Status,
			Notes:            input.Notes,
		}
		if _, txErr := repo.CreateDeliveryEvent(ctx, event); txErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "record delivery event")
		}
		if projected != order.Status {
			if txErr := repo.UpdateStatus(ctx, order.ID, projected); txErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "project order status")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Status = projected
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":        order.ID.String(),
		"delivery_status": input.Status.String(),
	}), "delivery status updated")
	return order, nil
}

// DeliveryHistory returns an order's full event log. It performs no actor
// scoping and is reserved for admin surfaces.
func (s *service) DeliveryHistory(ctx context.Context, orderID uuid.UUID) ([]models.DeliveryEvent, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	rows, err := s.repo.ListDeliveryEvents(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivery events")
	}
	return rows, nil
}

// DeliveryHistoryFor is the courier-facing variant: the order must be
// assigned to the actor, otherwise it reads as not found.
func (s *service) DeliveryHistoryFor(ctx context.Context, deliveryPersonID, orderID uuid.UUID) ([]models.DeliveryEvent, error) {
	if deliveryPersonID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery person id and order id are required")
	}
	order, err := s.repo.FindByIDAndDeliveryPerson(ctx, orderID, deliveryPersonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return s.DeliveryHistory(ctx, order.ID)
}

func (s *service) GetPayment(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	payment, err := s.repo.FindPaymentByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	return payment, nil
}

type orderLine struct {
	productID uuid.UUID
	quantity  int
	price     decimal.Decimal
}

// placeOrder writes the order, its items, and the payment record inside the
// caller's transaction. Stock is only touched when strict stock is enabled.
func (s *service) placeOrder(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, lines []orderLine, input PlaceOrderInput) (*models.Order, error) {
	repo := s.repo.WithTx(tx)

	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		lineTotal := line.price.Mul(decimal.NewFromInt(int64(line.quantity)))
		total = total.Add(lineTotal)
		items = append(items, models.OrderItem{
			ProductID: line.productID,
			Quantity:  line.quantity,
			Price:     line.price,
		})
	}

	if s.cfg.StrictStock {
		products := s.products.WithTx(tx)
		for _, line := range lines {
			affected, err := products.AdjustStock(ctx, line.productID, -line.quantity)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}
			if affected == 0 {
				return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock")
			}
		}
	}

	order := &models.Order{
		CustomerID:    customerID,
		Status:        enums.OrderStatusPending,
		PaymentMethod: input.PaymentMethod,
		TotalAmount:   total,
		Address:       strings.TrimSpace(input.Address),
		Items:         items,
	}
	created, err := repo.Create(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	payment := &models.Payment{
		OrderID: created.ID,
		Method:  input.PaymentMethod,
		Status:  enums.PaymentStatusPending,
	}
	if input.PaymentMethod == enums.PaymentMethodOnline {
		now := s.now().UTC()
		txnID := uuid.NewString()
		payment.Status = enums.PaymentStatusSuccess
		payment.TransactionID = &txnID
		payment.PaidAt = &now
	}
	if _, err := repo.CreatePayment(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
	}

	return created, nil
}

func validatePlaceOrderInput(customerID uuid.UUID, input PlaceOrderInput) error {
	if customerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	return nil
}

// resolveAddress prefers the supplied address and falls back to the address
// on the customer's profile. Only when both are blank is the order rejected.
func (s *service) resolveAddress(ctx context.Context, customerID uuid.UUID, supplied string) (string, error) {
	if address := strings.TrimSpace(supplied); address != "" {
		return address, nil
	}

	customer, err := s.users.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "customer not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	if customer.Address != nil {
		if address := strings.TrimSpace(*customer.Address); address != "" {
			return address, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, "delivery address is required")
}

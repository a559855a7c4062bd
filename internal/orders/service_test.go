package orders

import (
	"context"
	"io"
	"testing"

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

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOrderRepo struct {
	orders        map[uuid.UUID]*models.Order
	events        []*models.DeliveryEvent
	payments      []*models.Payment
	statusUpdates map[uuid.UUID]enums.OrderStatus
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{
		orders:        map[uuid.UUID]*models.Order{},
		statusUpdates: map[uuid.UUID]enums.OrderStatus{},
	}
}

func (s *stubOrderRepo) WithTx(tx *gorm.DB) OrderRepository { return s }

func (s *stubOrderRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	order.ID = uuid.New()
	if order.Status == "" {
		order.Status = enums.OrderStatusPending
	}
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if order, ok := s.orders[id]; ok {
		return order, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderRepo) FindByIDAndCustomer(ctx context.Context, id, customerID uuid.UUID) (*models.Order, error) {
	if order, ok := s.orders[id]; ok && order.CustomerID == customerID {
		return order, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderRepo) FindByIDAndDeliveryPerson(ctx context.Context, id, deliveryPersonID uuid.UUID) (*models.Order, error) {
	if order, ok := s.orders[id]; ok && order.DeliveryPersonID != nil && *order.DeliveryPersonID == deliveryPersonID {
		return order, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	var rows []models.Order
	for _, order := range s.orders {
		if order.CustomerID == customerID {
			rows = append(rows, *order)
		}
	}
	return rows, "", nil
}

func (s *stubOrderRepo) ListByDeliveryPerson(ctx context.Context, deliveryPersonID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	var rows []models.Order
	for _, order := range s.orders {
		if order.DeliveryPersonID != nil && *order.DeliveryPersonID == deliveryPersonID {
			rows = append(rows, *order)
		}
	}
	return rows, "", nil
}

func (s *stubOrderRepo) List(ctx context.Context, filter OrderFilter, params pagination.Params) ([]models.Order, string, error) {
	var rows []models.Order
	for _, order := range s.orders {
		rows = append(rows, *order)
	}
	return rows, "", nil
}

func (s *stubOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	s.statusUpdates[id] = status
	if order, ok := s.orders[id]; ok {
		order.Status = status
	}
	return nil
}

func (s *stubOrderRepo) AssignDeliveryPerson(ctx context.Context, id, deliveryPersonID uuid.UUID, status enums.OrderStatus) error {
	if order, ok := s.orders[id]; ok {
		assignee := deliveryPersonID
		order.DeliveryPersonID = &assignee
		order.Status = status
	}
	return nil
}

func (s *stubOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.orders, id)
	return nil
}

func (s *stubOrderRepo) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	payment.ID = uuid.New()
	s.payments = append(s.payments, payment)
	return payment, nil
}

func (s *stubOrderRepo) FindPaymentByOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	for _, payment := range s.payments {
		if payment.OrderID == orderID {
			return payment, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderRepo) CreateDeliveryEvent(ctx context.Context, event *models.DeliveryEvent) (*models.DeliveryEvent, error) {
	event.ID = uuid.New()
	s.events = append(s.events, event)
	return event, nil
}

func (s *stubOrderRepo) ListDeliveryEvents(ctx context.Context, orderID uuid.UUID) ([]models.DeliveryEvent, error) {
	var rows []models.DeliveryEvent
	for _, event := range s.events {
		if event.OrderID == orderID {
			rows = append(rows, *event)
		}
	}
	return rows, nil
}

type stubCartRepo struct {
	items   []models.CartItem
	cleared bool
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) cart.CartRepository { return s }

func (s *stubCartRepo) FindByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCartRepo) FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.CartItem, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCartRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	return s.items, nil
}

func (s *stubCartRepo) Create(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	return item, nil
}

func (s *stubCartRepo) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	return nil
}

func (s *stubCartRepo) Delete(ctx context.Context, id, userID uuid.UUID) error { return nil }

func (s *stubCartRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	s.cleared = true
	s.items = nil
	return nil
}

type stubProductRepo struct {
	products map[uuid.UUID]*models.Product
	stock    map[uuid.UUID]int
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{
		products: map[uuid.UUID]*models.Product{},
		stock:    map[uuid.UUID]int{},
	}
}

func (s *stubProductRepo) WithTx(tx *gorm.DB) catalog.ProductRepository { return s }

func (s *stubProductRepo) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	return product, nil
}

func (s *stubProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if product, ok := s.products[id]; ok {
		return product, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProductRepo) List(ctx context.Context, filter catalog.ProductFilter, params pagination.Params) ([]models.Product, string, error) {
	return nil, "", nil
}

func (s *stubProductRepo) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	return product, nil
}

func (s *stubProductRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (s *stubProductRepo) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int64, error) {
	current, ok := s.stock[id]
	if !ok {
		return 0, nil
	}
	if delta < 0 && current < -delta {
		return 0, nil
	}
	s.stock[id] = current + delta
	return 1, nil
}

type stubUsers struct {
	users map[uuid.UUID]*models.User
}

func (s *stubUsers) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type testStack struct {
	svc      Service
	repo     *stubOrderRepo
	cartRepo *stubCartRepo
	products *stubProductRepo
	users    *stubUsers
}

func newTestStack(t *testing.T, cfg config.CheckoutConfig) *testStack {
	t.Helper()
	repo := newStubOrderRepo()
	cartRepo := &stubCartRepo{}
	products := newStubProductRepo()
	users := &stubUsers{users: map[uuid.UUID]*models.User{}}
	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})

	svc, err := NewService(repo, cartRepo, products, users, stubTx{}, cfg, logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &testStack{svc: svc, repo: repo, cartRepo: cartRepo, products: products, users: users}
}

func cartItem(productID uuid.UUID, qty int, price string) models.CartItem {
	return models.CartItem{
		ID:        uuid.New(),
		ProductID: productID,
		Quantity:  qty,
		Product:   &models.Product{ID: productID, Price: decimal.RequireFromString(price)},
	}
}

func TestCheckoutCartSnapshotsPricesAndClearsCart(t *testing.T) {
	t.Parallel()

	stack := newTestStack(t, config.CheckoutConfig{})
	customerID := uuid.New()
	stack.cartRepo.items = []models.CartItem{
		cartItem(uuid.New(), 2, "10.00"),
		cartItem(uuid.New(), 1, "5.50"),
	}

	order, err := stack.svc.CheckoutCart(context.Background(), customerID, PlaceOrderInput{
		Address:       "12 Elm Street",
		PaymentMethod: enums.PaymentMethodCOD,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !order.TotalAmount.Equal(decimal.RequireFromString("25.50")) {
		t.Fatalf("expected total 25.50, got %s", order.TotalAmount)
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending order, got %s", order.Status)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 order items, got %d", len(order.Items))
	}
	if !stack.cartRepo.cleared {
		t.Fatal("expected cart to be cleared in the same transaction")
	}
	if len(stack.repo.payments) != 1 {
		t.Fatalf("expected a payment record, got %d", len(stack.repo.payments))
	}
	if stack.repo.payments[0].Status != enums.PaymentStatusPending {
		t.Fatalf("expected pending COD payment, got %s", stack.repo.payments[0].Status)
	}
}

func TestCheckoutEmptyCartRejected(t *testing.T) {
	t.Parallel()

	stack := newTestStack(t, config.CheckoutConfig{})

	_, err := stack.svc.CheckoutCart(context.Background(), uuid.New(), PlaceOrderInput{
		Address:       "12 Elm Street",
		PaymentMethod: enums.PaymentMethodCOD,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty cart, got %v", err)
	}
}

func TestCheckoutStrictStockConflict(t *testing.T) {
	t.Parallel()

	stack := newTestStack(t, config.CheckoutConfig{StrictStock: true})
	productID := uuid.New()
	stack.products.stock[productID] = 1
	stack.cartRepo.items = []models.CartItem{cartItem(productID, 3, "10.00")}

	_, err := stack.svc.CheckoutCart(context.Background(), uuid.New(), PlaceOrderInput{
		Address:       "12 Elm Street",
		PaymentMethod: enums.PaymentMethodCOD,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for insufficient stock, got %v", err)
	}
}

func TestCheckoutFallsBackToProfileAddress(t *testing.T) {
	t.Parallel()

	stack := newTestStack(t, config.CheckoutConfig{})
	customerID := uuid.New()
	profileAddress := "44 Birch Lane"
	stack.users.users[customerID] = &models.User{ID: customerID, Role: enums.UserRoleCustomer, Address: &profileAddress}
	stack.cartRepo.items = []models.CartItem{cartItem(uuid.New(), 1, "10.00")}

	order, err := stack.svc.CheckoutCart(context.Background(), customerID, PlaceOrderInput{
		PaymentMethod: enums.PaymentMethodCOD,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Address != profileAddress {
		t.Fatalf("expected profile address %q, got %q", profileAddress, order.Address)
	}
}

func TestCheckoutSuppliedAddressWinsOverProfile(t *testing.T) {
	t.Parallel()

	stack := newTestStack(t, config.CheckoutConfig{})
	customerID := uuid.New()
	profileAddress := "44 Birch Lane"
	stack.users.users[customerID] = &models.User{ID: customerID, Role: enums.UserRoleCustomer, Address: &profileAddress}
	stack.cartRepo.items = []models.CartItem{cartItem(uuid.New(), 1, "10.00")}

	order, err := stack.svc.CheckoutCart(context.Background(), customerID, PlaceOrderInput{
		Address:       "12 Elm Street",
		PaymentMethod: enums.PaymentMethodCOD,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Address != "12 Elm Street" {
		t.Fatalf("expected supplied address to win, got %q", order.Address)
	}
}

func TestCheckoutRejectedWhenNoAddressAnywhere(t *testing.T) {
	t.Parallel()

	stack := newTestStack(t, config.CheckoutConfig{})
	customerID := uuid.New()
	stack.users.users[customerID] = &models.User{ID: customerID, Role: enums.UserRoleCustomer}
	stack.cartRepo.items = []models.CartItem{cartItem(uuid.New(), 1, "10.00")}

	_, err := stack.svc.CheckoutCart(context.Background(), customerID, PlaceOrderInput{
		PaymentMethod: enums.PaymentMethodCOD,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error when neither input nor profile has an address, got %v", err)
	}
}

func TestBuyNowDefaultsQuantity(t *testing.T) {
	t.Parallel()

	stack := newTestStack(t, config.CheckoutConfig{})
	product := &models.Product{ID: uuid.New(), Price: decimal.RequireFromString("7.25")}
	stack.products.products[product.ID] = product

	order, err := stack.svc.BuyNow(context.Background(), uuid.New(), product.ID, 0, PlaceOrderInput{
		Address:       "12 Elm Street",
		PaymentMethod: enums.PaymentMethodOnline,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 1 {
		t.Fatalf("expected single line with quantity 1, got %+v", order.Items)
	}
	if !order.TotalAmount.Equal(decimal.RequireFromString("7.25")) {
		t.Fatalf("expected total 7.25, got %s", order.TotalAmount)
	}
	if stack.repo.payments[0].Status != enums.PaymentStatusSuccess {
		t.Fatalf("expected online payment recorded as success, got %s", stack.repo.payments[0].Status)
	}
}

func TestAssignDeliveryWritesOrderAndEvent(t *testing.T) {
	t.Parallel()

	stack := newTestStack(t, config.CheckoutConfig{})
	order := &models.Order{CustomerID: uuid.New(), Status: enums.OrderStatusPending}
	stack.repo.Create(context.Background(), order)

	courier := &models.User{ID: uuid.New(), Role: enums.UserRoleDelivery, IsActive: true}
	stack.users.users[courier.ID] = courier

	updated, err := stack.svc.AssignDelivery(context.Background(), order.ID, courier.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != enums.OrderStatusProcessing {
		t.Fatalf("expected processing status, got %s", updated.Status)
	}
	if updated.DeliveryPersonID == nil || *updated.DeliveryPersonID != courier.ID {
		t.Fatal("expected courier to be recorded on the order")
	}
	if len(stack.repo.events) != 1 || stack.repo.events[0].Status != enums.DeliveryStatusAssigned {
		t.Fatalf("expected an assigned delivery event, got %+v", stack.repo.events)
	}
}

func TestAssignDeliveryRejectsNonCourier(t *testing.T) {
	t.Parallel()

	stack := newTestStack(t, config.CheckoutConfig{})
	order := &models.Order{CustomerID: uuid.New(), Status: enums.OrderStatusPending}
	stack.repo.Create(context.Background(), order)

	customer := &models.User{ID: uuid.New(), Role: enums.UserRoleCustomer, IsActive: true}
	stack.users.users[customer.ID] = customer

	_, err := stack.svc.AssignDelivery(context.Background(), order.ID, customer.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAssignDeliveryGuardsTerminalOrders(t *testing.T) {
	t.Parallel()

	stack := newTestStack(t, config.CheckoutConfig{})
	order := &models.Order{CustomerID: uuid.New(), Status: enums.OrderStatusDelivered}
	stack.repo.Create(context.Background(), order)

	courier := &models.User{ID: uuid.New(), Role: enums.UserRoleDelivery, IsActive: true}
	stack.users.users[courier.ID] = courier

	_, err := stack.svc.AssignDelivery(context.Background(), order.ID, courier.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestUpdateDeliveryStatusScopedToAssignee(t *testing.T) {
	t.Parallel()

	stack := newTestStack(t, config.CheckoutConfig{})
	assignee := uuid.New()
	order := &models.Order{CustomerID: uuid.New(), Status: enums.OrderStatusProcessing, DeliveryPersonID: &assignee}
	stack.repo.Create(context.Background(), order)

	_, err := stack.svc.UpdateDeliveryStatus(context.Background(), uuid.New(), order.ID, UpdateDeliveryInput{
		Status: enums.DeliveryStatusPickedUp,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unassigned courier, got %v", err)
	}
}

func TestUpdateDeliveryStatusProjectsOrderStatus(t *testing.T) {
	t.Parallel()

	stack := newTestStack(t, config.CheckoutConfig{})
	assignee := uuid.New()
	order := &models.Order{CustomerID: uuid.New(), Status: enums.OrderStatusProcessing, DeliveryPersonID: &assignee}
	stack.repo.Create(context.Background(), order)

	updated, err := stack.svc.UpdateDeliveryStatus(context.Background(), assignee, order.ID, UpdateDeliveryInput{
		Status: enums.DeliveryStatusOutForDelivery,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != enums.OrderStatusShipped {
		t.Fatalf("expected shipped projection, got %s", updated.Status)
	}

	updated, err = stack.svc.UpdateDeliveryStatus(context.Background(), assignee, order.ID, UpdateDeliveryInput{
		Status: enums.DeliveryStatusDelivered,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != enums.OrderStatusDelivered {
		t.Fatalf("expected delivered projection, got %s", updated.Status)
	}
	if len(stack.repo.events) != 2 {
		t.Fatalf("expected 2 delivery events, got %d", len(stack.repo.events))
	}
}

func TestDeliveryHistoryForScopedToAssignee(t *testing.T) {
	t.Parallel()

	stack := newTestStack(t, config.CheckoutConfig{})
	assignee := uuid.New()
	order := &models.Order{CustomerID: uuid.New(), Status: enums.OrderStatusProcessing, DeliveryPersonID: &assignee}
	stack.repo.Create(context.Background(), order)
	stack.repo.CreateDeliveryEvent(context.Background(), &models.DeliveryEvent{
		OrderID: order.ID,
		Status:  enums.DeliveryStatusAssigned,
	})

	_, err := stack.svc.DeliveryHistoryFor(context.Background(), uuid.New(), order.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for a courier the order is not assigned to, got %v", err)
	}

	events, err := stack.svc.DeliveryHistoryFor(context.Background(), assignee, order.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].Status != enums.DeliveryStatusAssigned {
		t.Fatalf("expected the assigned event for the assignee, got %+v", events)
	}
}

func TestDeleteRemovesOrder(t *testing.T) {
	t.Parallel()

	stack := newTestStack(t, config.CheckoutConfig{})
	order := &models.Order{CustomerID: uuid.New(), Status: enums.OrderStatusPending}
	stack.repo.Create(context.Background(), order)

	if err := stack.svc.Delete(context.Background(), order.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := stack.repo.orders[order.ID]; ok {
		t.Fatal("expected order to be removed")
	}

	err := stack.svc.Delete(context.Background(), order.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for a deleted order, got %v", err)
	}
}

func TestCancelOwnOnlyWhilePending(t *testing.T) {
	t.Parallel()

	stack := newTestStack(t, config.CheckoutConfig{})
	customerID := uuid.New()

	pending := &models.Order{CustomerID: customerID, Status: enums.OrderStatusPending}
	stack.repo.Create(context.Background(), pending)

	cancelled, err := stack.svc.CancelOwn(context.Background(), customerID, pending.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled status, got %s", cancelled.Status)
	}

	processing := &models.Order{CustomerID: customerID, Status: enums.OrderStatusProcessing}
	stack.repo.Create(context.Background(), processing)

	_, err = stack.svc.CancelOwn(context.Background(), customerID, processing.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

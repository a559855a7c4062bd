package reports

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ortizlabs/storefront-backend/pkg/enums"
)

func setupReportsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  delivery_person_id TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_method TEXT NOT NULL,
  total_amount NUMERIC NOT NULL,
  address TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	usersTable := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'customer',
  phone TEXT,
  address TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	productsTable := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT NOT NULL,
  price NUMERIC NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  image_path TEXT,
  is_featured INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	snapshotsTable := `
CREATE TABLE IF NOT EXISTS sales_snapshots (
  id TEXT PRIMARY KEY,
  report_type TEXT NOT NULL,
  total_sales NUMERIC NOT NULL,
  total_orders INTEGER NOT NULL,
  created_at DATETIME
);`

	for _, stmt := range []string{ordersTable, usersTable, productsTable, snapshotsTable} {
		require.NoError(t, db.Exec(stmt).Error)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM orders")
		db.Exec("DELETE FROM users")
		db.Exec("DELETE FROM products")
		db.Exec("DELETE FROM sales_snapshots")
	})

	return db
}

func insertOrder(t *testing.T, db *gorm.DB, status enums.OrderStatus, total string, createdAt time.Time) {
	t.Helper()
	err := db.Exec(
		"INSERT INTO orders (id, customer_id, status, payment_method, total_amount, address, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		uuid.NewString(), uuid.NewString(), status.String(), "cod", total, "somewhere", createdAt, createdAt,
	).Error
	require.NoError(t, err)
}

func TestSalesBetweenCountsDeliveredOnly(t *testing.T) {
	db := setupReportsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	insertOrder(t, db, enums.OrderStatusDelivered, "10.00", base)
	insertOrder(t, db, enums.OrderStatusDelivered, "15.50", base.Add(2*time.Hour))
	insertOrder(t, db, enums.OrderStatusPending, "99.99", base)
	insertOrder(t, db, enums.OrderStatusCancelled, "50.00", base)
	insertOrder(t, db, enums.OrderStatusDelivered, "42.00", base.AddDate(0, 0, 5))

	totals, err := repo.SalesBetween(ctx, base.Add(-time.Hour), base.Add(24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 2, totals.TotalOrders)
	require.True(t, totals.TotalSales.Equal(decimal.RequireFromString("25.50")),
		"expected 25.50, got %s", totals.TotalSales)
}

func TestSalesBetweenWindowIsInclusive(t *testing.T) {
	db := setupReportsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	edge := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	insertOrder(t, db, enums.OrderStatusDelivered, "7.00", edge)

	totals, err := repo.SalesBetween(ctx, edge, edge)
	require.NoError(t, err)
	require.EqualValues(t, 1, totals.TotalOrders)
}

func TestSalesBetweenEmptyWindow(t *testing.T) {
	db := setupReportsTestDB(t)
	repo := NewRepository(db)

	totals, err := repo.SalesBetween(context.Background(),
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.EqualValues(t, 0, totals.TotalOrders)
	require.True(t, totals.TotalSales.IsZero())
}

func TestCountOrdersByStatus(t *testing.T) {
	db := setupReportsTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	insertOrder(t, db, enums.OrderStatusPending, "1.00", now)
	insertOrder(t, db, enums.OrderStatusPending, "1.00", now)
	insertOrder(t, db, enums.OrderStatusDelivered, "1.00", now)

	counts, err := repo.CountOrdersByStatus(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, counts[enums.OrderStatusPending])
	require.EqualValues(t, 1, counts[enums.OrderStatusDelivered])
}

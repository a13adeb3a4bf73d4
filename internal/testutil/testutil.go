package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/medical_shop/internal/models"
	"github.com/Skotchmaster/medical_shop/internal/repo"
	"github.com/Skotchmaster/medical_shop/pkg/db"
	"github.com/Skotchmaster/medical_shop/pkg/hash"
)

// InitTestDB opens a private in-memory SQLite database with every table migrated.
func InitTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(context.Background(), "sqlite::memory:")
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(gdb))

	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

func CreateUser(t *testing.T, gdb *gorm.DB, email, password, role string) *models.User {
	t.Helper()

	pw, err := hash.HashPassword(password)
	require.NoError(t, err)

	u := &models.User{Name: "Test " + role, Email: email, PasswordHash: pw, Role: role}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

func CreateProduct(t *testing.T, gdb *gorm.DB, name string, price int64, stock int) *models.Product {
	t.Helper()

	p := &models.Product{Name: name, Description: name + " description", Price: decimal.NewFromInt(price), Stock: stock}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

func AddToCart(t *testing.T, gdb *gorm.DB, userID, productID uuid.UUID, qty int) *models.CartItem {
	t.Helper()

	item := &models.CartItem{UserID: userID, ProductID: productID, Quantity: qty}
	require.NoError(t, gdb.Create(item).Error)
	return item
}

func Stock(t *testing.T, gdb *gorm.DB, productID uuid.UUID) int {
	t.Helper()

	var p models.Product
	require.NoError(t, gdb.Where("id = ?", productID).First(&p).Error)
	return p.Stock
}

func Count(t *testing.T, gdb *gorm.DB, model any, where ...any) int64 {
	t.Helper()

	var n int64
	q := gdb.Model(model)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/freshharvest/internal/datamodels/order"
	"github.com/example/freshharvest/internal/datamodels/product"
)

// 单测用内存 SQLite，仓储只依赖 *gorm.DB，与 MySQL 行为一致
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&product.Product{}, &order.Order{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func TestProductRepoCRUD(t *testing.T) {
	repo := NewProductRepository(setupTestDB(t))
	ctx := context.Background()

	p := &product.Product{Name: "Organic Tomatoes", Price: 3.5, Category: "vegetables", Unit: "1 kg"}
	require.NoError(t, repo.Create(ctx, p))
	require.NotZero(t, p.ID)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Organic Tomatoes", got.Name)
	assert.Equal(t, 3.5, got.Price)

	got.Price = 4.0
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.Price)

	rows, err := repo.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	// 删除不存在的行影响 0 行，不报错
	rows, err = repo.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	_, err = repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProductRepoListByCategory(t *testing.T) {
	repo := NewProductRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &product.Product{Name: "Tomatoes", Price: 3.5, Category: "vegetables"}))
	require.NoError(t, repo.Create(ctx, &product.Product{Name: "Apples", Price: 4.0, Category: "fruits"}))
	require.NoError(t, repo.Create(ctx, &product.Product{Name: "Spinach", Price: 2.2, Category: "vegetables"}))

	veg, err := repo.ListByCategory(ctx, "vegetables")
	require.NoError(t, err)
	assert.Len(t, veg, 2)

	all, err := repo.ListByCategory(ctx, "All")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	all, err = repo.ListByCategory(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestOrderRepoCreateAndItemsRoundTrip(t *testing.T) {
	repo := NewOrderRepository(setupTestDB(t))
	ctx := context.Background()

	o := &order.Order{
		CustomerName: "John Doe",
		Address:      "123 Green Street",
		Phone:        "555-0101",
		TotalAmount:  17,
		Status:       order.StatusPending,
		Items: order.Items{
			{ProductID: "1", Name: "Tomatoes", Price: 12, Quantity: 1},
		},
	}
	require.NoError(t, repo.Create(ctx, o))
	require.NotZero(t, o.ID)
	assert.False(t, o.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, got.Status)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "1", got.Items[0].ProductID)
	assert.Equal(t, 12.0, got.Items[0].Price)
	assert.Equal(t, int64(1), got.Items[0].Quantity)
}

func TestOrderRepoListAllNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"first", "second", "third"} {
		o := &order.Order{
			CustomerName: name,
			Address:      "a",
			Phone:        "p",
			Status:       order.StatusPending,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, o))
	}

	list, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].CustomerName)
	assert.Equal(t, "first", list[2].CustomerName)
}

func TestOrderRepoUpdateStatus(t *testing.T) {
	repo := NewOrderRepository(setupTestDB(t))
	ctx := context.Background()

	o := &order.Order{CustomerName: "n", Address: "a", Phone: "p", Status: order.StatusPending}
	require.NoError(t, repo.Create(ctx, o))

	rows, err := repo.UpdateStatus(ctx, o.ID, order.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, got.Status)

	// 远端已无此订单时影响 0 行
	rows, err = repo.UpdateStatus(ctx, 404, order.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}

func TestOrderRepoDelete(t *testing.T) {
	repo := NewOrderRepository(setupTestDB(t))
	ctx := context.Background()

	o := &order.Order{CustomerName: "n", Address: "a", Phone: "p", Status: order.StatusPending}
	require.NoError(t, repo.Create(ctx, o))

	rows, err := repo.Delete(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.Delete(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}

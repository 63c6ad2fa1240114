package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/freshharvest/internal/datamodels/product"
)

const testKey = "sess-1"

func newCartFixture(products ...*product.Product) (*CartService, *memStore, *recPublisher) {
	repo := &mockProductRepo{list: products}
	for _, p := range products {
		if p.ID > repo.nextID {
			repo.nextID = p.ID
		}
	}
	store := newMemStore()
	pub := &recPublisher{}
	svc := NewCartService(NewCatalogService(repo), store, pub, 5)
	return svc, store, pub
}

func tomato() *product.Product {
	return &product.Product{ID: 1, Name: "Organic Tomatoes", Price: 3.50, Category: "vegetables", Unit: "1 kg"}
}

func TestCartAddPersistsAndEmits(t *testing.T) {
	svc, store, pub := newCartFixture(tomato())
	ctx := context.Background()

	view, err := svc.Add(ctx, testKey, "1", 2)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(2), view.Count)
	assert.Equal(t, 7.0, view.Totals.Subtotal)
	assert.Equal(t, 12.0, view.Totals.GrandTotal)

	// 变更完成后持久化状态与返回的内存状态一致
	persisted := store.data[testKey]
	require.Len(t, persisted, 1)
	assert.Equal(t, view.Items[0], persisted[0])

	assert.Equal(t, []string{EventAddToCart}, pub.events)
}

func TestCartAddUnknownProductIsSilentNoop(t *testing.T) {
	svc, store, pub := newCartFixture(tomato())
	ctx := context.Background()

	view, err := svc.Add(ctx, testKey, "404", 1)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Empty(t, store.data[testKey])
	assert.Empty(t, pub.events)
}

func TestCartAddSaveFailureKeepsStore(t *testing.T) {
	svc, store, pub := newCartFixture(tomato())
	ctx := context.Background()

	_, err := svc.Add(ctx, testKey, "1", 1)
	require.NoError(t, err)

	store.saveErr = errors.New("redis down")
	_, err = svc.Add(ctx, testKey, "1", 1)
	require.Error(t, err)

	// 失败的变更不会写入，事件也只有第一次的
	store.saveErr = nil
	view, err := svc.Get(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, int64(1), view.Count)
	assert.Equal(t, []string{EventAddToCart}, pub.events)
}

func TestCartAddEventFailureDoesNotFailMutation(t *testing.T) {
	svc, store, pub := newCartFixture(tomato())
	pub.err = errors.New("mq down")
	ctx := context.Background()

	view, err := svc.Add(ctx, testKey, "1", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), view.Count)
	assert.Len(t, store.data[testKey], 1)
}

func TestCartRemove(t *testing.T) {
	svc, store, pub := newCartFixture(tomato())
	ctx := context.Background()

	_, err := svc.Add(ctx, testKey, "1", 2)
	require.NoError(t, err)

	view, err := svc.Remove(ctx, testKey, "1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Empty(t, store.data[testKey])
	assert.Equal(t, []string{EventAddToCart, EventRemoveFromCart}, pub.events)

	// 再删一次是无事发生，也不再发事件
	view, err = svc.Remove(ctx, testKey, "1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, []string{EventAddToCart, EventRemoveFromCart}, pub.events)
}

func TestCartChangeQuantityToZeroRemovesLine(t *testing.T) {
	svc, _, _ := newCartFixture(&product.Product{ID: 2, Name: "Spinach", Price: 4, Category: "vegetables"})
	ctx := context.Background()

	_, err := svc.Add(ctx, testKey, "2", 1)
	require.NoError(t, err)

	view, err := svc.ChangeQuantity(ctx, testKey, "2", -1)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, int64(0), view.Count)
}

func TestCartRoundTripThroughStore(t *testing.T) {
	svc, _, _ := newCartFixture(
		tomato(),
		&product.Product{ID: 2, Name: "Spinach", Price: 2.2, Category: "vegetables"},
	)
	ctx := context.Background()

	_, err := svc.Add(ctx, testKey, "1", 2)
	require.NoError(t, err)
	before, err := svc.Add(ctx, testKey, "2", 1)
	require.NoError(t, err)

	// 重新从存储读出的序列与写入时完全一致（顺序和数值）
	after, err := svc.Get(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, before.Items, after.Items)
	assert.Equal(t, before.Totals, after.Totals)
}

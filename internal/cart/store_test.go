package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kexshop/cart/internal/blob"
	"github.com/kexshop/cart/internal/catalog"
	"github.com/kexshop/cart/internal/domain"
)

// faultyStore fails every operation, to prove storage faults never block the cart.
type faultyStore struct{}

func (faultyStore) Get(context.Context, string) (string, error) {
	return "", fmt.Errorf("storage unavailable")
}

func (faultyStore) Set(context.Context, string, string) error {
	return fmt.Errorf("storage unavailable")
}

func (faultyStore) Remove(context.Context, string) error {
	return fmt.Errorf("storage unavailable")
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func product(id, price string) *catalog.Product {
	return &catalog.Product{
		ID:    id,
		Name:  "product " + id,
		Price: dec(price),
	}
}

func discounted(id, price, discount string) *catalog.Product {
	p := product(id, price)
	d := dec(discount)
	p.DiscountPrice = &d
	return p
}

func newTestStore(t *testing.T) (*Store, *blob.MemoryStore) {
	t.Helper()
	blobs := blob.NewMemoryStore()
	return NewStore(context.Background(), blobs, zerolog.Nop()), blobs
}

func storedEntries(t *testing.T, blobs *blob.MemoryStore) []domain.CartEntry {
	t.Helper()
	raw, err := blobs.Get(context.Background(), StorageKey)
	require.NoError(t, err)
	var entries []domain.CartEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &entries))
	return entries
}

func TestAddItem_InsertsNewLine(t *testing.T) {
	sut, blobs := newTestStore(t)
	ctx := context.Background()

	entries, err := sut.AddItem(ctx, product("P1", "100"), 2, domain.Variant{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "P1", entries[0].ProductID)
	assert.Equal(t, 2, entries[0].Quantity)
	assert.False(t, entries[0].AddedAt.IsZero())

	// mutation is written through to the blob store
	persisted := storedEntries(t, blobs)
	require.Len(t, persisted, 1)
	assert.Equal(t, "P1", persisted[0].ProductID)
}

func TestAddItem_MergesOnSameKey(t *testing.T) {
	sut, _ := newTestStore(t)
	ctx := context.Background()

	_, err := sut.AddItem(ctx, product("P1", "100"), 2, domain.Variant{})
	require.NoError(t, err)
	entries, err := sut.AddItem(ctx, product("P1", "100"), 3, domain.Variant{})
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, 5, entries[0].Quantity)
	assert.Equal(t, 5, sut.ItemQuantity("P1", domain.Variant{}))
}

func TestAddItem_RepeatedAddsSumQuantities(t *testing.T) {
	sut, _ := newTestStore(t)
	ctx := context.Background()

	total := 0
	for _, q := range []int{1, 4, 2, 3} {
		total += q
		_, err := sut.AddItem(ctx, product("P1", "10"), q, domain.Variant{})
		require.NoError(t, err)
	}

	entries := sut.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, total, entries[0].Quantity)
}

func TestAddItem_VariantsStayOnSeparateLines(t *testing.T) {
	sut, _ := newTestStore(t)
	ctx := context.Background()

	_, err := sut.AddItem(ctx, product("P1", "100"), 1, domain.Variant{Size: "S"})
	require.NoError(t, err)
	entries, err := sut.AddItem(ctx, product("P1", "100"), 1, domain.Variant{Size: "L"})
	require.NoError(t, err)

	assert.Len(t, entries, 2)
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	sut, _ := newTestStore(t)
	ctx := context.Background()

	_, err := sut.AddItem(ctx, product("P1", "100"), 0, domain.Variant{})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = sut.AddItem(ctx, product("P1", "100"), -2, domain.Variant{})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	assert.Empty(t, sut.Entries())
}

func TestRemoveItem_AbsentIsNoOp(t *testing.T) {
	sut, _ := newTestStore(t)
	ctx := context.Background()

	_, err := sut.AddItem(ctx, product("P1", "100"), 1, domain.Variant{})
	require.NoError(t, err)

	sut.RemoveItem(ctx, "P2", domain.Variant{})
	assert.Len(t, sut.Entries(), 1)
}

func TestSetQuantity_ReplacesQuantity(t *testing.T) {
	sut, _ := newTestStore(t)
	ctx := context.Background()

	_, err := sut.AddItem(ctx, product("P1", "100"), 2, domain.Variant{})
	require.NoError(t, err)

	require.NoError(t, sut.SetQuantity(ctx, "P1", domain.Variant{}, 7))
	assert.Equal(t, 7, sut.ItemQuantity("P1", domain.Variant{}))
}

func TestSetQuantity_ZeroEqualsRemove(t *testing.T) {
	ctx := context.Background()

	removed, _ := newTestStore(t)
	zeroed, _ := newTestStore(t)
	for _, sut := range []*Store{removed, zeroed} {
		_, err := sut.AddItem(ctx, product("P1", "100"), 2, domain.Variant{})
		require.NoError(t, err)
		_, err = sut.AddItem(ctx, product("P2", "50"), 1, domain.Variant{})
		require.NoError(t, err)
	}

	removed.RemoveItem(ctx, "P1", domain.Variant{})
	require.NoError(t, zeroed.SetQuantity(ctx, "P1", domain.Variant{}, 0))

	// both paths leave the same single P2 line behind
	a, b := removed.Entries(), zeroed.Entries()
	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, a[0].ProductID, b[0].ProductID)
	assert.Equal(t, a[0].Quantity, b[0].Quantity)
}

func TestSetQuantity_NonPositiveOnAbsentIsNoOp(t *testing.T) {
	sut, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, sut.SetQuantity(ctx, "P1", domain.Variant{}, 0))
	require.NoError(t, sut.SetQuantity(ctx, "P1", domain.Variant{}, -1))
	assert.Empty(t, sut.Entries())
}

func TestSetQuantity_PositiveOnAbsentFails(t *testing.T) {
	sut, _ := newTestStore(t)
	ctx := context.Background()

	err := sut.SetQuantity(ctx, "P1", domain.Variant{}, 3)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestClear_IsIdempotentAndPersistsEmpty(t *testing.T) {
	sut, blobs := newTestStore(t)
	ctx := context.Background()

	_, err := sut.AddItem(ctx, product("P1", "100"), 2, domain.Variant{})
	require.NoError(t, err)

	sut.Clear(ctx)
	assert.Empty(t, sut.Entries())
	assert.Empty(t, storedEntries(t, blobs))

	sut.Clear(ctx)
	assert.Empty(t, sut.Entries())
	assert.Empty(t, storedEntries(t, blobs))
}

func TestTotal_DiscountScenario(t *testing.T) {
	sut, _ := newTestStore(t)
	ctx := context.Background()

	_, err := sut.AddItem(ctx, discounted("P1", "100", "80"), 2, domain.Variant{})
	require.NoError(t, err)
	_, err = sut.AddItem(ctx, product("P2", "50"), 1, domain.Variant{})
	require.NoError(t, err)

	assert.True(t, sut.Total().Equal(dec("210")), "got %s", sut.Total())
	assert.Equal(t, 3, sut.ItemCount())
}

func TestIsInCart(t *testing.T) {
	sut, _ := newTestStore(t)
	ctx := context.Background()

	_, err := sut.AddItem(ctx, product("P1", "100"), 1, domain.Variant{Color: "red"})
	require.NoError(t, err)

	assert.True(t, sut.IsInCart("P1", domain.Variant{Color: "red"}))
	assert.False(t, sut.IsInCart("P1", domain.Variant{}))
	assert.False(t, sut.IsInCart("P2", domain.Variant{Color: "red"}))
}

func TestHydration_RoundTrip(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemoryStore()

	first := NewStore(ctx, blobs, zerolog.Nop())
	_, err := first.AddItem(ctx, discounted("P1", "100", "80"), 2, domain.Variant{Size: "M", Color: "blue"})
	require.NoError(t, err)
	_, err = first.AddItem(ctx, product("P2", "50"), 1, domain.Variant{})
	require.NoError(t, err)

	// a fresh store hydrating from the same blob store sees identical entries
	second := NewStore(ctx, blobs, zerolog.Nop())

	want := first.Entries()
	got := second.Entries()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ProductID, got[i].ProductID)
		assert.Equal(t, want[i].Quantity, got[i].Quantity)
		assert.Equal(t, want[i].Variant, got[i].Variant)
		assert.True(t, want[i].UnitPrice.Equal(got[i].UnitPrice))
		assert.True(t, want[i].AddedAt.Equal(got[i].AddedAt))
		if want[i].DiscountPrice != nil {
			require.NotNil(t, got[i].DiscountPrice)
			assert.True(t, want[i].DiscountPrice.Equal(*got[i].DiscountPrice))
		}
	}

	assert.True(t, first.Total().Equal(second.Total()))
	assert.Equal(t, first.ItemCount(), second.ItemCount())
}

func TestHydration_MissingSnapshotStartsEmpty(t *testing.T) {
	sut, _ := newTestStore(t)
	assert.Empty(t, sut.Entries())
}

func TestHydration_MalformedSnapshotStartsEmpty(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemoryStore()
	require.NoError(t, blobs.Set(ctx, StorageKey, "{not json"))

	sut := NewStore(ctx, blobs, zerolog.Nop())
	assert.Empty(t, sut.Entries())

	// the store remains fully usable after a corrupt read
	_, err := sut.AddItem(ctx, product("P1", "10"), 1, domain.Variant{})
	require.NoError(t, err)
	assert.Equal(t, 1, sut.ItemCount())
}

func TestStorageFaults_NeverBlockMutations(t *testing.T) {
	ctx := context.Background()
	sut := NewStore(ctx, faultyStore{}, zerolog.Nop())

	_, err := sut.AddItem(ctx, product("P1", "100"), 2, domain.Variant{})
	require.NoError(t, err)
	require.NoError(t, sut.SetQuantity(ctx, "P1", domain.Variant{}, 5))
	sut.RemoveItem(ctx, "P1", domain.Variant{})
	sut.Clear(ctx)

	assert.Empty(t, sut.Entries())
}

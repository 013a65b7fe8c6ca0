package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/kexshop/cart/internal/blob"
	"github.com/kexshop/cart/internal/catalog"
	"github.com/kexshop/cart/internal/domain"
)

// StorageKey is the fixed blob key the full cart snapshot lives under.
const StorageKey = "cart"

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrItemNotFound    = errors.New("item not found in cart")
)

// Store owns the authoritative in-memory cart. Every mutation updates the
// entries under a single-writer lock and then writes the full snapshot to
// the blob store. Writes are best-effort: a storage fault is logged and the
// in-memory state stays the source of truth until the next successful write,
// so the user is never blocked from shopping. Because each write is a
// complete snapshot, out-of-order completion of two writes self-corrects,
// the last one wins and is always consistent.
type Store struct {
	mu    sync.Mutex
	cart  domain.Cart
	blobs blob.Store
	log   zerolog.Logger
}

// NewStore builds a store and hydrates it with one read of the snapshot key.
// An absent, unreadable or malformed snapshot yields an empty cart; storage
// corruption must never block startup.
func NewStore(ctx context.Context, blobs blob.Store, log zerolog.Logger) *Store {
	s := &Store{
		blobs: blobs,
		log:   log,
	}
	s.hydrate(ctx)
	return s
}

func (s *Store) hydrate(ctx context.Context) {
	raw, err := s.blobs.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, blob.ErrNotFound) {
			s.log.Warn().Err(err).Msg("cart hydration read failed, starting empty")
		}
		return
	}

	var entries []domain.CartEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		s.log.Warn().Err(err).Msg("cart snapshot is malformed, starting empty")
		return
	}
	s.cart.Entries = entries
}

// persistLocked serializes the current entries and writes them under the
// snapshot key. Caller must hold s.mu. Failures are logged, never returned.
func (s *Store) persistLocked(ctx context.Context) {
	raw, err := json.Marshal(s.cart.Entries)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal cart snapshot")
		return
	}
	if err := s.blobs.Set(ctx, StorageKey, string(raw)); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist cart snapshot")
	}
}

// AddItem inserts a new line built from the product snapshot, or increments
// the quantity of an existing (productID, variant) line. Duplicate adds
// merge, they are not an error.
func (s *Store) AddItem(ctx context.Context, product *catalog.Product, quantity int, variant domain.Variant) ([]domain.CartEntry, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Merge(domain.CartEntry{
		ProductID:     product.ID,
		Name:          product.Name,
		ImageURL:      product.ImageURL,
		Category:      product.Category,
		UnitPrice:     product.Price,
		DiscountPrice: product.DiscountPrice,
		Quantity:      quantity,
		Variant:       variant,
		AddedAt:       time.Now().UTC(),
	})

	s.persistLocked(ctx)
	return s.entriesLocked(), nil
}

// RemoveItem deletes the matching line. Removing an absent line is a no-op.
func (s *Store) RemoveItem(ctx context.Context, productID string, variant domain.Variant) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Remove(productID, variant)
	s.persistLocked(ctx)
}

// SetQuantity replaces the quantity of an existing line. A quantity <= 0 is
// equivalent to RemoveItem (and a no-op when the line is absent). A positive
// quantity on an absent line fails with ErrItemNotFound: quantity can only
// be set on an existing line, never fabricate one without snapshot data.
func (s *Store) SetQuantity(ctx context.Context, productID string, variant domain.Variant, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.cart.Remove(productID, variant)
		s.persistLocked(ctx)
		return nil
	}

	if !s.cart.SetQuantity(productID, variant, quantity) {
		return ErrItemNotFound
	}

	s.persistLocked(ctx)
	return nil
}

// Clear empties the cart and persists the empty snapshot.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Clear()
	s.persistLocked(ctx)
}

// Total is the subtotal over all lines at their effective unit price,
// recomputed in full precision on every call.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Subtotal()
}

// ItemCount is the number of units in the cart, not the number of lines.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.ItemCount()
}

func (s *Store) IsInCart(productID string, variant domain.Variant) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Contains(productID, variant)
}

// ItemQuantity returns the quantity of the matching line, 0 when absent.
func (s *Store) ItemQuantity(productID string, variant domain.Variant) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Quantity(productID, variant)
}

// Entries returns a copy of the lines in insertion order.
func (s *Store) Entries() []domain.CartEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entriesLocked()
}

func (s *Store) entriesLocked() []domain.CartEntry {
	entries := make([]domain.CartEntry, len(s.cart.Entries))
	copy(entries, s.cart.Entries)
	return entries
}

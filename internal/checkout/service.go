package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kexshop/cart/internal/cart"
	"github.com/kexshop/cart/internal/gateway"
)

var (
	ErrEmptyCart             = errors.New("cart is empty, nothing to checkout")
	ErrUnknownShippingMethod = errors.New("unknown shipping method")
)

// PlaceOrderInput carries the user's checkout selections.
type PlaceOrderInput struct {
	ShippingAddress  gateway.Address
	PaymentMethodID  string
	ShippingMethodID string
	Notes            string
	Promo            *Promo
}

// Service assembles an order from the current cart state and submits it.
// The cart is cleared only after the order service confirms success, so a
// failed checkout never loses the user's cart contents.
type Service struct {
	store    *cart.Store
	gateway  gateway.OrderGateway
	methods  []ShippingMethod
	shipping map[string]ShippingMethod
	log      zerolog.Logger
}

func NewService(store *cart.Store, gw gateway.OrderGateway, methods []ShippingMethod, log zerolog.Logger) *Service {
	shipping := make(map[string]ShippingMethod, len(methods))
	for _, m := range methods {
		shipping[m.ID] = m
	}
	return &Service{
		store:    store,
		gateway:  gw,
		methods:  methods,
		shipping: shipping,
		log:      log,
	}
}

// ShippingMethods lists the available flat-rate options in table order.
func (s *Service) ShippingMethods() []ShippingMethod {
	methods := make([]ShippingMethod, len(s.methods))
	copy(methods, s.methods)
	return methods
}

// Quote computes the totals breakdown for the current cart without
// submitting anything.
func (s *Service) Quote(shippingMethodID string, promo *Promo) (Totals, error) {
	method, ok := s.shipping[shippingMethodID]
	if !ok {
		return Totals{}, fmt.Errorf("%w: %q", ErrUnknownShippingMethod, shippingMethodID)
	}
	return CalculateTotals(s.store.Total(), method, promo), nil
}

// PlaceOrder builds an OrderRequest fresh from the current cart snapshot and
// hands it to the order gateway. On success the cart is cleared; on any
// error the cart is left untouched and the gateway's structured error is
// returned unchanged.
func (s *Service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*gateway.Confirmation, error) {
	entries := s.store.Entries()
	if len(entries) == 0 {
		return nil, ErrEmptyCart
	}

	method, ok := s.shipping[input.ShippingMethodID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownShippingMethod, input.ShippingMethodID)
	}

	totals := CalculateTotals(s.store.Total(), method, input.Promo)

	req := &gateway.OrderRequest{
		Entries:          entries,
		ShippingAddress:  input.ShippingAddress,
		PaymentMethodID:  input.PaymentMethodID,
		ShippingMethodID: input.ShippingMethodID,
		Totals: gateway.Totals{
			Subtotal: totals.Subtotal.StringFixed(2),
			Shipping: totals.Shipping.StringFixed(2),
			Discount: totals.Discount.StringFixed(2),
			Tax:      totals.Tax.StringFixed(2),
			Total:    totals.Total.StringFixed(2),
		},
		Notes: input.Notes,
	}
	if input.Promo != nil {
		req.PromoCode = input.Promo.Code
	}

	confirmation, err := s.gateway.SubmitOrder(ctx, req)
	if err != nil {
		return nil, err
	}

	s.store.Clear(ctx)
	s.log.Info().
		Str("order_id", confirmation.OrderID).
		Int("lines", len(entries)).
		Str("total", req.Totals.Total).
		Msg("order placed, cart cleared")

	return confirmation, nil
}

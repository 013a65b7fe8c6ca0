package gateway

import (
	"context"
	"fmt"

	"github.com/kexshop/cart/internal/domain"
)

// Address is the shipping destination captured at checkout.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
	Phone     string `json:"phone,omitempty"`
}

// Totals is the checkout money breakdown, rendered with 2-decimal display
// rounding. Accumulation happens upstream in full precision; these are the
// presentation values the order service receives.
type Totals struct {
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
	Discount string `json:"discount"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

// OrderRequest is an ephemeral snapshot built fresh at checkout time from
// the current cart state. It is never stored.
type OrderRequest struct {
	Entries          []domain.CartEntry `json:"entries"`
	ShippingAddress  Address            `json:"shipping_address"`
	PaymentMethodID  string             `json:"payment_method_id"`
	ShippingMethodID string             `json:"shipping_method_id"`
	Totals           Totals             `json:"totals"`
	Notes            string             `json:"notes,omitempty"`
	PromoCode        string             `json:"promo_code,omitempty"`
}

// Confirmation is the success reply from the order service.
type Confirmation struct {
	OrderID string `json:"order_id"`
}

// OrderError is the structured failure shape the order service returns.
// Validation failures, stock conflicts and payment failures all arrive in
// this form; the cart layer does not distinguish them further.
type OrderError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("order submission failed: %s (%s)", e.Message, e.Code)
}

// OrderGateway submits an assembled order.
// Consumers define this interface, not the HTTP implementation.
type OrderGateway interface {
	SubmitOrder(ctx context.Context, req *OrderRequest) (*Confirmation, error)
}

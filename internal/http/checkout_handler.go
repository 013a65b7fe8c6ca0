package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kexshop/cart/internal/checkout"
	"github.com/kexshop/cart/internal/gateway"
)

type CheckoutHandler struct {
	service *checkout.Service
	timeout time.Duration
}

func NewCheckoutHandler(service *checkout.Service, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		timeout: timeout,
	}
}

type PlaceOrderRequestDTO struct {
	ShippingAddress  gateway.Address `json:"shipping_address"`
	PaymentMethodID  string          `json:"payment_method_id"`
	ShippingMethodID string          `json:"shipping_method_id"`
	Notes            string          `json:"notes,omitempty"`
	PromoCode        string          `json:"promo_code,omitempty"`
	PromoPercentOff  string          `json:"promo_percent_off,omitempty"`
}

type TotalsResponseDTO struct {
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
	Discount string `json:"discount"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

func (h *CheckoutHandler) ShippingMethods(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.ShippingMethods())
}

func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	methodID := r.URL.Query().Get("shipping_method")
	if methodID == "" {
		methodID = "standard"
	}

	promo, err := promoFromParams(
		r.URL.Query().Get("promo_code"),
		r.URL.Query().Get("promo_percent_off"),
	)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_promo", "promo_percent_off must be a decimal")
		return
	}

	totals, err := h.service.Quote(methodID, promo)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unknown_shipping_method", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, totalsDTO(totals))
}

func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	var req PlaceOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ShippingMethodID == "" {
		respondError(w, http.StatusBadRequest, "invalid_shipping_method", "shipping_method_id is required")
		return
	}
	if req.PaymentMethodID == "" {
		respondError(w, http.StatusBadRequest, "invalid_payment_method", "payment_method_id is required")
		return
	}

	promo, err := promoFromParams(req.PromoCode, req.PromoPercentOff)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_promo", "promo_percent_off must be a decimal")
		return
	}

	confirmation, err := h.service.PlaceOrder(ctx, checkout.PlaceOrderInput{
		ShippingAddress:  req.ShippingAddress,
		PaymentMethodID:  req.PaymentMethodID,
		ShippingMethodID: req.ShippingMethodID,
		Notes:            req.Notes,
		Promo:            promo,
	})
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, confirmation)
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	var orderErr *gateway.OrderError
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", "cart is empty")
	case errors.Is(err, checkout.ErrUnknownShippingMethod):
		respondError(w, http.StatusBadRequest, "unknown_shipping_method", err.Error())
	case errors.As(err, &orderErr):
		respondJSON(w, http.StatusBadGateway, ErrorResponse{
			Error: orderErr.Message,
			Code:  orderErr.Code,
		})
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to place order")
	}
}

func promoFromParams(code, percentOff string) (*checkout.Promo, error) {
	if code == "" {
		return nil, nil
	}
	pct, err := decimal.NewFromString(percentOff)
	if err != nil {
		return nil, err
	}
	return &checkout.Promo{Code: code, PercentOff: pct}, nil
}

func totalsDTO(t checkout.Totals) TotalsResponseDTO {
	return TotalsResponseDTO{
		Subtotal: t.Subtotal.StringFixed(2),
		Shipping: t.Shipping.StringFixed(2),
		Discount: t.Discount.StringFixed(2),
		Tax:      t.Tax.StringFixed(2),
		Total:    t.Total.StringFixed(2),
	}
}

package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kexshop/cart/internal/cart"
	"github.com/kexshop/cart/internal/catalog"
	"github.com/kexshop/cart/internal/domain"
)

type CartHandler struct {
	store   *cart.Store
	catalog catalog.Provider
	timeout time.Duration
}

func NewCartHandler(store *cart.Store, provider catalog.Provider, timeout time.Duration) *CartHandler {
	return &CartHandler{
		store:   store,
		catalog: provider,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int    `json:"quantity"`
	Size     string `json:"size,omitempty"`
	Color    string `json:"color,omitempty"`
}

type CartResponseDTO struct {
	Entries   []domain.CartEntry `json:"entries"`
	ItemCount int                `json:"item_count"`
	Subtotal  string             `json:"subtotal"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *CartHandler) cartResponse() CartResponseDTO {
	return CartResponseDTO{
		Entries:   h.store.Entries(),
		ItemCount: h.store.ItemCount(),
		Subtotal:  h.store.Total().StringFixed(2),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", "no such product")
			return
		}
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "catalog lookup failed")
		return
	}

	variant := domain.Variant{Size: req.Size, Color: req.Color}
	if _, err := h.store.AddItem(ctx, product, req.Quantity, variant); err != nil {
		if errors.Is(err, cart.ErrInvalidQuantity) {
			respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be positive")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to add item")
		return
	}

	respondJSON(w, http.StatusCreated, h.cartResponse())
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	variant := domain.Variant{Size: req.Size, Color: req.Color}
	if err := h.store.SetQuantity(ctx, productID, variant, req.Quantity); err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "item is not in the cart")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update quantity")
		return
	}

	respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	variant := domain.Variant{
		Size:  r.URL.Query().Get("size"),
		Color: r.URL.Query().Get("color"),
	}
	h.store.RemoveItem(ctx, productID, variant)

	respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	h.store.Clear(ctx)
	respondJSON(w, http.StatusOK, h.cartResponse())
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

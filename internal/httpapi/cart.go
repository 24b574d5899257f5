package httpapi

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/urbanelite/storefront/internal/domain/account"
	"github.com/urbanelite/storefront/internal/domain/catalog"
	"github.com/urbanelite/storefront/internal/domain/checkout"
)

type cartLineView struct {
	Product  productView `json:"product"`
	Quantity int         `json:"quantity"`
}

type cartView struct {
	Items    []cartLineView `json:"items"`
	Subtotal float64        `json:"subtotal"`
}

func (h *Handler) toCartView(lines []account.CartLine) cartView {
	items := make([]cartLineView, len(lines))
	for i, line := range lines {
		items[i] = cartLineView{
			Product:  h.toProductView(line.Product),
			Quantity: line.Quantity,
		}
	}
	return cartView{
		Items:    items,
		Subtotal: checkout.Subtotal(lines).InexactFloat64(),
	}
}

func (h *Handler) handleViewCart(w http.ResponseWriter, r *http.Request) {
	lines, err := h.accountRepo.ListCart(r.Context(), accountID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.toCartView(lines))
}

func (h *Handler) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := r.PathValue("productID")

	// In at_cart mode the unit is reserved before it enters the cart, so a
	// failed reservation never leaves a phantom cart line.
	if h.checkout.StockMode() == checkout.StockAtCart {
		if err := h.products.ReserveStock(ctx, productID, 1); err != nil {
			switch {
			case errors.Is(err, catalog.ErrNotFound):
				respondMessage(w, http.StatusNotFound, false, "product not found")
			case errors.Is(err, catalog.ErrOutOfStock):
				respondMessage(w, http.StatusConflict, false, "product out of stock")
			default:
				respondError(w, r, err)
			}
			return
		}
	} else {
		if _, err := h.products.GetByID(ctx, productID); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				respondMessage(w, http.StatusNotFound, false, "product not found")
				return
			}
			respondError(w, r, err)
			return
		}
	}

	if err := h.accountRepo.AddCartItem(ctx, accountID(r), productID); err != nil {
		if h.checkout.StockMode() == checkout.StockAtCart {
			_ = h.products.ReleaseStock(ctx, productID, 1)
		}
		respondError(w, r, err)
		return
	}

	// A product moved into the cart leaves the wishlist. Removal is a no-op
	// when the product was never wishlisted.
	if err := h.accountRepo.RemoveWishlistItem(ctx, accountID(r), productID); err != nil {
		zctx.From(ctx).Warn("Wishlist cleanup failed",
			zap.String("product_id", productID), zap.Error(err))
	}
	respondMessage(w, http.StatusOK, true, "added to cart")
}

func (h *Handler) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := r.PathValue("productID")

	qty, err := h.accountRepo.RemoveCartItem(ctx, accountID(r), productID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if qty > 0 && h.checkout.StockMode() == checkout.StockAtCart {
		if err := h.products.ReleaseStock(ctx, productID, qty); err != nil {
			respondError(w, r, err)
			return
		}
	}
	respondMessage(w, http.StatusOK, true, "removed from cart")
}

func (h *Handler) handleAddToWishlist(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("productID")

	if _, err := h.products.GetByID(r.Context(), productID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondMessage(w, http.StatusNotFound, false, "product not found")
			return
		}
		respondError(w, r, err)
		return
	}

	added, err := h.accountRepo.AddWishlistItem(r.Context(), accountID(r), productID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !added {
		respondMessage(w, http.StatusOK, true, "already in wishlist")
		return
	}
	respondMessage(w, http.StatusOK, true, "added to wishlist")
}

func (h *Handler) handleRemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	err := h.accountRepo.RemoveWishlistItem(r.Context(), accountID(r), r.PathValue("productID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, true, "removed from wishlist")
}

func (h *Handler) handleViewWishlist(w http.ResponseWriter, r *http.Request) {
	products, err := h.accountRepo.ListWishlist(r.Context(), accountID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.toProductViews(products))
}

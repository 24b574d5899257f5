package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-faster/errors"

	"github.com/urbanelite/storefront/internal/domain/catalog"
)

// productView is the product JSON representation shared by every route that
// returns catalog entries.
type productView struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Discount    float64 `json:"discount"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	BgColor     string  `json:"bgcolor"`
	PanelColor  string  `json:"panelcolor"`
	TextColor   string  `json:"textcolor"`
}

func (h *Handler) toProductView(p catalog.Product) productView {
	image := p.Image
	if h.cfg.ImageBaseURL != "" && image != "" && !strings.HasPrefix(image, "http") {
		image = strings.TrimSuffix(h.cfg.ImageBaseURL, "/") + "/" + strings.TrimPrefix(image, "/")
	}
	return productView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Discount:    p.Discount.InexactFloat64(),
		Stock:       p.Stock,
		Category:    p.Category,
		Image:       image,
		BgColor:     p.BgColor,
		PanelColor:  p.PanelColor,
		TextColor:   p.TextColor,
	}
}

func (h *Handler) toProductViews(products []catalog.Product) []productView {
	views := make([]productView, len(products))
	for i, p := range products {
		views[i] = h.toProductView(p)
	}
	return views
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context(), catalog.ListOptions{
		Category: r.URL.Query().Get("category"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.toProductViews(products))
}

type filterRequest struct {
	SortBy     string `json:"sortby"`
	Category   string `json:"category"`
	Available  bool   `json:"availability"`
	Discounted bool   `json:"discount"`
}

func (h *Handler) handleFilterProducts(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	products, err := h.products.List(r.Context(), catalog.ListOptions{
		Category:       req.Category,
		AvailableOnly:  req.Available,
		DiscountedOnly: req.Discounted,
		SortBy:         req.SortBy,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.toProductViews(products))
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		respondJSON(w, http.StatusOK, []productView{})
		return
	}
	products, err := h.products.Search(r.Context(), term)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.toProductViews(products))
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondMessage(w, http.StatusNotFound, false, "product not found")
			return
		}
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.toProductView(*p))
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/odshop/storefront/httpx"
	"github.com/odshop/storefront/internal/repository"
	"github.com/odshop/storefront/internal/services"
)

// StoreHandler serves the public storefront pages.
type StoreHandler struct {
	products   *services.ProductService
	categories *services.CategoryService
}

func NewStoreHandler(products *services.ProductService, categories *services.CategoryService) *StoreHandler {
	return &StoreHandler{products: products, categories: categories}
}

// Home shows active categories and active products, optionally filtered
// by ?category= or ?search=.
func (h *StoreHandler) Home(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.Active()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	data := map[string]any{"Categories": cats, "Search": ""}

	search := r.URL.Query().Get("search")
	if search != "" {
		products, perr := h.products.Search(search)
		if perr != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			return
		}
		data["Products"] = products
		data["Search"] = search
		renderTemplate(w, r, "home", data)
		return
	}

	products, err := h.products.Active()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	data["Products"] = products
	renderTemplate(w, r, "home", data)
}

// Product shows a single product page.
func (h *StoreHandler) Product(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.products.ByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	renderTemplate(w, r, "product", map[string]any{"Product": p})
}

func (h *StoreHandler) Privacy(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "privacy", nil)
}

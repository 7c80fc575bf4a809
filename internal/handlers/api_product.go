package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/odshop/storefront/httpx"
	"github.com/odshop/storefront/internal/models"
	"github.com/odshop/storefront/internal/repository"
	"github.com/odshop/storefront/internal/services"
	"github.com/odshop/storefront/validation"
)

// ProductAPI serves the JSON product endpoints.
type ProductAPI struct {
	svc *services.ProductService
}

func NewProductAPI(svc *services.ProductService) *ProductAPI {
	return &ProductAPI{svc: svc}
}

type productRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	ImageURL      string          `json:"imageUrl"`
	IsActive      *bool           `json:"isActive"`
	CategoryID    uint            `json:"categoryId"`
}

func (req *productRequest) validate() validation.Violations {
	v := make(validation.Violations)
	validation.Required("name", req.Name, v)
	validation.MaxLen("name", req.Name, 200, v)
	validation.MaxLen("description", req.Description, 1000, v)
	validation.NonNegativeDecimal("price", req.Price, v)
	validation.NonNegativeInt("stockQuantity", req.StockQuantity, v)
	if req.CategoryID == 0 {
		v["categoryId"] = "required"
	}
	return v
}

func (req *productRequest) apply(p *models.Product) {
	p.Name = req.Name
	p.Description = req.Description
	p.Price = req.Price
	p.StockQuantity = req.StockQuantity
	p.ImageURL = req.ImageURL
	p.CategoryID = req.CategoryID
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
}

// List supports ?category= and ?search= filters; without either it
// returns every product with its category.
func (h *ProductAPI) List(w http.ResponseWriter, r *http.Request) {
	var (
		products []models.Product
		err      error
	)
	switch {
	case r.URL.Query().Get("search") != "":
		products, err = h.svc.Search(r.URL.Query().Get("search"))
	case r.URL.Query().Get("category") != "":
		cid, perr := strconv.ParseUint(r.URL.Query().Get("category"), 10, 32)
		if perr != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_category", nil)
			return
		}
		products, err = h.svc.ByCategory(uint(cid))
	default:
		products, err = h.svc.All()
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

// Active lists only products flagged active.
func (h *ProductAPI) Active(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Active()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

// ByCategory lists the products of one category addressed by path id.
func (h *ProductAPI) ByCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	products, err := h.svc.ByCategory(id)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

// Search matches product names by substring via ?term=.
func (h *ProductAPI) Search(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("term")
	if term == "" {
		httpx.JSONError(w, http.StatusBadRequest, "term_required", nil)
		return
	}
	products, err := h.svc.Search(term)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *ProductAPI) Count(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Count()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"count": n})
}

func (h *ProductAPI) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.svc.ByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httpx.NotFound(w, "product not found", "productId", id)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProductAPI) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	p := models.Product{IsActive: true}
	req.apply(&p)
	if err := h.svc.Create(&p); err != nil {
		switch {
		case errors.Is(err, services.ErrNegativePrice):
			httpx.JSONError(w, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, services.ErrUnknownCategory):
			httpx.JSONError(w, http.StatusBadRequest, err.Error(), nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		}
		return
	}
	httpx.Created(w, httpx.CreatedLocation("/api/products", p.ID), p)
}

func (h *ProductAPI) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	p, err := h.svc.ByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httpx.NotFound(w, "product not found", "productId", id)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	req.apply(p)
	p.Category = nil // avoid re-saving the stale association
	if err := h.svc.Update(p); err != nil {
		switch {
		case errors.Is(err, services.ErrNegativePrice), errors.Is(err, services.ErrUnknownCategory):
			httpx.JSONError(w, http.StatusBadRequest, err.Error(), nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		}
		return
	}
	httpx.NoContent(w)
}

func (h *ProductAPI) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(id); err != nil {
		if errors.Is(err, services.ErrProductInUse) {
			httpx.JSONError(w, http.StatusConflict, err.Error(), nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.NoContent(w)
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/odshop/storefront/httpx"
	"github.com/odshop/storefront/internal/models"
	"github.com/odshop/storefront/internal/repository"
	"github.com/odshop/storefront/internal/services"
	"github.com/odshop/storefront/validation"
)

// CategoryAPI serves the JSON category endpoints.
type CategoryAPI struct {
	svc *services.CategoryService
}

func NewCategoryAPI(svc *services.CategoryService) *CategoryAPI {
	return &CategoryAPI{svc: svc}
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	IsActive    *bool  `json:"isActive"`
}

func (req *categoryRequest) validate() validation.Violations {
	v := make(validation.Violations)
	validation.Required("name", req.Name, v)
	validation.MaxLen("name", req.Name, 100, v)
	validation.MaxLen("description", req.Description, 500, v)
	return v
}

type categorySummary struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	ImageURL     string `json:"imageUrl,omitempty"`
	IsActive     bool   `json:"isActive"`
	ProductCount int    `json:"productCount"`
}

func toCategorySummary(c *models.Category) categorySummary {
	return categorySummary{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		ImageURL:     c.ImageURL,
		IsActive:     c.IsActive,
		ProductCount: c.ProductCount(),
	}
}

func (h *CategoryAPI) List(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.AllWithProductCount()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	out := make([]categorySummary, 0, len(cats))
	for i := range cats {
		out = append(out, toCategorySummary(&cats[i]))
	}
	httpx.JSON(w, http.StatusOK, out)
}

// Active lists only categories flagged active.
func (h *CategoryAPI) Active(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Active()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, cats)
}

// Products lists the products belonging to one category.
func (h *CategoryAPI) Products(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.WithProducts(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httpx.NotFound(w, "category not found", "categoryId", id)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, c.Products)
}

func (h *CategoryAPI) Count(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Count()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"count": n})
}

func (h *CategoryAPI) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.WithProducts(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httpx.NotFound(w, "category not found", "categoryId", id)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CategoryAPI) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	c := models.Category{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if err := h.svc.Create(&c); err != nil {
		if errors.Is(err, services.ErrCategoryNameTaken) {
			httpx.JSONError(w, http.StatusConflict, err.Error(), nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.Created(w, httpx.CreatedLocation("/api/categories", c.ID), c)
}

func (h *CategoryAPI) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	c, err := h.svc.ByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httpx.NotFound(w, "category not found", "categoryId", id)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	c.Name = req.Name
	c.Description = req.Description
	c.ImageURL = req.ImageURL
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if err := h.svc.Update(c); err != nil {
		if errors.Is(err, services.ErrCategoryNameTaken) {
			httpx.JSONError(w, http.StatusConflict, err.Error(), nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.NoContent(w)
}

func (h *CategoryAPI) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(id); err != nil {
		if errors.Is(err, services.ErrCategoryHasProducts) {
			httpx.JSONError(w, http.StatusConflict, err.Error(), nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.NoContent(w)
}

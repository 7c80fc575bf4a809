package handlers

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/odshop/storefront/auth"
	"github.com/odshop/storefront/httpx"
	"github.com/odshop/storefront/internal/models"
	"github.com/odshop/storefront/internal/repository"
	"github.com/odshop/storefront/internal/services"
	"github.com/odshop/storefront/validation"
)

// OrderAPI serves the JSON order endpoints. Customers see their own
// orders; the full list and status changes are admin only (enforced in
// the router).
type OrderAPI struct {
	svc *services.OrderService
}

func NewOrderAPI(svc *services.OrderService) *OrderAPI {
	return &OrderAPI{svc: svc}
}

type orderItemRequest struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

type orderRequest struct {
	ShippingAddress string             `json:"shippingAddress"`
	City            string             `json:"city"`
	PostalCode      string             `json:"postalCode"`
	PhoneNumber     string             `json:"phoneNumber"`
	Discount        *decimal.Decimal   `json:"discount"`
	Items           []orderItemRequest `json:"items"`
}

func (req *orderRequest) validate() validation.Violations {
	v := make(validation.Violations)
	validation.Required("shippingAddress", req.ShippingAddress, v)
	validation.MaxLen("shippingAddress", req.ShippingAddress, 500, v)
	validation.Required("city", req.City, v)
	validation.MaxLen("city", req.City, 100, v)
	validation.Required("phoneNumber", req.PhoneNumber, v)
	validation.MaxLen("phoneNumber", req.PhoneNumber, 20, v)
	if len(req.Items) == 0 {
		v["items"] = "required"
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			v["items"] = "quantity_must_be_positive"
		}
		if it.ProductID == 0 {
			v["items"] = "product_required"
		}
	}
	return v
}

func (h *OrderAPI) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.All()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}

// Mine lists the calling user's own orders.
func (h *OrderAPI) Mine(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	orders, err := h.svc.ByUser(uid)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}

// ByUser lists one user's orders for the back office.
func (h *OrderAPI) ByUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	orders, err := h.svc.ByUser(id)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}

// ByStatus lists orders in one lifecycle state.
func (h *OrderAPI) ByStatus(w http.ResponseWriter, r *http.Request) {
	status, err := models.ParseOrderStatus(r.PathValue("status"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "unknown_status", nil)
		return
	}
	orders, err := h.svc.ByStatus(status)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}

// Pending is a shortcut for ByStatus(Pending), used by dashboards.
func (h *OrderAPI) Pending(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ByStatus(models.StatusPending)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func (h *OrderAPI) Count(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Count()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"count": n})
}

func (h *OrderAPI) PendingCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.PendingCount()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"count": n})
}

// Get returns an order to its owner or to an admin; everyone else gets 403.
func (h *OrderAPI) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	o, err := h.svc.ByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httpx.NotFound(w, "order not found", "orderId", id)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	if o.UserID != uid && !auth.HasRole(r.Context(), models.RoleAdmin) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, o)
}

func (h *OrderAPI) Create(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	o := models.Order{
		ShippingAddress: req.ShippingAddress,
		City:            req.City,
		PostalCode:      req.PostalCode,
		PhoneNumber:     req.PhoneNumber,
		Discount:        zeroIfNil(req.Discount),
		UserID:          uid,
	}
	for _, it := range req.Items {
		o.Items = append(o.Items, models.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	if err := h.svc.Create(&o); err != nil {
		switch {
		case errors.Is(err, services.ErrNoItems),
			errors.Is(err, services.ErrInvalidQuantity),
			errors.Is(err, services.ErrInvalidDiscount),
			errors.Is(err, services.ErrUnknownProduct):
			httpx.JSONError(w, http.StatusBadRequest, err.Error(), nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		}
		return
	}
	httpx.Created(w, httpx.CreatedLocation("/api/orders", o.ID), o)
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves an order along the lifecycle; disallowed moves get 409.
func (h *OrderAPI) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	next, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "unknown_status", nil)
		return
	}
	if err := h.svc.UpdateStatus(id, next); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			httpx.NotFound(w, "order not found", "orderId", id)
		case errors.Is(err, services.ErrInvalidTransition):
			httpx.JSONError(w, http.StatusConflict, err.Error(), nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		}
		return
	}
	httpx.NoContent(w)
}

// transition serves the admin-only status shortcut routes.
func (h *OrderAPI) transition(w http.ResponseWriter, r *http.Request, next models.OrderStatus) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.UpdateStatus(id, next); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			httpx.NotFound(w, "order not found", "orderId", id)
		case errors.Is(err, services.ErrInvalidTransition):
			httpx.JSONError(w, http.StatusConflict, err.Error(), nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		}
		return
	}
	httpx.NoContent(w)
}

func (h *OrderAPI) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.StatusConfirmed)
}

func (h *OrderAPI) Ship(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.StatusShipping)
}

func (h *OrderAPI) Deliver(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.StatusDelivered)
}

// Cancel lets the owner (or an admin) cancel their order while the
// lifecycle still allows it.
func (h *OrderAPI) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	o, err := h.svc.ByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httpx.NotFound(w, "order not found", "orderId", id)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	if o.UserID != uid && !auth.HasRole(r.Context(), models.RoleAdmin) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	if err := h.svc.Cancel(id); err != nil {
		if errors.Is(err, services.ErrInvalidTransition) {
			httpx.JSONError(w, http.StatusConflict, err.Error(), nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.NoContent(w)
}

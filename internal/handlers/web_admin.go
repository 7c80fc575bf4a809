package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/odshop/storefront/internal/models"
	"github.com/odshop/storefront/internal/repository"
	"github.com/odshop/storefront/internal/services"
	"github.com/odshop/storefront/validation"
	"github.com/odshop/storefront/view"
)

// AdminHandler serves the back-office pages. The router wraps every
// route with the Admin role requirement.
type AdminHandler struct {
	products   *services.ProductService
	categories *services.CategoryService
	orders     *services.OrderService
	users      *services.UserService
}

func NewAdminHandler(products *services.ProductService, categories *services.CategoryService, orders *services.OrderService, users *services.UserService) *AdminHandler {
	return &AdminHandler{products: products, categories: categories, orders: orders, users: users}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	productCount, _ := h.products.Count()
	categoryCount, _ := h.categories.Count()
	orderCount, _ := h.orders.Count()
	pendingCount, _ := h.orders.PendingCount()
	userCount, _ := h.users.Count()
	recent, _ := h.orders.All()
	if len(recent) > 5 {
		recent = recent[:5]
	}
	renderTemplate(w, r, "admin/dashboard", map[string]any{
		"ProductCount":  productCount,
		"CategoryCount": categoryCount,
		"OrderCount":    orderCount,
		"PendingCount":  pendingCount,
		"UserCount":     userCount,
		"RecentOrders":  recent,
	})
}

// --- Products ---

func (h *AdminHandler) Products(w http.ResponseWriter, r *http.Request) {
	products, _ := h.products.All()
	renderTemplate(w, r, "admin/products", map[string]any{"Products": products})
}

func (h *AdminHandler) ProductForm(w http.ResponseWriter, r *http.Request) {
	cats, _ := h.categories.All()
	data := map[string]any{"Categories": cats}
	if raw := r.PathValue("id"); raw != "" {
		id64, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		p, err := h.products.ByID(uint(id64))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		data["Product"] = p
	}
	renderTemplate(w, r, "admin/product_form", data)
}

func (h *AdminHandler) productFromForm(r *http.Request, p *models.Product) validation.Violations {
	v := make(validation.Violations)
	p.Name = strings.TrimSpace(r.FormValue("name"))
	p.Description = strings.TrimSpace(r.FormValue("description"))
	p.ImageURL = strings.TrimSpace(r.FormValue("image_url"))
	p.IsActive = r.FormValue("is_active") == "on" || r.FormValue("is_active") == "true"

	validation.Required("name", p.Name, v)
	validation.MaxLen("name", p.Name, 200, v)

	price, err := decimal.NewFromString(strings.TrimSpace(r.FormValue("price")))
	if err != nil {
		v["price"] = "invalid_number"
	} else {
		p.Price = price
		validation.NonNegativeDecimal("price", price, v)
	}
	stock, err := strconv.Atoi(strings.TrimSpace(r.FormValue("stock_quantity")))
	if err != nil {
		v["stock_quantity"] = "invalid_number"
	} else {
		p.StockQuantity = stock
		validation.NonNegativeInt("stock_quantity", stock, v)
	}
	cid, err := strconv.ParseUint(r.FormValue("category_id"), 10, 32)
	if err != nil || cid == 0 {
		v["category_id"] = "required"
	} else {
		p.CategoryID = uint(cid)
	}
	return v
}

func (h *AdminHandler) rerenderProductForm(w http.ResponseWriter, r *http.Request, p *models.Product, errMsg string, v validation.Violations) {
	cats, _ := h.categories.All()
	renderTemplate(w, r, "admin/product_form", map[string]any{
		"Product":    p,
		"Categories": cats,
		"Error":      errMsg,
		"Errors":     v,
	})
}

func (h *AdminHandler) ProductCreate(w http.ResponseWriter, r *http.Request) {
	var p models.Product
	if v := h.productFromForm(r, &p); !v.Empty() {
		h.rerenderProductForm(w, r, &p, "", v)
		return
	}
	if err := h.products.Create(&p); err != nil {
		h.rerenderProductForm(w, r, &p, err.Error(), nil)
		return
	}
	http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
}

func (h *AdminHandler) ProductUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.products.ByID(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if v := h.productFromForm(r, p); !v.Empty() {
		h.rerenderProductForm(w, r, p, "", v)
		return
	}
	p.Category = nil
	if err := h.products.Update(p); err != nil {
		h.rerenderProductForm(w, r, p, err.Error(), nil)
		return
	}
	http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
}

func (h *AdminHandler) ProductDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.products.Delete(id); err != nil {
		if errors.Is(err, services.ErrProductInUse) {
			products, _ := h.products.All()
			renderTemplate(w, r, "admin/products", map[string]any{"Products": products, "Error": err.Error()})
			return
		}
		http.Error(w, "delete failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
}

// --- Categories ---

func (h *AdminHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, _ := h.categories.AllWithProductCount()
	renderTemplate(w, r, "admin/categories", map[string]any{"Categories": cats})
}

func (h *AdminHandler) CategoryForm(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	if raw := r.PathValue("id"); raw != "" {
		id64, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		c, err := h.categories.ByID(uint(id64))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		data["Category"] = c
	}
	renderTemplate(w, r, "admin/category_form", data)
}

func categoryFromForm(r *http.Request, c *models.Category) validation.Violations {
	v := make(validation.Violations)
	c.Name = strings.TrimSpace(r.FormValue("name"))
	c.Description = strings.TrimSpace(r.FormValue("description"))
	c.ImageURL = strings.TrimSpace(r.FormValue("image_url"))
	c.IsActive = r.FormValue("is_active") == "on" || r.FormValue("is_active") == "true"
	validation.Required("name", c.Name, v)
	validation.MaxLen("name", c.Name, 100, v)
	validation.MaxLen("description", c.Description, 500, v)
	return v
}

func (h *AdminHandler) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	var c models.Category
	if v := categoryFromForm(r, &c); !v.Empty() {
		renderTemplate(w, r, "admin/category_form", map[string]any{"Category": &c, "Errors": v})
		return
	}
	if err := h.categories.Create(&c); err != nil {
		renderTemplate(w, r, "admin/category_form", map[string]any{"Category": &c, "Error": err.Error()})
		return
	}
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

func (h *AdminHandler) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.categories.ByID(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if v := categoryFromForm(r, c); !v.Empty() {
		renderTemplate(w, r, "admin/category_form", map[string]any{"Category": c, "Errors": v})
		return
	}
	if err := h.categories.Update(c); err != nil {
		renderTemplate(w, r, "admin/category_form", map[string]any{"Category": c, "Error": err.Error()})
		return
	}
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

func (h *AdminHandler) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.categories.Delete(id); err != nil {
		if errors.Is(err, services.ErrCategoryHasProducts) {
			cats, _ := h.categories.AllWithProductCount()
			renderTemplate(w, r, "admin/categories", map[string]any{"Categories": cats, "Error": err.Error()})
			return
		}
		http.Error(w, "delete failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// --- Orders ---

func (h *AdminHandler) Orders(w http.ResponseWriter, r *http.Request) {
	var (
		orders []models.Order
		err    error
	)
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, perr := models.ParseOrderStatus(raw)
		if perr != nil {
			http.NotFound(w, r)
			return
		}
		orders, err = h.orders.ByStatus(status)
	} else {
		orders, err = h.orders.All()
	}
	if err != nil {
		http.Error(w, "load failed", http.StatusInternalServerError)
		return
	}
	renderTemplate(w, r, "admin/orders", map[string]any{
		"Orders": orders,
		"Status": r.URL.Query().Get("status"),
	})
}

func (h *AdminHandler) Order(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	o, err := h.orders.ByID(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	renderTemplate(w, r, "admin/order_detail", map[string]any{"Order": o})
}

func (h *AdminHandler) OrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	next, err := models.ParseOrderStatus(r.FormValue("status"))
	if err != nil {
		http.Error(w, "unknown status", http.StatusBadRequest)
		return
	}
	if err := h.orders.UpdateStatus(id, next); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if errors.Is(err, services.ErrInvalidTransition) {
			o, oerr := h.orders.ByID(id)
			if oerr != nil {
				http.NotFound(w, r)
				return
			}
			w.WriteHeader(http.StatusConflict)
			_ = view.Render(w, r, "admin/order_detail.html", map[string]any{"Order": o, "Error": err.Error()})
			return
		}
		http.Error(w, "update failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/orders/"+strconv.FormatUint(uint64(id), 10), http.StatusSeeOther)
}

package server

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/odshop/storefront/auth"
	"github.com/odshop/storefront/httpx"
	"github.com/odshop/storefront/internal/handlers"
	"github.com/odshop/storefront/internal/middleware"
	"github.com/odshop/storefront/internal/models"
	"github.com/odshop/storefront/internal/repository"
	"github.com/odshop/storefront/internal/services"
	"github.com/odshop/storefront/view"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	categories := repository.NewCategoryRepository(db)
	products := repository.NewProductRepository(db)
	orders := repository.NewOrderRepository(db)
	users := repository.NewUserRepository(db)

	categorySvc := services.NewCategoryService(categories)
	productSvc := services.NewProductService(products, categories)
	orderSvc := services.NewOrderService(orders, products)
	userSvc := services.NewUserService(users)

	// Configure a user verifier so RequireAuth can ensure the user still exists.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})
	// Role lookup for cookie sessions; bearer tokens carry roles in the claims.
	auth.SetRoleResolver(func(_ context.Context, uid uint) []string {
		u, err := users.ByIDWithRoles(uid)
		if err != nil {
			return nil
		}
		return u.RoleNames()
	})
	view.SetIsAdminResolver(func(r *http.Request) bool {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			return false
		}
		u, err := users.ByIDWithRoles(uid)
		if err != nil {
			return false
		}
		return u.HasRole(models.RoleAdmin)
	})

	// --- Health endpoints ---
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		// Lightweight DB check (SELECT 1); detailed errors stay out of the body
		if err := db.Exec("SELECT 1").Error; err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			if _, werr := w.Write([]byte(`{"status":"degraded"}`)); werr != nil {
				_ = werr
			}
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// --- JSON API (bearer tokens) ---
	authAPI := handlers.NewAuthAPI(userSvc)
	categoryAPI := handlers.NewCategoryAPI(categorySvc)
	productAPI := handlers.NewProductAPI(productSvc)
	orderAPI := handlers.NewOrderAPI(orderSvc)

	mux.HandleFunc("POST /api/auth/register", authAPI.Register)
	mux.HandleFunc("POST /api/auth/login", authAPI.Login)
	mux.Handle("GET /api/auth/me", auth.RequireBearer(http.HandlerFunc(authAPI.Me)))

	// Catalog reads are public; writes are admin only.
	mux.HandleFunc("GET /api/categories", categoryAPI.List)
	mux.HandleFunc("GET /api/categories/active", categoryAPI.Active)
	mux.HandleFunc("GET /api/categories/count", categoryAPI.Count)
	mux.HandleFunc("GET /api/categories/{id}", categoryAPI.Get)
	mux.HandleFunc("GET /api/categories/{id}/products", categoryAPI.Products)
	mux.Handle("POST /api/categories", adminAPI(categoryAPI.Create))
	mux.Handle("PUT /api/categories/{id}", adminAPI(categoryAPI.Update))
	mux.Handle("DELETE /api/categories/{id}", adminAPI(categoryAPI.Delete))

	mux.HandleFunc("GET /api/products", productAPI.List)
	mux.HandleFunc("GET /api/products/active", productAPI.Active)
	mux.HandleFunc("GET /api/products/search", productAPI.Search)
	mux.HandleFunc("GET /api/products/count", productAPI.Count)
	mux.HandleFunc("GET /api/products/category/{id}", productAPI.ByCategory)
	mux.HandleFunc("GET /api/products/{id}", productAPI.Get)
	mux.Handle("POST /api/products", adminAPI(productAPI.Create))
	mux.Handle("PUT /api/products/{id}", adminAPI(productAPI.Update))
	mux.Handle("DELETE /api/products/{id}", adminAPI(productAPI.Delete))

	mux.Handle("GET /api/orders", adminAPI(orderAPI.List))
	mux.Handle("GET /api/orders/mine", auth.RequireBearer(http.HandlerFunc(orderAPI.Mine)))
	mux.Handle("GET /api/orders/count", adminAPI(orderAPI.Count))
	mux.Handle("GET /api/orders/pending", adminAPI(orderAPI.Pending))
	mux.Handle("GET /api/orders/pending/count", adminAPI(orderAPI.PendingCount))
	mux.Handle("GET /api/orders/user/{id}", adminAPI(orderAPI.ByUser))
	mux.Handle("GET /api/orders/status/{status}", adminAPI(orderAPI.ByStatus))
	mux.Handle("GET /api/orders/{id}", auth.RequireBearer(http.HandlerFunc(orderAPI.Get)))
	mux.Handle("POST /api/orders", auth.RequireBearer(http.HandlerFunc(orderAPI.Create)))
	mux.Handle("PUT /api/orders/{id}/status", adminAPI(orderAPI.UpdateStatus))
	mux.Handle("PUT /api/orders/{id}/confirm", adminAPI(orderAPI.Confirm))
	mux.Handle("PUT /api/orders/{id}/ship", adminAPI(orderAPI.Ship))
	mux.Handle("PUT /api/orders/{id}/deliver", adminAPI(orderAPI.Deliver))
	mux.Handle("PUT /api/orders/{id}/cancel", auth.RequireBearer(http.HandlerFunc(orderAPI.Cancel)))

	// --- Server-rendered pages (cookie sessions) ---
	store := handlers.NewStoreHandler(productSvc, categorySvc)
	account := handlers.NewAccountHandler(userSvc)
	admin := handlers.NewAdminHandler(productSvc, categorySvc, orderSvc, userSvc)

	mux.HandleFunc("GET /{$}", store.Home)
	mux.HandleFunc("GET /products/{id}", store.Product)
	mux.HandleFunc("GET /privacy", store.Privacy)

	mux.HandleFunc("GET /account/login", account.LoginPage)
	mux.HandleFunc("POST /account/login", account.Login)
	mux.HandleFunc("GET /account/register", account.RegisterPage)
	mux.HandleFunc("POST /account/register", account.RegisterPost)
	mux.HandleFunc("POST /account/logout", account.Logout)
	mux.HandleFunc("GET /account/access-denied", account.AccessDenied)

	mux.Handle("GET /admin", adminPage(admin.Dashboard))
	mux.Handle("GET /admin/products", adminPage(admin.Products))
	mux.Handle("GET /admin/products/new", adminPage(admin.ProductForm))
	mux.Handle("POST /admin/products", adminPage(admin.ProductCreate))
	mux.Handle("GET /admin/products/{id}/edit", adminPage(admin.ProductForm))
	mux.Handle("POST /admin/products/{id}", adminPage(admin.ProductUpdate))
	mux.Handle("POST /admin/products/{id}/delete", adminPage(admin.ProductDelete))

	mux.Handle("GET /admin/categories", adminPage(admin.Categories))
	mux.Handle("GET /admin/categories/new", adminPage(admin.CategoryForm))
	mux.Handle("POST /admin/categories", adminPage(admin.CategoryCreate))
	mux.Handle("GET /admin/categories/{id}/edit", adminPage(admin.CategoryForm))
	mux.Handle("POST /admin/categories/{id}", adminPage(admin.CategoryUpdate))
	mux.Handle("POST /admin/categories/{id}/delete", adminPage(admin.CategoryDelete))

	mux.Handle("GET /admin/orders", adminPage(admin.Orders))
	mux.Handle("GET /admin/orders/{id}", adminPage(admin.Order))
	mux.Handle("POST /admin/orders/{id}/status", adminPage(admin.OrderStatus))

	// Session cookies and bearer tokens both feed the request context; the
	// route wrappers above decide which one is enough.
	chain := middleware.Logging(log)(
		middleware.Recover(log)(
			auth.Middleware(
				auth.BearerMiddleware(mux))))
	return chain
}

// adminAPI guards a JSON endpoint with the Admin role from the token claims.
func adminAPI(h http.HandlerFunc) http.Handler {
	return auth.RequireBearerRole(models.RoleAdmin, h)
}

// adminPage guards a rendered page with the Admin role resolved from the session.
func adminPage(h http.HandlerFunc) http.Handler {
	return auth.RequireRole(models.RoleAdmin, h)
}

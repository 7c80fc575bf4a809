package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	appdb "github.com/odshop/storefront/internal/db"
	"github.com/odshop/storefront/internal/models"
)

func newTestServer(t *testing.T, name string) (http.Handler, *gorm.DB) {
	t.Helper()
	dsn := "file:" + name + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := appdb.AutoMigrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	appdb.Seed(conn)
	return New(conn, zerolog.Nop()), conn
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func loginToken(t *testing.T, h http.Handler, email, password string) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", email, rec.Code, rec.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil || out.Token == "" {
		t.Fatalf("login response missing token: %s", rec.Body.String())
	}
	return out.Token
}

func TestHealthEndpoints(t *testing.T) {
	h, _ := newTestServer(t, "srv_health")
	for _, path := range []string{"/health", "/healthz"} {
		rec := doJSON(t, h, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", path, rec.Code)
		}
	}
}

func TestAuthRegisterAndLogin(t *testing.T) {
	h, _ := newTestServer(t, "srv_auth")

	rec := doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "jane@example.com", "password": "s3cret!", "firstName": "Jane", "lastName": "Doe",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d body %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Success    bool   `json:"success"`
		Token      string `json:"token"`
		Expiration string `json:"expiration"`
		User       struct {
			Roles []string `json:"roles"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Success || len(out.User.Roles) != 1 || out.User.Roles[0] != models.RoleCustomer {
		t.Fatalf("unexpected register payload: %s", rec.Body.String())
	}
	// Registration signs the caller in right away.
	if out.Token == "" || out.Expiration == "" {
		t.Fatalf("register payload lacks token/expiration: %s", rec.Body.String())
	}
	rec = doJSON(t, h, http.MethodGet, "/api/auth/me", out.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me with register token: status %d", rec.Code)
	}

	// Same email again, different case: 409.
	rec = doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "JANE@example.com", "password": "whatever",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: status %d", rec.Code)
	}

	// Wrong password: 401.
	rec = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "jane@example.com", "password": "nope",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: status %d", rec.Code)
	}

	loginToken(t, h, "jane@example.com", "s3cret!")
}

func TestCategoryAPIRoundTrip(t *testing.T) {
	h, _ := newTestServer(t, "srv_categories")
	admin := loginToken(t, h, "admin@omanshop.com", "Admin@123")

	// Unauthenticated write: 401.
	rec := doJSON(t, h, http.MethodPost, "/api/categories", "", map[string]any{"name": "Phones"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anon create: status %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/categories", admin, map[string]any{"name": "Phones"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc == "" {
		t.Fatal("create: missing Location header")
	}

	// Duplicate name, case-insensitive: 409.
	rec = doJSON(t, h, http.MethodPost, "/api/categories", admin, map[string]any{"name": "PHONES"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("dup create: status %d", rec.Code)
	}

	// Public list.
	rec = doJSON(t, h, http.MethodGet, "/api/categories", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}

	// Missing id: 404 with categoryId in body.
	rec = doJSON(t, h, http.MethodGet, "/api/categories/999", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing get: status %d", rec.Code)
	}
	var nf map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &nf); err != nil {
		t.Fatalf("decode 404: %v", err)
	}
	if _, ok := nf["categoryId"]; !ok {
		t.Fatalf("404 body lacks categoryId: %s", rec.Body.String())
	}
}

func TestCustomerCannotWriteCatalog(t *testing.T) {
	h, _ := newTestServer(t, "srv_roles")
	doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "c@example.com", "password": "s3cret!",
	})
	customer := loginToken(t, h, "c@example.com", "s3cret!")

	rec := doJSON(t, h, http.MethodPost, "/api/categories", customer, map[string]any{"name": "Nope"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("customer create: status %d", rec.Code)
	}
}

func TestProductAPIValidation(t *testing.T) {
	h, _ := newTestServer(t, "srv_products")
	admin := loginToken(t, h, "admin@omanshop.com", "Admin@123")

	rec := doJSON(t, h, http.MethodPost, "/api/categories", admin, map[string]any{"name": "Gadgets"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("category create: status %d", rec.Code)
	}
	var cat struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &cat); err != nil {
		t.Fatalf("decode category: %v", err)
	}

	// Negative price: 400.
	rec = doJSON(t, h, http.MethodPost, "/api/products", admin, map[string]any{
		"name": "Bad", "price": "-1", "categoryId": cat.ID,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative price: status %d body %s", rec.Code, rec.Body.String())
	}

	// Unknown category: 400.
	rec = doJSON(t, h, http.MethodPost, "/api/products", admin, map[string]any{
		"name": "Orphan", "price": "5", "categoryId": 9999,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown category: status %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/products", admin, map[string]any{
		"name": "Widget", "price": "12.50", "stockQuantity": 3, "categoryId": cat.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("product create: status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestProductsByCategoryRoute(t *testing.T) {
	h, _ := newTestServer(t, "srv_products_bycat")
	admin := loginToken(t, h, "admin@omanshop.com", "Admin@123")

	var phones, laptops struct {
		ID uint `json:"id"`
	}
	rec := doJSON(t, h, http.MethodPost, "/api/categories", admin, map[string]any{"name": "Phones"})
	_ = json.Unmarshal(rec.Body.Bytes(), &phones)
	rec = doJSON(t, h, http.MethodPost, "/api/categories", admin, map[string]any{"name": "Laptops"})
	_ = json.Unmarshal(rec.Body.Bytes(), &laptops)

	rec = doJSON(t, h, http.MethodPost, "/api/products", admin, map[string]any{
		"name": "Handset", "price": "99.00", "categoryId": phones.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("product create: status %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/products/category/%d", phones.ID), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("by category: status %d body %s", rec.Code, rec.Body.String())
	}
	var got []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Handset" {
		t.Fatalf("by category body: %s", rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/products/category/%d", laptops.ID), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("empty category: status %d", rec.Code)
	}
	var empty []struct{}
	if err := json.Unmarshal(rec.Body.Bytes(), &empty); err != nil || len(empty) != 0 {
		t.Fatalf("empty category body: %s", rec.Body.String())
	}
}

func TestOrderAPIFlow(t *testing.T) {
	h, _ := newTestServer(t, "srv_orders")
	admin := loginToken(t, h, "admin@omanshop.com", "Admin@123")

	rec := doJSON(t, h, http.MethodPost, "/api/categories", admin, map[string]any{"name": "Gadgets"})
	var cat struct {
		ID uint `json:"id"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &cat)
	rec = doJSON(t, h, http.MethodPost, "/api/products", admin, map[string]any{
		"name": "Widget", "price": "10.00", "categoryId": cat.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("product create: status %d", rec.Code)
	}
	var prod struct {
		ID uint `json:"id"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &prod)

	doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "buyer@example.com", "password": "s3cret!",
	})
	buyer := loginToken(t, h, "buyer@example.com", "s3cret!")

	rec = doJSON(t, h, http.MethodPost, "/api/orders", buyer, map[string]any{
		"shippingAddress": "1 Main St", "city": "Muscat", "phoneNumber": "99999999",
		"discount": "2",
		"items":    []map[string]any{{"productId": prod.ID, "quantity": 3}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("order create: status %d body %s", rec.Code, rec.Body.String())
	}
	var order struct {
		ID          uint   `json:"id"`
		Status      string `json:"status"`
		SubTotal    string `json:"subTotal"`
		TotalAmount string `json:"totalAmount"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if order.Status != "Pending" {
		t.Fatalf("order status = %s, want Pending", order.Status)
	}
	sub, err := decimal.NewFromString(order.SubTotal)
	if err != nil {
		t.Fatalf("parse subTotal %q: %v", order.SubTotal, err)
	}
	total, err := decimal.NewFromString(order.TotalAmount)
	if err != nil {
		t.Fatalf("parse totalAmount %q: %v", order.TotalAmount, err)
	}
	if !sub.Equal(decimal.NewFromInt(30)) || !total.Equal(decimal.NewFromInt(28)) {
		t.Fatalf("order math: sub=%s total=%s", order.SubTotal, order.TotalAmount)
	}

	// Buyer sees their order; admin list requires Admin.
	rec = doJSON(t, h, http.MethodGet, "/api/orders/mine", buyer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("mine: status %d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodGet, "/api/orders", buyer, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("buyer list all: status %d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodGet, "/api/orders", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin list all: status %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/orders/pending/count", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pending count: status %d", rec.Code)
	}
	var pc struct {
		Count int64 `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &pc); err != nil || pc.Count != 1 {
		t.Fatalf("pending count body: %s", rec.Body.String())
	}

	// Pending cannot jump to Delivered: 409.
	rec = doJSON(t, h, http.MethodPut, "/api/orders/1/status", admin, map[string]string{"status": "Delivered"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("bad transition: status %d body %s", rec.Code, rec.Body.String())
	}
	// The confirm shortcut takes the same transition path as /status.
	rec = doJSON(t, h, http.MethodPut, "/api/orders/1/confirm", admin, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("confirm: status %d body %s", rec.Code, rec.Body.String())
	}

	// Buyer can still cancel a confirmed order.
	rec = doJSON(t, h, http.MethodPut, "/api/orders/1/cancel", buyer, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("cancel: status %d body %s", rec.Code, rec.Body.String())
	}
	// Cancelled is terminal.
	rec = doJSON(t, h, http.MethodPut, "/api/orders/1/cancel", buyer, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("cancel twice: status %d", rec.Code)
	}
}

func TestOrderOwnershipEnforced(t *testing.T) {
	h, _ := newTestServer(t, "srv_order_owner")
	admin := loginToken(t, h, "admin@omanshop.com", "Admin@123")

	rec := doJSON(t, h, http.MethodPost, "/api/categories", admin, map[string]any{"name": "Gadgets"})
	var cat struct {
		ID uint `json:"id"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &cat)
	rec = doJSON(t, h, http.MethodPost, "/api/products", admin, map[string]any{
		"name": "Widget", "price": "10.00", "categoryId": cat.ID,
	})
	var prod struct {
		ID uint `json:"id"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &prod)

	doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "a@example.com", "password": "s3cret!"})
	doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "b@example.com", "password": "s3cret!"})
	alice := loginToken(t, h, "a@example.com", "s3cret!")
	bob := loginToken(t, h, "b@example.com", "s3cret!")

	rec = doJSON(t, h, http.MethodPost, "/api/orders", alice, map[string]any{
		"shippingAddress": "1 Main St", "city": "Muscat", "phoneNumber": "99999999",
		"items": []map[string]any{{"productId": prod.ID, "quantity": 1}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("order create: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/api/orders/1", bob, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("other user's order: status %d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodGet, "/api/orders/1", alice, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("own order: status %d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodGet, "/api/orders/1", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin reads order: status %d", rec.Code)
	}
}

func TestWebLoginRedirect(t *testing.T) {
	h, _ := newTestServer(t, "srv_web_redirect")
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("anon /admin: status %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc == "" {
		t.Fatal("anon /admin: missing redirect location")
	}
}

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/odshop/storefront/auth"
	"github.com/odshop/storefront/httpx"
	"github.com/odshop/storefront/internal/services"
	"github.com/odshop/storefront/view"
)

// AccountHandler serves the login, register and logout pages for the
// server-rendered surface; API clients use the token endpoints instead.
type AccountHandler struct {
	users *services.UserService
}

func NewAccountHandler(users *services.UserService) *AccountHandler {
	return &AccountHandler{users: users}
}

// render uses the shared view.Render to ensure layout, funcs, and caching.
func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if err := view.Render(w, r, name+".html", data); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		if _, werr := w.Write([]byte("template error")); werr != nil {
			_ = werr
		}
	}
}

// safeReturnURL only allows same-site relative paths.
func safeReturnURL(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return "/"
	}
	return raw
}

func (h *AccountHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserIDFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, "login", map[string]any{
		"ReturnURL": safeReturnURL(r.URL.Query().Get("returnUrl")),
		"Email":     "",
	})
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	pass := r.FormValue("password")
	returnURL := safeReturnURL(r.FormValue("return_url"))
	if email == "" || pass == "" {
		renderTemplate(w, r, "login", map[string]any{"Error": "email and password required", "Email": email, "ReturnURL": returnURL})
		return
	}
	u, err := h.users.Authenticate(email, pass)
	if err != nil {
		renderTemplate(w, r, "login", map[string]any{"Error": "invalid credentials", "Email": email, "ReturnURL": returnURL})
		return
	}
	auth.CreateSession(w, u.ID)
	// PRG redirect (303)
	http.Redirect(w, r, returnURL, http.StatusSeeOther)
}

func (h *AccountHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserIDFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, "register", map[string]any{"Email": "", "FirstName": "", "LastName": ""})
}

func (h *AccountHandler) RegisterPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	pass := r.FormValue("password")
	first := strings.TrimSpace(r.FormValue("first_name"))
	last := strings.TrimSpace(r.FormValue("last_name"))
	if email == "" || pass == "" {
		renderTemplate(w, r, "register", map[string]any{"Error": "email and password required", "Email": email, "FirstName": first, "LastName": last})
		return
	}
	if len(pass) < 6 {
		renderTemplate(w, r, "register", map[string]any{"Error": "password must be at least 6 characters", "Email": email, "FirstName": first, "LastName": last})
		return
	}
	u, err := h.users.Register(email, pass, first, last)
	if err != nil {
		msg := "could not create account"
		if errors.Is(err, services.ErrEmailTaken) {
			msg = err.Error()
		}
		renderTemplate(w, r, "register", map[string]any{"Error": msg, "Email": email, "FirstName": first, "LastName": last})
		return
	}
	auth.CreateSession(w, u.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AccountHandler) AccessDenied(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "access_denied", nil)
}

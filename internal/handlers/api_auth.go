package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/odshop/storefront/auth"
	"github.com/odshop/storefront/httpx"
	"github.com/odshop/storefront/internal/models"
	"github.com/odshop/storefront/internal/services"
	"github.com/odshop/storefront/validation"
)

// AuthAPI serves token-based register and login for API clients.
type AuthAPI struct {
	users *services.UserService
}

func NewAuthAPI(users *services.UserService) *AuthAPI {
	return &AuthAPI{users: users}
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPayload struct {
	ID        uint     `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	FullName  string   `json:"fullName"`
	Roles     []string `json:"roles"`
}

// authResponse is the envelope both register and login answer with.
type authResponse struct {
	Success    bool         `json:"success"`
	Message    string       `json:"message"`
	Token      string       `json:"token,omitempty"`
	Expiration *time.Time   `json:"expiration,omitempty"`
	User       *userPayload `json:"user,omitempty"`
}

func toUserPayload(u *models.User) *userPayload {
	return &userPayload{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Roles:     u.RoleNames(),
	}
}

func (h *AuthAPI) issue(w http.ResponseWriter, u *models.User, message string, status int) {
	token, expires, err := auth.IssueToken(u.ID, u.Email, u.FullName(), u.RoleNames())
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, status, authResponse{
		Success:    true,
		Message:    message,
		Token:      token,
		Expiration: &expires,
		User:       toUserPayload(u),
	})
}

func (h *AuthAPI) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v := make(validation.Violations)
	validation.Required("email", req.Email, v)
	validation.Email("email", req.Email, v)
	validation.Required("password", req.Password, v)
	validation.MinLen("password", req.Password, 6, v)
	validation.MaxLen("firstName", req.FirstName, 50, v)
	validation.MaxLen("lastName", req.LastName, 50, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	u, err := h.users.Register(req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			httpx.JSON(w, http.StatusConflict, authResponse{Success: false, Message: err.Error()})
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	h.issue(w, u, "registration successful", http.StatusCreated)
}

func (h *AuthAPI) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.users.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			httpx.JSON(w, http.StatusUnauthorized, authResponse{Success: false, Message: err.Error()})
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	h.issue(w, u, "login successful", http.StatusOK)
}

// Me returns the authenticated caller's profile.
func (h *AuthAPI) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	u, err := h.users.ByID(uid)
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, toUserPayload(u))
}

package auth

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Bearer tokens for the JSON API. The cookie session above serves the
// server-rendered pages; API clients authenticate with these instead.

const tokenTTL = 7 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenSecret returns JWT_SECRET or the default dev value.
func TokenSecret() string {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return s
	}
	return "OmanDigitalShopSecretKey2024!@#$%^&*()"
}

func tokenIssuer() string {
	if s := os.Getenv("JWT_ISSUER"); s != "" {
		return s
	}
	return "OmanDigitalShop"
}

func tokenAudience() string {
	if s := os.Getenv("JWT_AUDIENCE"); s != "" {
		return s
	}
	return "OmanDigitalShopUsers"
}

// Claims is the token payload. Roles ride along so the API can authorize
// without a database round trip.
type Claims struct {
	UserID uint     `json:"uid"`
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// IssueToken signs a bearer token for the user; also returns the expiry
// so login responses can echo it.
func IssueToken(userID uint, email, name string, roles []string) (string, time.Time, error) {
	expires := time.Now().Add(tokenTTL)
	claims := Claims{
		UserID: userID,
		Email:  email,
		Name:   name,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer(),
			Audience:  jwt.ClaimStrings{tokenAudience()},
			Subject:   fmt.Sprint(userID),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(TokenSecret()))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ParseToken validates signature, issuer, audience and expiry.
func ParseToken(raw string) (*Claims, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(TokenSecret()), nil
	},
		jwt.WithIssuer(tokenIssuer()),
		jwt.WithAudience(tokenAudience()),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// BearerMiddleware attaches user id and roles from an Authorization
// header if one is present and valid. It never rejects on its own.
func BearerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if strings.HasPrefix(h, "Bearer ") {
			if claims, err := ParseToken(strings.TrimPrefix(h, "Bearer ")); err == nil {
				ctx := WithUserID(r.Context(), claims.UserID)
				ctx = WithRoles(ctx, claims.Roles)
				r = r.WithContext(ctx)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireBearer rejects requests without a valid token with 401 JSON.
func RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserIDFromContext(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"unauthorized"}`)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireBearerRole rejects authenticated callers lacking the role with 403.
func RequireBearerRole(role string, next http.Handler) http.Handler {
	return RequireBearer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !HasRole(r.Context(), role) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"message":"forbidden"}`)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

package auth

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Bearer-token auth. Tokens carry the user id, the owning company id, and
// the role, so scoped handlers never need a second lookup to know their
// tenant.

type ctxKey string

const (
	userIDCtxKey    = ctxKey("userID")
	roleCtxKey      = ctxKey("role")
	companyIDCtxKey = ctxKey("companyID")
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Secret returns JWT_SECRET or a default dev value.
func Secret() string {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return s
	}
	return "devjwtsecret"
}

// Claims decoded from a verified token. CompanyID may be zero for tokens
// issued before the company record existed.
type Claims struct {
	UserID    uint
	CompanyID uint
	Role      string
}

// GenerateToken signs an HS256 token valid for ttl.
func GenerateToken(userID, companyID uint, role string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    userID,
		"company_id": companyID,
		"role":       role,
		"exp":        time.Now().Add(ttl).Unix(),
	})
	return token.SignedString([]byte(Secret()))
}

// ParseToken verifies the signature and expiry and extracts the claims.
func ParseToken(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(Secret()), nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	var c Claims
	if v, ok := mc["user_id"].(float64); ok {
		c.UserID = uint(v)
	}
	if v, ok := mc["company_id"].(float64); ok {
		c.CompanyID = uint(v)
	}
	if v, ok := mc["role"].(string); ok {
		c.Role = v
	}
	if c.UserID == 0 {
		return Claims{}, ErrInvalidToken
	}
	return c, nil
}

// WithClaims stores verified claims in context.
func WithClaims(ctx context.Context, c Claims) context.Context {
	ctx = context.WithValue(ctx, userIDCtxKey, c.UserID)
	ctx = context.WithValue(ctx, companyIDCtxKey, c.CompanyID)
	return context.WithValue(ctx, roleCtxKey, c.Role)
}

// UserIDFromContext extracts the authenticated user id.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(userIDCtxKey).(uint)
	return id, ok && id != 0
}

// CompanyClaimFromContext extracts the company id claim (may be zero).
func CompanyClaimFromContext(ctx context.Context) uint {
	id, _ := ctx.Value(companyIDCtxKey).(uint)
	return id
}

// RoleFromContext extracts the role claim.
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleCtxKey).(string)
	return role
}

// Middleware attaches claims to the request context when a valid bearer
// token is present. It never rejects; RequireAuth does that.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if token := strings.TrimPrefix(header, "Bearer "); token != header && token != "" {
			if c, err := ParseToken(token); err == nil {
				r = r.WithContext(WithClaims(r.Context(), c))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects requests without verified claims.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserIDFromContext(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"authorization required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects authenticated users without the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if RoleFromContext(r.Context()) != "admin" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"message":"admin access required"}`))
			return
		}
		next.ServeHTTP(w, r)
	}))
}

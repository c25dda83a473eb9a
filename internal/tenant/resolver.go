package tenant

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/Pavank5214/charan-sub000/internal/auth"
	"github.com/Pavank5214/charan-sub000/internal/cache"
	"github.com/Pavank5214/charan-sub000/internal/httpx"
	"github.com/Pavank5214/charan-sub000/internal/models"
)

type ctxKey string

const companyCtxKey = ctxKey("tenantCompanyID")

// ErrUnknownCompany means the token references a company that no longer
// exists; the request must not fall through to another tenant's data.
var ErrUnknownCompany = errors.New("company not found")

// Resolver binds every authenticated request to exactly one company id.
// Tokens issued after company setup carry the id directly; tokens without
// the claim fall back to the single existing company record. That legacy
// path lives only here so it can be removed in one place.
type Resolver struct {
	DB    *gorm.DB
	known *cache.TTL[uint, bool]
}

func NewResolver(db *gorm.DB, ttl time.Duration) *Resolver {
	return &Resolver{DB: db, known: cache.New[uint, bool](ttl)}
}

// Resolve returns the company id owning the request. Zero with a nil error
// means no company record exists yet; handlers may lazily create one.
func (r *Resolver) Resolve(ctx context.Context) (uint, error) {
	if id := auth.CompanyClaimFromContext(ctx); id != 0 {
		ok, err := r.exists(id)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, ErrUnknownCompany
		}
		return id, nil
	}
	return r.firstCompany()
}

func (r *Resolver) exists(id uint) (bool, error) {
	if ok, hit := r.known.Get(id); hit {
		return ok, nil
	}
	var count int64
	if err := r.DB.Model(&models.Company{}).Where("id = ?", id).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	found := count > 0
	if found {
		// negative results are not cached: a freshly created company
		// must become visible immediately
		r.known.Set(id, true)
	}
	return found, nil
}

// firstCompany is the single-tenant shortcut kept for tokens minted before
// setup completed.
func (r *Resolver) firstCompany() (uint, error) {
	var company models.Company
	err := r.DB.Select("id").Order("id").First(&company).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return company.ID, nil
}

// Invalidate drops the cached existence entry for a company. Call after
// company deletion.
func (r *Resolver) Invalidate(id uint) { r.known.Invalidate(id) }

// Middleware resolves the tenant for authenticated requests and stores the
// company id in context. Requests without claims pass through untouched.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if _, ok := auth.UserIDFromContext(req.Context()); ok {
			id, err := r.Resolve(req.Context())
			if errors.Is(err, ErrUnknownCompany) {
				httpx.JSONError(w, http.StatusUnauthorized, "company not found for this account", nil)
				return
			}
			if err != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "failed to resolve company", nil)
				return
			}
			req = req.WithContext(WithCompanyID(req.Context(), id))
		}
		next.ServeHTTP(w, req)
	})
}

// WithCompanyID stores the resolved company id in context.
func WithCompanyID(ctx context.Context, id uint) context.Context {
	return context.WithValue(ctx, companyCtxKey, id)
}

// CompanyIDFromContext extracts the resolved company id. ok is false when
// no company record exists yet.
func CompanyIDFromContext(ctx context.Context) (uint, bool) {
	id, _ := ctx.Value(companyCtxKey).(uint)
	return id, id != 0
}

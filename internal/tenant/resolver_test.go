package tenant

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Pavank5214/charan-sub000/internal/auth"
	"github.com/Pavank5214/charan-sub000/internal/models"
)

func setupTenantDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Company{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestResolveFromClaim(t *testing.T) {
	db := setupTenantDB(t)
	company := models.Company{Name: "Acme Fabricators"}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}
	r := NewResolver(db, time.Minute)

	ctx := auth.WithClaims(context.Background(), auth.Claims{UserID: 1, CompanyID: company.ID, Role: "user"})
	id, err := r.Resolve(ctx)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != company.ID {
		t.Fatalf("expected company %d got %d", company.ID, id)
	}
}

func TestResolveUnknownClaimRejected(t *testing.T) {
	db := setupTenantDB(t)
	r := NewResolver(db, time.Minute)
	ctx := auth.WithClaims(context.Background(), auth.Claims{UserID: 1, CompanyID: 99})
	if _, err := r.Resolve(ctx); !errors.Is(err, ErrUnknownCompany) {
		t.Fatalf("expected ErrUnknownCompany, got %v", err)
	}
}

func TestResolveLegacyTokenFallsBackToFirstCompany(t *testing.T) {
	db := setupTenantDB(t)
	first := models.Company{Name: "First Co"}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	second := models.Company{Name: "Second Co"}
	if err := db.Create(&second).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	r := NewResolver(db, time.Minute)
	ctx := auth.WithClaims(context.Background(), auth.Claims{UserID: 1}) // no company claim
	id, err := r.Resolve(ctx)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != first.ID {
		t.Fatalf("legacy fallback must pick the first record, got %d", id)
	}
}

func TestResolveNoCompanyYet(t *testing.T) {
	db := setupTenantDB(t)
	r := NewResolver(db, time.Minute)
	ctx := auth.WithClaims(context.Background(), auth.Claims{UserID: 1})
	id, err := r.Resolve(ctx)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != 0 {
		t.Fatalf("expected zero company id before setup, got %d", id)
	}
}

func TestCompanyIDContextRoundTrip(t *testing.T) {
	ctx := WithCompanyID(context.Background(), 7)
	id, ok := CompanyIDFromContext(ctx)
	if !ok || id != 7 {
		t.Fatalf("got %d ok=%v", id, ok)
	}
	if _, ok := CompanyIDFromContext(context.Background()); ok {
		t.Fatalf("empty context must not resolve a company")
	}
}

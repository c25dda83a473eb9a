package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Pavank5214/charan-sub000/internal/db"
	"github.com/Pavank5214/charan-sub000/internal/models"
	"github.com/Pavank5214/charan-sub000/internal/tenant"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbi, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := dbi.AutoMigrate(db.AllModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return dbi
}

// seedFixtures creates the minimal tenant: a company and one client.
func seedFixtures(t *testing.T, dbi *gorm.DB) (company models.Company, client models.Client) {
	t.Helper()
	company = models.Company{Name: "Sharma Engineering", GSTIN: "29ABCDE1234F1Z5"}
	if err := dbi.Create(&company).Error; err != nil {
		t.Fatalf("company: %v", err)
	}
	client = models.Client{CompanyID: company.ID, Name: "Patel Industries", GSTIN: "27FGHIJ5678K1Z9"}
	if err := dbi.Create(&client).Error; err != nil {
		t.Fatalf("client: %v", err)
	}
	return
}

// scopedRequest builds a request already carrying the tenant scope, the way
// the middleware chain would hand it to a handler.
func scopedRequest(method, target string, companyID uint, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	return r.WithContext(tenant.WithCompanyID(context.Background(), companyID))
}

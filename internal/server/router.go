package server

import (
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/Pavank5214/charan-sub000/internal/auth"
	"github.com/Pavank5214/charan-sub000/internal/config"
	"github.com/Pavank5214/charan-sub000/internal/extract"
	"github.com/Pavank5214/charan-sub000/internal/handlers"
	"github.com/Pavank5214/charan-sub000/internal/httpx"
	"github.com/Pavank5214/charan-sub000/internal/tenant"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, cfg config.Config) http.Handler {
	mux := http.NewServeMux()

	resolver := tenant.NewResolver(db, cfg.TenantTTL)

	// --- Health endpoints ---
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// protect wires the standard chain for tenant-scoped endpoints: token
	// parsing, auth gate, then company resolution.
	protect := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireAuth(resolver.Middleware(h)))
	}
	// Deletes are admin-only.
	protectAdmin := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireAdmin(resolver.Middleware(h)))
	}

	// Auth endpoints
	ah := handlers.NewAuthHandler(db, cfg.TokenTTL)
	mux.HandleFunc("/api/auth/register", ah.Register)
	mux.HandleFunc("/api/auth/login", ah.Login)
	mux.Handle("/api/auth/me", auth.Middleware(auth.RequireAuth(http.HandlerFunc(ah.Me))))

	// Company settings
	ch := handlers.NewCompanyHandler(db, resolver)
	mux.Handle("/api/company", protect(ch.Settings))

	// Client directory
	clh := handlers.NewClientHandler(db)
	mux.Handle("/api/clients", protect(clh.Collection))
	mux.Handle("/api/clients/get", protect(clh.Get))
	mux.Handle("/api/clients/update", protect(clh.Update))
	mux.Handle("/api/clients/delete", protectAdmin(clh.Delete))

	// Item catalog
	ith := handlers.NewItemHandler(db)
	mux.Handle("/api/items", protect(ith.Collection))
	mux.Handle("/api/items/update", protect(ith.Update))
	mux.Handle("/api/items/delete", protectAdmin(ith.Delete))

	// Invoices
	ih := handlers.NewInvoiceHandler(db)
	mux.Handle("/api/invoices", protect(ih.Collection))
	mux.Handle("/api/invoices/get", protect(ih.Get))
	mux.Handle("/api/invoices/update", protect(ih.Update))
	mux.Handle("/api/invoices/delete", protectAdmin(ih.Delete))
	mux.Handle("/api/invoices/status", protect(ih.Status))
	mux.Handle("/api/invoices/print", protect(ih.Print))

	// Quotations
	qh := handlers.NewQuotationHandler(db)
	mux.Handle("/api/quotations", protect(qh.Collection))
	mux.Handle("/api/quotations/get", protect(qh.Get))
	mux.Handle("/api/quotations/update", protect(qh.Update))
	mux.Handle("/api/quotations/delete", protectAdmin(qh.Delete))
	mux.Handle("/api/quotations/status", protect(qh.Status))
	mux.Handle("/api/quotations/convert", protect(qh.Convert))
	mux.Handle("/api/quotations/print", protect(qh.Print))

	// Bills of materials
	bh := handlers.NewBOMHandler(db)
	mux.Handle("/api/boms", protect(bh.Collection))
	mux.Handle("/api/boms/get", protect(bh.Get))
	mux.Handle("/api/boms/update", protect(bh.Update))
	mux.Handle("/api/boms/delete", protectAdmin(bh.Delete))
	mux.Handle("/api/boms/status", protect(bh.Status))

	// Purchase orders
	poh := handlers.NewPurchaseOrderHandler(db)
	mux.Handle("/api/purchase-orders", protect(poh.Collection))
	mux.Handle("/api/purchase-orders/get", protect(poh.Get))
	mux.Handle("/api/purchase-orders/update", protect(poh.Update))
	mux.Handle("/api/purchase-orders/delete", protectAdmin(poh.Delete))
	mux.Handle("/api/purchase-orders/status", protect(poh.Status))
	mux.Handle("/api/purchase-orders/print", protect(poh.Print))

	// Payments
	pyh := handlers.NewPaymentHandler(db)
	mux.Handle("/api/payments", protect(pyh.Collection))
	mux.Handle("/api/payments/status", protect(pyh.Status))
	mux.Handle("/api/payments/delete", protectAdmin(pyh.Delete))

	// Expenses
	exh := handlers.NewExpenseHandler(db)
	mux.Handle("/api/expenses", protect(exh.Collection))
	mux.Handle("/api/expenses/update", protect(exh.Update))
	mux.Handle("/api/expenses/delete", protectAdmin(exh.Delete))

	// Reports
	rh := handlers.NewReportHandler(db)
	mux.Handle("/api/reports/dashboard", protect(rh.Dashboard))

	// Free-text extraction
	xh := handlers.NewExtractHandler(extract.NewClientFromEnv(), cfg.ExtractTTL)
	mux.Handle("/api/extract/invoice", protect(xh.Invoice))
	mux.Handle("/api/extract/quotation", protect(xh.Quotation))

	// Root placeholder
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Billing API - see /health"))
	})

	return withRecover(withLogging(mux))
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Pavank5214/charan-sub000/internal/extract"
)

const draftReply = `{
	"candidates": [{"content": {"parts": [{"text": "{\"client_name\": \"Sharma Traders\", \"items\": [{\"description\": \"Cable tray\", \"qty\": 10, \"rate\": 450}], \"gst_rate\": 18}"}]}}]
}`

func TestExtractCachesRepeatSubmissions(t *testing.T) {
	calls := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(draftReply))
	}))
	defer upstream.Close()
	t.Setenv("EXTRACT_API_KEY", "test-key")
	t.Setenv("EXTRACT_API_BASE", upstream.URL)

	h := NewExtractHandler(extract.NewClientFromEnv(), time.Minute)
	body := `{"text": "Please invoice Sharma Traders for 10 cable trays at 450 plus GST"}`

	w := httptest.NewRecorder()
	h.Invoice(w, scopedRequest(http.MethodPost, "/api/extract/invoice", 1, body))
	if w.Code != http.StatusOK {
		t.Fatalf("extract: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Cached bool `json:"cached"`
		Draft  struct {
			ClientName string `json:"client_name"`
		} `json:"draft"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Cached || resp.Draft.ClientName != "Sharma Traders" {
		t.Fatalf("unexpected first response: %+v", resp)
	}

	w = httptest.NewRecorder()
	h.Invoice(w, scopedRequest(http.MethodPost, "/api/extract/invoice", 1, body))
	if w.Code != http.StatusOK {
		t.Fatalf("repeat: %d %s", w.Code, w.Body.String())
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Cached {
		t.Fatalf("identical text within the window must come from cache")
	}
	if calls != 1 {
		t.Fatalf("upstream called %d times, want 1", calls)
	}

	// Same text for a different tenant misses the cache.
	w = httptest.NewRecorder()
	h.Invoice(w, scopedRequest(http.MethodPost, "/api/extract/invoice", 2, body))
	if w.Code != http.StatusOK {
		t.Fatalf("other tenant: %d %s", w.Code, w.Body.String())
	}
	if calls != 2 {
		t.Fatalf("tenant caches must be separate, upstream calls = %d", calls)
	}
}

func TestExtractDisabledWithoutKey(t *testing.T) {
	t.Setenv("EXTRACT_API_KEY", "")
	h := NewExtractHandler(extract.NewClientFromEnv(), time.Minute)

	w := httptest.NewRecorder()
	h.Invoice(w, scopedRequest(http.MethodPost, "/api/extract/invoice", 1, `{"text": "anything"}`))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when not configured, got %d", w.Code)
	}
}

func TestExtractUpstreamFailureIsBadGateway(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer upstream.Close()
	t.Setenv("EXTRACT_API_KEY", "test-key")
	t.Setenv("EXTRACT_API_BASE", upstream.URL)

	h := NewExtractHandler(extract.NewClientFromEnv(), time.Minute)
	w := httptest.NewRecorder()
	h.Invoice(w, scopedRequest(http.MethodPost, "/api/extract/invoice", 1, `{"text": "anything"}`))
	if w.Code != http.StatusBadGateway {
		t.Fatalf("upstream failure must 502, got %d", w.Code)
	}
}

func TestExtractRequiresText(t *testing.T) {
	t.Setenv("EXTRACT_API_KEY", "test-key")
	h := NewExtractHandler(extract.NewClientFromEnv(), time.Minute)

	w := httptest.NewRecorder()
	h.Quotation(w, scopedRequest(http.MethodPost, "/api/extract/quotation", 1, `{"text": "  "}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("blank text must 400, got %d", w.Code)
	}
}

package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Pavank5214/charan-sub000/internal/cache"
	"github.com/Pavank5214/charan-sub000/internal/extract"
	"github.com/Pavank5214/charan-sub000/internal/httpx"
)

// ExtractHandler turns pasted free text (emails, WhatsApp messages, scanned
// notes) into a pre-filled document draft via the extraction service.
// Repeat submissions of identical text within the cache window skip the
// upstream call.
type ExtractHandler struct {
	Client *extract.Client
	cache  *cache.TTL[string, *extract.DocumentDraft]
}

func NewExtractHandler(client *extract.Client, ttl time.Duration) *ExtractHandler {
	return &ExtractHandler{Client: client, cache: cache.New[string, *extract.DocumentDraft](ttl)}
}

// Invoice: POST /api/extract/invoice
func (h *ExtractHandler) Invoice(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "invoice")
}

// Quotation: POST /api/extract/quotation
func (h *ExtractHandler) Quotation(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "quotation")
}

func (h *ExtractHandler) handle(w http.ResponseWriter, r *http.Request, kind string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if !h.Client.Enabled() {
		httpx.JSONError(w, http.StatusServiceUnavailable, "extraction not configured", nil)
		return
	}
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", map[string]string{"text": "required"})
		return
	}
	key := cacheKey(companyID, kind, text)
	if draft, ok := h.cache.Get(key); ok {
		httpx.JSON(w, http.StatusOK, map[string]any{"draft": draft, "cached": true})
		return
	}
	draft, err := h.Client.ExtractDraft(r.Context(), kind, text)
	if err != nil {
		if errors.Is(err, extract.ErrBadResponse) {
			httpx.JSONError(w, http.StatusBadGateway, "extraction service returned an unusable response", nil)
			return
		}
		httpx.JSONError(w, http.StatusBadGateway, "extraction service unavailable", nil)
		return
	}
	h.cache.Set(key, draft)
	httpx.JSON(w, http.StatusOK, map[string]any{"draft": draft, "cached": false})
}

func cacheKey(companyID uint, kind, text string) string {
	sum := sha256.Sum256([]byte(kind + "\x00" + text))
	return fmt.Sprintf("%d:%s:%s", companyID, kind, hex.EncodeToString(sum[:8]))
}

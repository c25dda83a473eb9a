package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// Client calls the hosted language model that turns free text into a
// structured document draft. The call is fire-and-forget per request: no
// retries, failures surface directly to the caller.

const (
	defaultBaseURL     = "https://generativelanguage.googleapis.com"
	defaultModel       = "gemini-1.5-flash"
	defaultHTTPTimeout = 30 * time.Second
)

var (
	ErrNotConfigured = errors.New("extraction API key not configured")
	ErrBadResponse   = errors.New("extraction service returned an unusable response")
)

type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// NewClientFromEnv reads EXTRACT_API_KEY (and optional EXTRACT_MODEL /
// EXTRACT_API_BASE). A missing key returns a disabled client, not an
// error, so the rest of the app boots without the feature.
func NewClientFromEnv() *Client {
	base := os.Getenv("EXTRACT_API_BASE")
	if base == "" {
		base = defaultBaseURL
	}
	model := os.Getenv("EXTRACT_MODEL")
	if model == "" {
		model = defaultModel
	}
	return &Client{
		apiKey:  os.Getenv("EXTRACT_API_KEY"),
		model:   model,
		baseURL: base,
		http:    &http.Client{Timeout: defaultHTTPTimeout},
	}
}

func (c *Client) Enabled() bool { return c != nil && c.apiKey != "" }

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Complete sends a prompt and returns the first text block of the reply.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}
	payload := generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("extraction service status %d", resp.StatusCode)
	}
	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	for _, cand := range out.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				return p.Text, nil
			}
		}
	}
	return "", ErrBadResponse
}

// RecoverJSON extracts the JSON object from a model reply. Models wrap
// output in prose or code fences, so it takes the substring from the
// first '{' to the last '}' and gives up if that still does not parse.
func RecoverJSON(raw string) ([]byte, error) {
	s := strings.TrimSpace(raw)
	if json.Valid([]byte(s)) {
		return []byte(s), nil
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return nil, ErrBadResponse
	}
	candidate := s[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return nil, ErrBadResponse
	}
	return []byte(candidate), nil
}

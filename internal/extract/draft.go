package extract

import (
	"context"
	"encoding/json"
	"fmt"
)

// DocumentDraft is the best-effort structured form of free text. Fields
// the model could not extract stay at their zero values ("" / 0); callers
// treat the draft as a prefill, never as validated input.
type DocumentDraft struct {
	ClientName     string      `json:"client_name"`
	ClientAddress  string      `json:"client_address"`
	ClientGSTIN    string      `json:"client_gstin"`
	DocumentNumber string      `json:"document_number"`
	Date           string      `json:"date"`
	Items          []DraftItem `json:"items"`
	BasicPrice     float64     `json:"basic_price"`
	GSTRate        float64     `json:"gst_rate"`
	Notes          string      `json:"notes"`
}

type DraftItem struct {
	Description string  `json:"description"`
	HSN         string  `json:"hsn"`
	Qty         float64 `json:"qty"`
	Unit        string  `json:"unit"`
	Rate        float64 `json:"rate"`
	Discount    float64 `json:"discount"`
}

const draftPromptTemplate = `Extract a %s from the text below.
Respond with ONLY a JSON object, no commentary, matching this shape:
{"client_name":"","client_address":"","client_gstin":"","document_number":"","date":"YYYY-MM-DD","items":[{"description":"","hsn":"","qty":0,"unit":"NOS","rate":0,"discount":0}],"basic_price":0,"gst_rate":18,"notes":""}
Use empty strings and zeros for anything the text does not state.

Text:
%s`

// ExtractDraft asks the model to structure free text into a draft of the
// named document kind ("invoice" or "quotation").
func (c *Client) ExtractDraft(ctx context.Context, kind, text string) (*DocumentDraft, error) {
	reply, err := c.Complete(ctx, fmt.Sprintf(draftPromptTemplate, kind, text))
	if err != nil {
		return nil, err
	}
	payload, err := RecoverJSON(reply)
	if err != nil {
		return nil, err
	}
	var draft DocumentDraft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return nil, ErrBadResponse
	}
	return &draft, nil
}

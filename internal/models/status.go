package models

// Document kinds carrying a status field.
const (
	DocInvoice       = "invoice"
	DocQuotation     = "quotation"
	DocBOM           = "bom"
	DocPurchaseOrder = "purchase_order"
	DocPayment       = "payment"
)

const (
	StatusDraft = "draft"

	// StatusConverted is only ever set by the quotation convert
	// operation, never by a direct status update.
	StatusConverted = "converted"
)

// allowedStatuses is the fixed value set per document kind. There is no
// transition graph: any member may be set from any other member.
var allowedStatuses = map[string][]string{
	DocInvoice:       {"draft", "sent", "paid", "overdue"},
	DocQuotation:     {"draft", "sent", "approved", "accepted", "rejected", "converted"},
	DocBOM:           {"draft", "approved", "in-production", "completed"},
	DocPurchaseOrder: {"draft", "sent", "received", "cancelled"},
	DocPayment:       {"verified", "pending", "failed"},
}

// AllowedStatuses returns the valid status values for a document kind.
func AllowedStatuses(doc string) []string {
	return allowedStatuses[doc]
}

// ValidStatus reports whether status belongs to the allowed set of doc.
// Membership is checked for every document kind, payments included.
func ValidStatus(doc, status string) bool {
	for _, s := range allowedStatuses[doc] {
		if s == status {
			return true
		}
	}
	return false
}

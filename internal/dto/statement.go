package dto

// SchemaVersion is bumped whenever a field of ParseStatementResponse changes meaning.
const SchemaVersion = "1"

type ParseStatementResponse struct {
	CardLast4      *string `json:"card_last_4"`
	CardType       *string `json:"card_type"`
	CardVariant    *string `json:"card_variant"`
	BillingCycle   *string `json:"billing_cycle"`
	DueDate        *string `json:"due_date"`
	TotalAmount    *string `json:"total_amount"`
	MinimumPayment *string `json:"minimum_payment"`

	Currency            *string `json:"currency"`
	TotalAmountMinor    *int64  `json:"total_amount_minor"`
	MinimumPaymentMinor *int64  `json:"minimum_payment_minor"`

	PageCount     int    `json:"page_count"`
	RawPreview    string `json:"raw_preview"`
	ParsedOn      string `json:"parsed_on"` // RFC 3339, UTC
	SchemaVersion string `json:"schema_version"`
	Success       bool   `json:"success"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

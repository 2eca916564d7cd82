package models

// StatementFields is the result of running the field rules over statement text.
// A nil field means no rule matched; that is a valid outcome, not an error.
type StatementFields struct {
	CardLast4      *string `json:"card_last_4"`
	CardType       *string `json:"card_type"`
	BillingCycle   *string `json:"billing_cycle"`
	DueDate        *string `json:"due_date"`
	TotalAmount    *string `json:"total_amount"`
	MinimumPayment *string `json:"minimum_payment"`
}

// Field names, shared by the rule tables, metrics and logs.
const (
	FieldCardLast4      = "card_last_4"
	FieldCardType       = "card_type"
	FieldCardVariant    = "card_variant"
	FieldBillingCycle   = "billing_cycle"
	FieldDueDate        = "due_date"
	FieldTotalAmount    = "total_amount"
	FieldMinimumPayment = "minimum_payment"
)

// Matched lists the names of the fields that hold a value.
func (f StatementFields) Matched() []string {
	var names []string
	for _, field := range []struct {
		name  string
		value *string
	}{
		{FieldCardLast4, f.CardLast4},
		{FieldCardType, f.CardType},
		{FieldBillingCycle, f.BillingCycle},
		{FieldDueDate, f.DueDate},
		{FieldTotalAmount, f.TotalAmount},
		{FieldMinimumPayment, f.MinimumPayment},
	} {
		if field.value != nil {
			names = append(names, field.name)
		}
	}
	return names
}

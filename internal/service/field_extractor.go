package service

import (
	"statement-parser/internal/models"
	"statement-parser/pkg/money"
)

// Extraction is everything the field rules pull out of one statement text.
type Extraction struct {
	Fields models.StatementFields
	// CardVariant is the card tier, classified independently of Fields.CardType.
	CardVariant *string
	// Currency is the ISO code behind the marker next to the total (or, failing
	// that, the minimum payment). Nil when no marker was printed.
	Currency *string
	// Rules records which rule produced each matched field, for logs.
	Rules map[string]string
}

// FieldExtractor maps statement text to fields. It holds only immutable,
// precompiled tables, so one instance is safe to share between requests.
type FieldExtractor struct {
	tables   []fieldRules
	networks *keywordClassifier
	tiers    *keywordClassifier
}

// NewFieldExtractor builds an extractor. With strictCardLast4 the card digits
// must come from a labeled or masked context; the bare 4-digit fallback is off.
func NewFieldExtractor(strictCardLast4 bool) *FieldExtractor {
	return &FieldExtractor{
		tables:   defaultFieldTables(strictCardLast4),
		networks: newKeywordClassifier(cardNetworks),
		tiers:    newKeywordClassifier(cardTiers),
	}
}

var defaultExtractor = NewFieldExtractor(false)

// ExtractFields runs the default (non-strict) rules over text.
func ExtractFields(text string) models.StatementFields {
	return defaultExtractor.Extract(text).Fields
}

// Extract never fails: a field without a matching rule stays nil.
func (e *FieldExtractor) Extract(text string) Extraction {
	out := Extraction{Rules: make(map[string]string)}
	if text == "" {
		return out
	}

	var currencyMarkers []string
	for _, table := range e.tables {
		value, sub, r := firstMatch(table.rules, text)
		if r == nil {
			continue
		}
		out.Rules[table.field] = r.name

		v := value
		switch table.field {
		case models.FieldCardLast4:
			out.Fields.CardLast4 = &v
		case models.FieldBillingCycle:
			out.Fields.BillingCycle = &v
		case models.FieldDueDate:
			out.Fields.DueDate = &v
		case models.FieldTotalAmount:
			out.Fields.TotalAmount = &v
			currencyMarkers = append(currencyMarkers, namedGroup(r.re, sub, "currency"))
		case models.FieldMinimumPayment:
			out.Fields.MinimumPayment = &v
			currencyMarkers = append(currencyMarkers, namedGroup(r.re, sub, "currency"))
		}
	}

	if network := e.networks.Classify(text); network != "" {
		out.Fields.CardType = &network
		out.Rules[models.FieldCardType] = "network_name"
	}
	if tier := e.tiers.Classify(text); tier != "" {
		out.CardVariant = &tier
		out.Rules[models.FieldCardVariant] = "tier_name"
	}

	for _, marker := range currencyMarkers {
		if code, ok := money.CurrencyFromMarker(marker); ok {
			out.Currency = &code
			break
		}
	}

	return out
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"statement-parser/internal/dto"
	"statement-parser/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2025, time.October, 2, 9, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))

func newTestStatementService(backend TextExtractor, previewChars int) (*StatementService, *metrics.Metrics) {
	m := metrics.New()
	svc := NewStatementService(
		NewTextService(backend, time.Second, zap.NewNop()),
		NewFieldExtractor(false),
		m,
		previewChars,
		zap.NewNop(),
	)
	svc.now = func() time.Time { return fixedNow }
	return svc, m
}

// counterValue reads one labelled counter from the registry.
func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if pair.GetName() == label && pair.GetValue() == value {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestStatementService_Parse(t *testing.T) {
	svc, m := newTestStatementService(&fakeExtractor{pages: []string{sampleStatement}}, 1000)

	resp, err := svc.Parse(context.Background(), "statement.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, strPtr("4821"), resp.CardLast4)
	assert.Equal(t, strPtr("Visa"), resp.CardType)
	assert.Equal(t, strPtr("Platinum"), resp.CardVariant)
	assert.Equal(t, strPtr("01 Sep 2025 - 30 Sep 2025"), resp.BillingCycle)
	assert.Equal(t, strPtr("15 October 2025"), resp.DueDate)
	assert.Equal(t, strPtr("12,450.00"), resp.TotalAmount)
	assert.Equal(t, strPtr("620.00"), resp.MinimumPayment)
	assert.Equal(t, strPtr("INR"), resp.Currency)

	require.NotNil(t, resp.TotalAmountMinor)
	assert.Equal(t, int64(1245000), *resp.TotalAmountMinor)
	require.NotNil(t, resp.MinimumPaymentMinor)
	assert.Equal(t, int64(62000), *resp.MinimumPaymentMinor)

	assert.Equal(t, 1, resp.PageCount)
	assert.Equal(t, sampleStatement+"\n", resp.RawPreview)
	assert.Equal(t, "2025-10-02T04:00:00Z", resp.ParsedOn)
	assert.Equal(t, dto.SchemaVersion, resp.SchemaVersion)

	reg := m.Registry()
	assert.Equal(t, 1.0, counterValue(t, reg, "statement_parse_requests_total", "outcome", metrics.OutcomeSuccess))
	assert.Equal(t, 1.0, counterValue(t, reg, "statement_field_matches_total", "field", "due_date"))
	assert.Equal(t, 1.0, counterValue(t, reg, "statement_field_matches_total", "field", "card_variant"))
}

func TestStatementService_ParseWithoutFields(t *testing.T) {
	svc, _ := newTestStatementService(&fakeExtractor{pages: []string{"Thank you for banking with us."}}, 1000)

	resp, err := svc.Parse(context.Background(), "letter.pdf", nil)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Nil(t, resp.CardLast4)
	assert.Nil(t, resp.CardType)
	assert.Nil(t, resp.DueDate)
	assert.Nil(t, resp.TotalAmount)
	assert.Nil(t, resp.TotalAmountMinor)
	assert.Nil(t, resp.Currency)
}

func TestStatementService_DefaultCurrencyForMinorUnits(t *testing.T) {
	svc, _ := newTestStatementService(&fakeExtractor{pages: []string{"Total Amount Due 1,200.5"}}, 1000)

	resp, err := svc.Parse(context.Background(), "statement.pdf", nil)
	require.NoError(t, err)

	assert.Nil(t, resp.Currency)
	require.NotNil(t, resp.TotalAmountMinor)
	assert.Equal(t, int64(120050), *resp.TotalAmountMinor)
}

func TestStatementService_MinorUnits(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantCurrency *string
		wantMinor    *int64
	}{
		{"decimal comma euro", "Total Amount Due: € 45,00", strPtr("EUR"), int64Ptr(4500)},
		{"rupee thousands", "Total Amount Due: Rs. 1,23,456.50", strPtr("INR"), int64Ptr(12345650)},
		{"too large for int64", "Total Amount Due: $ 99999999999999999999999.00", strPtr("USD"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestStatementService(&fakeExtractor{pages: []string{tt.text}}, 1000)

			resp, err := svc.Parse(context.Background(), "statement.pdf", nil)
			require.NoError(t, err)

			require.NotNil(t, resp.TotalAmount)
			assert.Equal(t, tt.wantCurrency, resp.Currency)
			assert.Equal(t, tt.wantMinor, resp.TotalAmountMinor)
		})
	}
}

func int64Ptr(v int64) *int64 { return &v }

func TestStatementService_PreviewIsCapped(t *testing.T) {
	text := strings.Repeat("₹", 50)
	svc, _ := newTestStatementService(&fakeExtractor{pages: []string{text}}, 10)

	resp, err := svc.Parse(context.Background(), "statement.pdf", nil)
	require.NoError(t, err)

	assert.Equal(t, strings.Repeat("₹", 10), resp.RawPreview)
}

func TestStatementService_NoText(t *testing.T) {
	svc, m := newTestStatementService(&fakeExtractor{pages: []string{"", "  \n\t"}}, 1000)

	resp, err := svc.Parse(context.Background(), "scan.pdf", nil)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrNoText)
	assert.Equal(t, 1.0, counterValue(t, m.Registry(), "statement_parse_requests_total", "outcome", metrics.OutcomeNoText))
}

func TestStatementService_ExtractionError(t *testing.T) {
	backendErr := errors.New("cannot find page tree")
	svc, m := newTestStatementService(&fakeExtractor{err: backendErr}, 1000)

	resp, err := svc.Parse(context.Background(), "broken.pdf", nil)
	assert.Nil(t, resp)

	var extractErr *ExtractionError
	require.ErrorAs(t, err, &extractErr)
	assert.ErrorIs(t, err, backendErr)
	assert.Equal(t, 1.0, counterValue(t, m.Registry(), "statement_parse_requests_total", "outcome", metrics.OutcomeExtractError))
}

func TestStatementService_RealPDF(t *testing.T) {
	data := buildTextPDF(
		[]string{"Visa Signature Statement", "Card ending in 9012"},
		[]string{"Payment Due Date: 05/11/2025", "Minimum Payment Due: $35.00"},
	)
	svc, _ := newTestStatementService(&PureExtractor{logger: zap.NewNop()}, 1000)

	resp, err := svc.Parse(context.Background(), "statement.pdf", data)
	require.NoError(t, err)

	assert.Equal(t, 2, resp.PageCount)
	assert.Equal(t, strPtr("9012"), resp.CardLast4)
	assert.Equal(t, strPtr("Visa"), resp.CardType)
	assert.Equal(t, strPtr("Signature"), resp.CardVariant)
	assert.Equal(t, strPtr("05/11/2025"), resp.DueDate)
	assert.Equal(t, strPtr("35.00"), resp.MinimumPayment)
	assert.Equal(t, strPtr("USD"), resp.Currency)
}

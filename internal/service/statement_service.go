package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"statement-parser/internal/dto"
	"statement-parser/internal/models"
	"statement-parser/pkg/metrics"
	"statement-parser/pkg/money"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type StatementService struct {
	textService  *TextService
	extractor    *FieldExtractor
	metrics      *metrics.Metrics
	previewChars int
	now          func() time.Time
	logger       *zap.Logger
}

func NewStatementService(
	textService *TextService,
	extractor *FieldExtractor,
	m *metrics.Metrics,
	previewChars int,
	logger *zap.Logger,
) *StatementService {
	return &StatementService{
		textService:  textService,
		extractor:    extractor,
		metrics:      m,
		previewChars: previewChars,
		now:          time.Now,
		logger:       logger,
	}
}

// Parse extracts the text of an uploaded statement and runs the field rules
// over it. Errors are *ExtractionError (backend failed or timed out) or
// ErrNoText (the PDF has no text layer).
func (s *StatementService) Parse(ctx context.Context, fileName string, data []byte) (*dto.ParseStatementResponse, error) {
	parseID := uuid.New()
	log := s.logger.With(
		zap.String("parse_id", parseID.String()),
		zap.String("file", fileName),
		zap.Int("size", len(data)),
	)

	// 1. PDF -> text
	doc, err := s.textService.ExtractText(ctx, data)
	if err != nil {
		var extractErr *ExtractionError
		if errors.As(err, &extractErr) {
			s.metrics.ObserveParse(metrics.OutcomeExtractError)
		} else {
			s.metrics.ObserveParse(metrics.OutcomeError)
		}
		log.Warn("PDF text extraction failed", zap.Error(err))
		return nil, err
	}
	s.metrics.ObserveExtractSeconds(doc.Duration.Seconds())

	if strings.TrimSpace(doc.Text) == "" {
		s.metrics.ObserveParse(metrics.OutcomeNoText)
		log.Info("PDF has no extractable text", zap.Int("pages", doc.PageCount))
		return nil, ErrNoText
	}

	// 2. text -> fields
	extraction := s.extractor.Extract(doc.Text)
	matched := extraction.Fields.Matched()
	for _, field := range matched {
		s.metrics.ObserveField(field)
	}
	if extraction.CardVariant != nil {
		s.metrics.ObserveField(models.FieldCardVariant)
	}

	// 3. fields -> payload
	resp := s.buildResponse(extraction, doc)
	s.metrics.ObserveParse(metrics.OutcomeSuccess)

	log.Info("Statement parsed",
		zap.Int("pages", doc.PageCount),
		zap.Int("text_length", len(doc.Text)),
		zap.Strings("fields", matched),
		zap.Any("rules", extraction.Rules),
	)

	return resp, nil
}

func (s *StatementService) buildResponse(extraction Extraction, doc *StatementText) *dto.ParseStatementResponse {
	fields := extraction.Fields
	resp := &dto.ParseStatementResponse{
		CardLast4:      fields.CardLast4,
		CardType:       fields.CardType,
		CardVariant:    extraction.CardVariant,
		BillingCycle:   fields.BillingCycle,
		DueDate:        fields.DueDate,
		TotalAmount:    fields.TotalAmount,
		MinimumPayment: fields.MinimumPayment,
		Currency:       extraction.Currency,
		PageCount:      doc.PageCount,
		RawPreview:     preview(doc.Text, s.previewChars),
		ParsedOn:       s.now().UTC().Format(time.RFC3339),
		SchemaVersion:  dto.SchemaVersion,
		Success:        true,
	}

	currency := money.DefaultCurrency
	if extraction.Currency != nil {
		currency = *extraction.Currency
	}
	resp.TotalAmountMinor = s.toMinor(fields.TotalAmount, currency)
	resp.MinimumPaymentMinor = s.toMinor(fields.MinimumPayment, currency)

	return resp
}

func (s *StatementService) toMinor(amount *string, currency string) *int64 {
	if amount == nil {
		return nil
	}
	minor, err := money.ToMinor(*amount, currency)
	if err != nil {
		s.logger.Debug("Amount not convertible to minor units",
			zap.String("amount", *amount),
			zap.Error(err),
		)
		return nil
	}
	return &minor
}

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"statement-parser/pkg/config"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// TextExtractor turns raw PDF bytes into per-page text, in page order. A page
// without a text layer yields "".
type TextExtractor interface {
	ExtractPages(ctx context.Context, data []byte) ([]string, error)
	Name() string
}

// NewTextExtractor returns the backend configured by PDF_BACKEND.
func NewTextExtractor(backend string, logger *zap.Logger) (TextExtractor, error) {
	switch backend {
	case config.BackendFitz, "":
		return &FitzExtractor{logger: logger}, nil
	case config.BackendPure:
		return &PureExtractor{logger: logger}, nil
	default:
		return nil, fmt.Errorf("unsupported PDF backend: %s", backend)
	}
}

// checkPDFHeader looks for the %PDF- marker, which may follow a little junk.
func checkPDFHeader(data []byte) error {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	if !bytes.Contains(head, []byte("%PDF-")) {
		return ErrNotPDF
	}
	return nil
}

// FitzExtractor extracts text with MuPDF through go-fitz.
type FitzExtractor struct {
	logger *zap.Logger
}

func (e *FitzExtractor) Name() string { return "go-fitz" }

func (e *FitzExtractor) ExtractPages(ctx context.Context, data []byte) ([]string, error) {
	if err := checkPDFHeader(data); err != nil {
		return nil, err
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pageText, err := doc.Text(i)
		if err != nil {
			e.logger.Warn("Failed to extract text from page",
				zap.Int("page", i+1),
				zap.Error(err),
			)
			pageText = ""
		}
		pages = append(pages, pageText)
	}
	return pages, nil
}

// PureExtractor uses the pure Go ledongthuc/pdf reader, for builds without cgo.
type PureExtractor struct {
	logger *zap.Logger
}

func (e *PureExtractor) Name() string { return "ledongthuc-pdf" }

func (e *PureExtractor) ExtractPages(ctx context.Context, data []byte) (pages []string, err error) {
	if err := checkPDFHeader(data); err != nil {
		return nil, err
	}

	// the reader panics on some malformed files instead of returning errors
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	pages = make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Warn("Failed to extract text from page",
				zap.Int("page", i),
				zap.Error(err),
			)
			pageText = ""
		}
		pages = append(pages, pageText)
	}
	return pages, nil
}

// StatementText is the text of a whole document.
type StatementText struct {
	Text      string
	PageCount int
	Duration  time.Duration
}

// TextService runs a TextExtractor under a deadline and joins the pages.
type TextService struct {
	backend TextExtractor
	timeout time.Duration
	logger  *zap.Logger
}

func NewTextService(backend TextExtractor, timeout time.Duration, logger *zap.Logger) *TextService {
	return &TextService{
		backend: backend,
		timeout: timeout,
		logger:  logger,
	}
}

type pagesResult struct {
	pages []string
	err   error
}

// ExtractText returns the statement text: every non-empty page followed by a
// newline. Extraction failures come back as *ExtractionError.
func (s *TextService) ExtractText(ctx context.Context, data []byte) (*StatementText, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	done := make(chan pagesResult, 1)
	go func() {
		pages, err := s.backend.ExtractPages(ctx, data)
		done <- pagesResult{pages: pages, err: err}
	}()

	var res pagesResult
	select {
	case res = <-done:
	case <-ctx.Done():
		// the backend goroutine finishes on its own; its result is dropped
		err := ctx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("extraction timed out after %s: %w", s.timeout, err)
		}
		return nil, &ExtractionError{Backend: s.backend.Name(), Err: err}
	}
	if res.err != nil {
		return nil, &ExtractionError{Backend: s.backend.Name(), Err: res.err}
	}

	var textBuilder strings.Builder
	for _, pageText := range res.pages {
		if pageText == "" {
			continue
		}
		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n")
	}

	text := sanitizeUTF8(textBuilder.String())
	elapsed := time.Since(start)

	s.logger.Debug("PDF text extracted",
		zap.String("method", s.backend.Name()),
		zap.Int("pages", len(res.pages)),
		zap.Int("text_length", len(text)),
		zap.Duration("elapsed", elapsed),
	)

	return &StatementText{
		Text:      text,
		PageCount: len(res.pages),
		Duration:  elapsed,
	}, nil
}

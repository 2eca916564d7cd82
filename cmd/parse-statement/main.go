// Command parse-statement runs the statement parser over a local PDF and
// prints the JSON payload the HTTP service would return.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"statement-parser/internal/service"
	"statement-parser/pkg/config"
	"statement-parser/pkg/logger"
	"statement-parser/pkg/metrics"

	"go.uber.org/zap"
)

func main() {
	backendName := flag.String("backend", config.BackendFitz, "PDF backend: fitz or pure")
	timeout := flag.Duration("timeout", 30*time.Second, "extraction timeout")
	previewChars := flag.Int("preview", 1000, "raw_preview length in characters")
	strict := flag.Bool("strict", false, "require a labeled or masked context for card_last_4")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <statement.pdf>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	log, err := logger.New(*logLevel, "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	path := flag.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal("Failed to read file", zap.String("path", path), zap.Error(err))
	}

	backend, err := service.NewTextExtractor(*backendName, log)
	if err != nil {
		log.Fatal("Failed to initialize PDF backend", zap.Error(err))
	}

	statementService := service.NewStatementService(
		service.NewTextService(backend, *timeout, log),
		service.NewFieldExtractor(*strict),
		metrics.New(),
		*previewChars,
		log,
	)

	result, err := statementService.Parse(context.Background(), filepath.Base(path), data)
	if err != nil {
		var extractErr *service.ExtractionError
		if errors.As(err, &extractErr) {
			fmt.Fprintf(os.Stderr, "Failed to read PDF: %v\n", extractErr.Err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatal("Failed to write result", zap.Error(err))
	}
}

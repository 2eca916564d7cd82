package handlers

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"statement-parser/internal/dto"
	"statement-parser/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Client-facing messages. Callers match on these strings, keep them stable.
const (
	msgNoFile       = "No file provided"
	msgNoSelection  = "No file selected"
	msgTooManyFiles = "Only one file may be uploaded per request"
	msgNotPDF       = "Only PDF files are supported"
	msgReadFailed   = "Failed to read PDF: "
	msgNoText       = "No text could be extracted from the PDF"
)

type StatementHandler struct {
	statementService *service.StatementService
	logger           *zap.Logger
}

func NewStatementHandler(statementService *service.StatementService, logger *zap.Logger) *StatementHandler {
	return &StatementHandler{
		statementService: statementService,
		logger:           logger,
	}
}

// ParseStatement godoc
// @Summary Parse a credit-card statement
// @Description Extract card digits, network, billing cycle, due date and amounts from a PDF statement
// @Tags statements
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Statement PDF"
// @Success 200 {object} dto.ParseStatementResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 413 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /parse [post]
func (h *StatementHandler) ParseStatement(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(c, msgNoFile)
	}

	files := form.File["file"]
	if len(files) == 0 {
		// a file input submitted without a selection arrives as filename=""
		// and is parsed as a plain value
		if _, ok := form.Value["file"]; ok {
			return badRequest(c, msgNoSelection)
		}
		return badRequest(c, msgNoFile)
	}
	if len(files) > 1 {
		return badRequest(c, msgTooManyFiles)
	}

	file := files[0]
	if file.Filename == "" {
		return badRequest(c, msgNoSelection)
	}
	if !strings.HasSuffix(strings.ToLower(file.Filename), ".pdf") {
		return badRequest(c, msgNotPDF)
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}

	result, err := h.statementService.Parse(c.UserContext(), file.Filename, data)
	if err != nil {
		var extractErr *service.ExtractionError
		switch {
		case errors.As(err, &extractErr):
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: msgReadFailed + extractErr.Err.Error(),
			})
		case errors.Is(err, service.ErrNoText):
			return badRequest(c, msgNoText)
		default:
			h.logger.Error("Failed to parse statement", zap.Error(err))
			return err
		}
	}

	return c.JSON(result)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: msg})
}

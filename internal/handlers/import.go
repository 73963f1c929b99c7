package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/fluxolab/fluxo-api/internal/models"
	"github.com/fluxolab/fluxo-api/internal/services"
	"github.com/fluxolab/fluxo-api/internal/utils"
)

// PresignedURLExpiry is how long a statement upload URL stays valid.
const PresignedURLExpiry = 15 * time.Minute

// StatementParser parses an uploaded statement into normalized transactions.
type StatementParser interface {
	ParseFile(file io.Reader, filename string) (*models.ParseResult, error)
}

// UploadValidator screens a statement file before it reaches the parser.
type UploadValidator interface {
	ValidateUpload(data []byte, filename, contentType string) error
}

// StatementArchive stores raw statement files outside the database.
type StatementArchive interface {
	StatementKey(userID, filename string) (string, error)
	PresignUpload(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
}

// ImportStore persists the confirmed rows of a parsed statement.
type ImportStore interface {
	InsertBatch(ctx context.Context, userID, currency string, parsed []models.ParsedTransaction) (inserted, skipped int, err error)
}

// UploadLog records ingest attempts for the upload history view.
type UploadLog interface {
	Record(ctx context.Context, u models.Upload) error
	History(ctx context.Context, userID string, limit int) ([]models.Upload, error)
}

// ImportHandler drives the statement ingestion flow: parse (preview), then
// confirm (persist with dedup keys).
type ImportHandler struct {
	parser          StatementParser
	validator       UploadValidator
	archive         StatementArchive
	store           ImportStore
	uploads         UploadLog
	defaultCurrency string
}

// NewImportHandler creates the handler. archive and uploads may be nil in
// deployments without S3 or ingest history.
func NewImportHandler(parser StatementParser, validator UploadValidator, archive StatementArchive, store ImportStore, uploads UploadLog, defaultCurrency string) *ImportHandler {
	return &ImportHandler{
		parser:          parser,
		validator:       validator,
		archive:         archive,
		store:           store,
		uploads:         uploads,
		defaultCurrency: defaultCurrency,
	}
}

// ParseStatement parses an uploaded statement and returns a preview without
// persisting anything.
// POST /v1/import/parse (multipart, field "file")
func (h *ImportHandler) ParseStatement(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return utils.NewUnauthorizedError("user not authenticated")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "no file provided",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to open uploaded file",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to read uploaded file",
		})
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if err := h.validator.ValidateUpload(data, fileHeader.Filename, contentType); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return h.parseAndRespond(c, userID, bytes.NewReader(data), fileHeader.Filename)
}

// GetPresignedURL hands out a presigned PUT URL so the client uploads the
// raw statement straight to the archive.
// GET /v1/import/presigned-url?filename=&content_type=
func (h *ImportHandler) GetPresignedURL(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return utils.NewUnauthorizedError("user not authenticated")
	}
	if h.archive == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{
			"error": "statement archive is not configured",
		})
	}

	filename := c.Query("filename")
	contentType := c.Query("content_type")
	if filename == "" || contentType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "filename and content_type are required",
		})
	}

	key, err := h.archive.StatementKey(userID, filename)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	url, err := h.archive.PresignUpload(c.Context(), key, contentType, PresignedURLExpiry)
	if err != nil {
		return utils.NewUpstreamError(err)
	}

	return c.JSON(fiber.Map{
		"upload_url": url,
		"file_key":   key,
		"expires_in": int(PresignedURLExpiry.Seconds()),
	})
}

// ProcessUploadRequest is the body for ProcessUpload.
type ProcessUploadRequest struct {
	FileKey string `json:"file_key"`
}

// ProcessUpload parses a statement previously uploaded to the archive.
// POST /v1/import/process
func (h *ImportHandler) ProcessUpload(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return utils.NewUnauthorizedError("user not authenticated")
	}
	if h.archive == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{
			"error": "statement archive is not configured",
		})
	}

	var req ProcessUploadRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.FileKey == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file_key is required",
		})
	}
	if !services.KeyOwnedBy(req.FileKey, userID) {
		return utils.NewForbiddenError("cannot access this file")
	}

	reader, err := h.archive.Download(c.Context(), req.FileKey)
	if err != nil {
		return utils.NewNotFoundError("file")
	}
	defer reader.Close()

	return h.parseAndRespond(c, userID, reader, filepath.Base(req.FileKey))
}

// parseAndRespond runs the parser and shapes the parse outcome payload shared
// by the multipart and archive paths.
func (h *ImportHandler) parseAndRespond(c fiber.Ctx, userID string, file io.Reader, filename string) error {
	result, err := h.parser.ParseFile(file, filename)
	if err != nil {
		h.recordUpload(c.Context(), userID, filename, "failed", err.Error())

		if errors.Is(err, services.ErrNoValidRows) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  "no valid transactions found",
				"errors": result.Errors,
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "failed to parse file",
			"details": err.Error(),
		})
	}

	h.recordUpload(c.Context(), userID, filename, "parsed", "")

	return c.JSON(fiber.Map{
		"preview":  result.Preview,
		"total":    len(result.Transactions),
		"errors":   result.Errors,
		"warnings": result.Warnings,
		"all_rows": result.Transactions,
	})
}

func (h *ImportHandler) recordUpload(ctx context.Context, userID, filename, status, errMsg string) {
	if h.uploads == nil {
		return
	}

	fileType := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if fileType == "" {
		fileType = "csv"
	}
	upload := models.Upload{
		UserID:   userID,
		FileName: filename,
		FileType: fileType,
		Status:   status,
	}
	if errMsg != "" {
		upload.Error = &errMsg
	}
	if err := h.uploads.Record(ctx, upload); err != nil {
		log.Printf("failed to record upload: %v", err)
	}
}

// ConfirmImportRequest is the body for ConfirmImport: the all_rows array of a
// previous parse response.
type ConfirmImportRequest struct {
	Transactions []models.ParsedTransaction `json:"transactions"`
}

// ConfirmImport persists the confirmed rows of a parsed statement. Each row
// is tagged with its dedup key; rows whose (user, external_id) already exist
// are skipped, so re-confirming the same statement is a no-op.
// POST /v1/import/confirm
func (h *ImportHandler) ConfirmImport(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return utils.NewUnauthorizedError("user not authenticated")
	}

	var req ConfirmImportRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if len(req.Transactions) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "transactions cannot be empty",
		})
	}

	// The dedup key is never trusted from the client: it is re-derived from
	// the row content so a tampered key cannot bypass duplicate detection.
	rows := make([]models.ParsedTransaction, len(req.Transactions))
	for i, t := range req.Transactions {
		if _, err := time.Parse("2006-01-02", t.Date); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("transaction %d: date must be YYYY-MM-DD", i+1),
			})
		}
		t.ExternalID = services.DeriveExternalID(t.Date, t.Description, t.AmountCents)
		if t.Currency == "" {
			t.Currency = h.defaultCurrency
		}
		rows[i] = t
	}

	inserted, skipped, err := h.store.InsertBatch(c.Context(), userID, h.defaultCurrency, rows)
	if err != nil {
		return utils.NewUpstreamError(err)
	}

	return c.JSON(fiber.Map{
		"inserted": inserted,
		"skipped":  skipped,
		"total":    len(rows),
	})
}

// GetUploadHistory lists the user's recent ingest attempts.
// GET /v1/import/history?limit=
func (h *ImportHandler) GetUploadHistory(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return utils.NewUnauthorizedError("user not authenticated")
	}
	if h.uploads == nil {
		return utils.SuccessResponse(c, []models.Upload{})
	}

	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil {
		limit = 20
	}
	history, err := h.uploads.History(c.Context(), userID, limit)
	if err != nil {
		return utils.NewUpstreamError(err)
	}
	return utils.SuccessResponse(c, history)
}

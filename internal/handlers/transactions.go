package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/fluxolab/fluxo-api/internal/database"
	"github.com/fluxolab/fluxo-api/internal/models"
	"github.com/fluxolab/fluxo-api/internal/utils"
)

// TransactionStore is the transaction CRUD surface the handler depends on.
type TransactionStore interface {
	List(ctx context.Context, userID string, f database.TransactionFilter) ([]models.Transaction, error)
	Create(ctx context.Context, t models.Transaction) (models.Transaction, error)
	Update(ctx context.Context, id uuid.UUID, userID string, u database.TransactionUpdate) (models.Transaction, error)
	Delete(ctx context.Context, id uuid.UUID, userID string) error
}

// TransactionHandler handles manual transaction management.
type TransactionHandler struct {
	store           TransactionStore
	defaultCurrency string
}

// NewTransactionHandler creates the handler.
func NewTransactionHandler(store TransactionStore, defaultCurrency string) *TransactionHandler {
	return &TransactionHandler{store: store, defaultCurrency: defaultCurrency}
}

// GetTransactions lists the user's transactions, newest first.
// GET /v1/transactions?start=&end=&category_id=
func (h *TransactionHandler) GetTransactions(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return utils.NewUnauthorizedError("user not authenticated")
	}

	filter := database.TransactionFilter{
		Start:      c.Query("start"),
		End:        c.Query("end"),
		CategoryID: c.Query("category_id"),
	}
	for _, bound := range []string{filter.Start, filter.End} {
		if bound == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", bound); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "start and end must be YYYY-MM-DD",
			})
		}
	}

	transactions, err := h.store.List(c.Context(), userID, filter)
	if err != nil {
		return utils.NewUpstreamError(err)
	}
	return utils.SuccessResponse(c, transactions)
}

// CreateTransactionRequest is the body for CreateTransaction.
type CreateTransactionRequest struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	AmountCents int64   `json:"amount_cents"`
	CategoryID  *string `json:"category_id"`
}

// CreateTransaction records one manually entered transaction.
// POST /v1/transactions
func (h *TransactionHandler) CreateTransaction(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return utils.NewUnauthorizedError("user not authenticated")
	}

	var req CreateTransactionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "date must be YYYY-MM-DD",
		})
	}
	if req.Description == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "description is required",
		})
	}

	// Manual entries carry no external id: the dedup key exists to make
	// statement re-imports idempotent, and a user is allowed to record two
	// identical transactions by hand.
	created, err := h.store.Create(c.Context(), models.Transaction{
		UserID:      userID,
		Date:        req.Date,
		Description: req.Description,
		AmountCents: req.AmountCents,
		Currency:    h.defaultCurrency,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return utils.NewUpstreamError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateTransactionRequest is the body for UpdateTransaction; absent fields
// stay unchanged.
type UpdateTransactionRequest struct {
	Date        *string `json:"date"`
	Description *string `json:"description"`
	AmountCents *int64  `json:"amount_cents"`
	CategoryID  *string `json:"category_id"`
}

// UpdateTransaction applies a partial update to one of the user's
// transactions.
// PUT /v1/transactions/:id
func (h *TransactionHandler) UpdateTransaction(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return utils.NewUnauthorizedError("user not authenticated")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid transaction ID",
		})
	}

	var req UpdateTransactionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Date != nil {
		if _, err := time.Parse("2006-01-02", *req.Date); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "date must be YYYY-MM-DD",
			})
		}
	}

	updated, err := h.store.Update(c.Context(), id, userID, database.TransactionUpdate{
		Date:        req.Date,
		Description: req.Description,
		AmountCents: req.AmountCents,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return utils.NewNotFoundError("transaction")
	}
	return c.JSON(updated)
}

// DeleteTransaction removes one of the user's transactions.
// DELETE /v1/transactions/:id
func (h *TransactionHandler) DeleteTransaction(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return utils.NewUnauthorizedError("user not authenticated")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid transaction ID",
		})
	}

	if err := h.store.Delete(c.Context(), id, userID); err != nil {
		return utils.NewNotFoundError("transaction")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

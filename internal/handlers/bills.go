package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/fluxolab/fluxo-api/internal/models"
	"github.com/fluxolab/fluxo-api/internal/utils"
)

// BillStore is the payable/receivable surface the handler depends on.
type BillStore interface {
	ListByType(ctx context.Context, userID, billType string) ([]models.Bill, error)
	Create(ctx context.Context, b models.Bill) (models.Bill, error)
	MarkPaid(ctx context.Context, id uuid.UUID, userID string) (models.Bill, error)
}

// BillHandler manages payables and receivables.
type BillHandler struct {
	store BillStore
}

// NewBillHandler creates the handler.
func NewBillHandler(store BillStore) *BillHandler {
	return &BillHandler{store: store}
}

// GetBills lists the user's bills, soonest due first.
// GET /v1/bills?type=payable|receivable
func (h *BillHandler) GetBills(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return utils.NewUnauthorizedError("user not authenticated")
	}

	billType := c.Query("type")
	if billType != "" && billType != models.BillTypePayable && billType != models.BillTypeReceivable {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "type must be payable or receivable",
		})
	}

	bills, err := h.store.ListByType(c.Context(), userID, billType)
	if err != nil {
		return utils.NewUpstreamError(err)
	}
	return utils.SuccessResponse(c, bills)
}

// CreateBillRequest is the body for CreateBill.
type CreateBillRequest struct {
	Title       string `json:"title"`
	DueDate     string `json:"due_date"`
	AmountCents int64  `json:"amount_cents"`
	Type        string `json:"type"`
	Status      string `json:"status"`
}

// CreateBill records a payable or receivable.
// POST /v1/bills
func (h *BillHandler) CreateBill(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return utils.NewUnauthorizedError("user not authenticated")
	}

	var req CreateBillRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "title is required",
		})
	}
	if _, err := time.Parse("2006-01-02", req.DueDate); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "due_date must be YYYY-MM-DD",
		})
	}
	if req.Type != models.BillTypePayable && req.Type != models.BillTypeReceivable {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "type must be payable or receivable",
		})
	}

	created, err := h.store.Create(c.Context(), models.Bill{
		UserID:      userID,
		Title:       req.Title,
		DueDate:     req.DueDate,
		AmountCents: req.AmountCents,
		Type:        req.Type,
		Status:      req.Status,
	})
	if err != nil {
		return utils.NewUpstreamError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// MarkBillPaid settles one of the user's bills.
// PUT /v1/bills/:id/pay
func (h *BillHandler) MarkBillPaid(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return utils.NewUnauthorizedError("user not authenticated")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid bill ID",
		})
	}

	bill, err := h.store.MarkPaid(c.Context(), id, userID)
	if err != nil {
		return utils.NewNotFoundError("bill")
	}
	return c.JSON(bill)
}

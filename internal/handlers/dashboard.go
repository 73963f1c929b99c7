package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/fluxolab/fluxo-api/internal/models"
	"github.com/fluxolab/fluxo-api/internal/services"
	"github.com/fluxolab/fluxo-api/internal/utils"
)

// TransactionReader supplies the aggregation input: one user's transactions
// dated inside the period.
type TransactionReader interface {
	ListByPeriod(ctx context.Context, userID, start, end string) ([]models.Transaction, error)
}

// BillReader supplies bills due inside the period.
type BillReader interface {
	ListByDueRange(ctx context.Context, userID, start, end string) ([]models.Bill, error)
}

// DashboardHandler serves the period summary payload.
type DashboardHandler struct {
	transactions TransactionReader
	bills        BillReader
	now          func() time.Time
}

// NewDashboardHandler creates the handler. now is the clock used for period
// defaulting; pass time.Now outside tests.
func NewDashboardHandler(transactions TransactionReader, bills BillReader, now func() time.Time) *DashboardHandler {
	if now == nil {
		now = time.Now
	}
	return &DashboardHandler{transactions: transactions, bills: bills, now: now}
}

// GetSummary computes income/expense/balance, payable/receivable and the
// category breakdown for a period. Omitted bounds default to the last
// calendar month ending today; the resolved bounds are echoed in the payload.
// GET /v1/dashboard/summary?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *DashboardHandler) GetSummary(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return utils.NewUnauthorizedError("user not authenticated")
	}

	period, err := services.ResolvePeriod(c.Query("start"), c.Query("end"), h.now())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	transactions, err := h.transactions.ListByPeriod(c.Context(), userID, period.Start, period.End)
	if err != nil {
		return utils.NewUpstreamError(err)
	}

	bills, err := h.bills.ListByDueRange(c.Context(), userID, period.Start, period.End)
	if err != nil {
		return utils.NewUpstreamError(err)
	}

	return c.JSON(services.Summarize(transactions, bills, period))
}

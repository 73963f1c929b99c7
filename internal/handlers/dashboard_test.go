package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxolab/fluxo-api/internal/models"
	"github.com/fluxolab/fluxo-api/internal/utils"
)

// MockTransactionReader is a mock implementation of TransactionReader for testing
type MockTransactionReader struct {
	ListByPeriodFunc func(ctx context.Context, userID, start, end string) ([]models.Transaction, error)
}

func (m *MockTransactionReader) ListByPeriod(ctx context.Context, userID, start, end string) ([]models.Transaction, error) {
	if m.ListByPeriodFunc != nil {
		return m.ListByPeriodFunc(ctx, userID, start, end)
	}
	return []models.Transaction{}, nil
}

// MockBillReader is a mock implementation of BillReader for testing
type MockBillReader struct {
	ListByDueRangeFunc func(ctx context.Context, userID, start, end string) ([]models.Bill, error)
}

func (m *MockBillReader) ListByDueRange(ctx context.Context, userID, start, end string) ([]models.Bill, error) {
	if m.ListByDueRangeFunc != nil {
		return m.ListByDueRangeFunc(ctx, userID, start, end)
	}
	return []models.Bill{}, nil
}

func fixedClock(date time.Time) func() time.Time {
	return func() time.Time { return date }
}

func TestGetSummary_Success(t *testing.T) {
	catA := "A"
	mockTransactions := &MockTransactionReader{
		ListByPeriodFunc: func(ctx context.Context, userID, start, end string) ([]models.Transaction, error) {
			assert.Equal(t, "user123", userID)
			assert.Equal(t, "2024-01-01", start)
			assert.Equal(t, "2024-01-31", end)
			return []models.Transaction{
				{Date: "2024-01-10", AmountCents: 10000},
				{Date: "2024-01-11", AmountCents: -4000, CategoryID: &catA},
				{Date: "2024-01-12", AmountCents: -1000},
			}, nil
		},
	}
	mockBills := &MockBillReader{
		ListByDueRangeFunc: func(ctx context.Context, userID, start, end string) ([]models.Bill, error) {
			return []models.Bill{
				{Type: models.BillTypePayable, Status: models.BillStatusOpen, AmountCents: 3000},
				{Type: models.BillTypeReceivable, Status: models.BillStatusOpen, AmountCents: 7000},
			}, nil
		},
	}

	handler := NewDashboardHandler(mockTransactions, mockBills, nil)

	app := newTestApp()
	app.Get("/summary", authed(handler.GetSummary, "user123"))

	req := httptest.NewRequest("GET", "/summary?start=2024-01-01&end=2024-01-31", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	assert.Equal(t, float64(10000), result["total_income_cents"])
	assert.Equal(t, float64(5000), result["total_expense_cents"])
	assert.Equal(t, float64(5000), result["balance_cents"])
	assert.Equal(t, float64(3000), result["total_payable_cents"])
	assert.Equal(t, float64(7000), result["total_receivable_cents"])

	byCategory := result["by_category"].([]interface{})
	require.Len(t, byCategory, 2)
	first := byCategory[0].(map[string]interface{})
	assert.Equal(t, "A", first["category"])
	assert.Equal(t, float64(4000), first["amount_cents"])

	period := result["period"].(map[string]interface{})
	assert.Equal(t, "2024-01-01", period["start"])
	assert.Equal(t, "2024-01-31", period["end"])
}

func TestGetSummary_DefaultPeriod(t *testing.T) {
	var gotStart, gotEnd string
	mockTransactions := &MockTransactionReader{
		ListByPeriodFunc: func(ctx context.Context, userID, start, end string) ([]models.Transaction, error) {
			gotStart, gotEnd = start, end
			return nil, nil
		},
	}

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	handler := NewDashboardHandler(mockTransactions, &MockBillReader{}, fixedClock(now))

	app := newTestApp()
	app.Get("/summary", authed(handler.GetSummary, "user123"))

	req := httptest.NewRequest("GET", "/summary", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "2024-02-15", gotStart)
	assert.Equal(t, "2024-03-15", gotEnd)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	period := result["period"].(map[string]interface{})
	assert.Equal(t, "2024-02-15", period["start"])
	assert.Equal(t, "2024-03-15", period["end"])
}

func TestGetSummary_InvalidPeriod(t *testing.T) {
	handler := NewDashboardHandler(&MockTransactionReader{}, &MockBillReader{}, nil)

	app := newTestApp()
	app.Get("/summary", authed(handler.GetSummary, "user123"))

	req := httptest.NewRequest("GET", "/summary?start=01/01/2024", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetSummary_Unauthorized(t *testing.T) {
	handler := NewDashboardHandler(&MockTransactionReader{}, &MockBillReader{}, nil)

	app := newTestApp()
	app.Get("/summary", handler.GetSummary) // no user_id set

	req := httptest.NewRequest("GET", "/summary", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestGetSummary_UpstreamFailure(t *testing.T) {
	mockTransactions := &MockTransactionReader{
		ListByPeriodFunc: func(ctx context.Context, userID, start, end string) ([]models.Transaction, error) {
			return nil, fmt.Errorf("connection refused")
		},
	}
	handler := NewDashboardHandler(mockTransactions, &MockBillReader{}, nil)

	app := newTestApp()
	app.Get("/summary", authed(handler.GetSummary, "user123"))

	req := httptest.NewRequest("GET", "/summary?start=2024-01-01&end=2024-01-31", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, utils.CodeUpstreamQuery, result["code"])
}

func TestGetSummary_EmptyPeriod(t *testing.T) {
	handler := NewDashboardHandler(&MockTransactionReader{}, &MockBillReader{}, nil)

	app := newTestApp()
	app.Get("/summary", authed(handler.GetSummary, "user123"))

	req := httptest.NewRequest("GET", "/summary?start=2024-01-01&end=2024-01-31", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	assert.Equal(t, float64(0), result["total_income_cents"])
	assert.Equal(t, float64(0), result["balance_cents"])
	assert.NotNil(t, result["by_category"])
}

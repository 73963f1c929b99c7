package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxolab/fluxo-api/internal/models"
)

// MockBillStore is a mock implementation of BillStore for testing
type MockBillStore struct {
	ListByTypeFunc func(ctx context.Context, userID, billType string) ([]models.Bill, error)
	CreateFunc     func(ctx context.Context, b models.Bill) (models.Bill, error)
	MarkPaidFunc   func(ctx context.Context, id uuid.UUID, userID string) (models.Bill, error)
}

func (m *MockBillStore) ListByType(ctx context.Context, userID, billType string) ([]models.Bill, error) {
	if m.ListByTypeFunc != nil {
		return m.ListByTypeFunc(ctx, userID, billType)
	}
	return []models.Bill{}, nil
}

func (m *MockBillStore) Create(ctx context.Context, b models.Bill) (models.Bill, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, b)
	}
	b.ID = uuid.New()
	return b, nil
}

func (m *MockBillStore) MarkPaid(ctx context.Context, id uuid.UUID, userID string) (models.Bill, error) {
	if m.MarkPaidFunc != nil {
		return m.MarkPaidFunc(ctx, id, userID)
	}
	return models.Bill{}, fmt.Errorf("not found")
}

func TestGetBills_RejectsUnknownType(t *testing.T) {
	handler := NewBillHandler(&MockBillStore{})

	app := newTestApp()
	app.Get("/bills", authed(handler.GetBills, "user123"))

	req := httptest.NewRequest("GET", "/bills?type=overdue", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetBills_FiltersByType(t *testing.T) {
	var gotType string
	mockStore := &MockBillStore{
		ListByTypeFunc: func(ctx context.Context, userID, billType string) ([]models.Bill, error) {
			gotType = billType
			return []models.Bill{{Title: "Aluguel", Type: billType}}, nil
		},
	}
	handler := NewBillHandler(mockStore)

	app := newTestApp()
	app.Get("/bills", authed(handler.GetBills, "user123"))

	req := httptest.NewRequest("GET", "/bills?type=payable", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, models.BillTypePayable, gotType)
}

func TestCreateBill_Success(t *testing.T) {
	var captured models.Bill
	mockStore := &MockBillStore{
		CreateFunc: func(ctx context.Context, b models.Bill) (models.Bill, error) {
			captured = b
			b.ID = uuid.New()
			return b, nil
		},
	}
	handler := NewBillHandler(mockStore)

	app := newTestApp()
	app.Post("/bills", authed(handler.CreateBill, "user123"))

	bodyBytes, _ := json.Marshal(CreateBillRequest{
		Title:       "Aluguel",
		DueDate:     "2024-02-05",
		AmountCents: 250000,
		Type:        models.BillTypePayable,
	})

	req := httptest.NewRequest("POST", "/bills", bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "user123", captured.UserID)
	assert.Equal(t, "Aluguel", captured.Title)
}

func TestCreateBill_RequiresValidType(t *testing.T) {
	handler := NewBillHandler(&MockBillStore{})

	app := newTestApp()
	app.Post("/bills", authed(handler.CreateBill, "user123"))

	bodyBytes, _ := json.Marshal(CreateBillRequest{
		Title:       "Aluguel",
		DueDate:     "2024-02-05",
		AmountCents: 250000,
		Type:        "loan",
	})

	req := httptest.NewRequest("POST", "/bills", bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestMarkBillPaid_Success(t *testing.T) {
	id := uuid.New()
	mockStore := &MockBillStore{
		MarkPaidFunc: func(ctx context.Context, gotID uuid.UUID, userID string) (models.Bill, error) {
			assert.Equal(t, id, gotID)
			return models.Bill{ID: gotID, Status: models.BillStatusPaid}, nil
		},
	}
	handler := NewBillHandler(mockStore)

	app := newTestApp()
	app.Put("/bills/:id/pay", authed(handler.MarkBillPaid, "user123"))

	req := httptest.NewRequest("PUT", "/bills/"+id.String()+"/pay", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, models.BillStatusPaid, result["status"])
}

func TestMarkBillPaid_NotFound(t *testing.T) {
	handler := NewBillHandler(&MockBillStore{})

	app := newTestApp()
	app.Put("/bills/:id/pay", authed(handler.MarkBillPaid, "user123"))

	req := httptest.NewRequest("PUT", "/bills/"+uuid.NewString()+"/pay", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

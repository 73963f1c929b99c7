package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxolab/fluxo-api/internal/models"
)

func txn(date string, cents int64, categoryID *string) models.Transaction {
	return models.Transaction{Date: date, AmountCents: cents, CategoryID: categoryID}
}

func strPtr(s string) *string { return &s }

func TestResolvePeriod_DefaultsToLastCalendarMonth(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	period, err := ResolvePeriod("", "", now)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", period.End)
	assert.Equal(t, "2024-02-15", period.Start)
}

func TestResolvePeriod_DefaultStartFollowsExplicitEnd(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	period, err := ResolvePeriod("", "2024-01-31", now)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", period.End)
	assert.Equal(t, "2023-12-31", period.Start)
}

func TestResolvePeriod_ExplicitBounds(t *testing.T) {
	period, err := ResolvePeriod("2024-01-01", "2024-01-31", time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.Period{Start: "2024-01-01", End: "2024-01-31"}, period)
}

func TestResolvePeriod_RejectsMalformedBounds(t *testing.T) {
	_, err := ResolvePeriod("01/01/2024", "", time.Now())
	assert.Error(t, err)

	_, err = ResolvePeriod("", "soon", time.Now())
	assert.Error(t, err)
}

func TestSummarize_Totals(t *testing.T) {
	transactions := []models.Transaction{
		txn("2024-01-10", 10000, nil),
		txn("2024-01-11", -4000, nil),
		txn("2024-01-12", -1000, nil),
	}

	summary := Summarize(transactions, nil, models.Period{Start: "2024-01-01", End: "2024-01-31"})

	assert.Equal(t, int64(10000), summary.TotalIncomeCents)
	assert.Equal(t, int64(5000), summary.TotalExpenseCents)
	assert.Equal(t, int64(5000), summary.BalanceCents)
}

func TestSummarize_CategoryFirstSeenOrder(t *testing.T) {
	transactions := []models.Transaction{
		txn("2024-01-10", 100, strPtr("A")),
		txn("2024-01-11", 200, strPtr("B")),
		txn("2024-01-12", 300, strPtr("A")),
	}

	summary := Summarize(transactions, nil, models.Period{})

	require.Len(t, summary.ByCategory, 2)
	assert.Equal(t, models.CategoryTotal{Category: "A", AmountCents: 400}, summary.ByCategory[0])
	assert.Equal(t, models.CategoryTotal{Category: "B", AmountCents: 200}, summary.ByCategory[1])
}

func TestSummarize_CategoryUsesAbsoluteCents(t *testing.T) {
	transactions := []models.Transaction{
		txn("2024-01-10", -2500, strPtr("food")),
		txn("2024-01-11", -1500, strPtr("food")),
	}

	summary := Summarize(transactions, nil, models.Period{})

	require.Len(t, summary.ByCategory, 1)
	assert.Equal(t, int64(4000), summary.ByCategory[0].AmountCents)
}

func TestSummarize_UncategorizedGrouping(t *testing.T) {
	transactions := []models.Transaction{
		txn("2024-01-10", -500, nil),
		txn("2024-01-11", -300, strPtr("")),
	}

	summary := Summarize(transactions, nil, models.Period{})

	require.Len(t, summary.ByCategory, 1)
	assert.Equal(t, UncategorizedLabel, summary.ByCategory[0].Category)
	assert.Equal(t, int64(800), summary.ByCategory[0].AmountCents)
}

func TestSummarize_OpenBillsOnly(t *testing.T) {
	bills := []models.Bill{
		{Type: models.BillTypePayable, Status: models.BillStatusOpen, AmountCents: 5000},
		{Type: models.BillTypePayable, Status: models.BillStatusPaid, AmountCents: 2000},
		{Type: models.BillTypeReceivable, Status: models.BillStatusOpen, AmountCents: 3000},
		{Type: models.BillTypeReceivable, Status: models.BillStatusOpen, AmountCents: 1500},
	}

	summary := Summarize(nil, bills, models.Period{})

	assert.Equal(t, int64(5000), summary.TotalPayableCents)
	assert.Equal(t, int64(4500), summary.TotalReceivableCents)
}

func TestSummarize_EchoesPeriod(t *testing.T) {
	period := models.Period{Start: "2024-02-01", End: "2024-02-29"}
	summary := Summarize(nil, nil, period)
	assert.Equal(t, period, summary.Period)
}

func TestSummarize_EmptyInputs(t *testing.T) {
	summary := Summarize(nil, nil, models.Period{})

	assert.Zero(t, summary.TotalIncomeCents)
	assert.Zero(t, summary.TotalExpenseCents)
	assert.Zero(t, summary.BalanceCents)
	assert.NotNil(t, summary.ByCategory)
	assert.Empty(t, summary.ByCategory)
}

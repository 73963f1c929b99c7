package services

import (
	"fmt"
	"time"

	"github.com/fluxolab/fluxo-api/internal/models"
)

// UncategorizedLabel groups transactions without a category in the breakdown.
const UncategorizedLabel = "Sem categoria"

// ResolvePeriod fills in the period bounds the dashboard aggregates over.
// A missing end defaults to the current date and a missing start to one
// calendar month before the end. Explicit bounds must be YYYY-MM-DD.
func ResolvePeriod(start, end string, now time.Time) (models.Period, error) {
	endDate := now
	if end != "" {
		t, err := time.Parse("2006-01-02", end)
		if err != nil {
			return models.Period{}, fmt.Errorf("invalid end date %q: %w", end, err)
		}
		endDate = t
	}

	startDate := endDate.AddDate(0, -1, 0)
	if start != "" {
		t, err := time.Parse("2006-01-02", start)
		if err != nil {
			return models.Period{}, fmt.Errorf("invalid start date %q: %w", start, err)
		}
		startDate = t
	}

	return models.Period{
		Start: startDate.Format("2006-01-02"),
		End:   endDate.Format("2006-01-02"),
	}, nil
}

// Summarize computes the dashboard totals for one user over one period. The
// inputs are already filtered to the period (transactions by date, bills by
// due date); this function only does integer arithmetic and grouping, and
// echoes the resolved period back in the payload.
//
// The category breakdown sums absolute cents per category id, uncategorized
// transactions under UncategorizedLabel, in first-seen order.
func Summarize(transactions []models.Transaction, bills []models.Bill, period models.Period) models.PeriodSummary {
	summary := models.PeriodSummary{
		ByCategory: []models.CategoryTotal{},
		Period:     period,
	}

	categoryIdx := make(map[string]int)

	for _, t := range transactions {
		if t.AmountCents > 0 {
			summary.TotalIncomeCents += t.AmountCents
		} else {
			summary.TotalExpenseCents += -t.AmountCents
		}

		category := UncategorizedLabel
		if t.CategoryID != nil && *t.CategoryID != "" {
			category = *t.CategoryID
		}
		abs := t.AmountCents
		if abs < 0 {
			abs = -abs
		}
		if i, ok := categoryIdx[category]; ok {
			summary.ByCategory[i].AmountCents += abs
		} else {
			categoryIdx[category] = len(summary.ByCategory)
			summary.ByCategory = append(summary.ByCategory, models.CategoryTotal{
				Category:    category,
				AmountCents: abs,
			})
		}
	}

	summary.BalanceCents = summary.TotalIncomeCents - summary.TotalExpenseCents

	for _, b := range bills {
		if b.Status != models.BillStatusOpen {
			continue
		}
		switch b.Type {
		case models.BillTypePayable:
			summary.TotalPayableCents += b.AmountCents
		case models.BillTypeReceivable:
			summary.TotalReceivableCents += b.AmountCents
		}
	}

	return summary
}

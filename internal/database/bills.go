package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fluxolab/fluxo-api/internal/models"
)

// BillRepository persists payables and receivables.
type BillRepository struct {
	pool *pgxpool.Pool
}

// NewBillRepository creates the repository.
func NewBillRepository(pool *pgxpool.Pool) *BillRepository {
	return &BillRepository{pool: pool}
}

const billColumns = `id, user_id, title, due_date, amount_cents, type, status, created_at`

func scanBill(row pgx.Row) (models.Bill, error) {
	var b models.Bill
	var due time.Time
	err := row.Scan(&b.ID, &b.UserID, &b.Title, &due, &b.AmountCents, &b.Type, &b.Status, &b.CreatedAt)
	if err != nil {
		return models.Bill{}, err
	}
	b.DueDate = due.Format("2006-01-02")
	return b, nil
}

func (r *BillRepository) collect(rows pgx.Rows) ([]models.Bill, error) {
	defer rows.Close()
	bills := []models.Bill{}
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// ListByType returns a user's bills of one type, soonest due first. An empty
// type returns all bills.
func (r *BillRepository) ListByType(ctx context.Context, userID, billType string) ([]models.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE user_id = $1`
	args := []any{userID}
	if billType != "" {
		args = append(args, billType)
		query += " AND type = $2"
	}
	query += " ORDER BY due_date"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	return r.collect(rows)
}

// ListByDueRange returns a user's bills due inside [start, end], as
// aggregation input.
func (r *BillRepository) ListByDueRange(ctx context.Context, userID, start, end string) ([]models.Bill, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+billColumns+`
		 FROM bills
		 WHERE user_id = $1 AND due_date >= $2 AND due_date <= $3
		 ORDER BY due_date`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	return r.collect(rows)
}

// Create inserts a bill. Status defaults to open when blank.
func (r *BillRepository) Create(ctx context.Context, b models.Bill) (models.Bill, error) {
	status := b.Status
	if status == "" {
		status = models.BillStatusOpen
	}
	return scanBill(r.pool.QueryRow(ctx,
		`INSERT INTO bills (id, user_id, title, due_date, amount_cents, type, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+billColumns,
		uuid.New(), b.UserID, b.Title, b.DueDate, b.AmountCents, b.Type, status, time.Now().UTC()))
}

// MarkPaid settles a bill owned by the user.
func (r *BillRepository) MarkPaid(ctx context.Context, id uuid.UUID, userID string) (models.Bill, error) {
	return scanBill(r.pool.QueryRow(ctx,
		`UPDATE bills SET status = $3 WHERE id = $1 AND user_id = $2 RETURNING `+billColumns,
		id, userID, models.BillStatusPaid))
}

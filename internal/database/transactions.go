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

// TransactionRepository persists normalized transactions. The
// (user_id, external_id) pair carries a unique index so replayed imports are
// rejected by the database rather than coordinated in application code.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates the repository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// TransactionFilter narrows List results. Zero values mean "no constraint".
type TransactionFilter struct {
	Start      string // YYYY-MM-DD, inclusive
	End        string // YYYY-MM-DD, inclusive
	CategoryID string
}

const transactionColumns = `id, user_id, date, description, amount_cents, currency, category_id, external_id, created_at, updated_at`

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var t models.Transaction
	var date time.Time
	err := row.Scan(&t.ID, &t.UserID, &date, &t.Description, &t.AmountCents,
		&t.Currency, &t.CategoryID, &t.ExternalID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.Transaction{}, err
	}
	t.Date = date.Format("2006-01-02")
	return t, nil
}

// List returns a user's transactions, newest first, narrowed by the filter.
func (r *TransactionRepository) List(ctx context.Context, userID string, f TransactionFilter) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`
	args := []any{userID}

	if f.Start != "" {
		args = append(args, f.Start)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if f.End != "" {
		args = append(args, f.End)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	if f.CategoryID != "" {
		args = append(args, f.CategoryID)
		query += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	query += " ORDER BY date DESC, created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// ListByPeriod returns a user's transactions dated inside [start, end],
// oldest first, as aggregation input.
func (r *TransactionRepository) ListByPeriod(ctx context.Context, userID, start, end string) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions
		 WHERE user_id = $1 AND date >= $2 AND date <= $3
		 ORDER BY date, created_at`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// Create inserts one manually entered transaction.
func (r *TransactionRepository) Create(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	now := time.Now().UTC()
	return scanTransaction(r.pool.QueryRow(ctx,
		`INSERT INTO transactions (id, user_id, date, description, amount_cents, currency, category_id, external_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		 RETURNING `+transactionColumns,
		uuid.New(), t.UserID, t.Date, t.Description, t.AmountCents, t.Currency, t.CategoryID, t.ExternalID, now))
}

// InsertBatch writes the confirmed rows of a parsed statement, tagging each
// with its external id. Conflicting (user_id, external_id) rows are skipped,
// so confirming the same statement twice inserts nothing the second time.
func (r *TransactionRepository) InsertBatch(ctx context.Context, userID, currency string, parsed []models.ParsedTransaction) (inserted, skipped int, err error) {
	batch := &pgx.Batch{}
	now := time.Now().UTC()

	for _, p := range parsed {
		cur := p.Currency
		if cur == "" {
			cur = currency
		}
		batch.Queue(
			`INSERT INTO transactions (id, user_id, date, description, amount_cents, currency, external_id, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
			 ON CONFLICT (user_id, external_id) WHERE external_id IS NOT NULL AND external_id <> '' DO NOTHING`,
			uuid.New(), userID, p.Date, p.Description, p.AmountCents, cur, p.ExternalID, now)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range parsed {
		tag, execErr := results.Exec()
		if execErr != nil {
			return inserted, skipped, fmt.Errorf("failed to insert transaction: %w", execErr)
		}
		if tag.RowsAffected() > 0 {
			inserted++
		} else {
			skipped++
		}
	}
	return inserted, skipped, nil
}

// TransactionUpdate carries the mutable fields of a transaction; nil means
// "leave unchanged".
type TransactionUpdate struct {
	Date        *string
	Description *string
	AmountCents *int64
	CategoryID  *string
}

// Update applies a partial update to a transaction owned by the user.
func (r *TransactionRepository) Update(ctx context.Context, id uuid.UUID, userID string, u TransactionUpdate) (models.Transaction, error) {
	return scanTransaction(r.pool.QueryRow(ctx,
		`UPDATE transactions
		 SET date        = COALESCE($3, date),
		     description = COALESCE($4, description),
		     amount_cents = COALESCE($5, amount_cents),
		     category_id = COALESCE($6, category_id),
		     updated_at  = $7
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+transactionColumns,
		id, userID, u.Date, u.Description, u.AmountCents, u.CategoryID, time.Now().UTC()))
}

// Delete removes a transaction owned by the user.
func (r *TransactionRepository) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

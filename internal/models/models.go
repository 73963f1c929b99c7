package models

import (
	"time"

	"github.com/google/uuid"
)

// Transaction is a persisted financial movement. AmountCents is the signed
// value in the smallest currency unit: positive for inflows, negative for
// outflows.
type Transaction struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id"`
	Date        string    `json:"date"` // YYYY-MM-DD
	Description string    `json:"description"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	CategoryID  *string   `json:"category_id,omitempty"`
	ExternalID  string    `json:"external_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ParsedTransaction is a statement row after normalization but before DB
// insertion. ExternalID is a pure function of date, truncated description and
// amount, so re-importing the same statement derives the same keys.
type ParsedTransaction struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	ExternalID  string `json:"external_id"`
}

// ParseResult is the outcome of parsing one uploaded statement. Errors carries
// one diagnostic string per row that could not be normalized; a partially
// failed upload is still a success as long as at least one row parsed.
type ParseResult struct {
	Transactions []ParsedTransaction `json:"all_rows"`
	Preview      []ParsedTransaction `json:"preview"`
	Errors       []string            `json:"errors"`
	Warnings     []string            `json:"warnings"`
}

// Bill types and statuses as stored.
const (
	BillTypePayable    = "payable"
	BillTypeReceivable = "receivable"

	BillStatusOpen = "open"
	BillStatusPaid = "paid"
)

// Bill is a payable or receivable with a due date. Open bills inside a period
// feed the payable/receivable totals of the dashboard summary.
type Bill struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	DueDate     string    `json:"due_date"` // YYYY-MM-DD
	AmountCents int64     `json:"amount_cents"`
	Type        string    `json:"type"`   // payable | receivable
	Status      string    `json:"status"` // open | paid
	CreatedAt   time.Time `json:"created_at"`
}

// Category is a user-defined transaction grouping.
type Category struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"` // income | expense | transfer
	CreatedAt time.Time `json:"created_at"`
}

// Upload is an audit record of one statement ingest attempt.
type Upload struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	FileName  string    `json:"file_name"`
	FileType  string    `json:"file_type"` // csv | xlsx
	Status    string    `json:"status"`    // parsed | failed
	Error     *string   `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Period is an inclusive date range, both bounds in YYYY-MM-DD form.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// CategoryTotal is one entry of the category breakdown. Amounts are absolute
// values so income and expense categories chart on the same scale.
type CategoryTotal struct {
	Category    string `json:"category"`
	AmountCents int64  `json:"amount_cents"`
}

// PeriodSummary is the dashboard payload for one resolved period. All totals
// are exact integer cents.
type PeriodSummary struct {
	TotalIncomeCents     int64           `json:"total_income_cents"`
	TotalExpenseCents    int64           `json:"total_expense_cents"`
	BalanceCents         int64           `json:"balance_cents"`
	TotalPayableCents    int64           `json:"total_payable_cents"`
	TotalReceivableCents int64           `json:"total_receivable_cents"`
	ByCategory           []CategoryTotal `json:"by_category"`
	Period               Period          `json:"period"`
}

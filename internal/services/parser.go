package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/fluxolab/fluxo-api/internal/models"
)

// Parse failure sentinels. Row-local failures are reported inside
// ParseResult.Errors; only these abort a whole upload.
var (
	ErrEmptyFile   = errors.New("empty file")
	ErrNoValidRows = errors.New("no valid transactions found")
)

// Row-local error kinds, wrapped with the offending line number.
var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
)

// PreviewLimit is the number of transactions returned in ParseResult.Preview.
const PreviewLimit = 20

// externalIDDescRunes is how many description runes feed the dedup key.
const externalIDDescRunes = 20

// Locale holds the format assumptions applied while normalizing statement
// rows. The zero value is not useful; start from DefaultLocale.
type Locale struct {
	// DefaultCurrency is stamped on every parsed transaction; statement files
	// on this intake path carry no per-row currency.
	DefaultCurrency string
	// DayFirstDates enables the DD/MM/YYYY fallback after ISO parsing fails.
	DayFirstDates bool
	// DecimalComma treats a comma as the decimal separator and dots as
	// thousands separators whenever a comma is present in an amount.
	DecimalComma bool
	// DescriptionPlaceholder substitutes for a blank description cell.
	DescriptionPlaceholder string
}

// DefaultLocale returns the pt-BR defaults of the hosted product.
func DefaultLocale() Locale {
	return Locale{
		DefaultCurrency:        "BRL",
		DayFirstDates:          true,
		DecimalComma:           true,
		DescriptionPlaceholder: "Sem descrição",
	}
}

// Row is one data row of a statement, normalized to a single shape regardless
// of whether the source exposed named columns. Line is 1-based over data rows
// (the header is not counted).
type Row struct {
	Line    int
	Cells   []string
	Columns map[string]string
}

// Field returns the cell for a named column, falling back to the positional
// index when the name is absent. Out-of-range positions read as empty.
func (r Row) Field(name string, idx int) string {
	if r.Columns != nil {
		if v, ok := r.Columns[name]; ok {
			return v
		}
	}
	if idx >= 0 && idx < len(r.Cells) {
		return r.Cells[idx]
	}
	return ""
}

// StatementParser converts uploaded statement files into normalized
// transactions. It is stateless apart from its locale and safe for
// concurrent use.
type StatementParser struct {
	locale Locale
}

// NewStatementParser creates a parser with the given locale.
func NewStatementParser(locale Locale) *StatementParser {
	return &StatementParser{locale: locale}
}

// ParseFile dispatches on the file extension: .xlsx/.xls go through the
// spreadsheet path, everything else is treated as delimited text.
func (p *StatementParser) ParseFile(file io.Reader, filename string) (*models.ParseResult, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		return p.ParseXLSX(file)
	default:
		return p.ParseCSV(file)
	}
}

// ParseCSV parses a delimited text statement. The first row is a header: it
// is never normalized as data, but when it names date/description/amount
// columns those names take precedence over cell positions.
func (p *StatementParser) ParseCSV(file io.Reader) (*models.ParseResult, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // ragged rows are a row-level concern, not a file-level one

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read statement: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	return p.parseRows(records[0], records[1:])
}

// ParseXLSX parses the first sheet of a spreadsheet statement through the
// same row pipeline as CSV.
func (p *StatementParser) ParseXLSX(file io.Reader) (*models.ParseResult, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	return p.parseRows(rows[0], rows[1:])
}

// parseRows drives the row normalizer over every data row, accumulating valid
// transactions and per-row diagnostics. A statement where every row failed is
// rejected with ErrNoValidRows so an all-garbage upload is distinguishable
// from a legitimately empty one; the returned result still carries the row
// errors for display.
func (p *StatementParser) parseRows(headers []string, rows [][]string) (*models.ParseResult, error) {
	result := &models.ParseResult{
		Transactions: []models.ParsedTransaction{},
		Preview:      []models.ParsedTransaction{},
		Errors:       []string{},
		Warnings:     []string{},
	}

	names := headerNames(headers)

	for i, cells := range rows {
		line := i + 1

		if isEmptyRow(cells) {
			continue
		}
		if len(cells) != len(headers) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("line %d: expected %d columns, got %d", line, len(headers), len(cells)))
		}

		txn, err := p.normalizeRow(Row{
			Line:    line,
			Cells:   cells,
			Columns: namedCells(names, cells),
		})
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.Transactions = append(result.Transactions, txn)
	}

	if len(result.Transactions) == 0 && len(result.Errors) > 0 {
		return result, ErrNoValidRows
	}

	preview := len(result.Transactions)
	if preview > PreviewLimit {
		preview = PreviewLimit
	}
	result.Preview = result.Transactions[:preview]

	return result, nil
}

// normalizeRow converts one raw row into a ParsedTransaction or a failure
// tagged with the row's line number. Failure is row-local: the caller records
// it and moves on.
func (p *StatementParser) normalizeRow(row Row) (models.ParsedTransaction, error) {
	date, err := p.parseDate(row.Field("date", 0))
	if err != nil {
		return models.ParsedTransaction{}, fmt.Errorf("line %d: %w", row.Line, ErrInvalidDate)
	}

	description := strings.TrimSpace(row.Field("description", 1))
	if description == "" {
		description = p.locale.DescriptionPlaceholder
	}

	cents, err := p.parseAmountCents(row.Field("amount", 2))
	if err != nil {
		return models.ParsedTransaction{}, fmt.Errorf("line %d: %w", row.Line, ErrInvalidAmount)
	}

	return models.ParsedTransaction{
		Date:        date,
		Description: description,
		AmountCents: cents,
		Currency:    p.locale.DefaultCurrency,
		ExternalID:  DeriveExternalID(date, description, cents),
	}, nil
}

// isoDateLayouts are the calendar parse attempts tried before the day-first
// fallback, in order.
var isoDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
}

// parseDate normalizes a date cell to YYYY-MM-DD. ISO and general calendar
// layouts are tried first; day-first locales then get an explicit DD/MM/YYYY
// attempt. Anything else fails rather than guessing.
func (p *StatementParser) parseDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidDate
	}

	for _, layout := range isoDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}

	if p.locale.DayFirstDates {
		parts := strings.Split(raw, "/")
		if len(parts) == 3 {
			iso := fmt.Sprintf("%s-%s-%s", parts[2], pad2(parts[1]), pad2(parts[0]))
			if _, err := time.Parse("2006-01-02", iso); err == nil {
				return iso, nil
			}
		}
	}

	return "", ErrInvalidDate
}

// parseAmountCents normalizes an amount cell to signed integer cents.
// Currency symbols and stray text are stripped; in comma-decimal locales a
// comma marks the decimal point and dots are thousands separators. The value
// is parsed as an exact decimal and rounded at the cent boundary, so sub-cent
// inputs lose precision there and nowhere else.
func (p *StatementParser) parseAmountCents(raw string) (int64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, raw)

	if p.locale.DecimalComma {
		if strings.Contains(cleaned, ",") {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		}
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	if cleaned == "" || cleaned == "-" {
		return 0, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, ErrInvalidAmount
	}

	return d.Shift(2).Round(0).IntPart(), nil
}

// DeriveExternalID builds the natural dedup key for a normalized transaction:
// date, the first 20 runes of the trimmed description and the amount, joined
// by hyphens. It is a pure function of its inputs, so replaying an import
// derives the same keys and the storage uniqueness constraint rejects the
// duplicates. Two same-day, same-amount transactions whose descriptions share
// their first 20 runes collide; that is a known limitation of the structural
// key, kept because it stays human-debuggable.
func DeriveExternalID(date, description string, amountCents int64) string {
	desc := strings.TrimSpace(description)
	if runes := []rune(desc); len(runes) > externalIDDescRunes {
		desc = string(runes[:externalIDDescRunes])
	}
	return fmt.Sprintf("%s-%s-%d", date, desc, amountCents)
}

// headerNames maps lowercased header labels to their column index.
func headerNames(headers []string) map[string]int {
	names := make(map[string]int, len(headers))
	for i, h := range headers {
		name := strings.ToLower(strings.TrimSpace(h))
		if name != "" {
			names[name] = i
		}
	}
	return names
}

// namedCells projects a row's cells through the header names.
func namedCells(names map[string]int, cells []string) map[string]string {
	if len(names) == 0 {
		return nil
	}
	columns := make(map[string]string, len(names))
	for name, idx := range names {
		if idx < len(cells) {
			columns[name] = cells[idx]
		}
	}
	return columns
}

// isEmptyRow reports whether every cell in a row is blank.
func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

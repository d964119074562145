package core

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocNumberGenerator hands out the next document code for a named series.
type DocNumberGenerator interface {
	NextInvoiceNumber(ctx context.Context) (string, error)
	NextOrderNumber(ctx context.Context) (string, error)
	NextReceiptNumber(ctx context.Context) (string, error)
	NextPaymentNumber(ctx context.Context) (string, error)
	NextURDNumber(ctx context.Context) (string, error)
	NextRepairNumber(ctx context.Context) (string, error)
	NextBarcode(ctx context.Context, prefix string) (string, error)
}

// seqSpec ties a series prefix to the table column holding issued codes.
type seqSpec struct {
	prefix string
	query  string
}

var docSequences = map[string]seqSpec{
	"invoice": {"INV", `SELECT invoice_number FROM sale_details WHERE invoice_number LIKE $1`},
	"order":   {"ORD", `SELECT order_number FROM sale_details WHERE order_number LIKE $1`},
	"receipt": {"RCP", `SELECT receipt_no FROM receipts WHERE receipt_no LIKE $1`},
	"payment": {"PAY", `SELECT payment_no FROM purchase_payments WHERE payment_no LIKE $1`},
	"urd":     {"URD", `SELECT urdpurchase_number FROM urd_purchase_details WHERE urdpurchase_number LIKE $1`},
	"repair":  {"RPN", `SELECT repair_no FROM repairs WHERE repair_no LIKE $1`},
}

// DocNumService issues sequential document numbers by scanning the existing
// codes of a series and taking max-plus-one. Generation is check-then-act:
// callers that write the issued code must do so inside their own transaction,
// and concurrent issuers of the same series can race. The original system has
// the same window; uniqueness ultimately rests on the series column's usage.
type DocNumService struct {
	db *pgxpool.Pool
}

func NewDocNumService(db *pgxpool.Pool) *DocNumService {
	return &DocNumService{db: db}
}

func (s *DocNumService) next(ctx context.Context, series string) (string, error) {
	spec, ok := docSequences[series]
	if !ok {
		return "", fmt.Errorf("unknown document series %q", series)
	}
	codes, err := s.existing(ctx, spec.query, spec.prefix+"%")
	if err != nil {
		return "", fmt.Errorf("load %s numbers: %w", series, err)
	}
	return nextFromExisting(spec.prefix, codes), nil
}

func (s *DocNumService) existing(ctx context.Context, query, pattern string) ([]string, error) {
	rows, err := s.db.Query(ctx, query, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code *string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		if code != nil {
			codes = append(codes, *code)
		}
	}
	return codes, rows.Err()
}

func (s *DocNumService) NextInvoiceNumber(ctx context.Context) (string, error) {
	return s.next(ctx, "invoice")
}

func (s *DocNumService) NextOrderNumber(ctx context.Context) (string, error) {
	return s.next(ctx, "order")
}

func (s *DocNumService) NextReceiptNumber(ctx context.Context) (string, error) {
	return s.next(ctx, "receipt")
}

func (s *DocNumService) NextPaymentNumber(ctx context.Context) (string, error) {
	return s.next(ctx, "payment")
}

func (s *DocNumService) NextURDNumber(ctx context.Context) (string, error) {
	return s.next(ctx, "urd")
}

func (s *DocNumService) NextRepairNumber(ctx context.Context) (string, error) {
	return s.next(ctx, "repair")
}

// NextBarcode issues the next tag barcode under an arbitrary prefix, scanning
// opening_tags_entry for codes already handed out.
func (s *DocNumService) NextBarcode(ctx context.Context, prefix string) (string, error) {
	if strings.TrimSpace(prefix) == "" {
		return "", Invalid("barcode prefix is required")
	}
	codes, err := s.existing(ctx,
		`SELECT "PCode_BarCode" FROM opening_tags_entry WHERE "PCode_BarCode" LIKE $1`,
		prefix+"%")
	if err != nil {
		return "", fmt.Errorf("load barcodes for prefix %s: %w", prefix, err)
	}
	return nextFromExisting(prefix, codes), nil
}

// nextBarcodeTx is the in-transaction variant used by batch tag creation so
// that the scan sees codes written earlier in the same transaction.
func nextBarcodeTx(ctx context.Context, tx pgx.Tx, prefix string) (string, error) {
	rows, err := tx.Query(ctx,
		`SELECT "PCode_BarCode" FROM opening_tags_entry WHERE "PCode_BarCode" LIKE $1`,
		prefix+"%")
	if err != nil {
		return "", fmt.Errorf("load barcodes for prefix %s: %w", prefix, err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code *string
		if err := rows.Scan(&code); err != nil {
			return "", err
		}
		if code != nil {
			codes = append(codes, *code)
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return nextFromExisting(prefix, codes), nil
}

var numericSuffix = regexp.MustCompile(`^[0-9]+$`)

// nextFromExisting returns prefix + zero-padded(max suffix + 1) over the
// codes that parse as prefix followed by digits. Codes from other series or
// with malformed suffixes are ignored. With no parseable codes the series
// starts at 001.
func nextFromExisting(prefix string, codes []string) string {
	max := 0
	for _, code := range codes {
		n, ok := parseSuffix(prefix, code)
		if ok && n > max {
			max = n
		}
	}
	return formatCode(prefix, max+1)
}

// parseSuffix extracts the numeric suffix of a code under the given prefix.
func parseSuffix(prefix, code string) (int, bool) {
	if !strings.HasPrefix(code, prefix) {
		return 0, false
	}
	suffix := code[len(prefix):]
	if !numericSuffix.MatchString(suffix) {
		return 0, false
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return n, true
}

// formatCode pads the sequence number to three digits. Wider numbers keep
// their natural width, so the series continues past 999 as PREFIX1000.
func formatCode(prefix string, n int) string {
	return fmt.Sprintf("%s%03d", prefix, n)
}

package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountNameRef is the picker projection of an account.
type AccountNameRef struct {
	AccountName string `json:"account_name"`
	Mobile      string `json:"mobile"`
}

// Account groups eligible for the receipt and payment account pickers.
var (
	receiptAccountGroups = []string{
		"Income (Indirect)",
		"Income (Direct/Opr.)",
		"CUSTOMERS",
		"Expenses (Direct/Mfg.)",
		"Expenses (Indirect/Admn.)",
		"SUPPLIERS",
	}
	paymentAccountGroups = []string{
		"Expenses (Direct/Mfg.)",
		"Expenses (Indirect/Admn.)",
		"SUPPLIERS",
		"CUSTOMERS",
	}
)

// AccountDirectory serves party records from account_details.
type AccountDirectory interface {
	Create(ctx context.Context, a Account) (int, error)
	Update(ctx context.Context, id int, a Account) error
	Delete(ctx context.Context, id int) error
	Get(ctx context.Context, id int) (*Account, error)
	List(ctx context.Context) ([]Account, error)
	ListNamesForReceipts(ctx context.Context) ([]AccountNameRef, error)
	ListNamesForPayments(ctx context.Context) ([]AccountNameRef, error)
}

type AccountService struct {
	db *pgxpool.Pool
}

func NewAccountService(db *pgxpool.Pool) *AccountService {
	return &AccountService{db: db}
}

const accountColumns = `account_id, account_name, mobile, email, address1, address2,
	city, pincode, state, state_code, aadhar_card, gst_in, pan_card, account_group`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.AccountID, &a.AccountName, &a.Mobile, &a.Email, &a.Address1,
		&a.Address2, &a.City, &a.Pincode, &a.State, &a.StateCode, &a.AadharCard,
		&a.GstIn, &a.PanCard, &a.AccountGroup)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AccountService) Create(ctx context.Context, a Account) (int, error) {
	if a.AccountName == "" || a.AccountGroup == "" {
		return 0, Invalid("account_name and account_group are required")
	}
	var id int
	err := s.db.QueryRow(ctx, `
		INSERT INTO account_details (account_name, mobile, email, address1, address2,
			city, pincode, state, state_code, aadhar_card, gst_in, pan_card, account_group)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING account_id`,
		a.AccountName, a.Mobile, a.Email, a.Address1, a.Address2,
		a.City, a.Pincode, a.State, a.StateCode, a.AadharCard,
		a.GstIn, a.PanCard, a.AccountGroup).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert account: %w", err)
	}
	return id, nil
}

func (s *AccountService) Update(ctx context.Context, id int, a Account) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE account_details SET
			account_name = $1, mobile = $2, email = $3, address1 = $4, address2 = $5,
			city = $6, pincode = $7, state = $8, state_code = $9, aadhar_card = $10,
			gst_in = $11, pan_card = $12, account_group = $13
		WHERE account_id = $14`,
		a.AccountName, a.Mobile, a.Email, a.Address1, a.Address2,
		a.City, a.Pincode, a.State, a.StateCode, a.AadharCard,
		a.GstIn, a.PanCard, a.AccountGroup, id)
	if err != nil {
		return fmt.Errorf("update account %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("account", id)
	}
	return nil
}

func (s *AccountService) Delete(ctx context.Context, id int) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM account_details WHERE account_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("account", id)
	}
	return nil
}

func (s *AccountService) Get(ctx context.Context, id int) (*Account, error) {
	a, err := scanAccount(s.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM account_details WHERE account_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NotFound("account", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load account %d: %w", id, err)
	}
	return a, nil
}

func (s *AccountService) List(ctx context.Context) ([]Account, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+accountColumns+` FROM account_details ORDER BY account_name`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

// ListNamesForReceipts returns the accounts a receipt may be booked against.
func (s *AccountService) ListNamesForReceipts(ctx context.Context) ([]AccountNameRef, error) {
	return s.listNames(ctx, receiptAccountGroups)
}

// ListNamesForPayments returns the accounts a purchase payment may be booked
// against.
func (s *AccountService) ListNamesForPayments(ctx context.Context) ([]AccountNameRef, error) {
	return s.listNames(ctx, paymentAccountGroups)
}

func (s *AccountService) listNames(ctx context.Context, groups []string) ([]AccountNameRef, error) {
	rows, err := s.db.Query(ctx, `
		SELECT account_name, COALESCE(mobile, '')
		FROM account_details
		WHERE account_group = ANY($1)
		ORDER BY account_name`, groups)
	if err != nil {
		return nil, fmt.Errorf("list account names: %w", err)
	}
	defer rows.Close()

	var refs []AccountNameRef
	for rows.Next() {
		var ref AccountNameRef
		if err := rows.Scan(&ref.AccountName, &ref.Mobile); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

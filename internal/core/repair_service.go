package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepairDesk manages repair jobs from counter intake through the workshop:
// repair CRUD, work-item assignment and tracking, and the parent repair's
// status lifecycle.
type RepairDesk interface {
	Create(ctx context.Context, rep Repair) (int, error)
	List(ctx context.Context) ([]Repair, error)
	Get(ctx context.Context, repairID int) (*Repair, error)
	Update(ctx context.Context, repairID int, rep Repair) error
	Delete(ctx context.Context, repairID int) error
	AssignToWorkshop(ctx context.Context, repairID int, items []AssignedRepairDetail) error
	ListAssigned(ctx context.Context) ([]AssignedRepairDetail, error)
	GetAssignedByRepair(ctx context.Context, repairID int) ([]AssignedRepairDetail, error)
	UpdateAssigned(ctx context.Context, id int, item AssignedRepairDetail) error
	DeleteAssigned(ctx context.Context, id int) error
	UpdateStatus(ctx context.Context, repairID int, status string) error
}

type RepairService struct {
	db *pgxpool.Pool
}

func NewRepairService(db *pgxpool.Pool) *RepairService {
	return &RepairService{db: db}
}

const repairColumns = `repair_id, customer_id, account_name, mobile, email, address1, address2,
	address3, city, staff, delivery_date, place, metal, counter, entry_type, repair_no, date,
	metal_type, item, tag_no, description, purity, category, sub_category, gross_weight, pcs,
	estimated_dust, estimated_amt, extra_weight, stone_value, making_charge, handling_charge,
	total, status, image, invoice, invoice_number`

func scanRepair(row pgx.Row) (*Repair, error) {
	var rep Repair
	err := row.Scan(&rep.RepairID, &rep.CustomerID, &rep.AccountName, &rep.Mobile, &rep.Email,
		&rep.Address1, &rep.Address2, &rep.Address3, &rep.City, &rep.Staff, &rep.DeliveryDate,
		&rep.Place, &rep.Metal, &rep.Counter, &rep.EntryType, &rep.RepairNo, &rep.Date,
		&rep.MetalType, &rep.Item, &rep.TagNo, &rep.Description, &rep.Purity, &rep.Category,
		&rep.SubCategory, &rep.GrossWeight, &rep.Pcs, &rep.EstimatedDust, &rep.EstimatedAmt,
		&rep.ExtraWeight, &rep.StoneValue, &rep.MakingCharge, &rep.HandlingCharge, &rep.Total,
		&rep.Status, &rep.Image, &rep.Invoice, &rep.InvoiceNumber)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// Create books a new repair job at the counter.
func (s *RepairService) Create(ctx context.Context, rep Repair) (int, error) {
	if rep.RepairNo == "" {
		return 0, Invalid("repair_no is required")
	}
	var id int
	err := s.db.QueryRow(ctx, `
		INSERT INTO repairs (customer_id, account_name, mobile, email, address1, address2,
			address3, city, staff, delivery_date, place, metal, counter, entry_type, repair_no,
			date, metal_type, item, tag_no, description, purity, category, sub_category,
			gross_weight, pcs, estimated_dust, estimated_amt, extra_weight, stone_value,
			making_charge, handling_charge, total, status, image)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,
			$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34)
		RETURNING repair_id`,
		rep.CustomerID, rep.AccountName, rep.Mobile, rep.Email, rep.Address1, rep.Address2,
		rep.Address3, rep.City, rep.Staff, rep.DeliveryDate, rep.Place, rep.Metal, rep.Counter,
		rep.EntryType, rep.RepairNo, rep.Date, rep.MetalType, rep.Item, rep.TagNo,
		rep.Description, rep.Purity, rep.Category, rep.SubCategory, rep.GrossWeight, rep.Pcs,
		rep.EstimatedDust, rep.EstimatedAmt, rep.ExtraWeight, rep.StoneValue, rep.MakingCharge,
		rep.HandlingCharge, rep.Total, rep.Status, rep.Image).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert repair: %w", err)
	}
	return id, nil
}

func (s *RepairService) List(ctx context.Context) ([]Repair, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+repairColumns+` FROM repairs ORDER BY date DESC, repair_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list repairs: %w", err)
	}
	defer rows.Close()

	var repairs []Repair
	for rows.Next() {
		rep, err := scanRepair(rows)
		if err != nil {
			return nil, err
		}
		repairs = append(repairs, *rep)
	}
	return repairs, rows.Err()
}

func (s *RepairService) Get(ctx context.Context, repairID int) (*Repair, error) {
	rep, err := scanRepair(s.db.QueryRow(ctx,
		`SELECT `+repairColumns+` FROM repairs WHERE repair_id = $1`, repairID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NotFound("repair", repairID)
	}
	if err != nil {
		return nil, fmt.Errorf("load repair %d: %w", repairID, err)
	}
	return rep, nil
}

// Update rewrites the intake fields. The invoice columns are owned by the
// conversion path and stay untouched here.
func (s *RepairService) Update(ctx context.Context, repairID int, rep Repair) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE repairs SET
			customer_id = $1, account_name = $2, mobile = $3, email = $4, address1 = $5,
			address2 = $6, address3 = $7, city = $8, staff = $9, delivery_date = $10,
			place = $11, metal = $12, counter = $13, entry_type = $14, repair_no = $15,
			date = $16, metal_type = $17, item = $18, tag_no = $19, description = $20,
			purity = $21, category = $22, sub_category = $23, gross_weight = $24, pcs = $25,
			estimated_dust = $26, estimated_amt = $27, extra_weight = $28, stone_value = $29,
			making_charge = $30, handling_charge = $31, total = $32, status = $33,
			image = COALESCE($34, image)
		WHERE repair_id = $35`,
		rep.CustomerID, rep.AccountName, rep.Mobile, rep.Email, rep.Address1,
		rep.Address2, rep.Address3, rep.City, rep.Staff, rep.DeliveryDate,
		rep.Place, rep.Metal, rep.Counter, rep.EntryType, rep.RepairNo,
		rep.Date, rep.MetalType, rep.Item, rep.TagNo, rep.Description,
		rep.Purity, rep.Category, rep.SubCategory, rep.GrossWeight, rep.Pcs,
		rep.EstimatedDust, rep.EstimatedAmt, rep.ExtraWeight, rep.StoneValue,
		rep.MakingCharge, rep.HandlingCharge, rep.Total, rep.Status, rep.Image, repairID)
	if err != nil {
		return fmt.Errorf("update repair %d: %w", repairID, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("repair", repairID)
	}
	return nil
}

func (s *RepairService) Delete(ctx context.Context, repairID int) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM repairs WHERE repair_id = $1`, repairID)
	if err != nil {
		return fmt.Errorf("delete repair %d: %w", repairID, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("repair", repairID)
	}
	return nil
}

// AssignToWorkshop inserts the work items and flips the repair's status to
// "Assign to Workshop" in one transaction. A repair with workshop lines blocks
// invoice deletion until the pieces come back.
func (s *RepairService) AssignToWorkshop(ctx context.Context, repairID int, items []AssignedRepairDetail) error {
	if repairID == 0 {
		return Invalid("repair_id is required")
	}
	if len(items) == 0 {
		return Invalid("at least one repair detail is required")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin workshop assignment: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, it := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO assigned_repairdetails (repair_id, item_name, purity, qty, weight,
				rate_type, rate, amount)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			repairID, it.ItemName, it.Purity, it.Qty, it.Weight,
			it.RateType, it.Rate, it.Amount)
		if err != nil {
			return fmt.Errorf("insert assigned repair detail: %w", err)
		}
	}

	tag, err := tx.Exec(ctx,
		`UPDATE repairs SET status = $1 WHERE repair_id = $2`,
		RepairAssignToWorkshop, repairID)
	if err != nil {
		return fmt.Errorf("update repair %d status: %w", repairID, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("repair", repairID)
	}

	return tx.Commit(ctx)
}

const assignedRepairColumns = `id, repair_id, item_name, purity, qty, weight, rate_type,
	rate, amount`

func scanAssignedRepair(row pgx.Row) (*AssignedRepairDetail, error) {
	var d AssignedRepairDetail
	err := row.Scan(&d.ID, &d.RepairID, &d.ItemName, &d.Purity, &d.Qty, &d.Weight,
		&d.RateType, &d.Rate, &d.Amount)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *RepairService) ListAssigned(ctx context.Context) ([]AssignedRepairDetail, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+assignedRepairColumns+` FROM assigned_repairdetails ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list assigned repair details: %w", err)
	}
	defer rows.Close()
	return collectAssignedRepairs(rows)
}

// GetAssignedByRepair returns the work items of one repair, 404 when the
// repair has none.
func (s *RepairService) GetAssignedByRepair(ctx context.Context, repairID int) ([]AssignedRepairDetail, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+assignedRepairColumns+` FROM assigned_repairdetails
		 WHERE repair_id = $1 ORDER BY id`, repairID)
	if err != nil {
		return nil, fmt.Errorf("load assigned repair details: %w", err)
	}
	defer rows.Close()

	details, err := collectAssignedRepairs(rows)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, NotFound("assigned repair details", repairID)
	}
	return details, nil
}

func collectAssignedRepairs(rows pgx.Rows) ([]AssignedRepairDetail, error) {
	var details []AssignedRepairDetail
	for rows.Next() {
		d, err := scanAssignedRepair(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, rows.Err()
}

func (s *RepairService) UpdateAssigned(ctx context.Context, id int, item AssignedRepairDetail) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE assigned_repairdetails SET
			item_name = $1, purity = $2, qty = $3, weight = $4, rate_type = $5,
			rate = $6, amount = $7
		WHERE id = $8`,
		item.ItemName, item.Purity, item.Qty, item.Weight, item.RateType,
		item.Rate, item.Amount, id)
	if err != nil {
		return fmt.Errorf("update assigned repair detail %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("assigned repair detail", id)
	}
	return nil
}

func (s *RepairService) DeleteAssigned(ctx context.Context, id int) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM assigned_repairdetails WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete assigned repair detail %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("assigned repair detail", id)
	}
	return nil
}

// UpdateStatus moves a repair along its lifecycle. Only the three known
// workshop states are accepted.
func (s *RepairService) UpdateStatus(ctx context.Context, repairID int, status string) error {
	switch status {
	case RepairAssignToWorkshop, RepairReceiveFromWorkshop, RepairDeliveredToCustomer:
	default:
		return Invalid("unknown repair status: %s", status)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE repairs SET status = $1 WHERE repair_id = $2`, status, repairID)
	if err != nil {
		return fmt.Errorf("update repair %d status: %w", repairID, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("repair", repairID)
	}
	return nil
}

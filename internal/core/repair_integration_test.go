package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"jewellery-backoffice/internal/core"
)

func chainRepair() core.Repair {
	return core.Repair{
		AccountName: "Lakshmi",
		Mobile:      "9876500300",
		RepairNo:    "RPN001",
		Date:        "2025-04-02",
		Metal:       "Gold",
		MetalType:   "22K",
		Item:        "Gold Chain",
		Description: "broken clasp",
		Purity:      "22K",
		Category:    "Chain",
		GrossWeight: decimal.NewFromInt(12),
		Pcs:         1,
		Total:       decimal.NewFromInt(4500),
		Status:      "Pending",
	}
}

func TestRepairService_IntakeAndWorkshop(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewRepairService(pool)
	docNums := core.NewDocNumService(pool)
	ctx := context.Background()

	number, err := docNums.NextRepairNumber(ctx)
	if err != nil {
		t.Fatalf("NextRepairNumber failed: %v", err)
	}
	if number != "RPN001" {
		t.Fatalf("expected first repair number RPN001, got %s", number)
	}

	id, err := svc.Create(ctx, chainRepair())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	number, err = docNums.NextRepairNumber(ctx)
	if err != nil {
		t.Fatalf("NextRepairNumber after create failed: %v", err)
	}
	if number != "RPN002" {
		t.Errorf("expected next repair number RPN002, got %s", number)
	}

	rep, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rep.RepairNo != "RPN001" || rep.Item != "Gold Chain" || rep.Status != "Pending" {
		t.Errorf("unexpected repair: %+v", rep)
	}

	// The workshop handoff needs a persisted repair row to flip.
	err = svc.AssignToWorkshop(ctx, id, []core.AssignedRepairDetail{{
		ItemName: "Gold Chain",
		Purity:   "22K",
		Qty:      decimal.NewFromInt(1),
		Weight:   decimal.NewFromInt(12),
		RateType: "Per Gram",
		Rate:     decimal.NewFromInt(150),
		Amount:   decimal.NewFromInt(1800),
	}})
	if err != nil {
		t.Fatalf("AssignToWorkshop failed: %v", err)
	}
	rep, err = svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get after assign failed: %v", err)
	}
	if rep.Status != core.RepairAssignToWorkshop {
		t.Errorf("expected status %q, got %q", core.RepairAssignToWorkshop, rep.Status)
	}

	if err := svc.UpdateStatus(ctx, id, core.RepairReceiveFromWorkshop); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	updated := chainRepair()
	updated.Item = "Gold Chain with Pendant"
	updated.Status = core.RepairReceiveFromWorkshop
	if err := svc.Update(ctx, id, updated); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	rep, err = svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get after update failed: %v", err)
	}
	if rep.Item != "Gold Chain with Pendant" {
		t.Errorf("expected updated item, got %q", rep.Item)
	}

	if err := svc.Delete(ctx, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	var notFound *core.NotFoundError
	if err := svc.Delete(ctx, id); !errors.As(err, &notFound) {
		t.Errorf("expected NotFoundError on second delete, got %v", err)
	}
}

func TestSaleService_ConvertRepair(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	repairs := core.NewRepairService(pool)
	sales := core.NewSaleService(pool)
	ctx := context.Background()

	id, err := repairs.Create(ctx, chainRepair())
	if err != nil {
		t.Fatalf("Create repair failed: %v", err)
	}

	invoice, err := sales.ConvertRepair(ctx, id)
	if err != nil {
		t.Fatalf("ConvertRepair failed: %v", err)
	}
	if invoice != "INV001" {
		t.Fatalf("expected first invoice INV001, got %s", invoice)
	}

	lines, err := sales.GetByOrder(ctx, "RPN001")
	if err != nil {
		t.Fatalf("GetByOrder failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected one billed line, got %d", len(lines))
	}
	line := lines[0]
	if line.TransactionStatus != core.StatusConvertedRepairInvoice {
		t.Errorf("expected ConvertedRepairInvoice line, got %s", line.TransactionStatus)
	}
	if line.InvoiceNo != "INV001" || line.Invoice != "Converted" {
		t.Errorf("unexpected invoice fields: %s / %s", line.InvoiceNo, line.Invoice)
	}
	if line.ProductName != "Gold Chain" || !line.Qty.Equal(decimal.NewFromInt(1)) {
		t.Errorf("unexpected line contents: %+v", line)
	}
	if !line.NetBillAmount.Equal(decimal.NewFromInt(4500)) || !line.BalAmt.Equal(decimal.NewFromInt(4500)) {
		t.Errorf("expected repair total carried onto the bill, got net %s bal %s",
			line.NetBillAmount, line.BalAmt)
	}

	rep, err := repairs.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get repair failed: %v", err)
	}
	if rep.Invoice != "Converted" || rep.Status != core.RepairDeliveredToCustomer || rep.InvoiceNumber != "INV001" {
		t.Errorf("repair not handed back to customer: %+v", rep)
	}

	var conflict *core.ConflictError
	if _, err := sales.ConvertRepair(ctx, id); !errors.As(err, &conflict) {
		t.Errorf("expected ConflictError on double conversion, got %v", err)
	}

	// The billed line sits in the deletable status set.
	deleted, err := sales.DeleteByInvoice(ctx, "INV001")
	if err != nil {
		t.Fatalf("DeleteByInvoice failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected one deleted line, got %d", deleted)
	}
}

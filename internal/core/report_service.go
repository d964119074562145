package core

import (
	"context"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xuri/excelize/v2"
)

// StockReporter serves the stock register: every tag joined with its
// product's running balances, with an XLSX export for the back office.
type StockReporter interface {
	StockRegister(ctx context.Context) ([]StockRegisterRow, error)
	ExportStockRegister(ctx context.Context, w io.Writer) error
}

type ReportService struct {
	db *pgxpool.Pool
}

func NewReportService(db *pgxpool.Pool) *ReportService {
	return &ReportService{db: db}
}

func (s *ReportService) StockRegister(ctx context.Context) ([]StockRegisterRow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT t."PCode_BarCode", t.tag_id, p.product_name, t.category, t."Purity",
			t.metal_type, t."Gross_Weight", t."Status", p.bal_qty, p.bal_weight
		FROM opening_tags_entry t
		JOIN product p ON p.product_id = t.product_id
		ORDER BY t."PCode_BarCode"`)
	if err != nil {
		return nil, fmt.Errorf("query stock register: %w", err)
	}
	defer rows.Close()

	var register []StockRegisterRow
	for rows.Next() {
		var r StockRegisterRow
		if err := rows.Scan(&r.PCodeBarCode, &r.TagID, &r.ProductName, &r.Category,
			&r.Purity, &r.MetalType, &r.GrossWeight, &r.Status, &r.BalQty, &r.BalWeight); err != nil {
			return nil, fmt.Errorf("scan stock register row: %w", err)
		}
		register = append(register, r)
	}
	return register, rows.Err()
}

var stockRegisterHeadings = []string{
	"Barcode", "Tag ID", "Product", "Category", "Purity", "Metal",
	"Gross Weight", "Status", "Balance Qty", "Balance Weight",
}

// ExportStockRegister streams the register as an XLSX workbook.
func (s *ReportService) ExportStockRegister(ctx context.Context, w io.Writer) error {
	register, err := s.StockRegister(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Sheet1"

	col := 'A'
	for _, h := range stockRegisterHeadings {
		f.SetCellValue(sheet, string(col)+"1", h)
		col++
	}

	for i, r := range register {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(sheet, "A"+row, r.PCodeBarCode)
		f.SetCellValue(sheet, "B"+row, r.TagID)
		f.SetCellValue(sheet, "C"+row, r.ProductName)
		f.SetCellValue(sheet, "D"+row, r.Category)
		f.SetCellValue(sheet, "E"+row, r.Purity)
		f.SetCellValue(sheet, "F"+row, r.MetalType)
		f.SetCellValue(sheet, "G"+row, r.GrossWeight.InexactFloat64())
		f.SetCellValue(sheet, "H"+row, string(r.Status))
		f.SetCellValue(sheet, "I"+row, r.BalQty.InexactFloat64())
		f.SetCellValue(sheet, "J"+row, r.BalWeight.InexactFloat64())
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write stock register workbook: %w", err)
	}
	return nil
}

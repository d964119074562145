package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductCatalog maintains the product master rows the ledgers hang their
// counters on. The counter columns themselves are owned by the purchase, sale,
// and return ledgers; the catalog only touches the descriptive fields.
type ProductCatalog interface {
	Create(ctx context.Context, p Product) (int, error)
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, productID int) (*Product, error)
	Update(ctx context.Context, productID int, p Product) error
	Delete(ctx context.Context, productID int) error
	CheckAndInsert(ctx context.Context, p Product) (int, bool, error)
	NextRbarcode(ctx context.Context) (string, error)
}

type ProductService struct {
	db *pgxpool.Pool
}

func NewProductService(db *pgxpool.Pool) *ProductService {
	return &ProductService{db: db}
}

const productColumns = `product_id, product_name, rbarcode, category, purity, hsn_code,
	pur_qty, pur_weight, sale_qty, sale_weight, sale_ret_qty, sale_ret_weight,
	bal_qty, bal_weight`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ProductID, &p.ProductName, &p.Rbarcode, &p.Category, &p.Purity,
		&p.HSNCode, &p.PurQty, &p.PurWeight, &p.SaleQty, &p.SaleWeight, &p.SaleRetQty,
		&p.SaleRetWeight, &p.BalQty, &p.BalWeight)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProductService) Create(ctx context.Context, p Product) (int, error) {
	if p.ProductName == "" {
		return 0, Invalid("product_name is required")
	}
	var id int
	err := s.db.QueryRow(ctx, `
		INSERT INTO product (product_name, rbarcode, category, purity, hsn_code)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING product_id`,
		p.ProductName, p.Rbarcode, p.Category, p.Purity, p.HSNCode).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}
	return id, nil
}

func (s *ProductService) List(ctx context.Context) ([]Product, error) {
	rows, err := s.db.Query(ctx, `SELECT `+productColumns+` FROM product ORDER BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *ProductService) Get(ctx context.Context, productID int) (*Product, error) {
	p, err := scanProduct(s.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM product WHERE product_id = $1`, productID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NotFound("product", productID)
	}
	if err != nil {
		return nil, fmt.Errorf("load product %d: %w", productID, err)
	}
	return p, nil
}

// Update rewrites the descriptive fields only; the running counters belong to
// the ledgers.
func (s *ProductService) Update(ctx context.Context, productID int, p Product) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE product SET product_name = $1, rbarcode = $2, category = $3, purity = $4,
			hsn_code = $5
		WHERE product_id = $6`,
		p.ProductName, p.Rbarcode, p.Category, p.Purity, p.HSNCode, productID)
	if err != nil {
		return fmt.Errorf("update product %d: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("product", productID)
	}
	return nil
}

func (s *ProductService) Delete(ctx context.Context, productID int) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM product WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("product", productID)
	}
	return nil
}

// CheckAndInsert looks a product up by (name, category, purity) and creates it
// when missing. Returns the row id and whether the product already existed.
func (s *ProductService) CheckAndInsert(ctx context.Context, p Product) (int, bool, error) {
	if p.ProductName == "" || p.Category == "" || p.Purity == "" {
		return 0, false, Invalid("product_name, category and purity are required")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("begin product check: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int
	err = tx.QueryRow(ctx, `
		SELECT product_id FROM product
		WHERE product_name = $1 AND category = $2 AND purity = $3`,
		p.ProductName, p.Category, p.Purity).Scan(&id)
	if err == nil {
		return id, true, tx.Commit(ctx)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, fmt.Errorf("look up product %s: %w", p.ProductName, err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO product (product_name, rbarcode, category, purity, hsn_code)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING product_id`,
		p.ProductName, p.Rbarcode, p.Category, p.Purity, p.HSNCode).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("insert product %s: %w", p.ProductName, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, false, fmt.Errorf("commit product check: %w", err)
	}
	return id, false, nil
}

// NextRbarcode issues the next RB-series product barcode.
func (s *ProductService) NextRbarcode(ctx context.Context) (string, error) {
	rows, err := s.db.Query(ctx,
		`SELECT rbarcode FROM product WHERE rbarcode LIKE 'RB%'`)
	if err != nil {
		return "", fmt.Errorf("load product barcodes: %w", err)
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
	return nextFromExisting("RB", codes), nil
}

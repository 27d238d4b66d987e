package artifact

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/kailas-cloud/catalograg/internal/domain"
)

const passagesSchema = `
CREATE TABLE passages (
	position          INTEGER PRIMARY KEY,
	product_id        INTEGER NOT NULL,
	text              TEXT    NOT NULL,
	product_type      INTEGER NOT NULL,
	brand_name        TEXT    NOT NULL,
	category_name     TEXT    NOT NULL,
	sub_category_name TEXT    NOT NULL,
	seller_id         INTEGER NOT NULL,
	price             TEXT    NOT NULL,
	discount          TEXT    NOT NULL,
	shipping_fee      TEXT    NOT NULL,
	weight            TEXT    NOT NULL
)`

const insertPassage = `
INSERT INTO passages (
	position, product_id, text, product_type, brand_name, category_name,
	sub_category_name, seller_id, price, discount, shipping_fee, weight
) VALUES (
	:position, :product_id, :text, :product_type, :brand_name, :category_name,
	:sub_category_name, :seller_id, :price, :discount, :shipping_fee, :weight
)`

type passageRow struct {
	Position        int             `db:"position"`
	ProductID       int64           `db:"product_id"`
	Text            string          `db:"text"`
	ProductType     int             `db:"product_type"`
	BrandName       string          `db:"brand_name"`
	CategoryName    string          `db:"category_name"`
	SubCategoryName string          `db:"sub_category_name"`
	SellerID        int64           `db:"seller_id"`
	Price           decimal.Decimal `db:"price"`
	Discount        decimal.Decimal `db:"discount"`
	ShippingFee     decimal.Decimal `db:"shipping_fee"`
	Weight          decimal.Decimal `db:"weight"`
}

func fromPassage(p domain.Passage) passageRow {
	m := p.Metadata
	return passageRow{
		Position:        p.Position,
		ProductID:       m.ProductID,
		Text:            p.Text,
		ProductType:     m.ProductType,
		BrandName:       m.BrandName,
		CategoryName:    m.CategoryName,
		SubCategoryName: m.SubCategoryName,
		SellerID:        m.SellerID,
		Price:           m.Price,
		Discount:        m.Discount,
		ShippingFee:     m.ShippingFee,
		Weight:          m.Weight,
	}
}

func (r passageRow) toPassage() domain.Passage {
	return domain.Passage{
		Position: r.Position,
		Text:     r.Text,
		Metadata: domain.PassageMetadata{
			ProductID:       r.ProductID,
			ProductType:     r.ProductType,
			BrandName:       r.BrandName,
			CategoryName:    r.CategoryName,
			SubCategoryName: r.SubCategoryName,
			SellerID:        r.SellerID,
			Price:           r.Price,
			Discount:        r.Discount,
			ShippingFee:     r.ShippingFee,
			Weight:          r.Weight,
		},
	}
}

// openPassageDB opens the passage store. Readers open it read-only so a
// missing file inside a published build is an error, not a new empty store.
func openPassageDB(path string, readOnly bool) (*sqlx.DB, error) {
	dsn := path + "?_pragma=busy_timeout(5000)"
	if readOnly {
		dsn = "file:" + path + "?mode=ro&_pragma=busy_timeout(5000)"
	}
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open passage store: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

func writePassages(ctx context.Context, path string, passages []domain.Passage) error {
	db, err := openPassageDB(path, false)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, passagesSchema); err != nil {
		return fmt.Errorf("create passages table: %w", err)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareNamedContext(ctx, insertPassage)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range passages {
		if _, err := stmt.ExecContext(ctx, fromPassage(p)); err != nil {
			return fmt.Errorf("insert passage %d: %w", p.Position, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit passages: %w", err)
	}
	return nil
}

func readPassages(ctx context.Context, path string) ([]domain.Passage, error) {
	db, err := openPassageDB(path, true)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var rows []passageRow
	if err := db.SelectContext(ctx, &rows, `SELECT * FROM passages ORDER BY position`); err != nil {
		return nil, fmt.Errorf("select passages: %w", err)
	}

	out := make([]domain.Passage, len(rows))
	for i, r := range rows {
		if r.Position != i {
			return nil, fmt.Errorf("passage store has gap at position %d", i)
		}
		out[i] = r.toPassage()
	}
	return out, nil
}

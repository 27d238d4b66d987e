package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/kailas-cloud/catalograg/internal/db"
)

var productColumns = []string{
	"id", "name", "description", "category_name", "sub_category_name", "brand_name",
	"price", "discount", "shipping_fee", "shipping_country", "weight",
	"variant_product", "minimum_purchase_qty", "maximum_purchase_qty",
	"warranty_policy", "attributes_value",
	"top_status", "featured_status", "best_selling_item_status", "is_suggested",
	"product_type", "seller_id", "status",
}

func newMockRepo(t *testing.T) (*Repo, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := conn.Close(); closeErr != nil {
			t.Logf("Failed to close mock db: %v", closeErr)
		}
	})
	return New(sqlx.NewDb(conn, "sqlmock")), mock
}

func TestProducts(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows(productColumns).
		AddRow(1, "Aqua Phone", "<p>Waterproof</p>", `{"en":"Electronics"}`, `{"en":"Phones"}`, `{"en":"Aqua"}`,
			"1299000.00", nil, "15000.00", `["Indonesia"]`, "0.25",
			2, nil, 5, "1 year", `[{"attribute_id":1,"values":["IP68"]}]`,
			2, 1, 1, 1, 1, 7, 1).
		AddRow(2, "Serum", nil, nil, nil, nil,
			"85000", "5000", nil, nil, nil,
			nil, 1, nil, nil, nil,
			nil, nil, nil, nil, nil, nil, 1)

	mock.ExpectQuery(`SELECT .* FROM products p .* WHERE p.deleted_at IS NULL AND p.status <> \$1`).
		WithArgs(2).
		WillReturnRows(rows)

	products, err := repo.Products(context.Background())
	if err != nil {
		t.Fatalf("Products: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}

	p := products[0]
	if p.Name != "Aqua Phone" || p.BrandName.String != `{"en":"Aqua"}` || p.TopStatus != 2 {
		t.Errorf("unexpected first product: %+v", p)
	}
	if p.Discount.Valid {
		t.Error("expected NULL discount")
	}
	if p.Price.Decimal.String() != "1299000" {
		t.Errorf("price = %s", p.Price.Decimal)
	}
	if p.MaximumPurchaseQty.Int64 != 5 || p.MinimumPurchaseQty.Valid {
		t.Errorf("unexpected quantities: min=%v max=%v", p.MinimumPurchaseQty, p.MaximumPurchaseQty)
	}

	q := products[1]
	if q.Description != "" || q.BrandName.Valid || q.VariantProduct != 0 {
		t.Errorf("unexpected second product: %+v", q)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestProducts_Error(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT .* FROM products`).WillReturnError(errors.New("connection refused"))

	_, err := repo.Products(context.Background())
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpSelect {
		t.Fatalf("expected SELECT db.Error, got %v", err)
	}
}

func TestAttributes(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT id, name FROM attributes WHERE status = \$1`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, "Water Resistance").
			AddRow(2, "Color"))

	lookup, err := repo.Attributes(context.Background())
	if err != nil {
		t.Fatalf("Attributes: %v", err)
	}
	if len(lookup) != 2 || lookup[1] != "Water Resistance" || lookup[2] != "Color" {
		t.Errorf("unexpected lookup: %v", lookup)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

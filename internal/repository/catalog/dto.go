package catalog

import (
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/kailas-cloud/catalograg/internal/domain"
)

// productRow mirrors the catalog query columns.
type productRow struct {
	ID                    int64               `db:"id"`
	Name                  string              `db:"name"`
	Description           sql.NullString      `db:"description"`
	CategoryName          sql.NullString      `db:"category_name"`
	SubCategoryName       sql.NullString      `db:"sub_category_name"`
	BrandName             sql.NullString      `db:"brand_name"`
	Price                 decimal.NullDecimal `db:"price"`
	Discount              decimal.NullDecimal `db:"discount"`
	ShippingFee           decimal.NullDecimal `db:"shipping_fee"`
	ShippingCountry       sql.NullString      `db:"shipping_country"`
	Weight                decimal.NullDecimal `db:"weight"`
	VariantProduct        sql.NullInt64       `db:"variant_product"`
	MinimumPurchaseQty    sql.NullInt64       `db:"minimum_purchase_qty"`
	MaximumPurchaseQty    sql.NullInt64       `db:"maximum_purchase_qty"`
	WarrantyPolicy        sql.NullString      `db:"warranty_policy"`
	AttributesValue       sql.NullString      `db:"attributes_value"`
	TopStatus             sql.NullInt64       `db:"top_status"`
	FeaturedStatus        sql.NullInt64       `db:"featured_status"`
	BestSellingItemStatus sql.NullInt64       `db:"best_selling_item_status"`
	IsSuggested           sql.NullInt64       `db:"is_suggested"`
	ProductType           sql.NullInt64       `db:"product_type"`
	SellerID              sql.NullInt64       `db:"seller_id"`
	Status                int                 `db:"status"`
}

func (r productRow) toDomain() domain.Product {
	return domain.Product{
		ID:                    r.ID,
		Name:                  r.Name,
		Description:           r.Description.String,
		CategoryName:          r.CategoryName,
		SubCategoryName:       r.SubCategoryName,
		BrandName:             r.BrandName,
		Price:                 r.Price,
		Discount:              r.Discount,
		ShippingFee:           r.ShippingFee,
		ShippingCountry:       r.ShippingCountry,
		Weight:                r.Weight,
		VariantProduct:        int(r.VariantProduct.Int64),
		MinimumPurchaseQty:    r.MinimumPurchaseQty,
		MaximumPurchaseQty:    r.MaximumPurchaseQty,
		WarrantyPolicy:        r.WarrantyPolicy,
		AttributesValue:       r.AttributesValue,
		TopStatus:             int(r.TopStatus.Int64),
		FeaturedStatus:        int(r.FeaturedStatus.Int64),
		BestSellingItemStatus: int(r.BestSellingItemStatus.Int64),
		IsSuggested:           int(r.IsSuggested.Int64),
		ProductType:           int(r.ProductType.Int64),
		SellerID:              r.SellerID.Int64,
		Status:                r.Status,
	}
}

type attributeRow struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

package domain

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Status flag values used by the catalog.
const (
	StatusFlagOn       = 2 // top/featured/best-selling flags
	SuggestedFlagOn    = 1
	ProductInactive    = 2
	AttributeActive    = 1
	UnbrandedLabel     = "Unbranded"
	UncategorizedLabel = "Uncategorized"
)

// Product is one catalog row with its joined brand and category names.
// Name-like fields hold serialized language maps such as {"en":"Phone","id":"Ponsel"}.
type Product struct {
	ID                    int64
	Name                  string
	Description           string
	CategoryName          sql.NullString
	SubCategoryName       sql.NullString
	BrandName             sql.NullString
	Price                 decimal.NullDecimal
	Discount              decimal.NullDecimal
	ShippingFee           decimal.NullDecimal
	ShippingCountry       sql.NullString
	Weight                decimal.NullDecimal
	VariantProduct        int
	MinimumPurchaseQty    sql.NullInt64
	MaximumPurchaseQty    sql.NullInt64
	WarrantyPolicy        sql.NullString
	AttributesValue       sql.NullString
	TopStatus             int
	FeaturedStatus        int
	BestSellingItemStatus int
	IsSuggested           int
	ProductType           int
	SellerID              int64
	Status                int
}

// AttributeLookup maps active attribute ids to display names.
type AttributeLookup map[int64]string

// PassageMetadata is structured product data stored next to the passage text.
// Values come from raw fields, never from cleaned text.
type PassageMetadata struct {
	ProductID       int64           `json:"product_id"`
	ProductType     int             `json:"product_type"`
	BrandName       string          `json:"brand_name"`
	CategoryName    string          `json:"category_name"`
	SubCategoryName string          `json:"sub_category_name"`
	SellerID        int64           `json:"seller_id"`
	Price           decimal.Decimal `json:"price"`
	Discount        decimal.Decimal `json:"discount"`
	ShippingFee     decimal.Decimal `json:"shipping_fee"`
	Weight          decimal.Decimal `json:"weight"`
}

// Passage is the normalized natural-language document for one product.
// Position is its slot in the vector index and the passage store.
type Passage struct {
	Position int
	Text     string
	Metadata PassageMetadata
}

// RetrievedPassage is one ranked retrieval hit.
type RetrievedPassage struct {
	Position  int     `json:"position"`
	ProductID int64   `json:"product_id"`
	Text      string  `json:"text"`
	Score     float32 `json:"score"`
}

// Package document turns catalog rows into the natural-language passages
// that get embedded and indexed.
package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kailas-cloud/catalograg/internal/domain"
	"github.com/kailas-cloud/catalograg/internal/textnorm"
)

// DefaultLanguage is the preferred key in multilingual name maps.
const DefaultLanguage = "en"

// Builder renders products into passages. The zero value uses DefaultLanguage.
type Builder struct {
	Language string
}

// NewBuilder creates a builder preferring the given language.
func NewBuilder(lang string) *Builder {
	return &Builder{Language: lang}
}

func (b *Builder) lang() string {
	if b == nil || b.Language == "" {
		return DefaultLanguage
	}
	return b.Language
}

// Build renders one product. Output is a pure function of its inputs.
func (b *Builder) Build(p domain.Product, lookup domain.AttributeLookup) domain.Passage {
	return domain.Passage{
		Text:     b.Text(p, lookup),
		Metadata: b.Metadata(p),
	}
}

// BuildAll renders products in order and assigns positions 0..n-1.
func (b *Builder) BuildAll(products []domain.Product, lookup domain.AttributeLookup) []domain.Passage {
	out := make([]domain.Passage, len(products))
	for i, p := range products {
		out[i] = b.Build(p, lookup)
		out[i].Position = i
	}
	return out
}

// Text renders and normalizes the passage body.
func (b *Builder) Text(p domain.Product, lookup domain.AttributeLookup) string {
	lang := b.lang()
	category := ResolveCategory(p.CategoryName.String, lang)
	subCategory := ResolveCategory(p.SubCategoryName.String, lang)
	brand := ResolveBrand(p.BrandName.String, lang)

	warranty := strings.TrimSpace(p.WarrantyPolicy.String)
	if warranty == "" {
		warranty = noWarranty
	}

	minQty := "1"
	if p.MinimumPurchaseQty.Valid && p.MinimumPurchaseQty.Int64 > 0 {
		minQty = strconv.FormatInt(p.MinimumPurchaseQty.Int64, 10)
	}
	maxQty := "unlimited"
	if p.MaximumPurchaseQty.Valid && p.MaximumPurchaseQty.Int64 > 0 {
		maxQty = strconv.FormatInt(p.MaximumPurchaseQty.Int64, 10)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Product Name** : %s\n\n", p.Name)
	fmt.Fprintf(&sb, "**Description** : %s\n\n", textnorm.CleanHTML(p.Description))
	summary := fmt.Sprintf(`Product "%s" falls under the %s > %s category, from the brand %s. It comes with %s. %s`,
		p.Name, category, subCategory, brand, warranty, StatusSentences(p))
	sb.WriteString(strings.TrimSpace(summary))
	sb.WriteString("\n\n")
	sb.WriteString("**Key features and specifications include**:\n")
	if attrs := FormatAttributes(p.AttributesValue.String, lookup, lang); attrs != "" {
		sb.WriteString(attrs)
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "Weight: %s KG\n", orZero(p.Weight).String())
	fmt.Fprintf(&sb, "Variants available: %d option(s)\n", p.VariantProduct)
	fmt.Fprintf(&sb, "Minimum purchase quantity: %s\n", minQty)
	fmt.Fprintf(&sb, "Maximum purchase quantity: %s\n\n", maxQty)
	fmt.Fprintf(&sb, "**Price**: %s\n", FormatCurrency(orZero(p.Price)))
	fmt.Fprintf(&sb, "Discount: %s\n", FormatCurrency(orZero(p.Discount)))
	fmt.Fprintf(&sb, "Shipping Fee: %s\n", FormatCurrency(orZero(p.ShippingFee)))
	sb.WriteString(FormatShipping(p.ShippingCountry.String))

	return textnorm.CleanPassage(sb.String())
}

// Metadata extracts structured fields from the raw row.
func (b *Builder) Metadata(p domain.Product) domain.PassageMetadata {
	lang := b.lang()
	return domain.PassageMetadata{
		ProductID:       p.ID,
		ProductType:     p.ProductType,
		BrandName:       ResolveBrand(p.BrandName.String, lang),
		CategoryName:    ResolveCategory(p.CategoryName.String, lang),
		SubCategoryName: ResolveCategory(p.SubCategoryName.String, lang),
		SellerID:        p.SellerID,
		Price:           orZero(p.Price),
		Discount:        orZero(p.Discount),
		ShippingFee:     orZero(p.ShippingFee),
		Weight:          orZero(p.Weight),
	}
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

package document

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/kailas-cloud/catalograg/internal/domain"
)

const (
	shippingUnavailable = "Shipping information is currently unavailable."
	noWarranty          = "no warranty specified"
	currencySymbol      = "Rp"
)

// Localized picks the value for lang from a serialized language map, falling
// back to the first value in document order. Anything that is not a JSON
// object yields "".
func Localized(blob, lang string) string {
	if blob == "" || !gjson.Valid(blob) {
		return ""
	}
	obj := gjson.Parse(blob)
	if !obj.IsObject() {
		return ""
	}
	var first, preferred string
	var seen, found bool
	obj.ForEach(func(key, value gjson.Result) bool {
		if !seen {
			first, seen = strings.TrimSpace(value.String()), true
		}
		if key.String() == lang {
			preferred, found = strings.TrimSpace(value.String()), true
			return false
		}
		return true
	})
	if found {
		return preferred
	}
	return first
}

// ResolveBrand maps a brand language map to its display name. Missing,
// malformed or "other" brands become "Unbranded".
func ResolveBrand(blob, lang string) string {
	return resolveLabel(blob, lang, "other", domain.UnbrandedLabel)
}

// ResolveCategory maps a category language map to its display name. Missing,
// malformed or "kategori lainnya" categories become "Uncategorized".
func ResolveCategory(blob, lang string) string {
	return resolveLabel(blob, lang, "kategori lainnya", domain.UncategorizedLabel)
}

func resolveLabel(blob, lang, catchAll, sentinel string) string {
	name := Localized(blob, lang)
	if name == "" || strings.EqualFold(name, catchAll) {
		return sentinel
	}
	return name
}

// FormatAttributes renders the serialized attribute list as markdown bullets:
// "- **Name**: v1, v2". Hyphens in values become spaces. Entries whose id is
// unknown to lookup are skipped. Invalid JSON, a non-array payload or a
// non-numeric id yields "".
func FormatAttributes(raw string, lookup domain.AttributeLookup, lang string) string {
	if raw == "" || !gjson.Valid(raw) {
		return ""
	}
	list := gjson.Parse(raw)
	if !list.IsArray() {
		return ""
	}

	var (
		lines []string
		bad   bool
	)
	list.ForEach(func(_, item gjson.Result) bool {
		id, ok := attributeID(item.Get("attribute_id"))
		if !ok {
			bad = true
			return false
		}
		name, known := lookup[id]
		if !known {
			return true
		}
		if localized := Localized(name, lang); localized != "" {
			name = localized
		}
		var values []string
		item.Get("values").ForEach(func(_, v gjson.Result) bool {
			values = append(values, v.String())
			return true
		})
		value := strings.ReplaceAll(strings.Join(values, ", "), "-", " ")
		lines = append(lines, "- **"+name+"**: "+value)
		return true
	})
	if bad {
		return ""
	}
	return strings.Join(lines, "\n")
}

func attributeID(v gjson.Result) (int64, bool) {
	switch v.Type {
	case gjson.Number:
		if v.Num != float64(int64(v.Num)) {
			return 0, false
		}
		return v.Int(), true
	case gjson.String:
		id, err := strconv.ParseInt(strings.TrimSpace(v.Str), 10, 64)
		return id, err == nil
	default:
		return 0, false
	}
}

// FormatShipping renders the shipping destinations sentence.
func FormatShipping(raw string) string {
	if raw == "" || !gjson.Valid(raw) {
		return shippingUnavailable
	}
	list := gjson.Parse(raw)
	if !list.IsArray() {
		return shippingUnavailable
	}
	var countries []string
	list.ForEach(func(_, v gjson.Result) bool {
		if s := strings.TrimSpace(v.String()); s != "" {
			countries = append(countries, s)
		}
		return true
	})
	if len(countries) == 0 {
		return shippingUnavailable
	}
	return "Shipping is available to " + strings.Join(countries, ", ") + "."
}

// FormatCurrency renders an amount the way Indonesian rupiah prices are
// printed: Rp1.299.000,00.
func FormatCurrency(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if amount.Sign() < 0 && fixed != "0.00" {
		b.WriteByte('-')
	}
	b.WriteString(currencySymbol)
	b.WriteString(groupThousands(intPart))
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// StatusSentences renders the merchandising flags, space separated.
func StatusSentences(p domain.Product) string {
	var s []string
	if p.TopStatus == domain.StatusFlagOn {
		s = append(s, "This product is a top product.")
	}
	if p.FeaturedStatus == domain.StatusFlagOn {
		s = append(s, "It is featured product on our platform.")
	}
	if p.BestSellingItemStatus == domain.StatusFlagOn {
		s = append(s, "It is among our best-selling items.")
	}
	if p.IsSuggested == domain.SuggestedFlagOn {
		s = append(s, "This product is also recommended for buyers.")
	}
	return strings.Join(s, " ")
}

package entities

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaxStockQuantity bounds every stored quantity, a line quantity and a restock amount. It is
// the range of the INTEGER column the Postgres backend uses.
const MaxStockQuantity = math.MaxInt32

// Product is a catalog entry with its available stock.
//
// Storage model (DynamoDB):
//   - PK: id
//
// Quantity is only changed by the inventory ledger (sales, cancellations, restock).
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Barcode     string          `json:"barcode,omitempty"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductDetails carries the catalog fields an update may change. Nil fields are left untouched.
type ProductDetails struct {
	Name        *string
	Barcode     *string
	Description *string
	Category    *string
	UnitPrice   *decimal.Decimal
}

// Apply copies the non-nil fields onto p.
func (d ProductDetails) Apply(p *Product) {
	if d.Name != nil {
		p.Name = *d.Name
	}
	if d.Barcode != nil {
		p.Barcode = *d.Barcode
	}
	if d.Description != nil {
		p.Description = *d.Description
	}
	if d.Category != nil {
		p.Category = *d.Category
	}
	if d.UnitPrice != nil {
		p.UnitPrice = *d.UnitPrice
	}
}

// IsEmpty reports whether no field is set.
func (d ProductDetails) IsEmpty() bool {
	return d.Name == nil && d.Barcode == nil && d.Description == nil && d.Category == nil && d.UnitPrice == nil
}

// ValidMoney reports whether v is a non-negative amount with at most two fraction digits.
func ValidMoney(v decimal.Decimal) bool {
	if v.IsNegative() {
		return false
	}
	return v.Equal(v.Truncate(2))
}

// Product list orderings. A leading "-" sorts descending.
const (
	ProductSortName      = "name"
	ProductSortUnitPrice = "unit_price"
	ProductSortQuantity  = "quantity"
	ProductSortCategory  = "category"
)

// ProductFilter narrows catalog listings. Search is a case-insensitive substring matched
// against name, barcode, description and category.
type ProductFilter struct {
	Search string
	Sort   string
}

func (f ProductFilter) Matches(p Product) bool {
	if f.Search == "" {
		return true
	}
	term := strings.ToLower(f.Search)
	for _, field := range []string{p.Name, p.Barcode, p.Description, p.Category} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// ValidProductSort reports whether s is empty or one of the known orderings.
func ValidProductSort(s string) bool {
	switch strings.TrimPrefix(s, "-") {
	case "", ProductSortName, ProductSortUnitPrice, ProductSortQuantity, ProductSortCategory:
		return true
	}
	return false
}

// SortProducts orders ps in place. Ties and the default order fall back to name, then id.
func SortProducts(ps []Product, order string) {
	desc := strings.HasPrefix(order, "-")
	key := strings.TrimPrefix(order, "-")
	cmp := func(a, b Product) int {
		switch key {
		case ProductSortUnitPrice:
			return a.UnitPrice.Cmp(b.UnitPrice)
		case ProductSortQuantity:
			return a.Quantity - b.Quantity
		case ProductSortCategory:
			return strings.Compare(a.Category, b.Category)
		}
		return strings.Compare(a.Name, b.Name)
	}
	sort.SliceStable(ps, func(i, j int) bool {
		c := cmp(ps[i], ps[j])
		if desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		if ps[i].Name != ps[j].Name {
			return ps[i].Name < ps[j].Name
		}
		return ps[i].ID < ps[j].ID
	})
}

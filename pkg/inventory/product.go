// Package inventory holds the records tracked by the service and the
// storage contract every backend implements.
package inventory

import "github.com/shopspring/decimal"

// Product is a sellable item with a stock counter.
type Product struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name" validate:"notblank"`
	Category string          `json:"category" validate:"notblank"`
	Price    decimal.Decimal `json:"price" validate:"-" swaggertype:"string" example:"9.99"`
	Stock    int             `json:"stock" validate:"gte=0"`
}

// ProductPatch carries the fields of a partial product update. Stock is
// absent on purpose: it only changes through the stock ledger.
type ProductPatch struct {
	Name     *string          `json:"name,omitempty" validate:"omitempty,notblank"`
	Category *string          `json:"category,omitempty" validate:"omitempty,notblank"`
	Price    *decimal.Decimal `json:"price,omitempty" validate:"-" swaggertype:"string"`
}

// maxPrice matches a NUMERIC(10,2) column.
var maxPrice = decimal.New(1, 8)

// Validate checks a product before it is inserted.
func (p Product) Validate() error {
	if err := check(p); err != nil {
		return err
	}
	return validatePrice(p.Price)
}

// Validate checks the fields present in the patch.
func (p ProductPatch) Validate() error {
	if err := check(p); err != nil {
		return err
	}
	if p.Price != nil {
		return validatePrice(*p.Price)
	}
	return nil
}

// Empty reports whether the patch changes nothing.
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Category == nil && p.Price == nil
}

// Apply returns a copy of prod with the patch applied.
func (p ProductPatch) Apply(prod Product) Product {
	if p.Name != nil {
		prod.Name = *p.Name
	}
	if p.Category != nil {
		prod.Category = *p.Category
	}
	if p.Price != nil {
		prod.Price = *p.Price
	}
	return prod
}

func validatePrice(price decimal.Decimal) error {
	switch {
	case price.IsNegative():
		return invalid("price", "must not be negative")
	case !price.Equal(price.Round(2)):
		return invalid("price", "must have at most two decimal places")
	case price.GreaterThanOrEqual(maxPrice):
		return invalid("price", "is too large")
	}
	return nil
}

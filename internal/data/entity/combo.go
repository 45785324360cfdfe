package entity

import "github.com/shopspring/decimal"

type Combo struct {
	Base
	Name           string          `db:"name"`
	Description    string          `db:"description"`
	UnitPrice      decimal.Decimal `db:"unit_price"`
	UnitsPerCombo  int             `db:"units_per_combo"`
	AvailableStock *int            `db:"available_stock"`
}

// Stock returns the units that can still be sold. Combos registered without
// an explicit stock fall back to their units-per-combo.
func (c *Combo) Stock() int {
	if c.AvailableStock != nil {
		return *c.AvailableStock
	}
	return c.UnitsPerCombo
}

package models

// CategoryType is the flow direction a category groups. It is a display hint
// only; the sign of a transaction's amount is what decides money in or out.
type CategoryType string

const (
	CategoryTypeInflow  CategoryType = "inflow"
	CategoryTypeOutflow CategoryType = "outflow"
)

// Valid reports whether t is a known flow direction.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeInflow || t == CategoryTypeOutflow
}

// Category is a user-defined label for transactions
type Category struct {
	Base
	Name  string       `gorm:"not null;uniqueIndex:idx_categories_type_name" json:"name"`
	Type  CategoryType `gorm:"not null;uniqueIndex:idx_categories_type_name" json:"type"`
	Color *string      `json:"color,omitempty"`
}

package models

// LinkedAccount is one external bank connection (a provider "item").
// The access credential is stored sealed and never serialized.
type LinkedAccount struct {
	Base
	ItemID           string  `gorm:"not null;uniqueIndex" json:"item_id"`
	AccessCredential string  `gorm:"not null" json:"-"`
	InstitutionID    *string `json:"institution_id,omitempty"`
	InstitutionName  *string `json:"institution_name,omitempty"`
}

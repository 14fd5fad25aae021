package models

// PropertyType classifies a property (Apartment, House, Villa...). Names are unique.
type PropertyType struct {
	Model

	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

package models

type Facility struct {
	Model

	Name string  `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Icon *string `gorm:"size:100" json:"icon,omitempty"`
}

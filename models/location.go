package models

type Location struct {
	Model

	Country string `gorm:"size:100;not null" json:"country"`
	City    string `gorm:"size:100;not null;index" json:"city"`
	Address string `gorm:"size:255" json:"address"`
}

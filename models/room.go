package models

type Room struct {
	Model

	PropertyID           string `gorm:"type:varchar(36);index;not null" json:"propertyId"`
	Name                 string `gorm:"size:150;not null" json:"name"`
	Description          string `gorm:"type:text" json:"description"`
	MaxGuests            int    `gorm:"not null" json:"maxGuests"`
	Beds                 int    `json:"beds"`
	Bathrooms            int    `json:"bathrooms"`
	BasePricePerNightIdr int64  `gorm:"not null" json:"basePricePerNightIdr"`

	Property   *Property  `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	Facilities []Facility `gorm:"many2many:room_facilities" json:"facilities,omitempty"`
}

package models

type PropertyStatus string

const (
	PropertyDraft    PropertyStatus = "DRAFT"
	PropertyActive   PropertyStatus = "ACTIVE"
	PropertyInactive PropertyStatus = "INACTIVE"
)

func (s PropertyStatus) Valid() bool {
	switch s {
	case PropertyDraft, PropertyActive, PropertyInactive:
		return true
	}
	return false
}

type Property struct {
	Model

	AdminUserID          string         `gorm:"type:varchar(36);index;not null" json:"adminUserId"`
	Title                string         `gorm:"size:200;not null" json:"title"`
	Description          string         `gorm:"type:text" json:"description"`
	TypeID               string         `gorm:"type:varchar(36);index;not null" json:"typeId"`
	LocationID           string         `gorm:"type:varchar(36);index;not null" json:"locationId"`
	MaxGuests            int            `gorm:"not null" json:"maxGuests"`
	Bedrooms             int            `json:"bedrooms"`
	Beds                 int            `json:"beds"`
	Bathrooms            int            `json:"bathrooms"`
	MinNights            int            `gorm:"not null" json:"minNights"`
	MaxNights            *int           `json:"maxNights,omitempty"`
	BasePricePerNightIdr int64          `gorm:"not null" json:"basePricePerNightIdr"`
	Status               PropertyStatus `gorm:"type:varchar(16);index;not null" json:"status"`

	Type       *PropertyType `gorm:"foreignKey:TypeID" json:"type,omitempty"`
	Location   *Location     `gorm:"foreignKey:LocationID" json:"location,omitempty"`
	Facilities []Facility    `gorm:"many2many:property_facilities" json:"facilities,omitempty"`
	Rooms      []Room        `gorm:"foreignKey:PropertyID" json:"rooms,omitempty"`
}

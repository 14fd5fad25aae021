package models

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	Model

	FullName     string  `gorm:"size:150;not null" json:"fullName"`
	Email        string  `gorm:"size:191;uniqueIndex;not null" json:"email"`
	PasswordHash string  `gorm:"size:255" json:"-"`
	Role         Role    `gorm:"type:varchar(16);not null" json:"role"`
	PhoneNumber  *string `gorm:"size:32" json:"phoneNumber,omitempty"`
}

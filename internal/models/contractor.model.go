package models

import "github.com/lib/pq"

type Contractor struct {
	BaseUUIDModel
	Name     string         `gorm:"type:text;not null"             json:"name"`
	Email    string         `gorm:"type:text;uniqueIndex;not null" json:"email"`
	Phone    string         `gorm:"type:text"                      json:"phone"`
	Skills   pq.StringArray `gorm:"type:text[]"                    json:"skills"`
	IsActive bool           `gorm:"type:bool;default:true"         json:"isActive"`
}

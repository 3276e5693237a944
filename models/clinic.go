package models

import (
	"time"

	"gorm.io/datatypes"
)

// DefaultDepartment is the department used when a clinic has none configured
const DefaultDepartment = "General"

// DefaultDepartments seeds clinics created without an explicit list
var DefaultDepartments = []string{"General", "Administration"}

// Clinic is the tenant organization owning users, thoughts and departments
type Clinic struct {
	ID          uint                        `json:"id" gorm:"primaryKey"`
	Name        string                      `json:"name" gorm:"not null"`
	URL         *string                     `json:"url" gorm:"default:null"`
	LogoURL     *string                     `json:"logoUrl" gorm:"default:null"`
	Departments datatypes.JSONSlice[string] `json:"departments"` // Ordered; the first entry is the removal fallback
	CreatedAt   time.Time                   `json:"createdAt"`
}

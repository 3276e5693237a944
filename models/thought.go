package models

import (
	"time"
)

// DefaultCategory is applied to thoughts created without a category
const DefaultCategory = "general"

// Thought is a piece of user-submitted content within a clinic.
// Deletion only flips IsDeleted; the row is kept for the audit trail.
type Thought struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	ClinicID     uint       `json:"clinicId" gorm:"not null;index"`
	AuthorID     uint       `json:"authorId" gorm:"not null;index"`
	Title        string     `json:"title" gorm:"not null"`
	Content      string     `json:"content" gorm:"type:text;not null"`
	Category     string     `json:"category" gorm:"not null;default:'general'"`
	Department   *string    `json:"department" gorm:"index"`
	IsDeleted    bool       `json:"isDeleted" gorm:"not null;default:false"`
	DeletedAt    *time.Time `json:"deletedAt"`
	DeletedBy    *uint      `json:"deletedBy"`
	EditCount    int        `json:"editCount" gorm:"not null;default:0"`
	LastEditedAt *time.Time `json:"lastEditedAt"`
	LastEditedBy *uint      `json:"lastEditedBy"`
	IsRead       bool       `json:"isRead" gorm:"not null;default:false"`
	ReadAt       *time.Time `json:"readAt"`
	CreatedAt    time.Time  `json:"createdAt" gorm:"index"`
}

// HasDepartment reports whether the thought is filed under exactly name
func (t Thought) HasDepartment(name string) bool {
	return t.Department != nil && *t.Department == name
}

package models

import (
	"time"
)

// ChangeType identifies what produced a history entry
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeEdited  ChangeType = "edited"
	ChangeDeleted ChangeType = "deleted"
)

// ThoughtHistory is an append-only snapshot of a thought's content taken
// after every create, edit and delete.
type ThoughtHistory struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	ThoughtID  uint       `json:"thoughtId" gorm:"not null;index"`
	Title      string     `json:"title" gorm:"not null"`
	Content    string     `json:"content" gorm:"type:text;not null"`
	Category   string     `json:"category" gorm:"not null"`
	Department *string    `json:"department"`
	EditedBy   uint       `json:"editedBy" gorm:"not null"`
	EditedAt   time.Time  `json:"editedAt" gorm:"not null;index"`
	ChangeType ChangeType `json:"changeType" gorm:"type:varchar(10);not null"`
}

// TableName sets the table name for ThoughtHistory model
func (ThoughtHistory) TableName() string {
	return "thought_history"
}

// Snapshot captures the audited fields of a thought as a history entry
func Snapshot(t Thought, editedBy uint, editedAt time.Time, change ChangeType) ThoughtHistory {
	return ThoughtHistory{
		ThoughtID:  t.ID,
		Title:      t.Title,
		Content:    t.Content,
		Category:   t.Category,
		Department: cloneString(t.Department),
		EditedBy:   editedBy,
		EditedAt:   editedAt,
		ChangeType: change,
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

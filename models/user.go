package models

import (
	"fmt"
	"time"
)

// Role represents user role types
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a user registered to a clinic
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"` // Password is not exposed in JSON
	Role      Role      `json:"role" gorm:"type:varchar(10);default:'user'"`
	ClinicID  *uint     `json:"clinicId" gorm:"index"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user holds the admin role
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UnknownUser builds the placeholder returned when a referenced user no
// longer exists. It is not authoritative and is never persisted.
func UnknownUser(id uint) User {
	return User{
		ID:       id,
		Username: fmt.Sprintf("Unknown User %d", id),
		Password: "",
		Role:     RoleUser,
		ClinicID: nil,
	}
}

package domain

import "time" // Timestamps

// Roles assigned at registration
const (
	RoleAdmin = "admin" // First registered user
	RoleUser  = "user"  // Every later registrant
)

// User Model
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`                          // Primary key
	Name      string     `gorm:"size:255;not null" json:"name"`                 // Display name
	Email     string     `gorm:"size:255;uniqueIndex;not null" json:"email"`    // Unique email, case-sensitive
	Password  string     `gorm:"size:255;not null" json:"-"`                    // Hashed password, never serialized
	Role      string     `gorm:"size:16;not null;default:user" json:"role"`     // Role: admin or user
	CreatedAt time.Time  `json:"created_at"`                                    // Creation time
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`             // Listing filter only, users are hard-deleted
	Sessions  []Session  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"` // Owned ledger entries
}

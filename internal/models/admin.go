// internal/models/admin.go
package models

import "time"

type AuditLog struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     *uint     `json:"user_id" gorm:"index"`
	Action     string    `json:"action" gorm:"size:100;not null;index"`
	Path       string    `json:"path" gorm:"size:255;not null"`
	Status     int       `json:"status"`
	IPAddress  string    `json:"ip_address" gorm:"size:45"`
	UserAgent  string    `json:"user_agent" gorm:"type:text"`
	RequestID  string    `json:"request_id" gorm:"size:64"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`

	// Relationships
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

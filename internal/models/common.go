// internal/models/common.go
package models

import (
	"time"
)

// Base model with common fields. Rows are hard-deleted: slugs and
// permalinks carry unique indexes that soft-deleted rows would still hold.
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"index"`
}

// Enums
type Currency string

const (
	CurrencyCUC Currency = "CUC"
	CurrencyUSD Currency = "USD"
	CurrencyCUP Currency = "CUP"
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencyCUC, CurrencyUSD, CurrencyCUP:
		return true
	}
	return false
}

type MessageStatus string

const (
	MessageStatusUnread MessageStatus = "UNREAD"
	MessageStatusRead   MessageStatus = "READ"
)

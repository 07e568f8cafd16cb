package models

import "time"

// CartSnapshot stores the serialized line items of one cart session under its
// storage key.
type CartSnapshot struct {
	Key       string     `gorm:"column:cart_key;primaryKey;size:191"`
	Payload   string     `gorm:"column:payload;type:text;not null"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartSnapshot) TableName() string {
	return "cart_snapshots"
}

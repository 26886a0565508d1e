package model

import "time"

// 分割注文のつながり
// OrderIDsは書き込んだ順（チャンク順）。作成後は変更しない。
type OrderRelationship struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64     `gorm:"not null;index" json:"user_id"`
	OrderIDs    []int64   `gorm:"serializer:json;type:text;not null" json:"order_ids"`
	TotalOrders int       `gorm:"not null" json:"total_orders"`
	TotalAmount int64     `gorm:"not null" json:"total_amount"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

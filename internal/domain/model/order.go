package model

import "time"

type OrderStatus string

const (
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

// 確定済みの注文
// 分割注文の場合は IsSplitOrder=true で ChunkIndex/TotalChunks（1始まり）が入る。
// 作成後は変更しない。
type Order struct {
	ID           int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       int64       `gorm:"not null;index" json:"user_id"`
	Status       OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Subtotal     int64       `gorm:"not null" json:"subtotal"`
	Tax          int64       `gorm:"not null" json:"tax"`
	Total        int64       `gorm:"not null" json:"total"`
	IsSplitOrder bool        `gorm:"not null;default:false" json:"is_split_order"`
	ChunkIndex   int         `gorm:"not null;default:0" json:"chunk_index,omitempty"`
	TotalChunks  int         `gorm:"not null;default:0" json:"total_chunks,omitempty"`
	CreatedAt    time.Time   `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

package model

import (
	"time"

	"gorm.io/gorm"
)

// POSで販売する商品
// Stockは現在の在庫数（チェックアウトで減算される）
type Product struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Price     int64          `gorm:"not null" json:"price"`
	Stock     int64          `gorm:"not null" json:"stock"`
	Category  string         `gorm:"type:varchar(100);not null;index" json:"category"`
	Barcode   string         `gorm:"type:varchar(64);index" json:"barcode"`
	ImageURL  string         `gorm:"type:text" json:"image_url"`
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

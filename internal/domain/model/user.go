package model

import "time"

// 店舗オーナーのアカウント
// このアプリは1アカウント＝1店舗。
type User struct {
	ID           int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"column:password_hash;not null"`
	StoreName    string     `json:"store_name" gorm:"type:varchar(255);not null"`
	TokenVersion int        `json:"token_version" gorm:"not null;default:0"`
	IsActive     bool       `json:"is_active" gorm:"not null;default:true"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

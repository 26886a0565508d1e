package repository

import (
	"context"
)

// 在庫の書き込みを約束。
// SetStockは「新しい現在値」を素直に書くだけで、読み取り時点との差分は見ない。
// 同時に複数のレジが動く構成にするなら、バックエンド側に条件付きの
// アトミック減算が必要になる（このアプリは1レジ前提）。
type InventoryRepository interface {
	// 在庫の現在値を設定
	SetStock(ctx context.Context, productID int64, newStock int64) error

	// 在庫の現在値を設定し、調整履歴も残す（棚卸し用）
	SetStockWithAdjustment(ctx context.Context, userID int64, productID int64, newStock int64, reason string) error

	// 在庫を加算し、調整履歴も残す（入荷用）
	IncreaseStockWithAdjustment(ctx context.Context, userID int64, productID int64, qty int64, reason string) error
}

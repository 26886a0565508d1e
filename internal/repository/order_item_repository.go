package repository

import (
	"context"

	"app/internal/domain/model"
)

// 注文明細（商品名・単価はスナップショット）
type OrderItemRepository interface {
	// 1注文（またはチャンク）分の明細をまとめて保存
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}

package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

// レポート画面の絞り込み
type OrderListFilter struct {
	Page  int
	Limit int
	From  *time.Time
	To    *time.Time
}

// 注文は追記のみ（作成後の編集・取り消しは扱わない）。
type OrderRepository interface {
	Create(ctx context.Context, order model.Order) (int64, error)
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, f OrderListFilter) ([]model.Order, int64, error)
}

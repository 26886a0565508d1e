package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type ProductListQuery struct {
	Page     int
	Limit    int
	Q        string
	Category string
	Sort     string
}

// 商品カタログの保存・取得だけを約束。
// チェックアウトは在庫の減算に InventoryRepository を使う（ここでは減らさない）。
type ProductRepository interface {
	// POS画面用の全件スナップショット（有効な商品のみ）
	ListAll(ctx context.Context) ([]model.Product, error)

	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (model.Product, error)
	ListLowStock(ctx context.Context, threshold int64) ([]model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error
}

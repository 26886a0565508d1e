package cache

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

// 商品一覧のキャッシュ。
// カタログの書き込みとチェックアウトの在庫更新で必ず無効化する。
type ProductCache interface {
	Get(ctx context.Context, key string) ([]model.Product, error)
	Set(ctx context.Context, key string, products []model.Product) error
	Invalidate(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")

package repository

import (
	"app/internal/domain/model"
	"context"
)

// 顧客台帳の保存・取得を約束。
// すべての操作はオーナー（userID）のスコープ内で行う。
type CustomerRepository interface {
	// オーナーの顧客を新しい順で返す。qは名前の部分一致（空なら全件）。
	ListByUserID(ctx context.Context, userID int64, q string) ([]model.Customer, error)
	FindByID(ctx context.Context, id int64) (model.Customer, error)
	Create(ctx context.Context, c model.Customer) (model.Customer, error)
	Update(ctx context.Context, c model.Customer) error
	Delete(ctx context.Context, id int64) error
}

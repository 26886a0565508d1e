package repository

import (
	"context"

	"app/internal/domain/model"
)

// 分割注文のつながりの保存・検索。作成後は変更しない。
type OrderRelationshipRepository interface {
	Create(ctx context.Context, rel model.OrderRelationship) (int64, error)

	// orderIDを含むつながりを探す（見つからなければ false）
	FindByOrderID(ctx context.Context, userID int64, orderID int64) (model.OrderRelationship, bool, error)
}

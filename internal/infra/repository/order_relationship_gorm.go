package repository

import (
	"context"

	"app/internal/domain/model"

	"gorm.io/gorm"
)

type OrderRelationshipGormRepository struct {
	db *gorm.DB
}

func NewOrderRelationshipGormRepository(db *gorm.DB) *OrderRelationshipGormRepository {
	return &OrderRelationshipGormRepository{db: db}
}

func (r *OrderRelationshipGormRepository) Create(ctx context.Context, rel model.OrderRelationship) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&rel).Error; err != nil {
		return 0, err
	}
	return rel.ID, nil
}

// orderIDを含むつながりを探す。
// order_idsはJSONテキストなのでDB側では絞り込めない。オーナー単位の件数は小さい前提で
// アプリ側で走査する。
func (r *OrderRelationshipGormRepository) FindByOrderID(ctx context.Context, userID int64, orderID int64) (model.OrderRelationship, bool, error) {
	var rels []model.OrderRelationship
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Find(&rels).Error
	if err != nil {
		return model.OrderRelationship{}, false, err
	}

	for _, rel := range rels {
		for _, id := range rel.OrderIDs {
			if id == orderID {
				return rel, true, nil
			}
		}
	}
	return model.OrderRelationship{}, false, nil
}

package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type ReportUsecase struct {
	orderRepo        repo.OrderRepository
	orderItemRepo    repo.OrderItemRepository
	relationshipRepo repo.OrderRelationshipRepository
	now              func() time.Time
}

// DI
func NewReportUsecase(
	orderRepo repo.OrderRepository,
	orderItemRepo repo.OrderItemRepository,
	relationshipRepo repo.OrderRelationshipRepository,
	now func() time.Time,
) *ReportUsecase {
	if now == nil {
		now = time.Now
	}
	return &ReportUsecase{
		orderRepo:        orderRepo,
		orderItemRepo:    orderItemRepo,
		relationshipRepo: relationshipRepo,
		now:              now,
	}
}

type ListOrdersInput struct {
	Page  int
	Limit int
	From  *time.Time
	To    *time.Time
}

type OrderListOutput struct {
	Items []model.Order `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

type OrderDetailOutput struct {
	Order model.Order       `json:"order"`
	Items []model.OrderItem `json:"items"`

	// 分割注文の場合、同じ会計に属する全注文ID（自分自身を含む）
	RelatedOrderIDs []int64 `json:"relatedOrderIds,omitempty"`
	GroupTotal      int64   `json:"groupTotal,omitempty"`
}

type TodaySummaryOutput struct {
	Date       string `json:"date"`
	GrossSales int64  `json:"grossSales"`
	OrderCount int64  `json:"orderCount"`
	ItemsSold  int64  `json:"itemsSold"`
}

func (u *ReportUsecase) ListOrders(ctx context.Context, userID int64, in ListOrdersInput) (OrderListOutput, error) {
	if in.Page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if in.From != nil && in.To != nil && in.To.Before(*in.From) {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid date range")
	}

	orders, total, err := u.orderRepo.ListByUserID(ctx, userID, repo.OrderListFilter{
		Page:  in.Page,
		Limit: in.Limit,
		From:  in.From,
		To:    in.To,
	})
	if err != nil {
		return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return OrderListOutput{
		Items: orders,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ReportUsecase) GetOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderDetailOutput, error) {
	if orderID <= 0 {
		return OrderDetailOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	order, err := u.orderRepo.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderDetailOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return OrderDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	// 他店舗の注文は存在しない扱い
	if order.UserID != userID {
		return OrderDetailOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	items, err := u.orderItemRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := OrderDetailOutput{Order: order, Items: items}

	if order.IsSplitOrder {
		rel, found, err := u.relationshipRepo.FindByOrderID(ctx, userID, orderID)
		if err != nil {
			return OrderDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			out.RelatedOrderIDs = rel.OrderIDs
			out.GroupTotal = rel.TotalAmount
		}
	}
	return out, nil
}

// 当日の売上サマリ。レジ画面のヘッダに出す数値なのでページングせず全件なめる。
func (u *ReportUsecase) GetTodaySummary(ctx context.Context, userID int64) (TodaySummaryOutput, error) {
	now := u.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.Add(24 * time.Hour)

	out := TodaySummaryOutput{Date: from.Format("2006-01-02")}

	page := 1
	const limit = 100
	for {
		orders, total, err := u.orderRepo.ListByUserID(ctx, userID, repo.OrderListFilter{
			Page:  page,
			Limit: limit,
			From:  &from,
			To:    &to,
		})
		if err != nil {
			return TodaySummaryOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}

		for _, o := range orders {
			out.GrossSales += o.Total
			out.OrderCount++

			items, err := u.orderItemRepo.ListByOrderID(ctx, o.ID)
			if err != nil {
				return TodaySummaryOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
			}
			for _, it := range items {
				out.ItemsSold += it.Quantity
			}
		}

		if int64(page*limit) >= total || len(orders) == 0 {
			break
		}
		page++
	}
	return out, nil
}

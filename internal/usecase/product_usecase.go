package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"app/internal/cache"
	"app/internal/domain/model"
	repo "app/internal/repository"
)

type ProductUsecase struct {
	productRepo   repo.ProductRepository
	inventoryRepo repo.InventoryRepository
	productCache  cache.ProductCache
	log           *slog.Logger
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	inventoryRepo repo.InventoryRepository,
	productCache cache.ProductCache,
	log *slog.Logger,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		productCache:  productCache,
		log:           log,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page     int
	Limit    int
	Q        string
	Category string
	Sort     string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type SaveProductInput struct {
	Name     string
	Price    int64
	Stock    int64
	Category string
	Barcode  string
	ImageURL string
	IsActive bool
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}
	switch in.Sort {
	case "", "new", "name", "price_asc", "price_desc":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	items, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        strings.TrimSpace(in.Q),
		Category: strings.TrimSpace(in.Category),
		Sort:     in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

// POSのグリッド用。全件スナップショットをキャッシュ経由で返す。
func (u *ProductUsecase) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	const key = "all"

	if u.productCache != nil {
		if items, err := u.productCache.Get(ctx, key); err == nil {
			return items, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			// キャッシュ障害は無視してDBへ
			u.log.Warn("product cache get failed", "err", err)
		}
	}

	items, err := u.productRepo.ListAll(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if u.productCache != nil {
		if err := u.productCache.Set(ctx, key, items); err != nil {
			u.log.Warn("product cache set failed", "err", err)
		}
	}
	return items, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

// バーコード検索（スキャナ用）
func (u *ProductUsecase) GetProductByBarcode(ctx context.Context, barcode string) (model.Product, error) {
	code := strings.TrimSpace(barcode)
	if code == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid barcode")
	}

	p, err := u.productRepo.FindByBarcode(ctx, code)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

// 在庫がしきい値未満の商品（発注の目安）
func (u *ProductUsecase) ListLowStockProducts(ctx context.Context, threshold int64) ([]model.Product, error) {
	if threshold <= 0 {
		threshold = 10
	}

	items, err := u.productRepo.ListLowStock(ctx, threshold)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

func (u *ProductUsecase) CreateProduct(ctx context.Context, in SaveProductInput) (model.Product, error) {
	if err := validateSaveProduct(in); err != nil {
		return model.Product{}, err
	}

	created, err := u.productRepo.Create(ctx, model.Product{
		Name:     strings.TrimSpace(in.Name),
		Price:    in.Price,
		Stock:    in.Stock,
		Category: strings.TrimSpace(in.Category),
		Barcode:  strings.TrimSpace(in.Barcode),
		ImageURL: in.ImageURL,
		IsActive: in.IsActive,
	})
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.invalidateCache(ctx)
	return created, nil
}

func (u *ProductUsecase) UpdateProduct(ctx context.Context, productID int64, in SaveProductInput) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if err := validateSaveProduct(in); err != nil {
		return model.Product{}, err
	}

	err := u.productRepo.Update(ctx, model.Product{
		ID:       productID,
		Name:     strings.TrimSpace(in.Name),
		Price:    in.Price,
		Stock:    in.Stock,
		Category: strings.TrimSpace(in.Category),
		Barcode:  strings.TrimSpace(in.Barcode),
		ImageURL: in.ImageURL,
		IsActive: in.IsActive,
	})
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.invalidateCache(ctx)
	return u.GetProductDetail(ctx, productID)
}

func (u *ProductUsecase) DeleteProduct(ctx context.Context, productID int64) error {
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	err := u.productRepo.SoftDelete(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.invalidateCache(ctx)
	return nil
}

// 在庫の現在値を直接設定する（棚卸し）。調整履歴も残る。
func (u *ProductUsecase) SetStock(ctx context.Context, userID int64, productID int64, newStock int64, reason string) error {
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if newStock < 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid stock")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "manual adjustment"
	}

	err := u.inventoryRepo.SetStockWithAdjustment(ctx, userID, productID, newStock, reason)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.invalidateCache(ctx)
	return nil
}

// バーコード入荷。スキャンした商品の在庫を加算する。
func (u *ProductUsecase) Restock(ctx context.Context, userID int64, productID int64, qty int64, reason string) error {
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if qty <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "restock"
	}

	err := u.inventoryRepo.IncreaseStockWithAdjustment(ctx, userID, productID, qty, reason)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.invalidateCache(ctx)
	return nil
}

func (u *ProductUsecase) invalidateCache(ctx context.Context) {
	if u.productCache == nil {
		return
	}
	if err := u.productCache.Invalidate(ctx); err != nil {
		u.log.Warn("product cache invalidation failed", "err", err)
	}
}

func validateSaveProduct(in SaveProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if in.Price < 0 {
		return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.Stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	if strings.TrimSpace(in.Category) == "" {
		return NewHTTPError(http.StatusBadRequest, "category is required")
	}
	return nil
}

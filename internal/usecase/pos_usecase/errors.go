package pos

import (
	"errors"
	"fmt"
)

var (
	// カートが空のままチェックアウトした（ストアには触らない）
	ErrEmptyCart = errors.New("cart is empty")

	// 在庫0の商品をカートに入れようとした
	ErrOutOfStock = errors.New("product is out of stock")

	// カート数量が在庫スナップショットを超える
	ErrInsufficientStock = errors.New("not enough stock available")

	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrLineNotFound    = errors.New("cart line not found")

	// すでにチェックアウトが進行中（1カートにつき同時1件まで）
	ErrCheckoutInFlight = errors.New("checkout already in progress")

	// 分割確認待ちの状態ではない
	ErrNoSplitPending = errors.New("no split checkout awaiting confirmation")

	// カート明細に対応する在庫スナップショットが見つからない
	errMissingStockSnapshot = errors.New("stock snapshot missing for cart line")
)

// ストア書き込みの失敗。
// どのフェーズで失敗したかと、失敗時点までに確定した注文IDを持つ。
// 確定済みの注文はロールバックしない（各チャンクは単体で完結した注文）。
type WriteError struct {
	Phase     string
	Committed []int64
	Err       error
}

func (e *WriteError) Error() string {
	if len(e.Committed) > 0 {
		return fmt.Sprintf("checkout failed at %s (committed orders: %v): %v", e.Phase, e.Committed, e.Err)
	}
	return fmt.Sprintf("checkout failed at %s: %v", e.Phase, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// 商品単位の在庫更新の失敗
type StockFailure struct {
	ProductID int64
	Err       error
}

func (f StockFailure) Error() string {
	return fmt.Sprintf("stock update failed for product %d: %v", f.ProductID, f.Err)
}

func (f StockFailure) Unwrap() error { return f.Err }

// 失敗を1つのerrorにまとめる（商品ごとの内訳は保ったまま）
func joinStockFailures(failures []StockFailure) error {
	errs := make([]error, 0, len(failures))
	for _, f := range failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

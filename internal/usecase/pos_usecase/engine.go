package pos

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"app/internal/cache"
	"app/internal/domain/model"
	repo "app/internal/repository"
)

// チェックアウトセッションの状態。
// Idle以外のときに新しいチェックアウトを始めることはできない
// （UI側のボタン無効化には頼らない）。
type sessionState int

const (
	stateIdle sessionState = iota
	stateConfirmingSplit
	stateProcessing
)

// オーナー1人分のPOSセッション
type session struct {
	mu    sync.Mutex
	cart  *Cart
	state sessionState
}

// Engine はカートを1件以上の注文ドキュメントへ確定し、
// 分割の有無にかかわらず全明細分の在庫を減算する。
//
// ストア間のトランザクションは使わない（バックエンドの契約が
// ドキュメント単位のat-least-once書き込みのため）。書き込みの途中で
// 失敗しても確定済みのチャンクはそのまま残る。
type Engine struct {
	products      repo.ProductRepository
	inventory     repo.InventoryRepository
	orders        repo.OrderRepository
	orderItems    repo.OrderItemRepository
	relationships repo.OrderRelationshipRepository
	productCache  cache.ProductCache
	log           *slog.Logger

	taxRatePercent int64
	now            func() time.Time

	mu       sync.Mutex
	sessions map[int64]*session
}

// DI
func NewEngine(
	products repo.ProductRepository,
	inventory repo.InventoryRepository,
	orders repo.OrderRepository,
	orderItems repo.OrderItemRepository,
	relationships repo.OrderRelationshipRepository,
	productCache cache.ProductCache,
	log *slog.Logger,
	taxRatePercent int64,
) *Engine {
	return &Engine{
		products:       products,
		inventory:      inventory,
		orders:         orders,
		orderItems:     orderItems,
		relationships:  relationships,
		productCache:   productCache,
		log:            log,
		taxRatePercent: taxRatePercent,
		now:            time.Now,
		sessions:       map[int64]*session{},
	}
}

func (e *Engine) session(userID int64) *session {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[userID]
	if !ok {
		s = &session{cart: NewCart(e.taxRatePercent), state: stateIdle}
		e.sessions[userID] = s
	}
	return s
}

// カート表示用
type CartItemView struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
	LineTotal int64  `json:"line_total"`
}

type CartView struct {
	Items    []CartItemView `json:"items"`
	Subtotal int64          `json:"subtotal"`
	Tax      int64          `json:"tax"`
	Total    int64          `json:"total"`
}

func buildCartView(c *Cart) CartView {
	lines := c.Lines()
	items := make([]CartItemView, 0, len(lines))
	for _, ln := range lines {
		items = append(items, CartItemView{
			ProductID: ln.ProductID,
			Name:      ln.Name,
			UnitPrice: ln.UnitPrice,
			Quantity:  ln.Quantity,
			LineTotal: ln.UnitPrice * ln.Quantity,
		})
	}
	return CartView{
		Items:    items,
		Subtotal: c.Subtotal(),
		Tax:      c.Tax(),
		Total:    c.Total(),
	}
}

func (e *Engine) ViewCart(userID int64) CartView {
	s := e.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return buildCartView(s.cart)
}

// AddToCart は商品を取得してカートに追加する。
// 在庫スナップショットはこの時点の値に更新される。
func (e *Engine) AddToCart(ctx context.Context, userID int64, productID int64, qty int64) (CartView, error) {
	p, err := e.products.FindByID(ctx, productID)
	if err != nil {
		return CartView{}, err
	}
	if !p.IsActive {
		return CartView{}, repo.ErrNotFound
	}

	s := e.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateIdle {
		return CartView{}, ErrCheckoutInFlight
	}
	if err := s.cart.AddLine(p, qty); err != nil {
		return CartView{}, err
	}
	return buildCartView(s.cart), nil
}

func (e *Engine) IncreaseLine(userID int64, index int) (CartView, error) {
	return e.mutateCart(userID, func(c *Cart) error { return c.Increase(index) })
}

func (e *Engine) DecreaseLine(userID int64, index int) (CartView, error) {
	return e.mutateCart(userID, func(c *Cart) error { return c.Decrease(index) })
}

func (e *Engine) RemoveLine(userID int64, index int) (CartView, error) {
	return e.mutateCart(userID, func(c *Cart) error { return c.Remove(index) })
}

func (e *Engine) ClearCart(userID int64) (CartView, error) {
	return e.mutateCart(userID, func(c *Cart) error {
		c.Clear()
		return nil
	})
}

func (e *Engine) mutateCart(userID int64, fn func(c *Cart) error) (CartView, error) {
	s := e.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateIdle {
		return CartView{}, ErrCheckoutInFlight
	}
	if err := fn(s.cart); err != nil {
		return CartView{}, err
	}
	return buildCartView(s.cart), nil
}

// チェックアウトの結果。
// SplitRequired=true のときは注文はまだ書かれておらず、
// ConfirmSplit か CancelSplit を待っている。
type CheckoutResult struct {
	SplitRequired  bool     `json:"split_required"`
	ItemCount      int      `json:"item_count,omitempty"`
	EstimatedBytes int      `json:"estimated_bytes,omitempty"`
	Receipt        *Receipt `json:"receipt,omitempty"`
}

// レシート。分割注文の場合 Items は最初のチャンクのみ。
type Receipt struct {
	OrderIDs    []int64        `json:"order_ids"`
	Items       []CartItemView `json:"items"`
	Subtotal    int64          `json:"subtotal"`
	Tax         int64          `json:"tax"`
	Total       int64          `json:"total"`
	AmountPaid  int64          `json:"amount_paid"`
	Change      int64          `json:"change"`
	SplitOrder  bool           `json:"split_order"`
	TotalChunks int            `json:"total_chunks,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Checkout はカート全体のチェックアウトを開始する。
// 見積もりサイズがしきい値に達した場合は書き込みをせず分割確認に入る。
func (e *Engine) Checkout(ctx context.Context, userID int64, amountPaid int64) (CheckoutResult, error) {
	s := e.session(userID)

	s.mu.Lock()
	if s.state != stateIdle {
		s.mu.Unlock()
		return CheckoutResult{}, ErrCheckoutInFlight
	}
	if s.cart.Len() == 0 {
		s.mu.Unlock()
		return CheckoutResult{}, ErrEmptyCart
	}

	lines := s.cart.Lines()
	subtotal := s.cart.Subtotal()
	tax := s.cart.Tax()
	total := s.cart.Total()

	size := estimateOrderBytes(lines, subtotal, tax, total, e.now())
	if size >= sizeThresholdBytes {
		// 分割はユーザーの明示的な同意が要る
		s.state = stateConfirmingSplit
		s.mu.Unlock()
		e.log.Info("order exceeds size budget, awaiting split confirmation",
			"user_id", userID, "items", len(lines), "estimated_bytes", size)
		return CheckoutResult{SplitRequired: true, ItemCount: len(lines), EstimatedBytes: size}, nil
	}

	s.state = stateProcessing
	s.mu.Unlock()

	receipt, err := e.processNormal(ctx, s, userID, lines, subtotal, tax, total, amountPaid)
	return e.finish(s, receipt, err)
}

// 成功ならカートを空にしてIdleへ。失敗ならカートを残してIdleへ。
func (e *Engine) finish(s *session, receipt *Receipt, err error) (CheckoutResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = stateIdle
	if err != nil {
		return CheckoutResult{}, err
	}
	s.cart.Clear()
	return CheckoutResult{Receipt: receipt}, nil
}

func (e *Engine) processNormal(ctx context.Context, s *session, userID int64, lines []Line, subtotal int64, tax int64, total int64, amountPaid int64) (*Receipt, error) {
	now := e.now()

	orderID, err := e.orders.Create(ctx, model.Order{
		UserID:    userID,
		Status:    model.OrderStatusCompleted,
		Subtotal:  subtotal,
		Tax:       tax,
		Total:     total,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, e.writeError("order", nil, err, userID)
	}

	if err := e.orderItems.CreateBulk(ctx, orderID, toOrderItems(lines, now)); err != nil {
		return nil, e.writeError("order items", []int64{orderID}, err, userID)
	}

	if failures := e.reconcileStock(ctx, s, lines); len(failures) > 0 {
		return nil, e.writeError("stock update", []int64{orderID}, joinStockFailures(failures), userID)
	}

	e.invalidateProductCache(ctx)

	return &Receipt{
		OrderIDs:   []int64{orderID},
		Items:      viewItems(lines),
		Subtotal:   subtotal,
		Tax:        tax,
		Total:      total,
		AmountPaid: amountPaid,
		Change:     amountPaid - total,
		CreatedAt:  now,
	}, nil
}

// reconcileStock はチャンク内の各商品について
// 新在庫 = スナップショット在庫 - カート数量 を書き戻す。
// 商品ごとに独立なので並行に発行する。部分成功はあり得る
// （失敗した商品だけが返り、成功分は書き込まれたまま）。
func (e *Engine) reconcileStock(ctx context.Context, s *session, lines []Line) []StockFailure {
	type outcome struct {
		newStock int64
		err      error
	}
	outcomes := make([]outcome, len(lines))

	var wg sync.WaitGroup
	for i, ln := range lines {
		wg.Add(1)
		go func(i int, ln Line) {
			defer wg.Done()
			stock, ok := s.cart.StockSnapshot(ln.ProductID)
			if !ok {
				// スナップショットがない商品に 0 を書くわけにはいかない。
				// 書き込みを行わず失敗として報告する
				outcomes[i] = outcome{err: errMissingStockSnapshot}
				return
			}
			newStock := stock - ln.Quantity
			if err := e.inventory.SetStock(ctx, ln.ProductID, newStock); err != nil {
				outcomes[i] = outcome{err: err}
				return
			}
			outcomes[i] = outcome{newStock: newStock}
		}(i, ln)
	}
	wg.Wait()

	var failures []StockFailure
	for i, ln := range lines {
		if outcomes[i].err != nil {
			e.log.Error("stock update failed",
				"product_id", ln.ProductID, "err", outcomes[i].err)
			failures = append(failures, StockFailure{ProductID: ln.ProductID, Err: outcomes[i].err})
			continue
		}
		// スナップショットも新しい値に合わせる（再取得なしで画面へ反映できる）
		s.cart.setStockSnapshot(ln.ProductID, outcomes[i].newStock)
	}
	return failures
}

func (e *Engine) writeError(phase string, committed []int64, err error, userID int64) error {
	e.log.Error("checkout write failed",
		"phase", phase, "user_id", userID, "committed_orders", committed, "err", err)
	return &WriteError{Phase: phase, Committed: committed, Err: err}
}

// キャッシュ無効化はベストエフォート（失敗してもチェックアウトは成功扱い）
func (e *Engine) invalidateProductCache(ctx context.Context) {
	if e.productCache == nil {
		return
	}
	if err := e.productCache.Invalidate(ctx); err != nil {
		e.log.Warn("product cache invalidation failed", "err", err)
	}
}

func toOrderItems(lines []Line, now time.Time) []model.OrderItem {
	items := make([]model.OrderItem, 0, len(lines))
	for _, ln := range lines {
		items = append(items, model.OrderItem{
			ProductID:           ln.ProductID,
			ProductNameSnapshot: ln.Name,
			UnitPriceSnapshot:   ln.UnitPrice,
			Quantity:            ln.Quantity,
			CreatedAt:           now,
		})
	}
	return items
}

func viewItems(lines []Line) []CartItemView {
	items := make([]CartItemView, 0, len(lines))
	for _, ln := range lines {
		items = append(items, CartItemView{
			ProductID: ln.ProductID,
			Name:      ln.Name,
			UnitPrice: ln.UnitPrice,
			Quantity:  ln.Quantity,
			LineTotal: ln.UnitPrice * ln.Quantity,
		})
	}
	return items
}

package pos

import (
	"context"
	"fmt"

	"app/internal/domain/model"
)

// ConfirmSplit は分割チェックアウトを実行する（分割確認待ちのときだけ）。
// チャンクはカート順に書き、各チャンクの注文書き込みが成功してから
// そのチャンク分の在庫を減算する。途中で失敗したら残りのチャンクは
// 書かずに中断し、確定済みの注文IDをエラーで報告する。
func (e *Engine) ConfirmSplit(ctx context.Context, userID int64, amountPaid int64) (CheckoutResult, error) {
	s := e.session(userID)

	s.mu.Lock()
	if s.state != stateConfirmingSplit {
		s.mu.Unlock()
		return CheckoutResult{}, ErrNoSplitPending
	}
	s.state = stateProcessing

	lines := s.cart.Lines()
	total := s.cart.Total()
	subtotal := s.cart.Subtotal()
	tax := s.cart.Tax()
	s.mu.Unlock()

	receipt, err := e.processSplit(ctx, s, userID, lines, subtotal, tax, total, amountPaid)
	return e.finish(s, receipt, err)
}

// CancelSplit は分割確認を取り下げてカートをそのまま残す。
func (e *Engine) CancelSplit(userID int64) error {
	s := e.session(userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateConfirmingSplit {
		return ErrNoSplitPending
	}
	s.state = stateIdle
	return nil
}

func (e *Engine) processSplit(ctx context.Context, s *session, userID int64, lines []Line, subtotal int64, tax int64, total int64, amountPaid int64) (*Receipt, error) {
	chunks := chunkLines(lines, maxChunkItems)
	now := e.now()

	orderIDs := make([]int64, 0, len(chunks))

	for i, chunk := range chunks {
		chunkSubtotal := sumLines(chunk)
		chunkTax := chunkSubtotal * e.taxRatePercent / 100

		orderID, err := e.orders.Create(ctx, model.Order{
			UserID:       userID,
			Status:       model.OrderStatusCompleted,
			Subtotal:     chunkSubtotal,
			Tax:          chunkTax,
			Total:        chunkSubtotal + chunkTax,
			IsSplitOrder: true,
			ChunkIndex:   i + 1,
			TotalChunks:  len(chunks),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return nil, e.writeError(chunkPhase("order", i, len(chunks)), orderIDs, err, userID)
		}
		orderIDs = append(orderIDs, orderID)

		if err := e.orderItems.CreateBulk(ctx, orderID, toOrderItems(chunk, now)); err != nil {
			return nil, e.writeError(chunkPhase("order items", i, len(chunks)), orderIDs, err, userID)
		}

		if failures := e.reconcileStock(ctx, s, chunk); len(failures) > 0 {
			return nil, e.writeError(chunkPhase("stock update", i, len(chunks)), orderIDs, joinStockFailures(failures), userID)
		}
	}

	// 全チャンク確定後にだけ、つながりを1件書く
	if _, err := e.relationships.Create(ctx, model.OrderRelationship{
		UserID:      userID,
		OrderIDs:    orderIDs,
		TotalOrders: len(orderIDs),
		TotalAmount: total,
		CreatedAt:   now,
	}); err != nil {
		return nil, e.writeError("order relationship", orderIDs, err, userID)
	}

	e.invalidateProductCache(ctx)
	e.log.Info("split checkout completed",
		"user_id", userID, "orders", len(orderIDs), "total", total)

	// レシートは最初のチャンク分の明細だけ載せる
	return &Receipt{
		OrderIDs:    orderIDs,
		Items:       viewItems(chunks[0]),
		Subtotal:    subtotal,
		Tax:         tax,
		Total:       total,
		AmountPaid:  amountPaid,
		Change:      amountPaid - total,
		SplitOrder:  true,
		TotalChunks: len(chunks),
		CreatedAt:   now,
	}, nil
}

// chunkLines は明細をカート順のまま maxItems 個ずつに区切る。
func chunkLines(lines []Line, maxItems int) [][]Line {
	var chunks [][]Line
	for i := 0; i < len(lines); i += maxItems {
		end := i + maxItems
		if end > len(lines) {
			end = len(lines)
		}
		chunks = append(chunks, lines[i:end])
	}
	return chunks
}

func sumLines(lines []Line) int64 {
	var total int64 = 0
	for _, ln := range lines {
		total += ln.UnitPrice * ln.Quantity
	}
	return total
}

func chunkPhase(phase string, index int, total int) string {
	return fmt.Sprintf("%s (chunk %d/%d)", phase, index+1, total)
}

package pos

import (
	"encoding/json"
	"time"

	"app/internal/domain/model"
)

const (
	// バックエンドが1注文ドキュメントに許す上限バイト数
	maxOrderBytes = 1_048_576

	// 判定に使うしきい値。バックエンドが付け足すメタデータの分だけ
	// 上限より低くとる（約86%）。
	sizeThresholdBytes = 900_000

	// 分割時の1注文あたりの明細数上限。
	// 明細のサイズがほぼ均一である前提の近似で、チャンクごとの
	// バイト数は測り直さない。
	maxChunkItems = 30
)

// 保存用に最小化した明細（画像などの大きいフィールドは落とす）
type minimizedItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

type orderPayload struct {
	Items     []minimizedItem `json:"items"`
	Subtotal  int64           `json:"subtotal"`
	Tax       int64           `json:"tax"`
	Total     int64           `json:"total"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

func minimizeLines(lines []Line) []minimizedItem {
	items := make([]minimizedItem, 0, len(lines))
	for _, ln := range lines {
		items = append(items, minimizedItem{
			ID:       ln.ProductID,
			Name:     ln.Name,
			Price:    ln.UnitPrice,
			Quantity: ln.Quantity,
		})
	}
	return items
}

// estimateOrderBytes は注文をそのまま保存した場合のシリアライズ後サイズを見積もる。
func estimateOrderBytes(lines []Line, subtotal int64, tax int64, total int64, now time.Time) int {
	payload := orderPayload{
		Items:     minimizeLines(lines),
		Subtotal:  subtotal,
		Tax:       tax,
		Total:     total,
		Status:    string(model.OrderStatusCompleted),
		CreatedAt: now,
	}
	// orderPayloadは数値・文字列・time.Timeだけの平坦な構造体なので
	// Marshalは失敗しない
	data, _ := json.Marshal(payload)
	return len(data)
}

package pos

import (
	"app/internal/domain/model"
)

// カートの1明細
type Line struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
}

// チェックアウトセッションのカート。
// 数量は常に 1 <= Quantity <= 在庫スナップショット を守る（ミューテーションごとに検査）。
// ストアには一切触らない。
type Cart struct {
	taxRatePercent int64
	lines          []Line
	stock          map[int64]int64 // 商品ごとの在庫スナップショット
}

func NewCart(taxRatePercent int64) *Cart {
	return &Cart{
		taxRatePercent: taxRatePercent,
		lines:          []Line{},
		stock:          map[int64]int64{},
	}
}

// AddLine は商品をカートに追加する（同一商品は数量加算）。
// 検証を通った追加だけがスナップショットを最新の値へ更新する。
// 拒否したときに更新してしまうと、既存明細の数量がスナップショットを
// 超えたままになり、チェックアウトで負の在庫を書いてしまう。
func (c *Cart) AddLine(p model.Product, qty int64) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}

	for i := range c.lines {
		if c.lines[i].ProductID == p.ID {
			if c.lines[i].Quantity+qty > p.Stock {
				return ErrInsufficientStock
			}
			c.stock[p.ID] = p.Stock
			c.lines[i].Quantity += qty
			return nil
		}
	}

	if p.Stock == 0 {
		return ErrOutOfStock
	}
	if qty > p.Stock {
		return ErrInsufficientStock
	}

	c.stock[p.ID] = p.Stock
	c.lines = append(c.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  qty,
	})
	return nil
}

// Increase は明細の数量を+1する（在庫スナップショットが上限）。
func (c *Cart) Increase(index int) error {
	if index < 0 || index >= len(c.lines) {
		return ErrLineNotFound
	}
	ln := &c.lines[index]
	if ln.Quantity+1 > c.stock[ln.ProductID] {
		return ErrInsufficientStock
	}
	ln.Quantity++
	return nil
}

// Decrease は明細の数量を-1する。1を下回る場合は明細ごと削除。
func (c *Cart) Decrease(index int) error {
	if index < 0 || index >= len(c.lines) {
		return ErrLineNotFound
	}
	if c.lines[index].Quantity > 1 {
		c.lines[index].Quantity--
		return nil
	}
	return c.Remove(index)
}

func (c *Cart) Remove(index int) error {
	if index < 0 || index >= len(c.lines) {
		return ErrLineNotFound
	}
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
	return nil
}

func (c *Cart) Clear() {
	c.lines = []Line{}
	c.stock = map[int64]int64{}
}

func (c *Cart) Len() int {
	return len(c.lines)
}

// Lines は明細のコピーを返す（カート順）。
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// StockSnapshot は商品の在庫スナップショットを返す。
func (c *Cart) StockSnapshot(productID int64) (int64, bool) {
	s, ok := c.stock[productID]
	return s, ok
}

func (c *Cart) setStockSnapshot(productID int64, stock int64) {
	c.stock[productID] = stock
}

func (c *Cart) Subtotal() int64 {
	var total int64 = 0
	for _, ln := range c.lines {
		total += ln.UnitPrice * ln.Quantity
	}
	return total
}

// Tax は小計に対する税額（整数%、切り捨て）。
func (c *Cart) Tax() int64 {
	return c.Subtotal() * c.taxRatePercent / 100
}

func (c *Cart) Total() int64 {
	return c.Subtotal() + c.Tax()
}

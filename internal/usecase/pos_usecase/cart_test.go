package pos

import (
	"testing"

	"app/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

func TestCartAddLineMergesSameProduct(t *testing.T) {
	c := NewCart(0)
	p := model.Product{ID: 1, Name: "コーヒー", Price: 300, Stock: 10}

	assert.NoError(t, c.AddLine(p, 2))
	assert.NoError(t, c.AddLine(p, 3))

	lines := c.Lines()
	assert.Len(t, lines, 1)
	assert.Equal(t, int64(5), lines[0].Quantity)
}

func TestCartAddLineRejectsZeroStock(t *testing.T) {
	c := NewCart(0)
	p := model.Product{ID: 1, Name: "売り切れ", Price: 100, Stock: 0}

	assert.ErrorIs(t, c.AddLine(p, 1), ErrOutOfStock)
	assert.Equal(t, 0, c.Len())
}

func TestCartAddLineRejectsOverStockSnapshot(t *testing.T) {
	c := NewCart(0)
	p := model.Product{ID: 1, Name: "パン", Price: 150, Stock: 3}

	assert.NoError(t, c.AddLine(p, 2))
	// 2 + 2 > 3
	assert.ErrorIs(t, c.AddLine(p, 2), ErrInsufficientStock)

	lines := c.Lines()
	assert.Equal(t, int64(2), lines[0].Quantity)
}

func TestCartRejectedReAddKeepsSnapshotConsistent(t *testing.T) {
	c := NewCart(0)

	assert.NoError(t, c.AddLine(model.Product{ID: 1, Name: "パン", Price: 150, Stock: 5}, 5))

	// カタログの在庫が減った後の再追加は拒否され、スナップショットは動かない
	assert.ErrorIs(t, c.AddLine(model.Product{ID: 1, Name: "パン", Price: 150, Stock: 2}, 1), ErrInsufficientStock)

	snapshot, ok := c.StockSnapshot(1)
	assert.True(t, ok)
	assert.Equal(t, int64(5), snapshot)

	// 数量 <= スナップショット が保たれている
	assert.Equal(t, int64(5), c.Lines()[0].Quantity)
}

func TestCartAddLineRejectsInvalidQuantity(t *testing.T) {
	c := NewCart(0)
	p := model.Product{ID: 1, Name: "パン", Price: 150, Stock: 3}

	assert.ErrorIs(t, c.AddLine(p, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.AddLine(p, -1), ErrInvalidQuantity)
}

func TestCartIncreaseStopsAtSnapshot(t *testing.T) {
	c := NewCart(0)
	p := model.Product{ID: 1, Name: "牛乳", Price: 200, Stock: 2}

	assert.NoError(t, c.AddLine(p, 2))
	assert.ErrorIs(t, c.Increase(0), ErrInsufficientStock)
}

func TestCartDecreaseRemovesLineAtOne(t *testing.T) {
	c := NewCart(0)
	p := model.Product{ID: 1, Name: "牛乳", Price: 200, Stock: 5}

	assert.NoError(t, c.AddLine(p, 1))
	assert.NoError(t, c.Decrease(0))
	assert.Equal(t, 0, c.Len())
}

func TestCartLineIndexOutOfRange(t *testing.T) {
	c := NewCart(0)

	assert.ErrorIs(t, c.Increase(0), ErrLineNotFound)
	assert.ErrorIs(t, c.Decrease(3), ErrLineNotFound)
	assert.ErrorIs(t, c.Remove(-1), ErrLineNotFound)
}

func TestCartTotalsWithTaxRate(t *testing.T) {
	c := NewCart(12)

	assert.NoError(t, c.AddLine(model.Product{ID: 1, Name: "A", Price: 100, Stock: 10}, 2))
	assert.NoError(t, c.AddLine(model.Product{ID: 2, Name: "B", Price: 50, Stock: 5}, 1))

	assert.Equal(t, int64(250), c.Subtotal())
	assert.Equal(t, int64(30), c.Tax())
	assert.Equal(t, int64(280), c.Total())
}

func TestCartTotalsAreIdempotent(t *testing.T) {
	c := NewCart(10)
	assert.NoError(t, c.AddLine(model.Product{ID: 1, Name: "A", Price: 333, Stock: 10}, 3))

	first := c.Total()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, c.Total())
	}
}

func TestCartClearResetsLinesAndSnapshot(t *testing.T) {
	c := NewCart(0)
	assert.NoError(t, c.AddLine(model.Product{ID: 1, Name: "A", Price: 100, Stock: 10}, 2))

	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, int64(0), c.Subtotal())
	_, ok := c.StockSnapshot(1)
	assert.False(t, ok)
}

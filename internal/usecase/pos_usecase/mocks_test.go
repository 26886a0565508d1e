package pos

import (
	"context"
	"io"
	"log/slog"

	"app/internal/domain/model"
	"app/internal/repository"

	"github.com/stretchr/testify/mock"
)

type productRepoMock struct {
	mock.Mock
}

func (m *productRepoMock) ListAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *productRepoMock) List(ctx context.Context, q repository.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]model.Product), args.Get(1).(int64), args.Error(2)
}

func (m *productRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *productRepoMock) FindByBarcode(ctx context.Context, barcode string) (model.Product, error) {
	args := m.Called(ctx, barcode)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *productRepoMock) ListLowStock(ctx context.Context, threshold int64) ([]model.Product, error) {
	args := m.Called(ctx, threshold)
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *productRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *productRepoMock) Update(ctx context.Context, p model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *productRepoMock) SoftDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type inventoryRepoMock struct {
	mock.Mock
}

func (m *inventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	return m.Called(ctx, productID, newStock).Error(0)
}

func (m *inventoryRepoMock) SetStockWithAdjustment(ctx context.Context, userID int64, productID int64, newStock int64, reason string) error {
	return m.Called(ctx, userID, productID, newStock, reason).Error(0)
}

func (m *inventoryRepoMock) IncreaseStockWithAdjustment(ctx context.Context, userID int64, productID int64, qty int64, reason string) error {
	return m.Called(ctx, userID, productID, qty, reason).Error(0)
}

type orderRepoMock struct {
	mock.Mock
}

func (m *orderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *orderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(model.Order), args.Error(1)
}

func (m *orderRepoMock) ListByUserID(ctx context.Context, userID int64, f repository.OrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, f)
	return args.Get(0).([]model.Order), args.Get(1).(int64), args.Error(2)
}

type orderItemRepoMock struct {
	mock.Mock
}

func (m *orderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	return m.Called(ctx, orderID, items).Error(0)
}

func (m *orderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]model.OrderItem), args.Error(1)
}

type relationshipRepoMock struct {
	mock.Mock
}

func (m *relationshipRepoMock) Create(ctx context.Context, rel model.OrderRelationship) (int64, error) {
	args := m.Called(ctx, rel)
	return args.Get(0).(int64), args.Error(1)
}

func (m *relationshipRepoMock) FindByOrderID(ctx context.Context, userID int64, orderID int64) (model.OrderRelationship, bool, error) {
	args := m.Called(ctx, userID, orderID)
	return args.Get(0).(model.OrderRelationship), args.Bool(1), args.Error(2)
}

// テスト用の土台一式
type engineMocks struct {
	products      *productRepoMock
	inventory     *inventoryRepoMock
	orders        *orderRepoMock
	orderItems    *orderItemRepoMock
	relationships *relationshipRepoMock
}

func newTestEngine(taxRatePercent int64) (*Engine, *engineMocks) {
	m := &engineMocks{
		products:      &productRepoMock{},
		inventory:     &inventoryRepoMock{},
		orders:        &orderRepoMock{},
		orderItems:    &orderItemRepoMock{},
		relationships: &relationshipRepoMock{},
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := NewEngine(m.products, m.inventory, m.orders, m.orderItems, m.relationships, nil, log, taxRatePercent)
	return e, m
}

func (m *engineMocks) assertExpectations(t mock.TestingT) {
	m.products.AssertExpectations(t)
	m.inventory.AssertExpectations(t)
	m.orders.AssertExpectations(t)
	m.orderItems.AssertExpectations(t)
	m.relationships.AssertExpectations(t)
}

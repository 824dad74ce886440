package service

import (
	"context"

	"greenkart/internal/gateway"
	"greenkart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of repository.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	args := m.Called(ctx, tx, items)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateShippingDetail(ctx context.Context, tx pgx.Tx, detail *model.ShippingDetail) error {
	args := m.Called(ctx, tx, detail)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, *model.ShippingDetail, error) {
	args := m.Called(ctx, id)
	var order *model.Order
	var items []model.OrderItem
	var detail *model.ShippingDetail
	if args.Get(0) != nil {
		order = args.Get(0).(*model.Order)
	}
	if args.Get(1) != nil {
		items = args.Get(1).([]model.OrderItem)
	}
	if args.Get(2) != nil {
		detail = args.Get(2).(*model.ShippingDetail)
	}
	return order, items, detail, args.Error(3)
}

func (m *MockOrderRepository) GetBySessionID(ctx context.Context, sessionID string) (*model.Order, []model.OrderItem, error) {
	args := m.Called(ctx, sessionID)
	var order *model.Order
	var items []model.OrderItem
	if args.Get(0) != nil {
		order = args.Get(0).(*model.Order)
	}
	if args.Get(1) != nil {
		items = args.Get(1).([]model.OrderItem)
	}
	return order, items, args.Error(2)
}

func (m *MockOrderRepository) GetStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID) (model.OrderStatus, error) {
	args := m.Called(ctx, tx, id)
	return args.Get(0).(model.OrderStatus), args.Error(1)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListAll(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) SetPaymentURL(ctx context.Context, id uuid.UUID, paymentURL string) error {
	args := m.Called(ctx, id, paymentURL)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOrderRepository) TransitionStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from []model.OrderStatus, to model.OrderStatus, markStockApplied bool) (bool, error) {
	args := m.Called(ctx, tx, id, from, to, markStockApplied)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of repository.ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) (int, error) {
	args := m.Called(ctx, tx, productID, quantity)
	return args.Int(0), args.Error(1)
}

// MockCartStore is a mock implementation of cart.Store.
type MockCartStore struct {
	mock.Mock
}

func (m *MockCartStore) Get(ctx context.Context, userID string) (*model.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartStore) Put(ctx context.Context, cart *model.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *MockCartStore) Clear(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockGatewayClient is a mock implementation of gateway.Client.
type MockGatewayClient struct {
	mock.Mock
}

func (m *MockGatewayClient) CreateSession(ctx context.Context, req *gateway.SessionRequest) (*gateway.Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Session), args.Error(1)
}

func (m *MockGatewayClient) QueryStatus(ctx context.Context, sessionID string) (*gateway.SessionStatus, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.SessionStatus), args.Error(1)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

package handler

import (
	"context"

	"greenkart/internal/model"
	"greenkart/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCheckoutService is a mock implementation of service.CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) Checkout(ctx context.Context, user model.User, req *model.CheckoutRequest) (*model.OrderResponse, error) {
	args := m.Called(ctx, user, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

// MockOrderService is a mock implementation of service.OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, id uuid.UUID, userID string) (*model.OrderResponse, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *MockOrderService) ListAll(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) OverrideStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.OrderResponse, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *MockOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockReconciliationService is a mock implementation of service.ReconciliationService.
type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) Reconcile(ctx context.Context, sessionRef, gatewayStatus, fraudFlag string) (*service.ReconciliationResult, error) {
	args := m.Called(ctx, sessionRef, gatewayStatus, fraudFlag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReconciliationResult), args.Error(1)
}

func (m *MockReconciliationService) CheckStatus(ctx context.Context, orderID uuid.UUID, userID string) (*model.OrderResponse, error) {
	args := m.Called(ctx, orderID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

package service

import (
	"context"
	"testing"

	"greenkart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOrderService_GetByID_OwnerOnly(t *testing.T) {
	ctx := context.Background()
	mockOrderRepo := new(MockOrderRepository)
	svc := NewOrderService(mockOrderRepo, zerolog.Nop())

	order := pendingOrder()
	mockOrderRepo.On("GetByID", ctx, order.ID).Return(order, orderItems(order.ID), (*model.ShippingDetail)(nil), nil)

	resp, err := svc.GetByID(ctx, order.ID, testUser.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, resp.ID)
	require.Len(t, resp.Items, 2)

	resp, err = svc.GetByID(ctx, order.ID, "someone-else")
	assert.Nil(t, resp)
	assert.Equal(t, model.ErrOrderNotFound, err)
}

func TestOrderService_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	mockOrderRepo := new(MockOrderRepository)
	svc := NewOrderService(mockOrderRepo, zerolog.Nop())

	id := uuid.New()
	mockOrderRepo.On("GetByID", ctx, id).Return(nil, nil, nil, nil)

	resp, err := svc.GetByID(ctx, id, testUser.ID)
	assert.Nil(t, resp)
	assert.Equal(t, model.ErrOrderNotFound, err)
}

func TestOrderService_ListByUser(t *testing.T) {
	ctx := context.Background()
	mockOrderRepo := new(MockOrderRepository)
	svc := NewOrderService(mockOrderRepo, zerolog.Nop())

	orders := []model.Order{*pendingOrder(), *pendingOrder()}
	mockOrderRepo.On("ListByUser", ctx, testUser.ID).Return(orders, nil)

	got, err := svc.ListByUser(ctx, testUser.ID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestOrderService_OverrideStatus(t *testing.T) {
	ctx := context.Background()
	mockOrderRepo := new(MockOrderRepository)
	svc := NewOrderService(mockOrderRepo, zerolog.Nop())

	order := pendingOrder()
	cancelled := *order
	cancelled.Status = model.OrderStatusCancelled

	mockOrderRepo.On("GetByID", ctx, order.ID).Return(order, orderItems(order.ID), (*model.ShippingDetail)(nil), nil).Once()
	mockOrderRepo.On("UpdateStatus", ctx, order.ID, model.OrderStatusCancelled).Return(nil)
	mockOrderRepo.On("GetByID", ctx, order.ID).Return(&cancelled, orderItems(order.ID), (*model.ShippingDetail)(nil), nil).Once()

	resp, err := svc.OverrideStatus(ctx, order.ID, model.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, resp.Status)
	mockOrderRepo.AssertExpectations(t)
}

func TestOrderService_OverrideStatus_InvalidStatus(t *testing.T) {
	ctx := context.Background()
	mockOrderRepo := new(MockOrderRepository)
	svc := NewOrderService(mockOrderRepo, zerolog.Nop())

	resp, err := svc.OverrideStatus(ctx, uuid.New(), model.OrderStatus("SHIPPED"))
	assert.Nil(t, resp)
	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeValidation, domainErr.Code)
	mockOrderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_Delete_PaidIsRefused(t *testing.T) {
	ctx := context.Background()
	mockOrderRepo := new(MockOrderRepository)
	svc := NewOrderService(mockOrderRepo, zerolog.Nop())

	order := pendingOrder()
	order.Status = model.OrderStatusPaid
	mockOrderRepo.On("GetByID", ctx, order.ID).Return(order, orderItems(order.ID), (*model.ShippingDetail)(nil), nil)

	err := svc.Delete(ctx, order.ID)
	assert.Equal(t, model.ErrOrderNotDeletable, err)
	mockOrderRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestOrderService_Delete(t *testing.T) {
	ctx := context.Background()
	mockOrderRepo := new(MockOrderRepository)
	svc := NewOrderService(mockOrderRepo, zerolog.Nop())

	order := pendingOrder()
	order.Status = model.OrderStatusFailed
	mockOrderRepo.On("GetByID", ctx, order.ID).Return(order, orderItems(order.ID), (*model.ShippingDetail)(nil), nil)
	mockOrderRepo.On("Delete", ctx, order.ID).Return(nil)

	require.NoError(t, svc.Delete(ctx, order.ID))
	mockOrderRepo.AssertExpectations(t)
}

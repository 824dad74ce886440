package service

import (
	"context"
	"fmt"

	"greenkart/internal/model"
	"greenkart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	logger    zerolog.Logger
}

// NewOrderService creates a new order read/admin service.
func NewOrderService(orderRepo repository.OrderRepository, logger zerolog.Logger) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// ListByUser retrieves the caller's orders, newest first.
func (s *orderService) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves one order with items and shipping detail, owner-only.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID, userID string) (*model.OrderResponse, error) {
	order, items, shipping, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || order.UserID != userID {
		return nil, model.ErrOrderNotFound
	}

	return &model.OrderResponse{Order: *order, Items: items, ShippingDetail: shipping}, nil
}

// ListAll retrieves every order (admin).
func (s *orderService) ListAll(ctx context.Context) ([]model.Order, error) {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// OverrideStatus force-sets an order status. This is the audited manual
// escape hatch; it bypasses the reconciliation state machine on purpose and
// never touches stock.
func (s *orderService) OverrideStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.OrderResponse, error) {
	if !status.Valid() {
		return nil, model.NewDomainError(model.ErrCodeValidation, fmt.Sprintf("invalid order status: %s", status))
	}

	order, _, _, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to override order status: %w", err)
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("order_number", order.OrderNumber).
		Str("from_status", string(order.Status)).
		Str("to_status", string(status)).
		Msg("admin status override applied")

	order, items, shipping, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	return &model.OrderResponse{Order: *order, Items: items, ShippingDetail: shipping}, nil
}

// Delete removes an order unless it is PAID. A paid order is never deleted
// by this subsystem.
func (s *orderService) Delete(ctx context.Context, id uuid.UUID) error {
	order, _, _, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return model.ErrOrderNotFound
	}

	if order.Status == model.OrderStatusPaid {
		return model.ErrOrderNotDeletable
	}

	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("order_number", order.OrderNumber).
		Str("status", string(order.Status)).
		Int64("total_amount", order.TotalAmount).
		Msg("order deleted")

	return nil
}

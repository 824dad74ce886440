package service

import (
	"context"
	"fmt"

	"greenkart/internal/gateway"
	"greenkart/internal/model"
	"greenkart/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Legal from-states per target. A late settlement may supersede
// FAILED/CANCELLED, so PAID is reachable from any non-PAID state; the
// failure states are reachable only from PENDING. PAID itself is never a
// from-state: once paid, always paid.
var (
	paidFromStates = []model.OrderStatus{
		model.OrderStatusPending,
		model.OrderStatusFailed,
		model.OrderStatusCancelled,
	}
	failedFromStates = []model.OrderStatus{
		model.OrderStatusPending,
	}
)

// reconciliationService implements ReconciliationService. It is the state
// machine that both ingress paths (webhook push, status poll) converge on;
// the exactly-once guarantee comes from the repository's conditional
// update, never from an in-memory status comparison.
type reconciliationService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	gateway     gateway.Client
	logger      zerolog.Logger
}

// NewReconciliationService creates the reconciliation engine.
func NewReconciliationService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	gatewayClient gateway.Client,
	logger zerolog.Logger,
) ReconciliationService {
	return &reconciliationService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		gateway:     gatewayClient,
		logger:      logger.With().Str("service", "reconciliation").Logger(),
	}
}

// Reconcile applies a gateway status tuple to the order identified by
// sessionRef. Duplicate deliveries are no-ops; concurrent deliveries race
// on the conditional update and the loser resolves to Unchanged.
func (s *reconciliationService) Reconcile(ctx context.Context, sessionRef, gatewayStatus, fraudFlag string) (*ReconciliationResult, error) {
	order, items, err := s.orderRepo.GetBySessionID(ctx, sessionRef)
	if err != nil {
		return nil, err
	}
	if order == nil {
		s.logger.Warn().Str("session_ref", sessionRef).Msg("reconcile for unknown order")
		return &ReconciliationResult{Outcome: OutcomeUnknownOrder}, nil
	}

	newStatus := gateway.Classify(gatewayStatus, fraudFlag)

	// PENDING means "no transition": the gateway has not resolved yet,
	// or sent a code we do not recognize.
	if newStatus == model.OrderStatusPending || newStatus == order.Status {
		s.logger.Debug().
			Str("order_id", order.ID.String()).
			Str("status", string(order.Status)).
			Str("gateway_status", gatewayStatus).
			Msg("reconcile is a no-op")
		return &ReconciliationResult{Outcome: OutcomeUnchanged, Status: order.Status, Order: order}, nil
	}

	from := failedFromStates
	markStock := false
	if newStatus == model.OrderStatusPaid {
		from = paidFromStates
		markStock = true
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	// No-op once committed.
	defer func() { _ = tx.Rollback(ctx) }()

	applied, err := s.orderRepo.TransitionStatus(ctx, tx, order.ID, from, newStatus, markStock)
	if err != nil {
		return nil, err
	}

	if !applied {
		// A concurrent caller resolved the order first. Re-read inside
		// the transaction, not from the stale snapshot above.
		current, err := s.orderRepo.GetStatus(ctx, tx, order.ID)
		if err != nil {
			return nil, err
		}

		if current != newStatus {
			// Conflicting signals; the success signal is never
			// overwritten by a later failure.
			s.logger.Warn().
				Str("order_id", order.ID.String()).
				Str("applied_status", string(current)).
				Str("reported_status", string(newStatus)).
				Msg("conflicting reconciliation signals, keeping already-applied status")
		}

		order.Status = current
		return &ReconciliationResult{Outcome: OutcomeUnchanged, Status: current, Order: order}, nil
	}

	if newStatus == model.OrderStatusPaid {
		if err := s.applyStockDecrement(ctx, tx, order, items); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit reconciliation: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("session_ref", sessionRef).
		Str("from_status", string(order.Status)).
		Str("to_status", string(newStatus)).
		Msg("order reconciled")

	order.Status = newStatus
	if markStock {
		order.StockApplied = true
	}
	return &ReconciliationResult{Outcome: OutcomeTransitioned, Status: newStatus, Order: order}, nil
}

// applyStockDecrement runs the exactly-once stock decrement inside the same
// transaction that flipped the order to PAID.
func (s *reconciliationService) applyStockDecrement(ctx context.Context, tx pgx.Tx, order *model.Order, items []model.OrderItem) error {
	for _, item := range items {
		remaining, err := s.productRepo.DecrementStock(ctx, tx, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to decrement stock for %s: %w", item.ProductID, err)
		}
		if remaining < 0 {
			// Overselling between checkout's stock read and another
			// order's decrement is an accepted gap; flag it for manual
			// reconciliation instead of failing the payment.
			s.logger.Warn().
				Str("order_id", order.ID.String()).
				Str("product_id", item.ProductID).
				Int("remaining_stock", remaining).
				Msg("stock went negative, oversell race detected")
		}
	}
	return nil
}

// CheckStatus polls the gateway for the order's session and reconciles.
func (s *reconciliationService) CheckStatus(ctx context.Context, orderID uuid.UUID, userID string) (*model.OrderResponse, error) {
	order, items, shipping, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	// Owner mismatch reads as not found so order IDs cannot be probed.
	if order == nil || order.UserID != userID {
		return nil, model.ErrOrderNotFound
	}

	// A PAID order is terminal and idempotent-target; skip the gateway
	// round trip.
	if order.Status == model.OrderStatusPaid {
		return &model.OrderResponse{Order: *order, Items: items, ShippingDetail: shipping}, nil
	}

	status, err := s.gateway.QueryStatus(ctx, order.ExternalSessionID)
	if err != nil {
		// The stored order is still a valid answer; reconciliation will
		// happen on the next poll or webhook.
		s.logger.Warn().
			Err(err).
			Str("order_id", order.ID.String()).
			Str("session_id", order.ExternalSessionID).
			Msg("gateway status query failed, returning stored order")
		return &model.OrderResponse{Order: *order, Items: items, ShippingDetail: shipping}, nil
	}

	result, err := s.Reconcile(ctx, order.ExternalSessionID, status.TransactionStatus, status.FraudStatus)
	if err != nil {
		return nil, err
	}

	if result.Outcome == OutcomeTransitioned {
		order, items, shipping, err = s.orderRepo.GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if order == nil {
			return nil, model.ErrOrderNotFound
		}
	}

	return &model.OrderResponse{Order: *order, Items: items, ShippingDetail: shipping}, nil
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"greenkart/internal/cart"
	"greenkart/internal/gateway"
	"greenkart/internal/model"
	"greenkart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// checkoutService implements CheckoutService.
type checkoutService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	carts       cart.Store
	gateway     gateway.Client
	logger      zerolog.Logger
}

// NewCheckoutService creates a new checkout orchestrator.
func NewCheckoutService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	carts cart.Store,
	gatewayClient gateway.Client,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		carts:       carts,
		gateway:     gatewayClient,
		logger:      logger.With().Str("service", "checkout").Logger(),
	}
}

// Checkout creates an order from the user's cart, persists it atomically
// with its item snapshots and shipping detail, then obtains a payment
// session. The cart is cleared only after the session is durably recorded,
// so a crash in between leaves both the cart and the pending order
// reconstructable.
func (s *checkoutService) Checkout(ctx context.Context, user model.User, req *model.CheckoutRequest) (*model.OrderResponse, error) {
	if req == nil {
		return nil, model.NewDomainError(model.ErrCodeValidation, "checkout request is nil")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	userCart, err := s.carts.Get(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if userCart.Empty() {
		return nil, model.ErrEmptyCart
	}

	products, err := s.loadProducts(ctx, userCart)
	if err != nil {
		return nil, err
	}

	// Stock sufficiency is a read, not a hold. Two concurrent checkouts
	// can both pass this check on the last unit; the window is accepted
	// and surfaces later as a logged oversell during reconciliation.
	for _, line := range userCart.Items {
		product := products[line.ProductID]
		if product.Stock < line.Quantity {
			s.logger.Warn().
				Str("user_id", user.ID).
				Str("product_id", product.ID).
				Int("stock", product.Stock).
				Int("requested", line.Quantity).
				Msg("insufficient stock at checkout")
			return nil, model.NewInsufficientStockError(product.Name, product.Stock, line.Quantity)
		}
	}

	now := time.Now()
	order := &model.Order{
		ID:                uuid.New(),
		UserID:            user.ID,
		OrderNumber:       newOrderNumber(now, user.ID),
		ExternalSessionID: newSessionID(now),
		Status:            model.OrderStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	items := make([]model.OrderItem, len(userCart.Items))
	for i, line := range userCart.Items {
		product := products[line.ProductID]
		items[i] = model.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    line.Quantity,
			Subtotal:    product.Price * int64(line.Quantity),
		}
		order.TotalAmount += items[i].Subtotal
	}

	notes := req.Notes
	shipping := &model.ShippingDetail{
		ID:            uuid.New(),
		OrderID:       order.ID,
		RecipientName: req.RecipientName,
		PhoneNumber:   req.PhoneNumber,
		Address:       req.Address,
		City:          req.City,
		Province:      req.Province,
		PostalCode:    req.PostalCode,
		Notes:         notes,
	}

	if err := s.persistOrder(ctx, order, items, shipping); err != nil {
		return nil, err
	}

	session, err := s.createSession(ctx, user, order, items)
	if err != nil {
		// The order already carries a durable order number the user may
		// have seen; keep it for audit and mark it FAILED rather than
		// rolling back.
		if updErr := s.orderRepo.UpdateStatus(ctx, order.ID, model.OrderStatusFailed); updErr != nil {
			s.logger.Error().
				Err(updErr).
				Str("order_id", order.ID.String()).
				Msg("failed to mark order FAILED after gateway error")
		}
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Str("session_id", order.ExternalSessionID).
			Msg("payment session creation failed, order marked FAILED")
		return nil, model.ErrGatewayFailure
	}

	if err := s.orderRepo.SetPaymentURL(ctx, order.ID, session.RedirectURL); err != nil {
		return nil, fmt.Errorf("failed to record payment URL: %w", err)
	}
	order.PaymentURL = &session.RedirectURL

	// A failed clear is logged, not fatal: the pending order and the
	// cart can coexist until the next checkout attempt.
	if err := s.carts.Clear(ctx, user.ID); err != nil {
		s.logger.Warn().
			Err(err).
			Str("user_id", user.ID).
			Str("order_id", order.ID.String()).
			Msg("failed to clear cart after checkout")
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Str("session_id", order.ExternalSessionID).
		Int64("total_amount", order.TotalAmount).
		Int("item_count", len(items)).
		Msg("checkout completed")

	return &model.OrderResponse{
		Order:          *order,
		Items:          items,
		ShippingDetail: shipping,
	}, nil
}

// loadProducts fetches and indexes every product referenced by the cart.
func (s *checkoutService) loadProducts(ctx context.Context, userCart *model.Cart) (map[string]model.Product, error) {
	ids := make([]string, len(userCart.Items))
	for i, line := range userCart.Items {
		if line.Quantity <= 0 {
			return nil, model.NewDomainError(model.ErrCodeValidation, "quantity must be greater than zero")
		}
		ids[i] = line.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			s.logger.Warn().Str("product_id", id).Msg("cart references unknown product")
			return nil, model.ErrProductNotFound
		}
	}

	return byID, nil
}

// persistOrder writes order, item snapshots and shipping detail as one
// atomic transaction.
func (s *checkoutService) persistOrder(ctx context.Context, order *model.Order, items []model.OrderItem, shipping *model.ShippingDetail) error {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		return fmt.Errorf("failed to create order items: %w", err)
	}

	if err = s.orderRepo.CreateShippingDetail(ctx, tx, shipping); err != nil {
		return fmt.Errorf("failed to create shipping detail: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

func (s *checkoutService) createSession(ctx context.Context, user model.User, order *model.Order, items []model.OrderItem) (*gateway.Session, error) {
	sessionItems := make([]gateway.SessionItem, len(items))
	for i, item := range items {
		sessionItems[i] = gateway.SessionItem{
			ID:       item.ProductID,
			Price:    item.UnitPrice,
			Quantity: item.Quantity,
			Name:     item.ProductName,
		}
	}

	return s.gateway.CreateSession(ctx, &gateway.SessionRequest{
		SessionID:     order.ExternalSessionID,
		GrossAmount:   order.TotalAmount,
		Items:         sessionItems,
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
	})
}

// newOrderNumber builds the human-facing order number.
func newOrderNumber(now time.Time, userID string) string {
	prefix := userID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), strings.ToUpper(prefix))
}

// newSessionID seeds the gateway session identifier. A uuid fragment keeps
// it unique under concurrent checkouts within the same millisecond.
func newSessionID(now time.Time) string {
	return fmt.Sprintf("PAY-%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}

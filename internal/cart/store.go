package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"greenkart/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Store provides read/clear access to the externally owned cart snapshot.
// Checkout never writes cart lines; Put exists for the collaborator that
// maintains the cart and for seeding tests.
type Store interface {
	// Get retrieves the cart snapshot for a user. A missing key is an
	// empty cart, not an error.
	Get(ctx context.Context, userID string) (*model.Cart, error)

	// Put stores a full cart snapshot.
	Put(ctx context.Context, cart *model.Cart) error

	// Clear removes the user's cart after a successful checkout.
	Clear(ctx context.Context, userID string) error
}

// redisStore implements Store on Redis.
type redisStore struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed cart store.
func NewRedisStore(client *redis.Client, logger zerolog.Logger) Store {
	return &redisStore{
		client: client,
		logger: logger.With().Str("store", "cart").Logger(),
	}
}

func cartKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}

// decodeCart parses a stored cart payload.
func decodeCart(userID string, payload []byte) (*model.Cart, error) {
	var items []model.CartItem
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("failed to decode cart payload: %w", err)
	}
	return &model.Cart{UserID: userID, Items: items}, nil
}

func (s *redisStore) Get(ctx context.Context, userID string) (*model.Cart, error) {
	payload, err := s.client.Get(ctx, cartKey(userID)).Bytes()
	if err == redis.Nil {
		return &model.Cart{UserID: userID}, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to read cart")
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	cart, err := decodeCart(userID, payload)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("corrupt cart payload")
		return nil, err
	}
	return cart, nil
}

func (s *redisStore) Put(ctx context.Context, cart *model.Cart) error {
	payload, err := json.Marshal(cart.Items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := s.client.Set(ctx, cartKey(cart.UserID), payload, 0).Err(); err != nil {
		s.logger.Error().Err(err).Str("user_id", cart.UserID).Msg("failed to store cart")
		return fmt.Errorf("failed to store cart: %w", err)
	}
	return nil
}

func (s *redisStore) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	s.logger.Debug().Str("user_id", userID).Msg("cart cleared")
	return nil
}

package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartKey(t *testing.T) {
	assert.Equal(t, "cart:user-123", cartKey("user-123"))
}

func TestDecodeCart(t *testing.T) {
	cart, err := decodeCart("user-123", []byte(`[{"productId":"P001","quantity":2},{"productId":"P002","quantity":1}]`))
	require.NoError(t, err)

	assert.Equal(t, "user-123", cart.UserID)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, "P001", cart.Items[0].ProductID)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.False(t, cart.Empty())
}

func TestDecodeCart_Empty(t *testing.T) {
	cart, err := decodeCart("user-123", []byte(`[]`))
	require.NoError(t, err)
	assert.True(t, cart.Empty())
}

func TestDecodeCart_Corrupt(t *testing.T) {
	_, err := decodeCart("user-123", []byte(`{not json`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode cart payload")
}

package redis

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxewear/storefront/internal/domain/cart"
)

func TestCodec_RoundTrip(t *testing.T) {
	items := []cart.LineItem{
		{
			ProductID: "p1",
			Name:      "Silk Midi Dress",
			UnitPrice: decimal.RequireFromString("89.99"),
			ImageURL:  "/images/p1.jpg",
			Quantity:  2,
			Size:      "M",
			Color:     "Black",
		},
		{
			ProductID: "p2",
			Name:      "Cotton Tee",
			UnitPrice: decimal.RequireFromString("29.99"),
			Quantity:  1,
		},
	}

	got, err := decodeItems(encodeItems(items))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "p1", got[0].ProductID)
	assert.Equal(t, "Silk Midi Dress", got[0].Name)
	assert.True(t, got[0].UnitPrice.Equal(items[0].UnitPrice), "price survives exactly")
	assert.Equal(t, 2, got[0].Quantity)
	assert.Equal(t, "M", got[0].Size)
	assert.Equal(t, "Black", got[0].Color)
	assert.Empty(t, got[1].Size)
}

func TestCodec_EmptyCart(t *testing.T) {
	got, err := decodeItems(encodeItems(nil))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeItems_Garbage(t *testing.T) {
	_, err := decodeItems([]byte("{not json"))
	assert.Error(t, err)
}

// Unknown fields in older or newer snapshots are skipped, not fatal.
func TestDecodeItems_SkipsUnknownFields(t *testing.T) {
	data := []byte(`[{"productId":"p1","unitPrice":"10","quantity":1,"legacyField":{"a":1}}]`)

	got, err := decodeItems(data)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ProductID)
}

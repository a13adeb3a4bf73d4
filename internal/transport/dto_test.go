package transport

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceOrderResult_TotalIsNumber(t *testing.T) {
	id := uuid.New()
	raw, err := json.Marshal(PlaceOrderResult{OrderID: id, TotalAmount: decimal.RequireFromString("250.50")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"orderId":"`+id.String()+`","total_amount":250.5}`, string(raw))
}

func TestCreateProductRequest_AcceptsNumberOrString(t *testing.T) {
	var fromNumber, fromString CreateProductRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Mask","price":19.99}`), &fromNumber))
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Mask","price":"19.99"}`), &fromString))
	assert.True(t, fromNumber.Price.Equal(fromString.Price))
	assert.Equal(t, "19.99", fromNumber.Price.String())
}

func TestNewPageMeta(t *testing.T) {
	m := NewPageMeta(2, 10, 25)
	assert.EqualValues(t, 3, m.TotalPages)
	assert.True(t, m.HasPrev)
	assert.True(t, m.HasNext)

	last := NewPageMeta(3, 10, 25)
	assert.False(t, last.HasNext)
}

package broker

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// BuildIdempotencyKey fingerprints the order's canonical content. The order is
// flattened to a map before marshalling because encoding/json writes map keys
// in sorted order, which pins the byte representation regardless of struct
// field layout. Identical content always hashes to the identical key, letting
// the broker collapse retried submissions into one effective order.
func BuildIdempotencyKey(order Order) string {
	flat := map[string]any{
		"symbol":        order.Symbol,
		"qty":           order.Qty,
		"side":          order.Side,
		"type":          order.Type,
		"time_in_force": order.TimeInForce,
		"limit_price":   order.LimitPrice,
		"order_class":   order.OrderClass,
		"take_profit":   map[string]any{"limit_price": order.TakeProfit.LimitPrice},
		"stop_loss":     map[string]any{"stop_price": order.StopLoss.StopPrice},
	}
	payload, err := json.Marshal(flat)
	if err != nil {
		// Marshalling a map of strings and ints cannot fail; keep the
		// signature clean.
		panic(err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

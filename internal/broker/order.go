package broker

import "github.com/shopspring/decimal"

// TakeProfit leg of a bracket order.
type TakeProfit struct {
	LimitPrice string `json:"limit_price"`
}

// StopLoss leg of a bracket order.
type StopLoss struct {
	StopPrice string `json:"stop_price"`
}

// Order is the broker-facing bracket order payload. It is a value object:
// content-addressed by its idempotency key and never mutated after build.
type Order struct {
	Symbol        string     `json:"symbol"`
	Qty           int        `json:"qty"`
	Side          string     `json:"side"`
	Type          string     `json:"type"`
	TimeInForce   string     `json:"time_in_force"`
	LimitPrice    string     `json:"limit_price"`
	OrderClass    string     `json:"order_class"`
	TakeProfit    TakeProfit `json:"take_profit"`
	StopLoss      StopLoss   `json:"stop_loss"`
	ClientOrderID string     `json:"client_order_id,omitempty"`
}

// BuildBracketOrder assembles a day-limit bracket entry with attached stop and
// target. Prices are rounded to cents before they touch the wire; raw floats
// never serialize.
func BuildBracketOrder(symbol string, qty int, entry, stop, target float64) Order {
	return Order{
		Symbol:      symbol,
		Qty:         qty,
		Side:        "buy",
		Type:        "limit",
		TimeInForce: "day",
		LimitPrice:  formatPrice(entry),
		OrderClass:  "bracket",
		TakeProfit:  TakeProfit{LimitPrice: formatPrice(target)},
		StopLoss:    StopLoss{StopPrice: formatPrice(stop)},
	}
}

func formatPrice(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}

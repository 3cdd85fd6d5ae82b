package trading

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side int

const (
	SideNone Side = iota
	Buy
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "NONE"
	}
}

// ParseSide parses a side token, case-insensitively. Unrecognized tokens map
// to SideNone rather than failing.
func ParseSide(s string) Side {
	switch strings.ToUpper(s) {
	case "BUY":
		return Buy
	case "SELL":
		return Sell
	default:
		return SideNone
	}
}

// OrderType is the pricing mode of an order.
type OrderType int

const (
	TypeNone OrderType = iota
	Market
	Limit
)

func (t OrderType) String() string {
	switch t {
	case Market:
		return "MARKET"
	case Limit:
		return "LIMIT"
	default:
		return "NONE"
	}
}

// ParseOrderType parses an order type token, case-insensitively.
// Unrecognized tokens map to TypeNone rather than failing.
func ParseOrderType(s string) OrderType {
	switch strings.ToUpper(s) {
	case "MARKET":
		return Market
	case "LIMIT":
		return Limit
	default:
		return TypeNone
	}
}

// Status is the validity state of an order.
//
// The lifecycle is NONE → OPEN → {FILLED, CANCELED}, with CLOSED reachable
// directly for an administrative close without a fill. Except for MatchPrice
// and MatchFill, the status is set by the order-entry collaborator, not moved
// by methods on Order.
type Status int

const (
	StatusNone Status = iota
	Open
	Closed
	Filled
	Canceled
)

func (s Status) String() string {
	switch s {
	case Open:
		return "OPEN"
	case Closed:
		return "CLOSED"
	case Filled:
		return "FILLED"
	case Canceled:
		return "CANCELED"
	default:
		return "NONE"
	}
}

// ParseStatus parses a status token, case-insensitively. Unrecognized tokens
// map to StatusNone rather than failing.
func ParseStatus(s string) Status {
	switch strings.ToUpper(s) {
	case "OPEN":
		return Open
	case "CLOSED":
		return Closed
	case "FILLED":
		return Filled
	case "CANCELED":
		return Canceled
	default:
		return StatusNone
	}
}

// Order is one fill instruction, produced by an external order-entry
// collaborator and consumed read-only by Position.ApplyOrder.
type Order struct {
	ID            string
	Timestamp     int64
	Quantity      uint64
	Symbol        string
	Side          Side
	Filled        uint64
	FilledAtPrice decimal.Decimal
	LimitPrice    decimal.Decimal
	Type          OrderType
	Status        Status
}

// NewOrder returns an empty order with a fresh id and timestamp.
func NewOrder() Order {
	return Order{ID: NewID(), Timestamp: Now()}
}

// MatchPrice checks whether a LIMIT order would have matched within the price
// range of the bar: when low <= limit_price <= high (inclusive on both
// sides), the order fills at its limit price and becomes FILLED.
func (o *Order) MatchPrice(b Bar) {
	if o.Type != Limit {
		return
	}
	if b.Low.LessThanOrEqual(o.LimitPrice) && o.LimitPrice.LessThanOrEqual(b.High) {
		o.FilledAtPrice = o.LimitPrice
		o.Status = Filled
	}
}

// MatchFill is the volume-aware variant of MatchPrice: on a match the filled
// quantity is additionally capped by the bar's volume.
func (o *Order) MatchFill(b Bar) {
	if o.Type != Limit {
		return
	}
	if b.Low.LessThanOrEqual(o.LimitPrice) && o.LimitPrice.LessThanOrEqual(b.High) {
		o.FilledAtPrice = o.LimitPrice
		o.Filled = min(o.Quantity, b.Volume)
		o.Status = Filled
	}
}

// isBlank reports whether every business field is at its zero value, which
// represents "no order yet". The id and timestamp do not count: they are
// assigned at construction.
func (o Order) isBlank() bool {
	return o.Quantity == 0 &&
		o.Symbol == "" &&
		o.Side == SideNone &&
		o.Filled == 0 &&
		o.FilledAtPrice.IsZero() &&
		o.LimitPrice.IsZero() &&
		o.Type == TypeNone &&
		o.Status == StatusNone
}

// Validate checks the order for internal consistency. A blank order is
// vacuously valid. Otherwise the rules are checked in a fixed order and the
// first failure wins.
func (o Order) Validate() error {
	if o.isBlank() {
		return nil
	}
	if o.Quantity == 0 {
		return errors.New("quantity is 0")
	}
	if o.Symbol == "" {
		return errors.New("symbol is empty")
	}
	if o.Side == SideNone {
		return errors.New("side is NONE")
	}
	if o.Type == TypeNone {
		return errors.New("type is NONE")
	}
	if o.Status == StatusNone {
		return errors.New("status is NONE")
	}
	if o.Type == Limit && o.LimitPrice.IsZero() {
		return errors.New("type is LIMIT but limit_price is 0")
	}
	if !o.LimitPrice.IsZero() && o.Type != Limit {
		return errors.New("limit_price is not 0 but type is not LIMIT")
	}
	if o.Filled != 0 && o.FilledAtPrice.IsZero() {
		return errors.New("filled is not 0 but filled_at_price is 0")
	}
	if !o.FilledAtPrice.IsZero() && o.Filled == 0 {
		return errors.New("filled_at_price is not 0 but filled is 0")
	}
	switch o.Status {
	case Open:
		if o.Filled != 0 {
			return errors.New("status is OPEN but filled is not 0")
		}
	case Filled:
		if o.Filled == 0 {
			return errors.New("status is FILLED but filled is 0")
		}
	}
	return nil
}

func (o Order) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("timestamp", o.Timestamp)
	w.Append("quantity", o.Quantity)
	w.Append("symbol", o.Symbol)
	w.Append("side", o.Side.String())
	w.Append("filled", o.Filled)
	w.Append("filled_at_price", o.FilledAtPrice)
	w.Append("limit_price", o.LimitPrice)
	w.Append("id", o.ID)
	w.Append("type", o.Type.String())
	w.Append("status", o.Status.String())
	return w.MarshalJSON()
}

func (o *Order) UnmarshalJSON(data []byte) error {
	// pointer fields so that a missing property is told apart from a zero.
	type jorder struct {
		ID            *string          `json:"id"`
		Timestamp     *int64           `json:"timestamp"`
		Quantity      *uint64          `json:"quantity"`
		Symbol        *string          `json:"symbol"`
		Side          *string          `json:"side"`
		Filled        *uint64          `json:"filled"`
		FilledAtPrice *decimal.Decimal `json:"filled_at_price"`
		LimitPrice    *decimal.Decimal `json:"limit_price"`
		Type          *string          `json:"type"`
		Status        *string          `json:"status"`
	}
	var j jorder
	if err := json.Unmarshal(data, &j); err != nil {
		return fmt.Errorf("cannot parse order: %w", err)
	}
	for name, missing := range map[string]bool{
		"quantity":        j.Quantity == nil,
		"symbol":          j.Symbol == nil,
		"side":            j.Side == nil,
		"filled":          j.Filled == nil,
		"filled_at_price": j.FilledAtPrice == nil,
		"limit_price":     j.LimitPrice == nil,
		"type":            j.Type == nil,
		"status":          j.Status == nil,
	} {
		if missing {
			return fmt.Errorf("cannot parse order: missing property %q", name)
		}
	}
	// id and timestamp are assigned by the order-entry collaborator; when
	// absent a fresh pair is generated.
	if j.ID != nil {
		o.ID = *j.ID
	} else {
		o.ID = NewID()
	}
	if j.Timestamp != nil {
		o.Timestamp = *j.Timestamp
	} else {
		o.Timestamp = Now()
	}
	o.Quantity = *j.Quantity
	o.Symbol = *j.Symbol
	o.Side = ParseSide(*j.Side)
	o.Filled = *j.Filled
	o.FilledAtPrice = *j.FilledAtPrice
	o.LimitPrice = *j.LimitPrice
	o.Type = ParseOrderType(*j.Type)
	o.Status = ParseStatus(*j.Status)
	return nil
}

package trading

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PositionSide is the direction of a held position.
type PositionSide int

const (
	PositionNone PositionSide = iota
	Long
	Short
)

func (s PositionSide) String() string {
	switch s {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	default:
		return "NONE"
	}
}

// ParsePositionSide parses a position side token, case-insensitively.
// Unrecognized tokens map to PositionNone rather than failing.
func ParsePositionSide(s string) PositionSide {
	switch strings.ToUpper(s) {
	case "LONG":
		return Long
	case "SHORT":
		return Short
	default:
		return PositionNone
	}
}

// Position is the cost-basis ledger for one symbol. It consumes validated
// orders and maintains the held quantity, the volume-weighted average entry
// price, and the last computed PnL.
//
// Invariant: Balance == 0 implies Side == PositionNone and EntryPrice == 0;
// a non-NONE side implies Balance > 0.
//
// A Position carries no internal synchronization: callers sharing one across
// goroutines must serialize access themselves, e.g. one lock per symbol.
type Position struct {
	ID           string
	Timestamp    int64
	Balance      uint64
	Symbol       string
	Side         PositionSide
	EntryPrice   decimal.Decimal
	CurrentPrice decimal.Decimal
	PnL          decimal.Decimal
}

// NewPosition returns a fresh flat position with a unique id.
func NewPosition() *Position {
	return &Position{ID: NewID(), Timestamp: Now()}
}

// ApplyResult is the outcome of reconciling one order into a position.
// A rejected order leaves the position untouched; rejection is an expected,
// recoverable outcome, not an error.
type ApplyResult struct {
	Success bool
	Message string
	PnL     decimal.Decimal
}

func rejected(message string) ApplyResult { return ApplyResult{Message: message} }

// CurrentPnL computes the mark-to-market PnL of the position:
//
//	LONG  ⇒ balance·(current − entry)
//	SHORT ⇒ balance·(entry − current)
//	flat  ⇒ 0
//
// Querying the PnL of a non-flat position that was never marked to market is
// a programmer error: it panics rather than silently returning zero. Callers
// must SetCurrentPrice first.
func (p *Position) CurrentPnL() decimal.Decimal {
	if p.CurrentPrice.IsZero() && p.Side != PositionNone {
		panic("position: current price is 0, mark to market before querying PnL")
	}
	switch p.Side {
	case Long:
		return newDecimal(p.Balance).Mul(p.CurrentPrice.Sub(p.EntryPrice))
	case Short:
		return newDecimal(p.Balance).Mul(p.EntryPrice.Sub(p.CurrentPrice))
	default:
		return decimal.Zero
	}
}

// SetCurrentPrice marks the position to market and refreshes the stored PnL.
func (p *Position) SetCurrentPrice(price decimal.Decimal) {
	p.CurrentPrice = price
	p.PnL = p.CurrentPnL()
}

// mark stores the freshly computed PnL on the position and returns it.
func (p *Position) mark() decimal.Decimal {
	p.PnL = p.CurrentPnL()
	return p.PnL
}

// flatten resets the position to its flat state after a full close.
func (p *Position) flatten() {
	p.Balance = 0
	p.Side = PositionNone
	p.EntryPrice = decimal.Zero
}

// ApplyOrder reconciles an executed order into the position.
//
// A flat position adopts the order's direction; an order in the direction of
// the position grows it at the volume-weighted average price; an order
// against it shrinks it, and a fill larger than the balance flips the
// position to the opposite side at the fill price. The LONG→SHORT flip
// carries the PnL realized on the closed portion in the returned value.
//
// Callers must mark the position to market (SetCurrentPrice) before applying.
func (p *Position) ApplyOrder(o Order) ApplyResult {
	if err := o.Validate(); err != nil {
		if o.Filled == 0 {
			return rejected("order is not filled")
		}
		return rejected(fmt.Sprintf("order is not valid: %v", err))
	}
	// A valid but unfilled order (e.g. still OPEN) moves nothing.
	if o.Filled == 0 {
		return rejected("order is not filled")
	}

	// A never-traded position adopts the order's symbol; otherwise the
	// symbols must be the same.
	if p.Symbol == "" {
		p.Symbol = o.Symbol
	} else if p.Symbol != o.Symbol {
		return rejected(fmt.Sprintf("symbol is not the same: %s != %s", p.Symbol, o.Symbol))
	}

	fill := newDecimal(o.Filled)

	switch {
	case p.Balance == 0: // flat, open a new position
		switch o.Side {
		case Buy:
			p.Balance = o.Filled
			p.EntryPrice = o.FilledAtPrice
			p.Side = Long
		case Sell:
			p.Balance = o.Filled
			p.EntryPrice = o.FilledAtPrice
			p.Side = Short
		default:
			return rejected("invalid side")
		}

	case p.Side == Long:
		switch o.Side {
		case Buy: // grow the long at the weighted average price
			balance := newDecimal(p.Balance)
			total := newDecimal(p.Balance + o.Filled)
			p.EntryPrice = p.EntryPrice.Mul(balance).Add(o.FilledAtPrice.Mul(fill)).Div(total)
			p.Balance += o.Filled
		case Sell:
			if p.Balance >= o.Filled { // shrink the long, no flip
				balance := newDecimal(p.Balance)
				left := p.Balance - o.Filled
				if left == 0 {
					p.flatten()
					break
				}
				// The divisor is the fill size, not the new balance.
				p.EntryPrice = p.EntryPrice.Mul(balance).Sub(o.FilledAtPrice.Mul(fill)).Div(fill)
				p.Balance = left
				break
			}
			// oversized sell: realize the closed long, flip to short
			realized := o.FilledAtPrice.Sub(p.EntryPrice).Mul(newDecimal(p.Balance))
			p.Balance = o.Filled - p.Balance
			p.EntryPrice = o.FilledAtPrice
			p.Side = Short
			p.PnL = p.CurrentPnL().Add(realized)
			return ApplyResult{Success: true, PnL: p.PnL}
		default:
			return rejected("invalid side")
		}

	case p.Side == Short:
		switch o.Side {
		case Buy:
			if p.Balance >= o.Filled { // shrink the short, entry price unchanged
				p.Balance -= o.Filled
				if p.Balance == 0 {
					p.flatten()
				}
				break
			}
			// oversized buy: flip to long at the fill price
			p.Balance = o.Filled - p.Balance
			p.EntryPrice = o.FilledAtPrice
			p.Side = Long
		case Sell: // grow the short at the weighted average price
			balance := newDecimal(p.Balance)
			total := newDecimal(p.Balance + o.Filled)
			p.EntryPrice = p.EntryPrice.Mul(balance).Add(o.FilledAtPrice.Mul(fill)).Div(total)
			p.Balance += o.Filled
		default:
			return rejected("invalid side")
		}

	default:
		return rejected("invalid side")
	}

	return ApplyResult{Success: true, PnL: p.mark()}
}

// Validate checks the position for internal consistency. A flat position is
// vacuously valid, whether never traded or fully closed out.
func (p *Position) Validate() error {
	if p.Balance == 0 && p.Side == PositionNone && p.EntryPrice.IsZero() {
		return nil
	}
	if p.Side == PositionNone {
		return errors.New("side is NONE")
	}
	if p.Symbol == "" {
		return errors.New("symbol is empty")
	}
	if p.Balance != 0 && p.EntryPrice.IsZero() {
		return errors.New("balance is not 0 but entry_price is 0")
	}
	return nil
}

func (p Position) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", p.ID)
	w.Append("timestamp", p.Timestamp)
	w.Append("balance", p.Balance)
	w.Append("symbol", p.Symbol)
	w.Append("entry_price", p.EntryPrice)
	w.Append("current_price", p.CurrentPrice)
	w.Append("pnl", p.PnL)
	w.Append("side", p.Side.String())
	return w.MarshalJSON()
}

func (p *Position) UnmarshalJSON(data []byte) error {
	// pointer fields so that a missing property is told apart from a zero.
	type jposition struct {
		ID           *string          `json:"id"`
		Timestamp    *int64           `json:"timestamp"`
		Balance      *uint64          `json:"balance"`
		Symbol       *string          `json:"symbol"`
		EntryPrice   *decimal.Decimal `json:"entry_price"`
		CurrentPrice *decimal.Decimal `json:"current_price"`
		PnL          *decimal.Decimal `json:"pnl"`
		Side         *string          `json:"side"`
	}
	var j jposition
	if err := json.Unmarshal(data, &j); err != nil {
		return fmt.Errorf("cannot parse position: %w", err)
	}
	for name, missing := range map[string]bool{
		"balance":       j.Balance == nil,
		"symbol":        j.Symbol == nil,
		"entry_price":   j.EntryPrice == nil,
		"current_price": j.CurrentPrice == nil,
		"pnl":           j.PnL == nil,
		"side":          j.Side == nil,
	} {
		if missing {
			return fmt.Errorf("cannot parse position: missing property %q", name)
		}
	}
	if j.ID != nil {
		p.ID = *j.ID
	} else {
		p.ID = NewID()
	}
	if j.Timestamp != nil {
		p.Timestamp = *j.Timestamp
	} else {
		p.Timestamp = Now()
	}
	p.Balance = *j.Balance
	p.Symbol = *j.Symbol
	p.EntryPrice = *j.EntryPrice
	p.CurrentPrice = *j.CurrentPrice
	p.PnL = *j.PnL
	p.Side = ParsePositionSide(*j.Side)
	return nil
}

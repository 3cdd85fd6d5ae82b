package trading

// Portfolio aggregates at most one position per symbol plus a cash balance
// into a single valuation.
type Portfolio struct {
	positions map[string]*Position
	cash      Money
}

// NewPortfolio returns an empty portfolio valued in the given currency.
func NewPortfolio(currency string) *Portfolio {
	return &Portfolio{
		positions: make(map[string]*Position),
		cash:      M(0, currency),
	}
}

// AddPosition adds a position, keyed by its symbol. A position already held
// for that symbol is replaced.
func (pf *Portfolio) AddPosition(p *Position) {
	pf.positions[p.Symbol] = p
}

// DeletePosition removes the position held for the given symbol, if any.
func (pf *Portfolio) DeletePosition(symbol string) {
	delete(pf.positions, symbol)
}

// Position returns the position held for the given symbol, or nil.
func (pf *Portfolio) Position(symbol string) *Position {
	return pf.positions[symbol]
}

// Positions returns the held positions, in no particular order.
func (pf *Portfolio) Positions() []*Position {
	positions := make([]*Position, 0, len(pf.positions))
	for _, p := range pf.positions {
		positions = append(positions, p)
	}
	return positions
}

// Symbols returns the number of positions held.
func (pf *Portfolio) Symbols() int { return len(pf.positions) }

// Cash returns the current cash balance.
func (pf *Portfolio) Cash() Money { return pf.cash }

// AddCash adds the given amount, positive or negative, to the cash balance.
func (pf *Portfolio) AddCash(amount Money) {
	pf.cash = pf.cash.Add(amount)
}

// TotalValue returns the cash balance plus the mark-to-market PnL of every
// held position. Every position must have been marked to market first:
// valuing an unmarked non-flat position panics (see Position.CurrentPnL).
func (pf *Portfolio) TotalValue() Money {
	total := pf.cash
	for _, p := range pf.positions {
		total = total.Add(M(p.CurrentPnL(), pf.cash.Currency()))
	}
	return total
}

package trading

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

// longPosition returns a marked-to-market long position ready to receive
// orders.
func longPosition(t *testing.T, symbol string, balance uint64, entry, current float64) *Position {
	t.Helper()
	p := NewPosition()
	p.SetCurrentPrice(decimal.NewFromFloat(current))
	r := p.ApplyOrder(filledOrder(t, symbol, Buy, balance, balance, entry))
	if !r.Success {
		t.Fatalf("cannot open the long position: %s", r.Message)
	}
	return p
}

func shortPosition(t *testing.T, symbol string, balance uint64, entry, current float64) *Position {
	t.Helper()
	p := NewPosition()
	p.SetCurrentPrice(decimal.NewFromFloat(current))
	r := p.ApplyOrder(filledOrder(t, symbol, Sell, balance, balance, entry))
	if !r.Success {
		t.Fatalf("cannot open the short position: %s", r.Message)
	}
	return p
}

func TestPositionOpenLong(t *testing.T) {
	p := longPosition(t, "BTC", 200, 500, 500)

	if p.Side != Long {
		t.Errorf("side = %v, want LONG", p.Side)
	}
	if p.Balance != 200 {
		t.Errorf("balance = %d, want 200", p.Balance)
	}
	assertDecimal(t, "entry_price", p.EntryPrice, "500")
	assertDecimal(t, "pnl", p.PnL, "0")
	if p.Symbol != "BTC" {
		t.Errorf("symbol = %q, want the order's symbol", p.Symbol)
	}
}

func TestPositionOpenShort(t *testing.T) {
	p := shortPosition(t, "BTC", 200, 500, 500)

	if p.Side != Short {
		t.Errorf("side = %v, want SHORT", p.Side)
	}
	if p.Balance != 200 {
		t.Errorf("balance = %d, want 200", p.Balance)
	}
	assertDecimal(t, "entry_price", p.EntryPrice, "500")
}

func TestPositionGrowLongAverages(t *testing.T) {
	p := longPosition(t, "BTC", 200, 500, 500)

	r := p.ApplyOrder(filledOrder(t, "BTC", Buy, 100, 100, 450))
	if !r.Success {
		t.Fatalf("ApplyOrder rejected: %s", r.Message)
	}
	if p.Balance != 300 {
		t.Errorf("balance = %d, want 300", p.Balance)
	}
	// (200·500 + 100·450) / 300
	want := decimal.NewFromInt(145000).Div(decimal.NewFromInt(300))
	if !p.EntryPrice.Equal(want) {
		t.Errorf("entry_price = %s, want %s", p.EntryPrice, want)
	}
}

func TestPositionGrowShortAverages(t *testing.T) {
	p := shortPosition(t, "BTC", 200, 500, 500)

	r := p.ApplyOrder(filledOrder(t, "BTC", Sell, 100, 100, 450))
	if !r.Success {
		t.Fatalf("ApplyOrder rejected: %s", r.Message)
	}
	if p.Balance != 300 || p.Side != Short {
		t.Errorf("position = %d %v, want 300 SHORT", p.Balance, p.Side)
	}
	want := decimal.NewFromInt(145000).Div(decimal.NewFromInt(300))
	if !p.EntryPrice.Equal(want) {
		t.Errorf("entry_price = %s, want %s", p.EntryPrice, want)
	}
}

func TestPositionPartialSell(t *testing.T) {
	p := longPosition(t, "BTC", 200, 500, 500)

	r := p.ApplyOrder(filledOrder(t, "BTC", Sell, 100, 100, 450))
	if !r.Success {
		t.Fatalf("ApplyOrder rejected: %s", r.Message)
	}
	if p.Balance != 100 || p.Side != Long {
		t.Errorf("position = %d %v, want 100 LONG", p.Balance, p.Side)
	}
	// (200·500 − 100·450) / 100: the proceeds are deducted from the cost and
	// the remainder is spread over the fill size.
	assertDecimal(t, "entry_price", p.EntryPrice, "550")
}

func TestPositionFullCloseFlattens(t *testing.T) {
	p := longPosition(t, "BTC", 200, 500, 600)

	r := p.ApplyOrder(filledOrder(t, "BTC", Sell, 200, 200, 600))
	if !r.Success {
		t.Fatalf("ApplyOrder rejected: %s", r.Message)
	}
	if p.Balance != 0 || p.Side != PositionNone || !p.EntryPrice.IsZero() {
		t.Errorf("full close must flatten, got %d %v entry %s", p.Balance, p.Side, p.EntryPrice)
	}
	assertDecimal(t, "pnl", r.PnL, "0")
}

func TestPositionLongFlipsShort(t *testing.T) {
	p := longPosition(t, "BTC", 200, 500, 500)
	p.SetCurrentPrice(decimal.NewFromInt(600))

	r := p.ApplyOrder(filledOrder(t, "BTC", Sell, 400, 400, 450))
	if !r.Success {
		t.Fatalf("ApplyOrder rejected: %s", r.Message)
	}
	if p.Side != Short || p.Balance != 200 {
		t.Errorf("position = %d %v, want 200 SHORT", p.Balance, p.Side)
	}
	assertDecimal(t, "entry_price", p.EntryPrice, "450")
	// realized on the closed long: (450−500)·200 = −10000
	// open short marked at 600: (450−600)·200 = −30000
	assertDecimal(t, "pnl", r.PnL, "-40000")
	assertDecimal(t, "stored pnl", p.PnL, "-40000")
}

func TestPositionShortFlipsLong(t *testing.T) {
	p := shortPosition(t, "BTC", 200, 200, 50)

	r := p.ApplyOrder(filledOrder(t, "BTC", Buy, 400, 400, 50))
	if !r.Success {
		t.Fatalf("ApplyOrder rejected: %s", r.Message)
	}
	if p.Side != Long || p.Balance != 200 {
		t.Errorf("position = %d %v, want 200 LONG", p.Balance, p.Side)
	}
	assertDecimal(t, "entry_price", p.EntryPrice, "50")
	assertDecimal(t, "pnl", r.PnL, "0")
}

func TestPositionShortPartialBuyKeepsEntry(t *testing.T) {
	p := shortPosition(t, "BTC", 200, 500, 500)

	r := p.ApplyOrder(filledOrder(t, "BTC", Buy, 50, 50, 450))
	if !r.Success {
		t.Fatalf("ApplyOrder rejected: %s", r.Message)
	}
	if p.Balance != 150 || p.Side != Short {
		t.Errorf("position = %d %v, want 150 SHORT", p.Balance, p.Side)
	}
	assertDecimal(t, "entry_price", p.EntryPrice, "500")
}

func TestPositionRejectsSymbolMismatch(t *testing.T) {
	p := longPosition(t, "BTC", 200, 500, 500)

	r := p.ApplyOrder(filledOrder(t, "ETH", Sell, 100, 100, 450))
	if r.Success {
		t.Fatal("an order for another symbol must be rejected")
	}
	if want := "symbol is not the same: BTC != ETH"; r.Message != want {
		t.Errorf("message = %q, want %q", r.Message, want)
	}
	if p.Balance != 200 {
		t.Errorf("a rejected order must leave the position untouched, balance = %d", p.Balance)
	}
}

func TestPositionRejectsUnfilledOrder(t *testing.T) {
	p := NewPosition()
	p.SetCurrentPrice(decimal.NewFromInt(500))

	o := NewOrder()
	o.Symbol = "BTC"
	o.Side = Buy
	o.Quantity = 200
	o.Type = Market
	o.Status = Open

	r := p.ApplyOrder(o)
	if r.Success {
		t.Fatal("an unfilled order must be rejected")
	}
	if want := "order is not filled"; r.Message != want {
		t.Errorf("message = %q, want %q", r.Message, want)
	}
}

func TestPositionRejectsInvalidOrder(t *testing.T) {
	p := NewPosition()
	p.SetCurrentPrice(decimal.NewFromInt(500))

	o := filledOrder(t, "", Buy, 200, 200, 500) // empty symbol
	r := p.ApplyOrder(o)
	if r.Success {
		t.Fatal("an invalid order must be rejected")
	}
	if !strings.HasPrefix(r.Message, "order is not valid: ") {
		t.Errorf("message = %q, want an 'order is not valid' rejection", r.Message)
	}
}

func TestPositionCurrentPnL(t *testing.T) {
	p := longPosition(t, "BTC", 200, 500, 500)
	p.SetCurrentPrice(decimal.NewFromInt(550))
	assertDecimal(t, "long pnl", p.CurrentPnL(), "10000")

	p = shortPosition(t, "ETH", 100, 500, 500)
	p.SetCurrentPrice(decimal.NewFromInt(450))
	assertDecimal(t, "short pnl", p.CurrentPnL(), "5000")

	p = NewPosition()
	assertDecimal(t, "flat pnl", p.CurrentPnL(), "0")
}

func TestPositionUnmarkedPnLPanics(t *testing.T) {
	p := &Position{Symbol: "BTC", Side: Long, Balance: 10, EntryPrice: decimal.NewFromInt(500)}

	defer func() {
		if recover() == nil {
			t.Error("CurrentPnL on an unmarked position must panic")
		}
	}()
	p.CurrentPnL()
}

func TestPositionValidate(t *testing.T) {
	if err := NewPosition().Validate(); err != nil {
		t.Errorf("a fresh position must be valid, got %v", err)
	}

	p := &Position{Symbol: "BTC", Balance: 10, Side: Long, EntryPrice: decimal.NewFromInt(500)}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	// a fully closed out position keeps its symbol and stays valid.
	closed := longPosition(t, "BTC", 200, 500, 600)
	if r := closed.ApplyOrder(filledOrder(t, "BTC", Sell, 200, 200, 600)); !r.Success {
		t.Fatalf("cannot close the position: %s", r.Message)
	}
	if err := closed.Validate(); err != nil {
		t.Errorf("a closed-out position must be valid, got %v", err)
	}

	p = &Position{Symbol: "BTC", Balance: 10, EntryPrice: decimal.NewFromInt(500)}
	if err := p.Validate(); err == nil || err.Error() != "side is NONE" {
		t.Errorf("Validate() = %v, want side is NONE", err)
	}

	p = &Position{Balance: 10, Side: Long, EntryPrice: decimal.NewFromInt(500)}
	if err := p.Validate(); err == nil || err.Error() != "symbol is empty" {
		t.Errorf("Validate() = %v, want symbol is empty", err)
	}

	p = &Position{Symbol: "BTC", Balance: 10, Side: Long}
	if err := p.Validate(); err == nil || err.Error() != "balance is not 0 but entry_price is 0" {
		t.Errorf("Validate() = %v, want the entry price complaint", err)
	}
}

func TestPositionJSONRoundTrip(t *testing.T) {
	p := longPosition(t, "BTC", 200, 500, 550)

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Position
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.ID != p.ID || got.Balance != p.Balance || got.Symbol != p.Symbol ||
		got.Side != p.Side || !got.EntryPrice.Equal(p.EntryPrice) ||
		!got.CurrentPrice.Equal(p.CurrentPrice) || !got.PnL.Equal(p.PnL) {
		t.Errorf("round trip = %+v, want %+v", got, p)
	}
}

func TestPositionUnmarshalMissingProperty(t *testing.T) {
	in := `{"balance": 10, "symbol": "BTC", "side": "LONG"}`
	var p Position
	err := json.Unmarshal([]byte(in), &p)
	if err == nil {
		t.Fatal("expected an error for missing properties")
	}
	if !strings.Contains(err.Error(), "missing property") {
		t.Errorf("error %q does not point at the missing property", err)
	}
}

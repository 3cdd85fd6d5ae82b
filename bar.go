package trading

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Bar is one time-bucketed OHLCV summary: open, high, low and close prices
// plus the traded volume for the bucket starting at Timestamp (unix seconds).
//
// The type does not enforce low <= min(open,close) <= max(open,close) <= high;
// callers own the coherence of the values they construct.
type Bar struct {
	Timestamp int64
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    uint64
}

// NewBar builds a bar from float prices, for call sites at the boundary of
// the library (feeds, tests). Internal arithmetic stays on decimals.
func NewBar(timestamp int64, open, high, low, close float64, volume uint64) Bar {
	return Bar{
		Timestamp: timestamp,
		Open:      decimal.NewFromFloat(open),
		High:      decimal.NewFromFloat(high),
		Low:       decimal.NewFromFloat(low),
		Close:     decimal.NewFromFloat(close),
		Volume:    volume,
	}
}

// Equal reports whether two bars carry the same values.
func (b Bar) Equal(o Bar) bool {
	return b.Timestamp == o.Timestamp &&
		b.Open.Equal(o.Open) &&
		b.High.Equal(o.High) &&
		b.Low.Equal(o.Low) &&
		b.Close.Equal(o.Close) &&
		b.Volume == o.Volume
}

func (b Bar) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("timestamp", b.Timestamp)
	w.Append("open", b.Open)
	w.Append("high", b.High)
	w.Append("low", b.Low)
	w.Append("close", b.Close)
	w.Append("volume", b.Volume)
	return w.MarshalJSON()
}

func (b *Bar) UnmarshalJSON(data []byte) error {
	// pointer fields so that a missing property is told apart from a zero.
	type jbar struct {
		Timestamp *int64           `json:"timestamp"`
		Open      *decimal.Decimal `json:"open"`
		High      *decimal.Decimal `json:"high"`
		Low       *decimal.Decimal `json:"low"`
		Close     *decimal.Decimal `json:"close"`
		Volume    *uint64          `json:"volume"`
	}
	var j jbar
	if err := json.Unmarshal(data, &j); err != nil {
		return fmt.Errorf("cannot parse bar: %w", err)
	}
	for name, missing := range map[string]bool{
		"timestamp": j.Timestamp == nil,
		"open":      j.Open == nil,
		"high":      j.High == nil,
		"low":       j.Low == nil,
		"close":     j.Close == nil,
		"volume":    j.Volume == nil,
	} {
		if missing {
			return fmt.Errorf("cannot parse bar: missing property %q", name)
		}
	}
	b.Timestamp = *j.Timestamp
	b.Open, b.High, b.Low, b.Close = *j.Open, *j.High, *j.Low, *j.Close
	b.Volume = *j.Volume
	return nil
}

// avg4 returns the average of the four prices of a bar.
func avg4(b Bar) decimal.Decimal {
	return b.Open.Add(b.High).Add(b.Low).Add(b.Close).Div(newDecimal(4))
}

// HeikinAshi returns the Heikin-Ashi transform of cur given its predecessor:
//
//	close' = avg(open, high, low, close)
//	open'  = avg(prev.open, prev.close)
//	high'  = max(high, open', close')
//	low'   = min(low, open', close')
//
// Timestamp and volume are carried over from cur unchanged.
func HeikinAshi(cur, prev Bar) Bar {
	open := prev.Open.Add(prev.Close).Div(newDecimal(2))
	return heikinAshi(cur, open)
}

// HeikinAshiFirst is the Heikin-Ashi transform for the first bar of a series,
// where no predecessor exists: the traditional open price is kept.
func HeikinAshiFirst(cur Bar) Bar {
	return heikinAshi(cur, cur.Open)
}

func heikinAshi(cur Bar, open decimal.Decimal) Bar {
	close := avg4(cur)
	return Bar{
		Timestamp: cur.Timestamp,
		Open:      open,
		High:      decimal.Max(cur.High, open, close),
		Low:       decimal.Min(cur.Low, open, close),
		Close:     close,
		Volume:    cur.Volume,
	}
}

package trading

import (
	"bytes"
	"strings"
	"testing"
)

func TestOrdersJSONLRoundTrip(t *testing.T) {
	orders := []Order{
		filledOrder(t, "BTC", Buy, 200, 200, 500),
		filledOrder(t, "ETH", Sell, 100, 100, 200),
	}

	var buf bytes.Buffer
	if err := EncodeOrders(&buf, orders); err != nil {
		t.Fatalf("EncodeOrders: %v", err)
	}
	if got := strings.Count(buf.String(), "\n"); got != 2 {
		t.Errorf("encoded stream has %d lines, want 2", got)
	}

	got, err := DecodeOrders(&buf)
	if err != nil {
		t.Fatalf("DecodeOrders: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("decoded %d orders, want 2", len(got))
	}
	if got[0].Symbol != "BTC" || got[1].Symbol != "ETH" {
		t.Errorf("order of lines not preserved: %q, %q", got[0].Symbol, got[1].Symbol)
	}
}

func TestDecodeOrdersSkipsBlankLines(t *testing.T) {
	in := `{"quantity":1,"symbol":"BTC","side":"buy","filled":1,"filled_at_price":500,"limit_price":0,"type":"market","status":"closed"}

{"quantity":2,"symbol":"ETH","side":"sell","filled":2,"filled_at_price":200,"limit_price":0,"type":"market","status":"closed"}
`
	got, err := DecodeOrders(strings.NewReader(in))
	if err != nil {
		t.Fatalf("DecodeOrders: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("decoded %d orders, want 2", len(got))
	}
}

func TestDecodeOrdersReportsLineNumber(t *testing.T) {
	in := `{"quantity":1,"symbol":"BTC","side":"buy","filled":1,"filled_at_price":500,"limit_price":0,"type":"market","status":"closed"}
{"quantity":}
`
	_, err := DecodeOrders(strings.NewReader(in))
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error %q does not name the offending line", err)
	}
}

func TestPositionsJSONLRoundTrip(t *testing.T) {
	positions := []*Position{
		longPosition(t, "BTC", 200, 500, 600),
		shortPosition(t, "ETH", 100, 300, 250),
	}

	var buf bytes.Buffer
	if err := EncodePositions(&buf, positions); err != nil {
		t.Fatalf("EncodePositions: %v", err)
	}

	got, err := DecodePositions(&buf)
	if err != nil {
		t.Fatalf("DecodePositions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("decoded %d positions, want 2", len(got))
	}
	if got[0].Symbol != "BTC" || got[0].Side != Long || got[0].Balance != 200 {
		t.Errorf("first position = %+v", got[0])
	}
	assertDecimal(t, "short pnl", got[1].PnL, "5000")
}

func TestBarsJSONLRoundTrip(t *testing.T) {
	s := NewBarSeriesOf("BTC",
		NewBar(100, 1, 2, 0.5, 1.5, 10),
		NewBar(200, 1.5, 2.5, 1, 2, 20),
	)

	var buf bytes.Buffer
	if err := EncodeBars(&buf, s); err != nil {
		t.Fatalf("EncodeBars: %v", err)
	}

	got, err := DecodeBars(&buf)
	if err != nil {
		t.Fatalf("DecodeBars: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("decoded %d bars, want 2", len(got))
	}
	if got[0].Timestamp != 100 || got[1].Timestamp != 200 {
		t.Errorf("bars not in chronological order: %d, %d", got[0].Timestamp, got[1].Timestamp)
	}
}

func TestDecodeBarsReportsLineNumber(t *testing.T) {
	in := `{"timestamp":100,"open":1,"high":2,"low":0.5,"close":1.5,"volume":10}
{"timestamp":200,"open":1}
`
	_, err := DecodeBars(strings.NewReader(in))
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error %q does not name the offending line", err)
	}
}

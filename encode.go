package trading

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// this file contains functions to handle the bulk interchange format: fills
// and bars arrive from external sources as JSONL streams, one object per
// line. It should remain human readable and easy to append to.

// DecodeOrders reads a JSONL stream of orders from 'r'. Empty lines are
// skipped; a malformed line fails with its line number.
func DecodeOrders(r io.Reader) ([]Order, error) {
	var orders []Order
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var o Order
		if err := json.Unmarshal(line, &o); err != nil {
			return nil, fmt.Errorf("parse error on line %d: %w", n, err)
		}
		orders = append(orders, o)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read orders: %w", err)
	}
	return orders, nil
}

// EncodeOrders writes orders to 'w' in the JSONL interchange format.
func EncodeOrders(w io.Writer, orders []Order) error {
	for _, o := range orders {
		data, err := json.Marshal(o)
		if err != nil {
			return fmt.Errorf("cannot marshal order %q: %w", o.ID, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("cannot write order: %w", err)
		}
	}
	return nil
}

// DecodePositions reads a JSONL stream of positions from 'r'. Empty lines are
// skipped; a malformed line fails with its line number.
func DecodePositions(r io.Reader) ([]*Position, error) {
	var positions []*Position
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		p := new(Position)
		if err := json.Unmarshal(line, p); err != nil {
			return nil, fmt.Errorf("parse error on line %d: %w", n, err)
		}
		positions = append(positions, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read positions: %w", err)
	}
	return positions, nil
}

// EncodePositions writes positions to 'w' in the JSONL interchange format.
func EncodePositions(w io.Writer, positions []*Position) error {
	for _, p := range positions {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("cannot marshal position %q: %w", p.Symbol, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("cannot write position: %w", err)
		}
	}
	return nil
}

// DecodeBars reads a JSONL stream of bars from 'r'. Empty lines are skipped;
// a malformed line fails with its line number.
func DecodeBars(r io.Reader) ([]Bar, error) {
	var bars []Bar
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var b Bar
		if err := json.Unmarshal(line, &b); err != nil {
			return nil, fmt.Errorf("parse error on line %d: %w", n, err)
		}
		bars = append(bars, b)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read bars: %w", err)
	}
	return bars, nil
}

// EncodeBars writes the series to 'w' in the JSONL interchange format, in
// chronological order.
func EncodeBars(w io.Writer, s *BarSeries) error {
	for _, b := range s.All() {
		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("cannot marshal bar at %d: %w", b.Timestamp, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("cannot write bar: %w", err)
		}
	}
	return nil
}

package trading

import (
	"encoding/json"
	"fmt"
	"strings"
)

// InstructionType tells what kind of computation an instruction requests.
type InstructionType int

const (
	InstructionNone InstructionType = iota
	Ticker
	OHLC
	MACD
	SMA
	EMA
)

func (t InstructionType) String() string {
	switch t {
	case Ticker:
		return "ticker"
	case OHLC:
		return "ohlc"
	case MACD:
		return "macd"
	case SMA:
		return "sma"
	case EMA:
		return "ema"
	default:
		return ""
	}
}

// ParseInstructionType parses an instruction type token. Unrecognized tokens
// map to InstructionNone rather than failing.
func ParseInstructionType(s string) InstructionType {
	switch strings.ToLower(s) {
	case "ticker":
		return Ticker
	case "ohlc":
		return OHLC
	case "macd":
		return MACD
	case "sma":
		return SMA
	case "ema":
		return EMA
	default:
		return InstructionNone
	}
}

// Selector tells which tickers an instruction addresses.
type Selector int

const (
	SelectorNone Selector = iota
	All
	One
	Set
)

func (s Selector) String() string {
	switch s {
	case All:
		return "all"
	case One:
		return "one"
	case Set:
		return "set"
	default:
		return ""
	}
}

// ParseSelector parses a selector token. Unrecognized tokens map to
// SelectorNone rather than failing.
func ParseSelector(s string) Selector {
	switch strings.ToLower(s) {
	case "all":
		return All
	case "one":
		return One
	case "set":
		return Set
	default:
		return SelectorNone
	}
}

// Instruction is a typed envelope for messages exchanged with collaborators:
// what to compute, for which tickers, plus an arbitrary typed payload.
type Instruction[T any] struct {
	Type     InstructionType
	Selector Selector
	Tickers  []string
	Other    T
}

func (i Instruction[T]) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", i.Type.String())
	w.Append("selector", i.Selector.String())
	w.Append("tickers", i.Tickers)
	w.Append("other", i.Other)
	return w.MarshalJSON()
}

func (i *Instruction[T]) UnmarshalJSON(data []byte) error {
	type jinstruction struct {
		Type     string          `json:"type"`
		Selector string          `json:"selector"`
		Tickers  []string        `json:"tickers"`
		Other    json.RawMessage `json:"other"`
	}
	var j jinstruction
	if err := json.Unmarshal(data, &j); err != nil {
		return fmt.Errorf("cannot parse instruction: %w", err)
	}
	i.Type = ParseInstructionType(j.Type)
	i.Selector = ParseSelector(j.Selector)
	i.Tickers = j.Tickers
	if len(j.Other) > 0 {
		if err := json.Unmarshal(j.Other, &i.Other); err != nil {
			return fmt.Errorf("cannot parse instruction payload: %w", err)
		}
	}
	return nil
}

// String returns the instruction in its JSON wire form.
func (i Instruction[T]) String() string {
	b, err := i.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(b)
}

// ParseInstruction parses an instruction from its JSON wire form.
func ParseInstruction[T any](s string) (Instruction[T], error) {
	var i Instruction[T]
	if err := i.UnmarshalJSON([]byte(s)); err != nil {
		return Instruction[T]{}, err
	}
	return i, nil
}

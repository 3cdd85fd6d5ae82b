// Package trading is the accounting core of a trading toolkit.
//
// Given a stream of executed order fills against a symbol, it maintains a
// single running Position (quantity, average cost, realized-adjusted PnL),
// reconciles new fills into that position with correct cost-basis averaging
// across BUY/SELL and LONG/SHORT transitions, and aggregates multiple
// positions plus cash into a Portfolio valuation.
//
// It also maintains a mutation-safe, time-ordered BarSeries of price bars
// used to decide whether a pending limit order would have matched.
//
// The package is an in-process computation library: fills are pre-computed
// and injected in bulk by an external source (see DecodeOrders), and there is
// no order book, no persistence and no network surface.
package trading

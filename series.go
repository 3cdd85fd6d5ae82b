package trading

import (
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/quantkit/trading/date"
)

// BarSeries stores a chronological series of bars for one symbol, keyed by
// their timestamp. Timestamps are unique and the series is always sorted;
// insertion order is irrelevant.
//
// The series is guarded by a mutex: inserts, lookups and whole traversals are
// safe from concurrent callers, but coarsely so. An iterator returned by All
// or Backward holds the lock for the full traversal and releases it when the
// loop ends or breaks, so only one traversal (or one mutation) is in flight
// at a time.
type BarSeries struct {
	mu     sync.Mutex
	symbol string
	stamps []int64
	bars   []Bar
}

// NewBarSeries returns a new empty series for the given symbol.
func NewBarSeries(symbol string) *BarSeries {
	return &BarSeries{symbol: symbol}
}

// NewBarSeriesOf returns a new series for the given symbol filled with the
// given bars.
func NewBarSeriesOf(symbol string, bars ...Bar) *BarSeries {
	s := NewBarSeries(symbol)
	for _, b := range bars {
		s.Insert(b)
	}
	return s
}

// Symbol returns the symbol this series prices.
func (s *BarSeries) Symbol() string { return s.symbol }

// search returns the insertion index for ts, and whether it is already there.
// Callers must hold the lock.
func (s *BarSeries) search(ts int64) (int, bool) {
	return slices.BinarySearch(s.stamps, ts)
}

// Insert adds a bar at its timestamp key. An existing bar at that exact
// timestamp is overwritten.
func (s *BarSeries) Insert(b Bar) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, found := s.search(b.Timestamp)
	if found {
		s.bars[i] = b
		return
	}
	s.stamps = slices.Insert(s.stamps, i, b.Timestamp)
	s.bars = slices.Insert(s.bars, i, b)
}

// Merge adds every bar of o into s. A timestamp already present in s is kept
// as is, mirroring standard map-merge semantics.
func (s *BarSeries) Merge(o *BarSeries) {
	for _, b := range o.snapshot() {
		s.mu.Lock()
		if i, found := s.search(b.Timestamp); !found {
			s.stamps = slices.Insert(s.stamps, i, b.Timestamp)
			s.bars = slices.Insert(s.bars, i, b)
		}
		s.mu.Unlock()
	}
}

// snapshot returns a copy of the bars under the lock.
func (s *BarSeries) snapshot() []Bar {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.bars)
}

// Find returns the bar at exactly ts, or false when there is none.
func (s *BarSeries) Find(ts int64) (Bar, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, found := s.search(ts); found {
		return s.bars[i], true
	}
	return Bar{}, false
}

// GetOrInsert returns the bar at ts, inserting an empty bar at that timestamp
// first when there is none. Call sites that only want to probe must use Find.
func (s *BarSeries) GetOrInsert(ts int64) Bar {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, found := s.search(ts)
	if found {
		return s.bars[i]
	}
	b := Bar{Timestamp: ts}
	s.stamps = slices.Insert(s.stamps, i, ts)
	s.bars = slices.Insert(s.bars, i, b)
	return b
}

// FindByDate parses a "YYYY-MM-DD" calendar date, and returns the bar keyed
// at local midnight of that day, or false when there is none. A string that
// does not match the format is an error.
func (s *BarSeries) FindByDate(str string) (Bar, bool, error) {
	on, err := date.Parse(str)
	if err != nil {
		return Bar{}, false, fmt.Errorf("cannot look up bar: %w", err)
	}
	b, ok := s.Find(on.Unix())
	return b, ok, nil
}

// Len returns the number of bars in the series.
func (s *BarSeries) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stamps)
}

// Empty reports whether the series holds no bar.
func (s *BarSeries) Empty() bool { return s.Len() == 0 }

// First returns the earliest bar of the series.
func (s *BarSeries) First() (Bar, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.bars) == 0 {
		return Bar{}, false
	}
	return s.bars[0], true
}

// Last returns the latest bar of the series.
func (s *BarSeries) Last() (Bar, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.bars) == 0 {
		return Bar{}, false
	}
	return s.bars[len(s.bars)-1], true
}

// All returns an iterator over all timestamp/bar pairs in chronological
// order. The lock is acquired when the traversal starts and released when
// the loop ends or breaks; a concurrent traversal blocks until then.
func (s *BarSeries) All() iter.Seq2[int64, Bar] {
	return func(yield func(int64, Bar) bool) {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, ts := range s.stamps {
			if !yield(ts, s.bars[i]) {
				return
			}
		}
	}
}

// Backward returns an iterator over all timestamp/bar pairs in reverse
// chronological order, with the same locking discipline as All.
func (s *BarSeries) Backward() iter.Seq2[int64, Bar] {
	return func(yield func(int64, Bar) bool) {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i := len(s.stamps) - 1; i >= 0; i-- {
			if !yield(s.stamps[i], s.bars[i]) {
				return
			}
		}
	}
}

// HeikinAshi derives the Heikin-Ashi transform of the whole series as a new
// series. The first bar uses the traditional open, every other bar is
// transformed against its predecessor in the original series.
func (s *BarSeries) HeikinAshi() *BarSeries {
	bars := s.snapshot()
	out := NewBarSeries(s.symbol)
	for i, b := range bars {
		if i == 0 {
			out.Insert(HeikinAshiFirst(b))
			continue
		}
		out.Insert(HeikinAshi(b, bars[i-1]))
	}
	return out
}

// Package feed is the simulation's view of history: a movable simulated
// clock plus price and event lookups that never see past it.
package feed

import (
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/equitysim/market"
	"github.com/rustyeddy/equitysim/store"
)

// ErrNoPrice means no price bar is known for the ticker at or before the
// current simulated time.
var ErrNoPrice = errors.New("no price available")

// Historical wraps an event store with the current simulated timestamp. All
// reads except DayEvents are clamped to that timestamp, so a strategy can
// never observe information that is not yet "known". Not safe for concurrent
// use; a run owns exactly one Historical.
type Historical struct {
	store store.Store
	now   time.Time
}

func New(st store.Store, start time.Time) *Historical {
	return &Historical{store: st, now: start}
}

// Now returns the current simulated timestamp.
func (h *Historical) Now() time.Time { return h.now }

// Advance moves the clock forward. Backward moves are ignored; the clock is
// monotonic for the lifetime of a run.
func (h *Historical) Advance(t time.Time) {
	if t.After(h.now) {
		h.now = t
	}
}

// Events returns events for ticker in [from, to], both bounds clamped to the
// current clock. Ticker may be empty for all tickers.
func (h *Historical) Events(ticker string, from, to time.Time) ([]market.Event, error) {
	if from.After(h.now) {
		from = h.now
	}
	if to.After(h.now) {
		to = h.now
	}
	return h.store.Events(store.Query{Ticker: ticker, BeginFrom: from, BeginTo: to})
}

// DayEvents returns every event beginning on the calendar day of d,
// unrestricted by the clock. This is how the simulation loop discovers what
// happens on a day before stepping through it.
func (h *Historical) DayEvents(d time.Time) ([]market.Event, error) {
	start := StartOfDay(d)
	return h.store.Events(store.Query{BeginFrom: start, BeginTo: EndOfDay(d)})
}

// LatestPrice returns the opening price of the most recent bar known at the
// current simulated time, or ErrNoPrice.
func (h *Historical) LatestPrice(ticker string) (market.Price, error) {
	ev, err := h.store.LatestEvent(ticker, market.TypeBar, h.now)
	if errors.Is(err, store.ErrNoEvent) {
		return 0, ErrNoPrice
	}
	if err != nil {
		return 0, fmt.Errorf("latest price %s: %w", ticker, err)
	}

	bar, ok := ev.(market.Bar)
	if !ok {
		return 0, fmt.Errorf("latest price %s: unexpected event %T", ticker, ev)
	}
	return bar.Open, nil
}

// StartOfDay truncates t to 00:00:00.000000 in its location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999999 on the calendar day of t, matching the
// microsecond resolution of stored event timestamps.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999000, t.Location())
}

// Package backtest runs a strategy against the historical event timeline:
// one day at a time, one same-instant event group at a time, with the
// simulated clock advanced ahead of every brokerage or strategy callback.
package backtest

import (
	"fmt"
	"sort"
	"time"

	"github.com/rustyeddy/equitysim/broker"
	"github.com/rustyeddy/equitysim/feed"
	"github.com/rustyeddy/equitysim/journal"
	"github.com/rustyeddy/equitysim/market"
	"github.com/rustyeddy/equitysim/strategies"
)

// Runner wires one simulation run together. Strategy, Brokerage and Data are
// required; Journal and OnDay are optional observers.
type Runner struct {
	Strategy  strategies.Strategy
	Brokerage broker.Brokerage
	Data      *feed.Historical

	// Journal, when set, receives one equity snapshot per simulated day.
	Journal journal.Journal

	// OnDay, when set, is called after each day settles with the day's
	// closing account value. Purely observational.
	OnDay func(day time.Time, value market.Cash)
}

// Run replays every calendar day from start through end inclusive and
// returns the final mark-to-market account value.
func (r *Runner) Run(start, end time.Time) (market.Cash, error) {
	if start.After(end) {
		return 0, fmt.Errorf("run: start %s after end %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	first := feed.StartOfDay(start)
	last := feed.StartOfDay(end)
	r.Data.Advance(first)

	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		// The full-day fetch deliberately ignores the clock: it is how the
		// loop finds out what happens today. Nothing is visible to the
		// strategy until the clock passes it below.
		events, err := r.Data.DayEvents(d)
		if err != nil {
			return 0, fmt.Errorf("fetch events for %s: %w", d.Format("2006-01-02"), err)
		}

		for _, group := range groupByBegin(events) {
			r.Data.Advance(group[0].Envelope().End)
			r.Brokerage.HandleEvents(group)

			if err := r.Strategy.Run(r.Data.Now(), group, r.Brokerage, r.Data); err != nil {
				return 0, fmt.Errorf("strategy %s at %s: %w",
					r.Strategy.Name(), r.Data.Now().Format(time.RFC3339), err)
			}
		}

		// Settlement runs on every day, events or not.
		r.Brokerage.HandleEndOfDay(d)

		value := r.Brokerage.Value()
		if r.Journal != nil {
			if err := r.Journal.RecordEquity(journal.EquitySnapshot{
				Time:  feed.EndOfDay(d),
				Cash:  r.Brokerage.Cash(),
				Value: value,
			}); err != nil {
				return 0, fmt.Errorf("journal equity for %s: %w", d.Format("2006-01-02"), err)
			}
		}
		if r.OnDay != nil {
			r.OnDay(d, value)
		}
	}

	return r.Brokerage.Value(), nil
}

// groupByBegin partitions events into groups sharing an identical begin
// timestamp, ordered ascending. The sort is stable so store order survives
// inside each group; the group's clock value is the End of its first event.
func groupByBegin(events []market.Event) [][]market.Event {
	if len(events) == 0 {
		return nil
	}

	sorted := make([]market.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Envelope().Begin.Before(sorted[j].Envelope().Begin)
	})

	var groups [][]market.Event
	var current []market.Event
	for _, ev := range sorted {
		if len(current) > 0 && !ev.Envelope().Begin.Equal(current[0].Envelope().Begin) {
			groups = append(groups, current)
			current = nil
		}
		current = append(current, ev)
	}
	return append(groups, current)
}

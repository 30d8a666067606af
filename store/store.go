package store

import (
	"errors"
	"time"

	"github.com/rustyeddy/equitysim/market"
)

// ErrNoEvent means a latest-event lookup matched nothing.
var ErrNoEvent = errors.New("no matching event")

// Query filters an event fetch. Zero-valued fields are unrestricted.
type Query struct {
	Ticker    string
	Type      market.EventType
	BeginFrom time.Time
	BeginTo   time.Time
}

// Store is the persistent event history. Events always come back in
// ascending begin order.
type Store interface {
	Events(q Query) ([]market.Event, error)

	// LatestEvent returns the most recent event of the given type with
	// begin <= asOf, or ErrNoEvent. An empty type matches any event.
	LatestEvent(ticker string, typ market.EventType, asOf time.Time) (market.Event, error)

	Insert(ev market.Event) error
}

package store

import (
	"sort"
	"sync"
	"time"

	"github.com/rustyeddy/equitysim/market"
)

// Memory is an in-memory Store for tests and scripted scenarios.
type Memory struct {
	mu     sync.RWMutex
	events []market.Event // ascending by begin
}

func NewMemory(events ...market.Event) *Memory {
	m := &Memory{}
	for _, ev := range events {
		m.Insert(ev)
	}
	return m
}

func (m *Memory) Insert(ev market.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	begin := ev.Envelope().Begin
	// Insert after any existing event with the same begin so store order is
	// stable for same-instant groups.
	i := sort.Search(len(m.events), func(i int) bool {
		return m.events[i].Envelope().Begin.After(begin)
	})
	m.events = append(m.events, nil)
	copy(m.events[i+1:], m.events[i:])
	m.events[i] = ev
	return nil
}

func (m *Memory) Events(q Query) ([]market.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []market.Event
	for _, ev := range m.events {
		if matches(ev, q) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *Memory) LatestEvent(ticker string, typ market.EventType, asOf time.Time) (market.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.events) - 1; i >= 0; i-- {
		ev := m.events[i]
		env := ev.Envelope()
		if env.Begin.After(asOf) {
			continue
		}
		if ticker != "" && env.Ticker != ticker {
			continue
		}
		if typ != "" && ev.Type() != typ {
			continue
		}
		return ev, nil
	}
	return nil, ErrNoEvent
}

func matches(ev market.Event, q Query) bool {
	env := ev.Envelope()
	if q.Ticker != "" && env.Ticker != q.Ticker {
		return false
	}
	if q.Type != "" && ev.Type() != q.Type {
		return false
	}
	if !q.BeginFrom.IsZero() && env.Begin.Before(q.BeginFrom) {
		return false
	}
	if !q.BeginTo.IsZero() && env.Begin.After(q.BeginTo) {
		return false
	}
	return true
}

package strategies

import (
	"errors"
	"time"

	"github.com/rustyeddy/equitysim/broker"
	"github.com/rustyeddy/equitysim/feed"
	"github.com/rustyeddy/equitysim/market"
)

// DividendCapture buys the ticker when a dividend is announced, holds
// through the ex-dividend day to capture the entitlement, then exits.
type DividendCapture struct {
	Ticker string
}

func (s *DividendCapture) Name() string { return "dividend-capture" }

func (s *DividendCapture) Run(ts time.Time, events []market.Event, b broker.Brokerage, data *feed.Historical) error {
	for _, ev := range events {
		if ev.Envelope().Ticker != s.Ticker {
			continue
		}

		switch ev.(type) {
		case market.DividendAnnouncement:
			if err := s.enter(b); err != nil {
				return err
			}
		case market.ExDividend:
			// Entitlement was captured by the ledger when this group was
			// applied; the position has done its job.
			if err := s.exit(b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *DividendCapture) enter(b broker.Brokerage) error {
	if held(b, s.Ticker) > 0 {
		return nil
	}

	q, err := b.TickerPrice(s.Ticker)
	if err != nil {
		if errors.Is(err, feed.ErrNoPrice) {
			return nil
		}
		return err
	}
	if q.Ask <= 0 {
		return nil
	}

	quantity := b.Cash() / q.Ask
	if quantity <= 0 {
		return nil
	}

	_, err = b.PlaceBuyTrade(s.Ticker, quantity)
	if errors.Is(err, broker.ErrInsufficientFunds) {
		return nil
	}
	return err
}

func (s *DividendCapture) exit(b broker.Brokerage) error {
	quantity := held(b, s.Ticker)
	if quantity == 0 {
		return nil
	}

	_, err := b.PlaceSellTrade(s.Ticker, quantity)
	if errors.Is(err, feed.ErrNoPrice) {
		return nil // keep holding until a price shows up
	}
	return err
}

func held(b broker.Brokerage, ticker string) int64 {
	var total int64
	for _, lot := range b.Positions() {
		if lot.Ticker == ticker {
			total += lot.Quantity
		}
	}
	return total
}

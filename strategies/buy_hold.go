package strategies

import (
	"errors"
	"time"

	"github.com/rustyeddy/equitysim/broker"
	"github.com/rustyeddy/equitysim/feed"
	"github.com/rustyeddy/equitysim/market"
)

// BuyHold goes all-in on one ticker at the first opportunity and never
// sells. The classic passive index benchmark.
type BuyHold struct {
	Ticker string
}

func (s *BuyHold) Name() string { return "buy-hold" }

func (s *BuyHold) Run(ts time.Time, events []market.Event, b broker.Brokerage, data *feed.Historical) error {
	if len(b.Positions()) > 0 {
		return nil
	}

	q, err := b.TickerPrice(s.Ticker)
	if err != nil {
		if errors.Is(err, feed.ErrNoPrice) {
			return nil // nothing known yet, try again next step
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
		// The spread moved between the sizing read and the fill; skip.
		return nil
	}
	return err
}

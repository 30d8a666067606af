package strategies

import (
	"time"

	"github.com/rustyeddy/equitysim/broker"
	"github.com/rustyeddy/equitysim/feed"
	"github.com/rustyeddy/equitysim/market"
)

// Noop never trades. Useful as a baseline: the equity curve it produces is
// pure cash plus whatever dividends an initial position would earn (none).
type Noop struct{}

func (Noop) Name() string { return "noop" }

func (Noop) Run(time.Time, []market.Event, broker.Brokerage, *feed.Historical) error {
	return nil
}

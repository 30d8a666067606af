package strategies

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/equitysim/broker"
	"github.com/rustyeddy/equitysim/feed"
	"github.com/rustyeddy/equitysim/market"
)

// Strategy is the decision side of a simulation. Run is invoked once per
// distinct event timestamp with the group of same-instant events, the
// brokerage and the historical-data handle; any trades it places take effect
// before the next group.
type Strategy interface {
	Name() string
	Run(ts time.Time, events []market.Event, b broker.Brokerage, data *feed.Historical) error
}

var registry = make(map[string]Strategy)

func Register(s Strategy) {
	registry[s.Name()] = s
}

func Get(name string) Strategy {
	return registry[name]
}

// ByName builds a strategy from its CLI name.
func ByName(name, ticker string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "noop", "none":
		return Noop{}, nil

	case "buy-hold", "buyhold":
		return &BuyHold{Ticker: ticker}, nil

	case "dividend-capture", "dividend":
		return &DividendCapture{Ticker: ticker}, nil

	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: noop, buy-hold, dividend-capture)", name)
	}
}

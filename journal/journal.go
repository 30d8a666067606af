package journal

import (
	"time"

	"github.com/rustyeddy/equitysim/market"
)

const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// TradeRecord is one executed fill: a buy creating a lot or a sell reducing
// one or more lots.
type TradeRecord struct {
	TradeID  string
	Ticker   string
	Side     string
	Quantity int64
	Price    market.Price // per-share fill price
	Time     time.Time
}

// EquitySnapshot is the account state at the end of one simulated day.
type EquitySnapshot struct {
	Time  time.Time
	Cash  market.Cash
	Value market.Cash // cash + open positions marked at bid
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Nop discards every record; used when no journal is configured.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error     { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) Close() error                      { return nil }

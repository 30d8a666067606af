package broker

import (
	"errors"
	"time"

	"github.com/rustyeddy/equitysim/market"
)

var (
	// ErrInsufficientFunds rejects a buy that would take cash negative.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientPosition rejects a sell for more than the held quantity.
	ErrInsufficientPosition = errors.New("insufficient position")
)

// Lot is a single buy fill, tracked individually for FIFO accounting.
// UnitBuyPrice is the ask paid at purchase.
type Lot struct {
	ID           string
	Ticker       string
	Quantity     int64
	UnitBuyPrice market.Price
}

// PNL records the realized result of closing part or all of one Lot.
type PNL struct {
	Ticker        string
	Quantity      int64
	UnitBuyPrice  market.Price
	UnitSellPrice market.Price
}

func (p PNL) Realized() market.Cash {
	return (p.UnitSellPrice - p.UnitBuyPrice) * p.Quantity
}

// PendingDividend is an entitlement captured on an ex-dividend day, payable
// on PaymentDate. Amount is the total across all shares held at capture time.
type PendingDividend struct {
	Ticker      string
	Amount      market.Cash
	PaymentDate time.Time
}

// Brokerage is the account the simulation drives. One instance owns cash,
// open lots, realized PNL history and pending dividends for a single run.
type Brokerage interface {
	Cash() market.Cash
	Positions() []Lot
	PNLs() []PNL
	Pending() []PendingDividend

	// TickerPrice returns the current bid/ask for ticker. The error is
	// feed.ErrNoPrice when nothing is known at the current simulated time;
	// callers skip the ticker rather than abort.
	TickerPrice(ticker string) (market.Quote, error)

	// PlaceBuyTrade fills quantity shares at the ask. ErrInsufficientFunds
	// when the cash debit would go negative; no partial fills.
	PlaceBuyTrade(ticker string, quantity int64) (Lot, error)

	// PlaceSellTrade fills quantity shares at the bid, reducing lots oldest
	// first. ErrInsufficientPosition when the held quantity is short; a
	// rejected sell mutates nothing.
	PlaceSellTrade(ticker string, quantity int64) ([]PNL, error)

	DepositCash(amount market.Cash)

	// HandleEvents applies event-driven state transitions for one group of
	// same-instant events (dividend entitlement capture).
	HandleEvents(events []market.Event)

	// HandleEndOfDay settles every pending dividend payable on or before date.
	HandleEndOfDay(date time.Time)

	// Value is cash plus open positions marked to market at the bid.
	Value() market.Cash
}

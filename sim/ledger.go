// Package sim implements the brokerage side of the simulation: a Ledger
// holding cash, open lots, realized PNL and pending dividends, with trade
// execution against a Roll-estimated bid/ask.
package sim

import (
	"fmt"
	"time"

	"github.com/rustyeddy/equitysim/broker"
	"github.com/rustyeddy/equitysim/feed"
	"github.com/rustyeddy/equitysim/internal/id"
	"github.com/rustyeddy/equitysim/journal"
	"github.com/rustyeddy/equitysim/market"
)

// Ledger implements broker.Brokerage for one simulation run. Lots are kept
// in creation order; sells consume them oldest first. Not safe for
// concurrent use: a run owns exactly one Ledger and drives it sequentially.
type Ledger struct {
	cash    market.Cash
	lots    []broker.Lot
	pnls    []broker.PNL
	pending []broker.PendingDividend

	data    *feed.Historical
	journal journal.Journal
}

func NewLedger(cash market.Cash, data *feed.Historical, j journal.Journal) *Ledger {
	if j == nil {
		j = journal.Nop{}
	}
	return &Ledger{
		cash:    cash,
		data:    data,
		journal: j,
	}
}

func (l *Ledger) Cash() market.Cash { return l.cash }

func (l *Ledger) Positions() []broker.Lot {
	out := make([]broker.Lot, len(l.lots))
	copy(out, l.lots)
	return out
}

func (l *Ledger) PNLs() []broker.PNL {
	out := make([]broker.PNL, len(l.pnls))
	copy(out, l.pnls)
	return out
}

func (l *Ledger) Pending() []broker.PendingDividend {
	out := make([]broker.PendingDividend, len(l.pending))
	copy(out, l.pending)
	return out
}

func (l *Ledger) DepositCash(amount market.Cash) {
	l.cash += amount
}

// TickerPrice derives a two-sided quote from the oracle's last known price
// and the Roll spread estimate. The half-spread split keeps ask-bid equal to
// the full estimated spread even when it is odd.
func (l *Ledger) TickerPrice(ticker string) (market.Quote, error) {
	mid, err := l.data.LatestPrice(ticker)
	if err != nil {
		return market.Quote{}, err
	}

	spread, err := l.rollSpread(ticker)
	if err != nil {
		return market.Quote{}, err
	}

	half := spread / 2
	return market.Quote{Bid: mid - half, Ask: mid + (spread - half)}, nil
}

// PlaceBuyTrade fills quantity shares at the ask, creating one new lot. A
// buy that cannot be fully paid for is rejected with no state change.
func (l *Ledger) PlaceBuyTrade(ticker string, quantity int64) (broker.Lot, error) {
	if quantity <= 0 {
		return broker.Lot{}, fmt.Errorf("buy %s: quantity %d must be positive", ticker, quantity)
	}

	q, err := l.TickerPrice(ticker)
	if err != nil {
		return broker.Lot{}, fmt.Errorf("buy %s: %w", ticker, err)
	}

	needed := q.Ask * quantity
	if needed > l.cash {
		return broker.Lot{}, fmt.Errorf("buy %d %s for %d: %w",
			quantity, ticker, needed, broker.ErrInsufficientFunds)
	}

	lot := broker.Lot{
		ID:           id.New(),
		Ticker:       ticker,
		Quantity:     quantity,
		UnitBuyPrice: q.Ask,
	}
	l.cash -= needed
	l.lots = append(l.lots, lot)

	if err := l.journal.RecordTrade(journal.TradeRecord{
		TradeID:  lot.ID,
		Ticker:   ticker,
		Side:     journal.SideBuy,
		Quantity: quantity,
		Price:    q.Ask,
		Time:     l.data.Now(),
	}); err != nil {
		return broker.Lot{}, fmt.Errorf("journal buy: %w", err)
	}

	return lot, nil
}

// PlaceSellTrade fills quantity shares at the bid, consuming lots oldest
// first. Every consumed (lot, quantity) pair becomes one PNL record. A sell
// for more than the held quantity is rejected atomically.
func (l *Ledger) PlaceSellTrade(ticker string, quantity int64) ([]broker.PNL, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("sell %s: quantity %d must be positive", ticker, quantity)
	}

	var held int64
	for _, lot := range l.lots {
		if lot.Ticker == ticker {
			held += lot.Quantity
		}
	}
	if held < quantity {
		return nil, fmt.Errorf("sell %d %s with %d held: %w",
			quantity, ticker, held, broker.ErrInsufficientPosition)
	}

	q, err := l.TickerPrice(ticker)
	if err != nil {
		return nil, fmt.Errorf("sell %s: %w", ticker, err)
	}

	// Drain FIFO into a fresh slice; the last touched lot may survive
	// shrunken. No mutation happens above this point, so the rejections
	// leave zero residue.
	remaining := quantity
	kept := l.lots[:0:0]
	var sold []broker.PNL

	for _, lot := range l.lots {
		if lot.Ticker != ticker || remaining == 0 {
			kept = append(kept, lot)
			continue
		}

		consumed := lot.Quantity
		if consumed > remaining {
			consumed = remaining
		}

		sold = append(sold, broker.PNL{
			Ticker:        ticker,
			Quantity:      consumed,
			UnitBuyPrice:  lot.UnitBuyPrice,
			UnitSellPrice: q.Bid,
		})

		remaining -= consumed
		if lot.Quantity > consumed {
			lot.Quantity -= consumed
			kept = append(kept, lot)
		}
	}

	l.lots = kept
	l.pnls = append(l.pnls, sold...)
	l.cash += q.Bid * quantity

	if err := l.journal.RecordTrade(journal.TradeRecord{
		TradeID:  id.New(),
		Ticker:   ticker,
		Side:     journal.SideSell,
		Quantity: quantity,
		Price:    q.Bid,
		Time:     l.data.Now(),
	}); err != nil {
		return nil, fmt.Errorf("journal sell: %w", err)
	}

	return sold, nil
}

// HandleEvents applies one same-instant event group. An ex-dividend event
// against a held position captures the entitlement for the whole position;
// the cash waits in pending until the payment date.
func (l *Ledger) HandleEvents(events []market.Event) {
	for _, ev := range events {
		xd, ok := ev.(market.ExDividend)
		if !ok {
			continue
		}

		var held int64
		for _, lot := range l.lots {
			if lot.Ticker == xd.Env.Ticker {
				held += lot.Quantity
			}
		}
		if held == 0 {
			continue
		}

		l.pending = append(l.pending, broker.PendingDividend{
			Ticker:      xd.Env.Ticker,
			Amount:      xd.Amount * held,
			PaymentDate: xd.PaymentDate,
		})
	}
}

// HandleEndOfDay settles every pending dividend payable on or before date.
// Settlement removes the entry, so each one credits cash exactly once.
func (l *Ledger) HandleEndOfDay(date time.Time) {
	cutoff := feed.EndOfDay(date)

	kept := l.pending[:0:0]
	for _, p := range l.pending {
		if p.PaymentDate.After(cutoff) {
			kept = append(kept, p)
			continue
		}
		l.cash += p.Amount
	}
	l.pending = kept
}

// Value marks the account to market: cash plus bid value of every open lot.
// Lots with no known price are skipped rather than failing the valuation.
func (l *Ledger) Value() market.Cash {
	value := l.cash

	// Prices are stable within one valuation call; look each ticker up once.
	quotes := make(map[string]market.Price)
	for _, lot := range l.lots {
		bid, ok := quotes[lot.Ticker]
		if !ok {
			q, err := l.TickerPrice(lot.Ticker)
			if err != nil {
				continue
			}
			bid = q.Bid
			quotes[lot.Ticker] = bid
		}
		value += lot.Quantity * bid
	}
	return value
}

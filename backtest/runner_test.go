package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/equitysim/broker"
	"github.com/rustyeddy/equitysim/feed"
	"github.com/rustyeddy/equitysim/journal"
	"github.com/rustyeddy/equitysim/market"
	"github.com/rustyeddy/equitysim/sim"
	"github.com/rustyeddy/equitysim/store"
	"github.com/rustyeddy/equitysim/strategies"
)

func day(n int) time.Time {
	return time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func flatBar(ticker string, d time.Time, px market.Price) market.Bar {
	return market.Bar{
		Env: market.Envelope{
			Begin:    d.Add(9*time.Hour + 30*time.Minute),
			End:      d.Add(16 * time.Hour),
			Ticker:   ticker,
			Exchange: "NYSE",
		},
		Open: px, High: px, Low: px, Close: px, Volume: 1000,
	}
}

func newRun(t *testing.T, cash market.Cash, strat strategies.Strategy, events ...market.Event) (*Runner, *sim.Ledger) {
	t.Helper()
	st := store.NewMemory()
	for _, ev := range events {
		require.NoError(t, st.Insert(ev))
	}
	data := feed.New(st, day(0))
	ledger := sim.NewLedger(cash, data, nil)
	return &Runner{Strategy: strat, Brokerage: ledger, Data: data}, ledger
}

func TestRunRejectsInvertedRange(t *testing.T) {
	t.Parallel()

	r, _ := newRun(t, 1000, strategies.Noop{})
	_, err := r.Run(day(3), day(0))
	assert.Error(t, err)
}

func TestRunBuyHoldWithDividend(t *testing.T) {
	t.Parallel()

	// Flat 100 price all week; dividend goes ex on day 1, pays on day 3.
	events := []market.Event{
		flatBar("IVV", day(0), 100),
		flatBar("IVV", day(1), 100),
		flatBar("IVV", day(2), 100),
		flatBar("IVV", day(3), 100),
		flatBar("IVV", day(4), 100),
		flatBar("IVV", day(5), 100),
		market.ExDividend{
			Env:         market.Envelope{Begin: day(1).Add(9 * time.Hour), End: day(1).Add(9 * time.Hour), Ticker: "IVV", Exchange: "NYSE"},
			Amount:      5,
			PaymentDate: day(3),
		},
	}

	r, ledger := newRun(t, 10_000, &strategies.BuyHold{Ticker: "IVV"}, events...)

	var days []time.Time
	var values []market.Cash
	r.OnDay = func(d time.Time, v market.Cash) {
		days = append(days, d)
		values = append(values, v)
	}

	final, err := r.Run(day(0), day(5))
	require.NoError(t, err)

	// 100 shares bought at 100 on day 0; 5/share dividend lands on day 3.
	assert.Equal(t, market.Cash(10_500), final)
	assert.Equal(t, market.Cash(500), ledger.Cash())
	require.Len(t, ledger.Positions(), 1)
	assert.Equal(t, int64(100), ledger.Positions()[0].Quantity)

	require.Len(t, days, 6, "one observation per calendar day, inclusive range")
	assert.Equal(t, []market.Cash{10_000, 10_000, 10_000, 10_500, 10_500, 10_500}, values,
		"dividend cash appears exactly at the payment-date settlement")
}

func TestRunSettlesOnEventlessDays(t *testing.T) {
	t.Parallel()

	// The only events are on day 0; the payment date falls on the empty
	// day 2, which must still run settlement.
	events := []market.Event{
		flatBar("IVV", day(0), 100),
		market.ExDividend{
			Env:         market.Envelope{Begin: day(0).Add(9 * time.Hour), End: day(0).Add(9 * time.Hour), Ticker: "IVV", Exchange: "NYSE"},
			Amount:      3,
			PaymentDate: day(2),
		},
	}

	r, ledger := newRun(t, 0, strategies.Noop{}, events...)

	// Pre-seeded position so the ex-dividend catches something.
	ledger.DepositCash(1_000)
	r.Data.Advance(day(0).Add(16 * time.Hour))
	seed, err := ledger.PlaceBuyTrade("IVV", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), seed.Quantity)

	final, err := r.Run(day(0), day(2))
	require.NoError(t, err)

	// 1000 - 10*100 + 10*3 dividend + 10*100 position value
	assert.Equal(t, market.Cash(1_030), final)
	assert.Empty(t, ledger.Pending())
}

type clockSpy struct {
	stamps []time.Time
	groups [][]market.Event
	data   *feed.Historical
}

func (s *clockSpy) Name() string { return "clock-spy" }

func (s *clockSpy) Run(ts time.Time, events []market.Event, b broker.Brokerage, data *feed.Historical) error {
	s.stamps = append(s.stamps, data.Now())
	s.groups = append(s.groups, events)
	return nil
}

func TestRunClockIsMonotonicAndLeadsEachGroup(t *testing.T) {
	t.Parallel()

	events := []market.Event{
		flatBar("IVV", day(0), 100),
		flatBar("SPY", day(0), 500),
		flatBar("IVV", day(1), 101),
	}

	spy := &clockSpy{}
	r, _ := newRun(t, 0, spy, events...)

	_, err := r.Run(day(0), day(1))
	require.NoError(t, err)

	// Both day-0 bars share a begin, so they arrive as one group.
	require.Len(t, spy.groups, 2)
	assert.Len(t, spy.groups[0], 2)
	assert.Len(t, spy.groups[1], 1)

	// The clock was advanced to each group's end before the callback.
	assert.Equal(t, day(0).Add(16*time.Hour), spy.stamps[0])
	assert.Equal(t, day(1).Add(16*time.Hour), spy.stamps[1])

	for i := 1; i < len(spy.stamps); i++ {
		assert.False(t, spy.stamps[i].Before(spy.stamps[i-1]), "clock went backward at step %d", i)
	}
}

func TestRunJournalsDailyEquity(t *testing.T) {
	t.Parallel()

	r, _ := newRun(t, 5_000, strategies.Noop{}, flatBar("IVV", day(0), 100))

	rec := &recordingJournal{}
	r.Journal = rec

	_, err := r.Run(day(0), day(2))
	require.NoError(t, err)

	require.Len(t, rec.equity, 3)
	assert.Equal(t, feed.EndOfDay(day(0)), rec.equity[0].Time)
	for _, e := range rec.equity {
		assert.Equal(t, market.Cash(5_000), e.Cash)
		assert.Equal(t, market.Cash(5_000), e.Value)
	}
}

func TestGroupByBegin(t *testing.T) {
	t.Parallel()

	t930 := day(0).Add(9*time.Hour + 30*time.Minute)
	t900 := day(0).Add(9 * time.Hour)

	a := flatBar("IVV", day(0), 100)
	b := flatBar("SPY", day(0), 500)
	x := market.ExDividend{
		Env:    market.Envelope{Begin: t900, End: t900, Ticker: "IVV"},
		Amount: 5, PaymentDate: day(3),
	}

	// Store order: bars first, ex-dividend last; grouping must re-order by
	// begin while keeping store order within a group.
	groups := groupByBegin([]market.Event{a, b, x})
	require.Len(t, groups, 2)

	assert.Equal(t, t900, groups[0][0].Envelope().Begin)
	require.Len(t, groups[1], 2)
	assert.Equal(t, t930, groups[1][0].Envelope().Begin)
	assert.Equal(t, "IVV", groups[1][0].Envelope().Ticker)
	assert.Equal(t, "SPY", groups[1][1].Envelope().Ticker)

	assert.Nil(t, groupByBegin(nil))
}

type recordingJournal struct {
	trades []journal.TradeRecord
	equity []journal.EquitySnapshot
}

func (r *recordingJournal) RecordTrade(t journal.TradeRecord) error {
	r.trades = append(r.trades, t)
	return nil
}

func (r *recordingJournal) RecordEquity(e journal.EquitySnapshot) error {
	r.equity = append(r.equity, e)
	return nil
}

func (r *recordingJournal) Close() error { return nil }

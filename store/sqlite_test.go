package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/equitysim/market"
)

func newTestDB(t *testing.T) *SQLite {
	t.Helper()
	db, err := NewSQLite(filepath.Join(t.TempDir(), "events.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteInsertAndQueryVariants(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)

	begin := time.Date(2024, 9, 2, 9, 30, 0, 0, time.UTC)
	end := time.Date(2024, 9, 2, 16, 0, 0, 0, time.UTC)
	env := market.Envelope{Begin: begin, End: end, Ticker: "IVV", Exchange: "NYSE"}

	inserted := []market.Event{
		market.Bar{Env: env, Open: 10000, High: 10150, Low: 9950, Close: 10100, Volume: 123456},
		market.DividendAnnouncement{
			Env:            shiftEnv(env, time.Hour),
			Amount:         50,
			ExDividendDate: time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC),
			PaymentDate:    time.Date(2024, 9, 20, 0, 0, 0, 0, time.UTC),
		},
		market.ExDividend{
			Env:         shiftEnv(env, 2*time.Hour),
			Amount:      50,
			PaymentDate: time.Date(2024, 9, 20, 0, 0, 0, 0, time.UTC),
		},
		market.DividendPayment{Env: shiftEnv(env, 3*time.Hour), Amount: 50},
		market.Earnings{
			Env:              shiftEnv(env, 4*time.Hour),
			EPS:              1.42,
			EPSEstimate:      1.40,
			EstimateCount:    9,
			FiscalQuarterEnd: time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, ev := range inserted {
		require.NoError(t, db.Insert(ev))
	}

	events, err := db.Events(Query{Ticker: "IVV"})
	require.NoError(t, err)
	require.Len(t, events, 5)

	bar, ok := events[0].(market.Bar)
	require.True(t, ok, "first event back should be the bar, got %T", events[0])
	assert.Equal(t, market.Price(10000), bar.Open)
	assert.Equal(t, int64(123456), bar.Volume)
	assert.True(t, bar.Env.Begin.Equal(begin))
	assert.Equal(t, "NYSE", bar.Env.Exchange)

	da, ok := events[1].(market.DividendAnnouncement)
	require.True(t, ok)
	assert.Equal(t, market.Cash(50), da.Amount)
	assert.True(t, da.ExDividendDate.Equal(time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC)))
	assert.True(t, da.PaymentDate.Equal(time.Date(2024, 9, 20, 0, 0, 0, 0, time.UTC)))

	xd, ok := events[2].(market.ExDividend)
	require.True(t, ok)
	assert.Equal(t, market.Cash(50), xd.Amount)
	assert.True(t, xd.PaymentDate.Equal(time.Date(2024, 9, 20, 0, 0, 0, 0, time.UTC)))

	dp, ok := events[3].(market.DividendPayment)
	require.True(t, ok)
	assert.Equal(t, market.Cash(50), dp.Amount)

	ear, ok := events[4].(market.Earnings)
	require.True(t, ok)
	assert.InDelta(t, 1.42, ear.EPS, 1e-9)
	assert.Equal(t, 9, ear.EstimateCount)
}

func TestSQLiteQueryFilters(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)

	base := time.Date(2024, 9, 2, 9, 30, 0, 0, time.UTC)
	for i, ticker := range []string{"IVV", "SPY", "IVV"} {
		env := market.Envelope{
			Begin: base.AddDate(0, 0, i), End: base.AddDate(0, 0, i).Add(time.Hour),
			Ticker: ticker, Exchange: "NYSE",
		}
		require.NoError(t, db.Insert(market.Bar{Env: env, Open: 100, High: 100, Low: 100, Close: 100, Volume: 1}))
	}

	events, err := db.Events(Query{Ticker: "IVV"})
	require.NoError(t, err)
	assert.Len(t, events, 2)

	events, err = db.Events(Query{BeginFrom: base.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.Len(t, events, 2)

	events, err = db.Events(Query{BeginTo: base})
	require.NoError(t, err)
	assert.Len(t, events, 1)

	events, err = db.Events(Query{Type: market.TypeExDividend})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSQLiteLatestEvent(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)

	base := time.Date(2024, 9, 2, 9, 30, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		env := market.Envelope{
			Begin: base.AddDate(0, 0, i), End: base.AddDate(0, 0, i).Add(time.Hour),
			Ticker: "IVV", Exchange: "NYSE",
		}
		require.NoError(t, db.Insert(market.Bar{
			Env: env, Open: market.Price(100 + i), High: 200, Low: 50, Close: 100, Volume: 1,
		}))
	}

	ev, err := db.LatestEvent("IVV", market.TypeBar, base.AddDate(0, 0, 1).Add(time.Minute))
	require.NoError(t, err)
	bar := ev.(market.Bar)
	assert.Equal(t, market.Price(101), bar.Open)

	_, err = db.LatestEvent("IVV", market.TypeBar, base.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrNoEvent)
}

func shiftEnv(env market.Envelope, d time.Duration) market.Envelope {
	env.Begin = env.Begin.Add(d)
	env.End = env.End.Add(d)
	return env
}

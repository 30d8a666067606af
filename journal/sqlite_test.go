package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteJournal(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "journal.sqlite")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	defer j.Close()

	ts := time.Date(2024, 9, 3, 16, 0, 0, 0, time.UTC)

	require.NoError(t, j.RecordTrade(TradeRecord{
		TradeID:  "01J0TRADE",
		Ticker:   "IVV",
		Side:     SideSell,
		Quantity: 100,
		Price:    9900,
		Time:     ts,
	}))
	require.NoError(t, j.RecordEquity(EquitySnapshot{Time: ts, Cash: 990000, Value: 990000}))

	var ticker, side string
	var qty, price int64
	err = j.db.QueryRow(`SELECT ticker, side, quantity, price FROM trades WHERE trade_id = ?`, "01J0TRADE").
		Scan(&ticker, &side, &qty, &price)
	require.NoError(t, err)
	assert.Equal(t, "IVV", ticker)
	assert.Equal(t, SideSell, side)
	assert.Equal(t, int64(100), qty)
	assert.Equal(t, int64(9900), price)

	var n int
	require.NoError(t, j.db.QueryRow(`SELECT COUNT(*) FROM equity`).Scan(&n))
	assert.Equal(t, 1, n)
}

package sim

import (
	"math"
	"time"

	"github.com/rustyeddy/equitysim/market"
)

// Lookback window for the spread estimate.
const spreadLookback = 30 * 24 * time.Hour

// rollSpread estimates the effective bid-ask spread from the serial
// covariance of close-to-close price changes (Roll 1984). The estimate
// degrades to zero whenever the data cannot support it: fewer than two
// deltas in the window, or non-negative covariance (the model assumes
// bid-ask bounce makes it negative).
func (l *Ledger) rollSpread(ticker string) (market.Price, error) {
	asOf := l.data.Now()
	events, err := l.data.Events(ticker, asOf.Add(-spreadLookback), asOf)
	if err != nil {
		return 0, err
	}

	var closes []market.Price
	for _, ev := range events {
		if bar, ok := ev.(market.Bar); ok {
			closes = append(closes, bar.Close)
		}
	}
	if len(closes) < 2 {
		return 0, nil
	}

	deltas := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		deltas[i-1] = float64(closes[i] - closes[i-1])
	}
	if len(deltas) < 2 {
		return 0, nil
	}

	var mean float64
	for _, d := range deltas {
		mean += d
	}
	mean /= float64(len(deltas))

	// Lag-1 sample covariance, divisor n-1.
	var cov float64
	for i := 1; i < len(deltas); i++ {
		cov += (deltas[i] - mean) * (deltas[i-1] - mean)
	}
	cov /= float64(len(deltas) - 1)

	if cov >= 0 {
		return 0, nil
	}
	return market.Price(2 * math.Sqrt(-cov)), nil
}

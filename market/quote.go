package market

// Quote is a two-sided price derived from the last known mid and an estimated
// spread. Buys fill at Ask, sells and mark-to-market use Bid.
type Quote struct {
	Bid Price
	Ask Price
}

func (q Quote) Mid() Price {
	return (q.Bid + q.Ask) / 2
}

func (q Quote) Spread() Price {
	return q.Ask - q.Bid
}

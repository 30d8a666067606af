package market

import "time"

// EventType mirrors the event store's type column.
type EventType string

const (
	TypeBar                  EventType = "OHLCV"
	TypeDividendAnnouncement EventType = "DIVIDEND_ANNOUNCEMENT"
	TypeExDividend           EventType = "EX_DIVIDEND"
	TypeDividendPayment      EventType = "DIVIDEND_PAYMENT"
	TypeEarnings             EventType = "EARNINGS"
)

// Envelope carries the fields shared by every market event. Begin is when the
// event starts, End is when it ends or settles; for a daily bar the two span
// the trading day.
type Envelope struct {
	Begin    time.Time
	End      time.Time
	Ticker   string
	Exchange string
}

// Event is the closed set of things that can happen on the historical
// timeline. Events are immutable once produced; consumers type-switch on the
// concrete variant.
type Event interface {
	Envelope() Envelope
	Type() EventType
}

// Bar is one OHLCV price bar.
type Bar struct {
	Env    Envelope
	Open   Price
	High   Price
	Low    Price
	Close  Price
	Volume int64
}

// DividendAnnouncement declares an upcoming dividend: the ex-dividend date
// fixes entitlement, the payment date releases cash.
type DividendAnnouncement struct {
	Env            Envelope
	Amount         Cash // per share
	ExDividendDate time.Time
	PaymentDate    time.Time
}

// ExDividend marks the day a holder becomes entitled to the dividend.
type ExDividend struct {
	Env         Envelope
	Amount      Cash // per share
	PaymentDate time.Time
}

// DividendPayment marks the day dividend cash actually moves.
type DividendPayment struct {
	Env    Envelope
	Amount Cash // per share
}

// Earnings is a quarterly earnings report.
type Earnings struct {
	Env              Envelope
	EPS              float64
	EPSEstimate      float64
	EstimateCount    int
	FiscalQuarterEnd time.Time
}

func (b Bar) Envelope() Envelope                  { return b.Env }
func (b Bar) Type() EventType                     { return TypeBar }
func (d DividendAnnouncement) Envelope() Envelope { return d.Env }
func (d DividendAnnouncement) Type() EventType    { return TypeDividendAnnouncement }
func (x ExDividend) Envelope() Envelope           { return x.Env }
func (x ExDividend) Type() EventType              { return TypeExDividend }
func (d DividendPayment) Envelope() Envelope      { return d.Env }
func (d DividendPayment) Type() EventType         { return TypeDividendPayment }
func (e Earnings) Envelope() Envelope             { return e.Env }
func (e Earnings) Type() EventType                { return TypeEarnings }

package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/equitysim/internal/id"
	"github.com/rustyeddy/equitysim/market"
)

// One joined select covers every variant; the detail columns of the other
// variants come back NULL and are ignored by the row decoder.
const selectAll = `
	SELECT
		e.id, e.type, e.begin, e."end", e.ticker, e.exchange,
		o.open, o.high, o.low, o.close, o.volume,
		da.amount, da.ex_dividend_date, da.payment_date,
		ed.amount, ed.payment_date,
		dp.amount,
		ear.eps, ear.eps_estimate, ear.number_of_estimates, ear.fiscal_quarter_ending
	FROM event e
	LEFT JOIN ohlcv o ON e.id = o.event_id
	LEFT JOIN dividend_announcement da ON e.id = da.event_id
	LEFT JOIN ex_dividend ed ON e.id = ed.event_id
	LEFT JOIN dividend_payment dp ON e.id = dp.event_id
	LEFT JOIN earnings ear ON e.id = ear.event_id`

// SQLite is the Store backed by a local sqlite database.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("apply event schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) Events(q Query) ([]market.Event, error) {
	var where []string
	var args []any

	if q.Ticker != "" {
		where = append(where, "e.ticker = ?")
		args = append(args, q.Ticker)
	}
	if q.Type != "" {
		where = append(where, "e.type = ?")
		args = append(args, string(q.Type))
	}
	if !q.BeginFrom.IsZero() {
		where = append(where, "e.begin >= ?")
		args = append(args, q.BeginFrom)
	}
	if !q.BeginTo.IsZero() {
		where = append(where, "e.begin <= ?")
		args = append(args, q.BeginTo)
	}

	rows, err := s.db.Query(buildQuery(where, "ORDER BY e.begin ASC"), args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []market.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (s *SQLite) LatestEvent(ticker string, typ market.EventType, asOf time.Time) (market.Event, error) {
	var where []string
	var args []any

	if ticker != "" {
		where = append(where, "e.ticker = ?")
		args = append(args, ticker)
	}
	if typ != "" {
		where = append(where, "e.type = ?")
		args = append(args, string(typ))
	}
	where = append(where, "e.begin <= ?")
	args = append(args, asOf)

	rows, err := s.db.Query(buildQuery(where, "ORDER BY e.begin DESC LIMIT 1"), args...)
	if err != nil {
		return nil, fmt.Errorf("query latest event: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNoEvent
	}
	return scanEvent(rows)
}

func (s *SQLite) Insert(ev market.Event) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	env := ev.Envelope()
	eventID := id.New()

	_, err = tx.Exec(
		`INSERT INTO event (id, type, begin, "end", ticker, exchange) VALUES (?, ?, ?, ?, ?, ?)`,
		eventID, string(ev.Type()), env.Begin, env.End, env.Ticker, env.Exchange,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	switch v := ev.(type) {
	case market.Bar:
		_, err = tx.Exec(
			`INSERT INTO ohlcv (event_id, open, high, low, close, volume) VALUES (?, ?, ?, ?, ?, ?)`,
			eventID, v.Open, v.High, v.Low, v.Close, v.Volume,
		)
	case market.DividendAnnouncement:
		_, err = tx.Exec(
			`INSERT INTO dividend_announcement (event_id, amount, ex_dividend_date, payment_date) VALUES (?, ?, ?, ?)`,
			eventID, v.Amount, v.ExDividendDate, v.PaymentDate,
		)
	case market.ExDividend:
		_, err = tx.Exec(
			`INSERT INTO ex_dividend (event_id, amount, payment_date) VALUES (?, ?, ?)`,
			eventID, v.Amount, v.PaymentDate,
		)
	case market.DividendPayment:
		_, err = tx.Exec(
			`INSERT INTO dividend_payment (event_id, amount) VALUES (?, ?)`,
			eventID, v.Amount,
		)
	case market.Earnings:
		_, err = tx.Exec(
			`INSERT INTO earnings (event_id, eps, eps_estimate, number_of_estimates, fiscal_quarter_ending) VALUES (?, ?, ?, ?, ?)`,
			eventID, v.EPS, v.EPSEstimate, v.EstimateCount, v.FiscalQuarterEnd,
		)
	default:
		return fmt.Errorf("insert event: unknown variant %T", ev)
	}
	if err != nil {
		return fmt.Errorf("insert %s detail: %w", ev.Type(), err)
	}

	return tx.Commit()
}

func buildQuery(where []string, orderBy string) string {
	q := selectAll
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	return q + " " + orderBy
}

func scanEvent(rows *sql.Rows) (market.Event, error) {
	var (
		rowID, typ, ticker, exchange string
		begin, end                   time.Time

		open, high, low, closePx, volume sql.NullInt64

		daAmount          sql.NullInt64
		daExDate, daPay   sql.NullTime
		edAmount          sql.NullInt64
		edPay             sql.NullTime
		dpAmount          sql.NullInt64
		eps, epsEst       sql.NullFloat64
		estimates         sql.NullInt64
		fiscalQuarterEnds sql.NullTime
	)

	err := rows.Scan(
		&rowID, &typ, &begin, &end, &ticker, &exchange,
		&open, &high, &low, &closePx, &volume,
		&daAmount, &daExDate, &daPay,
		&edAmount, &edPay,
		&dpAmount,
		&eps, &epsEst, &estimates, &fiscalQuarterEnds,
	)
	if err != nil {
		return nil, fmt.Errorf("scan event row: %w", err)
	}

	env := market.Envelope{Begin: begin, End: end, Ticker: ticker, Exchange: exchange}

	switch market.EventType(typ) {
	case market.TypeBar:
		return market.Bar{
			Env:    env,
			Open:   open.Int64,
			High:   high.Int64,
			Low:    low.Int64,
			Close:  closePx.Int64,
			Volume: volume.Int64,
		}, nil
	case market.TypeDividendAnnouncement:
		return market.DividendAnnouncement{
			Env:            env,
			Amount:         daAmount.Int64,
			ExDividendDate: daExDate.Time,
			PaymentDate:    daPay.Time,
		}, nil
	case market.TypeExDividend:
		return market.ExDividend{
			Env:         env,
			Amount:      edAmount.Int64,
			PaymentDate: edPay.Time,
		}, nil
	case market.TypeDividendPayment:
		return market.DividendPayment{Env: env, Amount: dpAmount.Int64}, nil
	case market.TypeEarnings:
		return market.Earnings{
			Env:              env,
			EPS:              eps.Float64,
			EPSEstimate:      epsEst.Float64,
			EstimateCount:    int(estimates.Int64),
			FiscalQuarterEnd: fiscalQuarterEnds.Time,
		}, nil
	default:
		return nil, fmt.Errorf("scan event row: unknown type %q", typ)
	}
}

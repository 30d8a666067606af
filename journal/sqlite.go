package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades (trade_id, ticker, side, quantity, price, time)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Ticker, t.Side, t.Quantity, t.Price, t.Time,
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity (time, cash, value)
		VALUES (?, ?, ?)`,
		e.Time, e.Cash, e.Value,
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

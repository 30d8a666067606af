package store

const Schema = `
CREATE TABLE IF NOT EXISTS event (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	begin DATETIME NOT NULL,
	"end" DATETIME NOT NULL,
	ticker TEXT NOT NULL,
	exchange TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS ohlcv (
	event_id TEXT PRIMARY KEY REFERENCES event(id),
	open INTEGER NOT NULL,
	high INTEGER NOT NULL,
	low INTEGER NOT NULL,
	close INTEGER NOT NULL,
	volume INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS dividend_announcement (
	event_id TEXT PRIMARY KEY REFERENCES event(id),
	amount INTEGER NOT NULL,
	ex_dividend_date DATETIME NOT NULL,
	payment_date DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS ex_dividend (
	event_id TEXT PRIMARY KEY REFERENCES event(id),
	amount INTEGER NOT NULL,
	payment_date DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS dividend_payment (
	event_id TEXT PRIMARY KEY REFERENCES event(id),
	amount INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS earnings (
	event_id TEXT PRIMARY KEY REFERENCES event(id),
	eps REAL NOT NULL,
	eps_estimate REAL,
	number_of_estimates INTEGER NOT NULL,
	fiscal_quarter_ending DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_event_begin ON event(begin);
CREATE INDEX IF NOT EXISTS idx_event_ticker_type_begin ON event(ticker, type, begin);
`

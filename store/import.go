package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
	"github.com/xyproto/unzip"

	"github.com/rustyeddy/equitysim/market"
)

// Import loads historical events from path into st. Accepted inputs:
//
//	events.csv      plain CSV
//	events.csv.xz   xz-compressed CSV (the usual format for archived dumps)
//	events.zip      zip archive; every .csv inside is imported
//
// CSV columns: type,begin,end,ticker,exchange,p1..p5 with a header row
// allowed. The p columns depend on type:
//
//	OHLCV                  open,high,low,close,volume
//	DIVIDEND_ANNOUNCEMENT  amount,ex_dividend_date,payment_date
//	EX_DIVIDEND            amount,payment_date
//	DIVIDEND_PAYMENT       amount
//	EARNINGS               eps,eps_estimate,number_of_estimates,fiscal_quarter_ending
//
// Timestamps are RFC3339, dates are 2006-01-02, prices and dividend amounts
// are decimal (converted to cents on load).
func Import(st Store, path string) (int, error) {
	switch {
	case strings.HasSuffix(path, ".zip"):
		return importZip(st, path)
	case strings.HasSuffix(path, ".xz"):
		f, err := os.Open(path)
		if err != nil {
			return 0, err
		}
		defer f.Close()

		r, err := xz.NewReader(f)
		if err != nil {
			return 0, fmt.Errorf("open xz stream %s: %w", path, err)
		}
		return importCSV(st, r)
	default:
		f, err := os.Open(path)
		if err != nil {
			return 0, err
		}
		defer f.Close()
		return importCSV(st, f)
	}
}

func importZip(st Store, path string) (int, error) {
	dir, err := os.MkdirTemp("", "equitysim-import-")
	if err != nil {
		return 0, err
	}
	defer os.RemoveAll(dir)

	if err := unzip.Extract(path, dir); err != nil {
		return 0, fmt.Errorf("extract %s: %w", path, err)
	}

	total := 0
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".csv") {
			return nil
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()

		n, err := importCSV(st, f)
		total += n
		return err
	})
	return total, err
}

func importCSV(st Store, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	n := 0
	sawFirst := false
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if len(row) == 0 {
			continue
		}

		// Header row allowed.
		if !sawFirst {
			sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "type") {
				continue
			}
		}

		ev, err := parseEventRow(row)
		if err != nil {
			return n, err
		}
		if err := st.Insert(ev); err != nil {
			return n, err
		}
		n++
	}
}

func parseEventRow(row []string) (market.Event, error) {
	if len(row) < 5 {
		return nil, fmt.Errorf("event row needs at least 5 columns, got %d", len(row))
	}

	begin, err := time.Parse(time.RFC3339, strings.TrimSpace(row[1]))
	if err != nil {
		return nil, fmt.Errorf("parse begin: %w", err)
	}
	end, err := time.Parse(time.RFC3339, strings.TrimSpace(row[2]))
	if err != nil {
		return nil, fmt.Errorf("parse end: %w", err)
	}

	env := market.Envelope{
		Begin:    begin,
		End:      end,
		Ticker:   strings.TrimSpace(row[3]),
		Exchange: strings.TrimSpace(row[4]),
	}
	p := row[5:]

	typ := market.EventType(strings.TrimSpace(row[0]))
	switch typ {
	case market.TypeBar:
		if len(p) < 5 {
			return nil, fmt.Errorf("OHLCV row needs 5 params")
		}
		var px [4]market.Price
		for i := 0; i < 4; i++ {
			if px[i], err = market.ParsePrice(p[i]); err != nil {
				return nil, err
			}
		}
		vol, err := strconv.ParseInt(strings.TrimSpace(p[4]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse volume: %w", err)
		}
		return market.Bar{Env: env, Open: px[0], High: px[1], Low: px[2], Close: px[3], Volume: vol}, nil

	case market.TypeDividendAnnouncement:
		if len(p) < 3 {
			return nil, fmt.Errorf("DIVIDEND_ANNOUNCEMENT row needs 3 params")
		}
		amount, err := market.ParsePrice(p[0])
		if err != nil {
			return nil, err
		}
		exDate, err := parseDay(p[1])
		if err != nil {
			return nil, err
		}
		payDate, err := parseDay(p[2])
		if err != nil {
			return nil, err
		}
		return market.DividendAnnouncement{Env: env, Amount: amount, ExDividendDate: exDate, PaymentDate: payDate}, nil

	case market.TypeExDividend:
		if len(p) < 2 {
			return nil, fmt.Errorf("EX_DIVIDEND row needs 2 params")
		}
		amount, err := market.ParsePrice(p[0])
		if err != nil {
			return nil, err
		}
		payDate, err := parseDay(p[1])
		if err != nil {
			return nil, err
		}
		return market.ExDividend{Env: env, Amount: amount, PaymentDate: payDate}, nil

	case market.TypeDividendPayment:
		if len(p) < 1 {
			return nil, fmt.Errorf("DIVIDEND_PAYMENT row needs 1 param")
		}
		amount, err := market.ParsePrice(p[0])
		if err != nil {
			return nil, err
		}
		return market.DividendPayment{Env: env, Amount: amount}, nil

	case market.TypeEarnings:
		if len(p) < 4 {
			return nil, fmt.Errorf("EARNINGS row needs 4 params")
		}
		eps, err := strconv.ParseFloat(strings.TrimSpace(p[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse eps: %w", err)
		}
		var epsEst float64
		if s := strings.TrimSpace(p[1]); s != "" {
			if epsEst, err = strconv.ParseFloat(s, 64); err != nil {
				return nil, fmt.Errorf("parse eps_estimate: %w", err)
			}
		}
		count, err := strconv.Atoi(strings.TrimSpace(p[2]))
		if err != nil {
			return nil, fmt.Errorf("parse number_of_estimates: %w", err)
		}
		fq, err := parseDay(p[3])
		if err != nil {
			return nil, err
		}
		return market.Earnings{Env: env, EPS: eps, EPSEstimate: epsEst, EstimateCount: count, FiscalQuarterEnd: fq}, nil

	default:
		return nil, fmt.Errorf("unknown event type %q", row[0])
	}
}

func parseDay(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date: %w", err)
	}
	return t, nil
}

package replay

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/capguard/risk"
)

// Tick is one recorded account observation.
type Tick struct {
	Time       time.Time
	Balance    float64
	DailyPnL   float64
	WeeklyPnL  float64
	MonthlyPnL float64
	Positions  []risk.Position
}

// ReadTicks parses account ticks.
//
// CSV format (header optional):
//
//	time,balance,daily_pnl,weekly_pnl,monthly_pnl
//
// time is RFC3339 and must not go backwards. The P/L columns are realized
// P/L for each window, negative for losses, and may be left empty.
func ReadTicks(r io.Reader) ([]Tick, error) {
	rows, err := readRows(r, "time")
	if err != nil {
		return nil, err
	}

	out := make([]Tick, 0, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("tick row %d: need at least time,balance: %v", i+1, row)
		}
		t, err := parseTime(row[0])
		if err != nil {
			return nil, fmt.Errorf("tick row %d: %w", i+1, err)
		}
		if n := len(out); n > 0 && t.Before(out[n-1].Time) {
			return nil, fmt.Errorf("tick row %d: time %s precedes %s", i+1, t.Format(time.RFC3339), out[n-1].Time.Format(time.RFC3339))
		}

		tk := Tick{Time: t}
		fields := []*float64{&tk.Balance, &tk.DailyPnL, &tk.WeeklyPnL, &tk.MonthlyPnL}
		for k, dst := range fields {
			if k+1 >= len(row) {
				break
			}
			if *dst, err = parseFloat(row[k+1]); err != nil {
				return nil, fmt.Errorf("tick row %d: %w", i+1, err)
			}
		}
		out = append(out, tk)
	}
	return out, nil
}

// ReadPositions parses open-position snapshots, grouped by snapshot time.
//
// CSV format (header optional):
//
//	time,id,symbol,side,size,entry_price,current_price,unrealized_pnl,stop_loss,take_profit,bucket
//
// side is LONG or SHORT. Trailing columns may be omitted.
func ReadPositions(r io.Reader) (map[int64][]risk.Position, error) {
	rows, err := readRows(r, "time")
	if err != nil {
		return nil, err
	}

	out := make(map[int64][]risk.Position)
	for i, row := range rows {
		if len(row) < 5 {
			return nil, fmt.Errorf("position row %d: need at least time,id,symbol,side,size: %v", i+1, row)
		}
		t, err := parseTime(row[0])
		if err != nil {
			return nil, fmt.Errorf("position row %d: %w", i+1, err)
		}
		side, err := parseSide(row[3])
		if err != nil {
			return nil, fmt.Errorf("position row %d: %w", i+1, err)
		}

		p := risk.Position{
			ID:     strings.TrimSpace(row[1]),
			Symbol: strings.TrimSpace(row[2]),
			Side:   side,
		}
		fields := []*float64{&p.Size, &p.EntryPrice, &p.CurrentPrice, &p.UnrealizedPnL, &p.StopLoss, &p.TakeProfit}
		for k, dst := range fields {
			if k+4 >= len(row) {
				break
			}
			if *dst, err = parseFloat(row[k+4]); err != nil {
				return nil, fmt.Errorf("position row %d: %w", i+1, err)
			}
		}
		if len(row) > 10 {
			p.RiskBucket = strings.TrimSpace(row[10])
		}

		key := t.UnixNano()
		out[key] = append(out[key], p)
	}
	return out, nil
}

// Attach gives each tick the positions recorded at exactly its time.
func Attach(ticks []Tick, positions map[int64][]risk.Position) {
	for i := range ticks {
		ticks[i].Positions = positions[ticks[i].Time.UnixNano()]
	}
}

// LoadFiles reads the ticks file and, when positionsPath is not empty, the
// positions file.
func LoadFiles(ticksPath, positionsPath string) ([]Tick, error) {
	tf, err := os.Open(ticksPath)
	if err != nil {
		return nil, err
	}
	defer tf.Close()

	ticks, err := ReadTicks(tf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ticksPath, err)
	}
	if positionsPath == "" {
		return ticks, nil
	}

	pf, err := os.Open(positionsPath)
	if err != nil {
		return nil, err
	}
	defer pf.Close()

	positions, err := ReadPositions(pf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", positionsPath, err)
	}
	Attach(ticks, positions)
	return ticks, nil
}

func readRows(r io.Reader, headerCol string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comment = '#'

	var rows [][]string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		if len(rows) == 0 && strings.EqualFold(strings.TrimSpace(row[0]), headerCol) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("bad time %q: %w", s, err)
	}
	return t, nil
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q: %w", s, err)
	}
	return v, nil
}

func parseSide(s string) (risk.Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LONG", "BUY":
		return risk.Long, nil
	case "SHORT", "SELL":
		return risk.Short, nil
	default:
		return "", fmt.Errorf("bad side %q (want LONG or SHORT)", s)
	}
}

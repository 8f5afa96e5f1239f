package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Calendar key layouts used for bucketing.
const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
)

// Totals is an {in, out, net} triple for one bucket.
type Totals struct {
	In  decimal.Decimal
	Out decimal.Decimal
	Net decimal.Decimal
}

func (t *Totals) add(tx Transaction) {
	if tx.IsIn() {
		t.In = t.In.Add(tx.Amount)
	} else {
		t.Out = t.Out.Add(tx.Amount)
	}
	t.Net = t.In.Sub(t.Out)
}

// Statistics holds every summary view derived from the transaction list.
type Statistics struct {
	Today string // calendar date of the reference instant
	Month string // calendar year-month of the reference instant
	Count int

	TotalIn       decimal.Decimal
	TotalOut      decimal.Decimal
	NetTotal      decimal.Decimal
	TotalInByMode map[Mode]decimal.Decimal

	TodayIn  decimal.Decimal
	TodayOut decimal.Decimal
	TodayNet decimal.Decimal

	MonthIn  decimal.Decimal
	MonthOut decimal.Decimal
	MonthNet decimal.Decimal

	DailyTotals   map[string]Totals
	MonthlyTotals map[string]Totals
}

// DayKey returns the calendar date of t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// MonthKey returns the calendar year-month of t in loc.
func MonthKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(MonthLayout)
}

// Aggregate computes all statistics in a single pass. Calendar buckets are
// taken in now's location, so callers decide the timezone convention by the
// instant they pass. The result does not depend on the order of txs.
func Aggregate(txs []Transaction, now time.Time) Statistics {
	loc := now.Location()
	stats := Statistics{
		Today:         DayKey(now, loc),
		Month:         MonthKey(now, loc),
		Count:         len(txs),
		TotalInByMode: make(map[Mode]decimal.Decimal, 3),
		DailyTotals:   make(map[string]Totals),
		MonthlyTotals: make(map[string]Totals),
	}
	for _, m := range Modes() {
		stats.TotalInByMode[m] = decimal.Zero
	}

	for _, tx := range txs {
		txDate := DayKey(tx.Date, loc)
		txMonth := MonthKey(tx.Date, loc)

		if tx.IsIn() {
			stats.TotalIn = stats.TotalIn.Add(tx.Amount)
			if _, ok := stats.TotalInByMode[tx.Mode]; ok {
				stats.TotalInByMode[tx.Mode] = stats.TotalInByMode[tx.Mode].Add(tx.Amount)
			}
		} else {
			stats.TotalOut = stats.TotalOut.Add(tx.Amount)
		}

		if txDate == stats.Today {
			if tx.IsIn() {
				stats.TodayIn = stats.TodayIn.Add(tx.Amount)
			} else {
				stats.TodayOut = stats.TodayOut.Add(tx.Amount)
			}
		}
		if txMonth == stats.Month {
			if tx.IsIn() {
				stats.MonthIn = stats.MonthIn.Add(tx.Amount)
			} else {
				stats.MonthOut = stats.MonthOut.Add(tx.Amount)
			}
		}

		day := stats.DailyTotals[txDate]
		day.add(tx)
		stats.DailyTotals[txDate] = day

		month := stats.MonthlyTotals[txMonth]
		month.add(tx)
		stats.MonthlyTotals[txMonth] = month
	}

	stats.NetTotal = stats.TotalIn.Sub(stats.TotalOut)
	stats.TodayNet = stats.TodayIn.Sub(stats.TodayOut)
	stats.MonthNet = stats.MonthIn.Sub(stats.MonthOut)
	return stats
}

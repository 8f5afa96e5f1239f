package http

import (
	"time"

	"github.com/shopspring/decimal"

	"cassa/internal/core"
)

type transactionDTO struct {
	ID           int64     `json:"id"`
	Date         time.Time `json:"date"`
	Description  string    `json:"description"`
	Type         core.Type `json:"type"`
	TypeLabel    string    `json:"type_label"`
	Amount       string    `json:"amount"`
	SignedAmount string    `json:"signed_amount"`
	Mode         core.Mode `json:"mode"`
}

func newTransactionDTO(tx core.Transaction) transactionDTO {
	return transactionDTO{
		ID:           tx.ID,
		Date:         tx.Date,
		Description:  tx.Description,
		Type:         tx.Type,
		TypeLabel:    tx.Type.Label(),
		Amount:       tx.Amount.StringFixed(2),
		SignedAmount: core.FormatSigned(tx.Type, tx.Amount),
		Mode:         tx.Mode,
	}
}

type totalsDTO struct {
	In  string `json:"in"`
	Out string `json:"out"`
	Net string `json:"net"`
}

func newTotalsDTO(in, out, net decimal.Decimal) totalsDTO {
	return totalsDTO{In: in.StringFixed(2), Out: out.StringFixed(2), Net: net.StringFixed(2)}
}

type statisticsDTO struct {
	Today         string               `json:"today"`
	Month         string               `json:"month"`
	Count         int                  `json:"count"`
	Total         totalsDTO            `json:"total"`
	TotalInByMode map[core.Mode]string `json:"total_in_by_mode"`
	TodayTotals   totalsDTO            `json:"today_totals"`
	MonthTotals   totalsDTO            `json:"month_totals"`
	Daily         map[string]totalsDTO `json:"daily"`
	Monthly       map[string]totalsDTO `json:"monthly"`
}

func newStatisticsDTO(s core.Statistics) statisticsDTO {
	dto := statisticsDTO{
		Today:         s.Today,
		Month:         s.Month,
		Count:         s.Count,
		Total:         newTotalsDTO(s.TotalIn, s.TotalOut, s.NetTotal),
		TotalInByMode: make(map[core.Mode]string, len(s.TotalInByMode)),
		TodayTotals:   newTotalsDTO(s.TodayIn, s.TodayOut, s.TodayNet),
		MonthTotals:   newTotalsDTO(s.MonthIn, s.MonthOut, s.MonthNet),
		Daily:         make(map[string]totalsDTO, len(s.DailyTotals)),
		Monthly:       make(map[string]totalsDTO, len(s.MonthlyTotals)),
	}
	for mode, amount := range s.TotalInByMode {
		dto.TotalInByMode[mode] = amount.StringFixed(2)
	}
	for day, t := range s.DailyTotals {
		dto.Daily[day] = newTotalsDTO(t.In, t.Out, t.Net)
	}
	for month, t := range s.MonthlyTotals {
		dto.Monthly[month] = newTotalsDTO(t.In, t.Out, t.Net)
	}
	return dto
}

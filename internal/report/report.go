// Package report turns statistics and transactions into display rows.
//
// The projector is pure: it formats what the aggregator computed and never
// recomputes totals. Currency values are rounded to two decimals here and
// nowhere else.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"cassa/internal/core"
)

const (
	DefaultSymbol = "₹"

	Title        = "NSM Cash Register - Report"
	SheetName    = "Transactions"
	XLSXFileName = "NSM_Cash_Register_Export.xlsx"
	PDFFileName  = "NSM_Cash_Register_Report.pdf"

	// DateTimeLayout and DateLayout follow the en-IN locale.
	DateTimeLayout = "02/01/2006, 15:04:05"
	DateLayout     = "02/01/2006"
)

// Section titles in document order.
const (
	SectionSummary      = "Overall Summary"
	SectionModes        = "Cash In by Payment Mode"
	SectionDaily        = "Daily Summary"
	SectionMonthly      = "Monthly Summary"
	SectionTransactions = "All Transactions"
)

type (
	SummaryRow struct {
		Label  string          `json:"label"`
		Value  string          `json:"value"`
		Amount decimal.Decimal `json:"-"`
	}

	ModeRow struct {
		Mode   core.Mode       `json:"mode"`
		Value  string          `json:"value"`
		Amount decimal.Decimal `json:"-"`
	}

	PeriodRow struct {
		Period string      `json:"period"`
		In     string      `json:"in"`
		Out    string      `json:"out"`
		Net    string      `json:"net"`
		Totals core.Totals `json:"-"`
	}

	TransactionRow struct {
		ID          int64           `json:"id"`
		Date        string          `json:"date"`
		Description string          `json:"description"`
		Type        string          `json:"type"`
		Amount      string          `json:"amount"`
		Mode        string          `json:"mode"`
		Value       decimal.Decimal `json:"-"`
	}

	Table struct {
		Header []string   `json:"header,omitempty"`
		Rows   [][]string `json:"rows"`
	}

	Section struct {
		Title   string `json:"title"`
		Table   Table  `json:"table"`
		NewPage bool   `json:"new_page,omitempty"`
	}

	Document struct {
		Title       string    `json:"title"`
		GeneratedOn string    `json:"generated_on"`
		Sections    []Section `json:"sections"`
	}

	SheetRow struct {
		Date        string
		Description string
		Type        string
		Amount      decimal.Decimal
		Mode        string
	}

	// Sheet is the tabular export: one header and one row per transaction.
	Sheet struct {
		Name   string
		Header []string
		Rows   []SheetRow
	}
)

// SheetHeader is the column order of the spreadsheet export.
var SheetHeader = []string{"Date", "Description", "Type", "Amount", "Payment Mode"}

type Projector struct {
	Symbol   string
	Location *time.Location
}

func NewProjector(symbol string, loc *time.Location) Projector {
	return Projector{Symbol: symbol, Location: loc}
}

func (p Projector) symbol() string {
	if p.Symbol == "" {
		return DefaultSymbol
	}
	return p.Symbol
}

func (p Projector) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

func (p Projector) money(d decimal.Decimal) string {
	return core.FormatMoney(p.symbol(), d)
}

func (p Projector) Summary(stats core.Statistics) []SummaryRow {
	return []SummaryRow{
		{Label: "Total Cash In:", Value: p.money(stats.TotalIn), Amount: stats.TotalIn},
		{Label: "Total Cash Out (Expenses):", Value: p.money(stats.TotalOut), Amount: stats.TotalOut},
		{Label: "Net Total:", Value: p.money(stats.NetTotal), Amount: stats.NetTotal},
	}
}

// Modes returns one row per payment mode, zero when the mode has no income.
func (p Projector) Modes(stats core.Statistics) []ModeRow {
	rows := make([]ModeRow, 0, len(core.Modes()))
	for _, m := range core.Modes() {
		amt := stats.TotalInByMode[m]
		rows = append(rows, ModeRow{Mode: m, Value: p.money(amt), Amount: amt})
	}
	return rows
}

// Daily lists the per-day totals, most recent date first.
func (p Projector) Daily(stats core.Statistics) []PeriodRow {
	return p.periods(stats.DailyTotals)
}

// Monthly lists the per-month totals, most recent month first.
func (p Projector) Monthly(stats core.Statistics) []PeriodRow {
	return p.periods(stats.MonthlyTotals)
}

// periods relies on the keys being zero-padded ISO layouts, which sort
// lexically in calendar order.
func (p Projector) periods(totals map[string]core.Totals) []PeriodRow {
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	rows := make([]PeriodRow, 0, len(keys))
	for _, k := range keys {
		t := totals[k]
		rows = append(rows, PeriodRow{
			Period: k,
			In:     p.money(t.In),
			Out:    p.money(t.Out),
			Net:    p.money(t.Net),
			Totals: t,
		})
	}
	return rows
}

// Transactions lists the records most recent first: date descending, then
// id descending for equal instants.
func (p Projector) Transactions(txs []core.Transaction) []TransactionRow {
	sorted := newestFirst(txs)
	rows := make([]TransactionRow, 0, len(sorted))
	for _, tx := range sorted {
		rows = append(rows, TransactionRow{
			ID:          tx.ID,
			Date:        p.formatTime(tx.Date),
			Description: tx.Description,
			Type:        tx.Type.Label(),
			Amount:      core.FormatSigned(tx.Type, tx.Amount),
			Mode:        string(tx.Mode),
			Value:       tx.Amount,
		})
	}
	return rows
}

func (p Projector) formatTime(t time.Time) string {
	return t.In(p.location()).Format(DateTimeLayout)
}

// Document assembles the printable report. The transaction listing starts
// on a new page.
func (p Projector) Document(stats core.Statistics, txs []core.Transaction, generatedAt time.Time) Document {
	summary := Table{}
	for _, r := range p.Summary(stats) {
		summary.Rows = append(summary.Rows, []string{r.Label, r.Value})
	}

	modes := Table{Header: []string{"Mode", "Total Amount (" + p.symbol() + ")"}}
	for _, r := range p.Modes(stats) {
		modes.Rows = append(modes.Rows, []string{string(r.Mode), r.Value})
	}

	daily := periodTable("Date", p.Daily(stats))
	monthly := periodTable("Month (YYYY-MM)", p.Monthly(stats))

	listing := Table{Header: []string{"Date & Time", "Description", "Type", "Amount", "Mode"}, Rows: [][]string{}}
	for _, tx := range newestFirst(txs) {
		listing.Rows = append(listing.Rows, []string{
			p.formatTime(tx.Date),
			tx.Description,
			tx.Type.Label(),
			p.money(tx.Amount),
			string(tx.Mode),
		})
	}

	return Document{
		Title:       Title,
		GeneratedOn: "Generated on: " + generatedAt.In(p.location()).Format(DateLayout),
		Sections: []Section{
			{Title: SectionSummary, Table: summary},
			{Title: SectionModes, Table: modes},
			{Title: SectionDaily, Table: daily},
			{Title: SectionMonthly, Table: monthly},
			{Title: SectionTransactions, Table: listing, NewPage: true},
		},
	}
}

func periodTable(first string, rows []PeriodRow) Table {
	t := Table{Header: []string{first, "Total In", "Total Out", "Net"}, Rows: [][]string{}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Period, r.In, r.Out, r.Net})
	}
	return t
}

// Sheet builds the spreadsheet export in insertion order, amounts kept
// numeric.
func (p Projector) Sheet(txs []core.Transaction) Sheet {
	s := Sheet{Name: SheetName, Header: append([]string(nil), SheetHeader...), Rows: make([]SheetRow, 0, len(txs))}
	for _, tx := range txs {
		s.Rows = append(s.Rows, SheetRow{
			Date:        p.formatTime(tx.Date),
			Description: tx.Description,
			Type:        tx.Type.Label(),
			Amount:      tx.Amount,
			Mode:        string(tx.Mode),
		})
	}
	return s
}

func newestFirst(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

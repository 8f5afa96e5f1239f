// Package sheets defines the outbound port for pushing the transaction
// sheet to a spreadsheet service.
package sheets

import (
	"context"

	"cassa/internal/report"
)

// SheetWriter replaces the contents of a spreadsheet tab with sheet and
// returns a reference to the written range.
type SheetWriter interface {
	WriteSheet(ctx context.Context, sheet report.Sheet) (ref string, err error)
}

// Values turns a sheet into the row matrix sent to spreadsheet APIs, header
// first. Amounts stay numeric.
func Values(sheet report.Sheet) [][]any {
	values := make([][]any, 0, len(sheet.Rows)+1)
	header := make([]any, len(sheet.Header))
	for i, h := range sheet.Header {
		header[i] = h
	}
	values = append(values, header)
	for _, r := range sheet.Rows {
		values = append(values, []any{r.Date, r.Description, r.Type, r.Amount.InexactFloat64(), r.Mode})
	}
	return values
}

package memory

import (
	"context"
	"fmt"
	"sync"

	"cassa/internal/report"
	ports "cassa/internal/sheets"
)

// Writer keeps the last written sheet in memory.
type Writer struct {
	mu     sync.Mutex
	last   [][]any
	writes int
}

var _ ports.SheetWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{}
}

func (w *Writer) WriteSheet(_ context.Context, sheet report.Sheet) (string, error) {
	values := ports.Values(sheet)
	w.mu.Lock()
	defer w.mu.Unlock()
	w.last = values
	w.writes++
	return fmt.Sprintf("mem:%s!A1:E%d", sheet.Name, len(values)), nil
}

// Last returns the rows of the most recent write, header included.
func (w *Writer) Last() [][]any {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([][]any, len(w.last))
	copy(out, w.last)
	return out
}

func (w *Writer) Writes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes
}

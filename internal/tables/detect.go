// Package tables finds tabular regions in positioned page text and renders
// them as Markdown. Detection is heuristic: a run of lines that mostly agree
// on a multi-cell column count is treated as a table.
package tables

import (
	"strings"

	"github.com/hyperifyio/pdf2md/internal/pdfdoc"
)

// Table is one detected table, row-major. Rows are not guaranteed to share a
// width; Markdown rendering normalizes them against the header.
type Table struct {
	Rows [][]string
}

// Detect scans the blocks of a page and returns the tables found, in block
// order. A block qualifies when it has more than two lines and the dominant
// span count across its lines is both greater than one and held by more than
// half of them.
func Detect(blocks []pdfdoc.TextBlock) []Table {
	var out []Table
	for _, b := range blocks {
		if t, ok := fromBlock(b); ok {
			out = append(out, t)
		}
	}
	return out
}

func fromBlock(b pdfdoc.TextBlock) (Table, bool) {
	if len(b.Lines) <= 2 {
		return Table{}, false
	}

	counts := make(map[int]int)
	for _, ln := range b.Lines {
		counts[len(ln.Spans)]++
	}
	mode, modeN := 0, 0
	for c, n := range counts {
		if n > modeN || (n == modeN && c > mode) {
			mode, modeN = c, n
		}
	}
	if mode <= 1 || modeN*2 <= len(b.Lines) {
		return Table{}, false
	}

	var rows [][]string
	for _, ln := range b.Lines {
		row := make([]string, 0, len(ln.Spans))
		empty := true
		for _, sp := range ln.Spans {
			cell := strings.TrimSpace(sp.Text)
			if cell != "" {
				empty = false
			}
			row = append(row, cell)
		}
		if empty {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) < 2 {
		return Table{}, false
	}
	return Table{Rows: rows}, true
}

// Markdown renders the table as a GitHub-style pipe table. The first row is
// the header; every following row is padded or truncated to the header width.
func (t Table) Markdown() string {
	if len(t.Rows) == 0 {
		return ""
	}
	header := t.Rows[0]
	width := len(header)

	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.WriteString("|")
		for i := 0; i < width; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			sb.WriteString(" ")
			sb.WriteString(strings.ReplaceAll(cell, "|", "\\|"))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	writeRow(header)
	sb.WriteString("|")
	for i := 0; i < width; i++ {
		sb.WriteString(" --- |")
	}
	sb.WriteString("\n")
	for _, row := range t.Rows[1:] {
		writeRow(row)
	}
	return sb.String()
}

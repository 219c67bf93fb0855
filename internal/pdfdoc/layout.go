package pdfdoc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Page is a read-only view of a single document page. It is never mutated
// after creation.
type Page struct {
	doc    *Document
	Number int
	page   pdf.Page
}

// TextSpan is a horizontal run of text within a line, delimited by
// column-scale gaps.
type TextSpan struct {
	Text string
	X    float64
}

// TextLine is a baseline-aligned sequence of spans, left to right.
type TextLine struct {
	Y     float64
	Spans []TextSpan
}

// TextBlock groups vertically adjacent lines, the structural unit the table
// detector works on.
type TextBlock struct {
	Lines []TextLine
}

// PlainText extracts the page's text in reading order. Errors surface so the
// caller can decide between skipping the page and substituting a placeholder.
func (p *Page) PlainText() (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("page %d content panicked: %v", p.Number, r)
		}
	}()
	return p.page.GetPlainText(nil)
}

// fragment is a positioned piece of page text prior to grouping.
type fragment struct {
	x, y, size float64
	text       string
}

// Layout groups the page's positioned text into blocks of lines of spans.
// The grouping is a pure function of the page content, so repeated calls
// return identical results. Malformed content streams produce an empty
// layout instead of an error.
func (p *Page) Layout() []TextBlock {
	defer func() {
		recover() // malformed content stream: treat as empty page
	}()

	content := p.page.Content()
	frags := make([]fragment, 0, len(content.Text))
	for _, t := range content.Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		frags = append(frags, fragment{x: t.X, y: t.Y, size: t.FontSize, text: t.S})
	}
	if len(frags) == 0 {
		return nil
	}

	lines := groupLines(frags)
	return groupBlocks(lines)
}

// groupLines buckets fragments by baseline proximity, then merges each
// bucket's fragments into spans ordered left to right.
func groupLines(frags []fragment) []TextLine {
	type rawLine struct {
		y     float64
		frags []fragment
	}

	var raw []rawLine
	for _, f := range frags {
		tol := 3.0
		if f.size > 0 {
			tol = f.size * 0.3
		}
		found := false
		for i := range raw {
			if abs(raw[i].y-f.y) < tol {
				raw[i].frags = append(raw[i].frags, f)
				found = true
				break
			}
		}
		if !found {
			raw = append(raw, rawLine{y: f.y, frags: []fragment{f}})
		}
	}

	// Top to bottom in PDF coordinates means descending Y.
	sort.SliceStable(raw, func(i, j int) bool { return raw[i].y > raw[j].y })

	lines := make([]TextLine, 0, len(raw))
	for _, rl := range raw {
		sort.SliceStable(rl.frags, func(i, j int) bool { return rl.frags[i].x < rl.frags[j].x })
		lines = append(lines, TextLine{Y: rl.y, Spans: mergeSpans(rl.frags)})
	}
	return lines
}

// mergeSpans joins fragments separated by word-scale gaps and splits spans
// on column-scale gaps. Width is estimated from rune count and font size,
// which is crude but stable.
func mergeSpans(frags []fragment) []TextSpan {
	var spans []TextSpan
	var cur strings.Builder
	var curX, lastEnd float64
	first := true

	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			spans = append(spans, TextSpan{Text: s, X: curX})
		}
		cur.Reset()
	}

	for _, f := range frags {
		if first {
			curX = f.x
			cur.WriteString(f.text)
			lastEnd = f.x + estWidth(f)
			first = false
			continue
		}
		gap := f.x - lastEnd
		colGap := f.size * 1.5
		if colGap < 8.0 {
			colGap = 8.0
		}
		wordGap := f.size * 0.2
		if wordGap < 1.0 {
			wordGap = 1.0
		}
		switch {
		case gap > colGap:
			flush()
			curX = f.x
		case gap > wordGap:
			cur.WriteByte(' ')
		}
		cur.WriteString(f.text)
		lastEnd = f.x + estWidth(f)
	}
	flush()
	return spans
}

func estWidth(f fragment) float64 {
	return float64(len([]rune(f.text))) * f.size * 0.55
}

// groupBlocks splits the ordered lines into blocks wherever the vertical gap
// exceeds 1.8x the typical line spacing.
func groupBlocks(lines []TextLine) []TextBlock {
	if len(lines) == 0 {
		return nil
	}

	spacing := typicalSpacing(lines)
	var blocks []TextBlock
	cur := TextBlock{Lines: []TextLine{lines[0]}}
	for i := 1; i < len(lines); i++ {
		gap := lines[i-1].Y - lines[i].Y
		if spacing > 0 && gap > spacing*1.8 {
			blocks = append(blocks, cur)
			cur = TextBlock{}
		}
		cur.Lines = append(cur.Lines, lines[i])
	}
	blocks = append(blocks, cur)
	return blocks
}

func typicalSpacing(lines []TextLine) float64 {
	if len(lines) < 2 {
		return 0
	}
	gaps := make([]float64, 0, len(lines)-1)
	for i := 1; i < len(lines); i++ {
		if g := lines[i-1].Y - lines[i].Y; g > 0 {
			gaps = append(gaps, g)
		}
	}
	if len(gaps) == 0 {
		return 0
	}
	sort.Float64s(gaps)
	return gaps[len(gaps)/2]
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

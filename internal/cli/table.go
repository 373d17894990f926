package cli

import (
	"io"
	"strings"
	"unicode/utf8"
)

// columnGap separates table columns.
const columnGap = "  "

// Table lays out rows in aligned columns under a dashed header rule.
// Widths are measured in runes so names like "Street - Sunrise" and
// non-ASCII descriptions line up.
type Table struct {
	headers  []string
	rows     [][]string
	maxWidth map[int]int
}

// NewTable creates a table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers, maxWidth: map[int]int{}}
}

// WrapColumn wraps cells of column col at width runes.
func (t *Table) WrapColumn(col, width int) {
	t.maxWidth[col] = width
}

// AddRow appends a row, padding or truncating it to the header count.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render returns the formatted table.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	// Each cell becomes one or more lines.
	cells := make([][][]string, len(t.rows))
	for r, row := range t.rows {
		cells[r] = make([][]string, len(row))
		for c, cell := range row {
			cells[r][c] = wrapText(cell, t.maxWidth[c])
		}
	}

	widths := make([]int, len(t.headers))
	for c, h := range t.headers {
		widths[c] = utf8.RuneCountInString(h)
	}
	for _, row := range cells {
		for c, lines := range row {
			for _, line := range lines {
				widths[c] = max(widths[c], utf8.RuneCountInString(line))
			}
		}
	}

	var b strings.Builder
	writeLine := func(parts []string) {
		for c, part := range parts {
			if c > 0 {
				b.WriteString(columnGap)
			}
			b.WriteString(padRight(part, widths[c]))
		}
		b.WriteString("\n")
	}

	writeLine(t.headers)
	rule := make([]string, len(widths))
	for c, w := range widths {
		rule[c] = strings.Repeat("-", w)
	}
	writeLine(rule)

	for _, row := range cells {
		height := 1
		for _, lines := range row {
			height = max(height, len(lines))
		}
		for i := range height {
			parts := make([]string, len(row))
			for c, lines := range row {
				if i < len(lines) {
					parts[c] = lines[i]
				}
			}
			writeLine(parts)
		}
	}
	return b.String()
}

// WriteTo writes the rendered table to w.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, t.Render())
	return int64(n), err
}

// padRight pads s with spaces to width runes.
func padRight(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// wrapText breaks text at word boundaries into lines of at most width
// runes. Words longer than width are split. width <= 0 disables wrapping.
func wrapText(text string, width int) []string {
	if width <= 0 || utf8.RuneCountInString(text) <= width {
		return []string{text}
	}

	var lines []string
	var line []rune
	flush := func() {
		if len(line) > 0 {
			lines = append(lines, string(line))
			line = line[:0]
		}
	}

	for _, word := range strings.Fields(text) {
		w := []rune(word)
		for len(w) > width {
			flush()
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		if len(line) > 0 && len(line)+1+len(w) > width {
			flush()
		}
		if len(line) > 0 {
			line = append(line, ' ')
		}
		line = append(line, w...)
	}
	flush()

	if len(lines) == 0 {
		return []string{text}
	}
	return lines
}

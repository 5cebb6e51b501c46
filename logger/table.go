package logger

import (
	"fmt"
	"os"
	"strings"
)

// Table accumulates rows and prints them with aligned columns.
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

func NewTable(headers []string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &Table{headers: headers, widths: widths}
}

func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
		if len(row[i]) > t.widths[i] {
			t.widths[i] = len(row[i])
		}
	}
	t.rows = append(t.rows, row)
}

func (t *Table) Print() {
	var b strings.Builder

	line := func(cells []string) {
		for i, cell := range cells {
			b.WriteString(fmt.Sprintf("  %-*s", t.widths[i], cell))
		}
		b.WriteString("\n")
	}

	line(t.headers)
	rule := make([]string, len(t.headers))
	for i, w := range t.widths {
		rule[i] = strings.Repeat("─", w)
	}
	line(rule)
	for _, row := range t.rows {
		line(row)
	}

	fmt.Fprint(os.Stdout, b.String())
}

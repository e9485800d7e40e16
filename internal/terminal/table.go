package terminal

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var headerStyle = lipgloss.NewStyle().Bold(true)

// Table renders rows the way console.table does: an (index) column followed
// by the named columns, framed with ASCII borders.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow appends a row. Missing cells render empty; extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render writes the table to w.
func (t *Table) Render(w io.Writer) error {
	_, err := io.WriteString(w, t.String())
	return err
}

func (t *Table) String() string {
	headers := append([]string{"(index)"}, t.headers...)
	rows := make([][]string, len(t.rows))
	for i, row := range t.rows {
		cells := make([]string, len(t.headers))
		copy(cells, row)
		rows[i] = append([]string{strconv.Itoa(i)}, cells...)
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	border := borderLine(widths)
	b.WriteString(border)
	b.WriteString(rowLine(headers, widths, true))
	b.WriteString(border)
	for _, row := range rows {
		b.WriteString(rowLine(row, widths, false))
	}
	b.WriteString(border)
	return b.String()
}

func borderLine(widths []int) string {
	var b strings.Builder
	b.WriteString("+")
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2))
		b.WriteString("+")
	}
	b.WriteString("\n")
	return b.String()
}

func rowLine(cells []string, widths []int, header bool) string {
	var b strings.Builder
	b.WriteString("|")
	for i, w := range widths {
		cell := lipgloss.PlaceHorizontal(w, lipgloss.Left, cells[i])
		if header {
			cell = headerStyle.Render(cell)
		}
		fmt.Fprintf(&b, " %s |", cell)
	}
	b.WriteString("\n")
	return b.String()
}

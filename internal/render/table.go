// Package render writes analysis result sets as bounded console tables.
package render

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
)

// Table is a rendered result set: a header row plus data rows.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// AddRow appends one data row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Write renders the table to w, showing at most maxRows data rows. Rows
// beyond the bound are summarized in a trailing count line.
func (t *Table) Write(w io.Writer, maxRows int) error {
	if t.Title != "" {
		if _, err := fmt.Fprintf(w, "%s\n", t.Title); err != nil {
			return err
		}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, col := range t.Columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, col)
	}
	fmt.Fprintln(tw)

	shown := t.Rows
	hidden := 0
	if maxRows > 0 && len(shown) > maxRows {
		hidden = len(shown) - maxRows
		shown = shown[:maxRows]
	}

	for _, row := range shown {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell)
		}
		fmt.Fprintln(tw)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	if hidden > 0 {
		if _, err := fmt.Fprintf(w, "... (%d more rows)\n", hidden); err != nil {
			return err
		}
	}
	return nil
}

// Int formats an integer cell.
func Int(v int) string {
	return strconv.Itoa(v)
}

// Float formats a float cell with two decimal places.
func Float(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 1, 4)

	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)
	oddRowStyle = lipgloss.NewStyle().Faint(false).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Faint(true).
			PaddingLeft(1).PaddingRight(1)
	failedRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "9", Dark: "9"}).
			Bold(true).
			PaddingLeft(1).PaddingRight(1)
)

// resultsTable renders rows with alternating styles, and failed rows (e.g. comparisons) in red.
type resultsTable struct {
	table   *lgtable.Table
	numRows int
	failed  map[int]bool
}

// Row appends a row, rendered in red if failed is true.
func (t *resultsTable) Row(failed bool, row ...string) {
	if failed {
		t.failed[t.numRows] = true
	}
	t.table.Row(row...)
	t.numRows++
}

// Headers sets the column names.
func (t *resultsTable) Headers(headers ...string) {
	t.table.Headers(headers...)
}

func (t *resultsTable) render() string {
	return t.table.Render()
}

// newResultsTable creates a table aligning each column as given.
// The last alignment is used for the remaining columns.
func newResultsTable(withHeader bool, alignments ...lipgloss.Position) *resultsTable {
	t := &resultsTable{failed: make(map[int]bool)}
	t.table = lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if withHeader && row < 0 {
				return headerRowStyle
			}
			s := evenRowStyle
			switch {
			case t.failed[row]:
				s = failedRowStyle
			case row%2 == 0:
				s = oddRowStyle
			}
			alignment := lipgloss.Left
			if len(alignments) > 0 {
				alignment = alignments[min(col, len(alignments)-1)]
			}
			return s.Align(alignment)
		})
	return t
}

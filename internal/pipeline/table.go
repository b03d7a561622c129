package pipeline

import "strings"

// minTableLines is a header row plus the separator row.
const minTableLines = 2

// ParseTable reads the run of consecutive lines containing a pipe, starting
// at start. It returns the table, the number of raw lines consumed, and
// false when fewer than two lines qualify (nothing is consumed then).
//
// The second line is always treated as the separator row and skipped
// without inspecting it. Data rows with no non-blank cells are dropped.
func ParseTable(lines []string, start int) (Table, int, bool) {
	if start < 0 || start >= len(lines) {
		return Table{}, 0, false
	}

	end := start
	for end < len(lines) && strings.Contains(lines[end], "|") {
		end++
	}
	if end-start < minTableLines {
		return Table{}, 0, false
	}

	table := Table{Headers: splitCells(lines[start])}
	for _, line := range lines[start+minTableLines : end] {
		if cells := splitCells(line); len(cells) > 0 {
			table.Rows = append(table.Rows, cells)
		}
	}

	return table, end - start, true
}

// splitCells splits a row on pipes, drops blank cells (including the empty
// edges of a |-delimited row), and formats what remains.
func splitCells(line string) []string {
	var cells []string
	for _, cell := range strings.Split(line, "|") {
		if cell = strings.TrimSpace(cell); cell != "" {
			cells = append(cells, FormatInline(cell))
		}
	}
	return cells
}

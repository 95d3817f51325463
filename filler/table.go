package filler

import "google.golang.org/api/docs/v1"

// Index layout of a table inserted at index s: a newline at s splits the
// paragraph, the table starts at s+1, and every row and cell opens with one
// index unit. Each cell starts out holding an empty paragraph.
//
//	s      newline
//	s+1    table start
//	s+2    row 0 start
//	s+3    cell (0,0) start
//	s+4    cell (0,0) paragraph
//	...
//	       table end

// tableSize is the number of index units an empty rows×cols table adds,
// including the newline inserted in front of it.
func tableSize(rows, cols int64) int64 {
	return 3 + rows*(2*cols+1)
}

// cellIndex is where text goes to land in the empty cell (row, col) of a
// table inserted at at.
func cellIndex(at, row, col, cols int64) int64 {
	return at + 4 + row*(2*cols+1) + 2*col
}

// tableRequests inserts the grid, then fills the cells from the last one
// backwards so each insertion leaves the indices of the cells still to be
// filled untouched.
func tableRequests(at *docs.Location, t Table) ([]*docs.Request, int64) {
	rows := int64(len(t.Rows) + 1)
	cols := int64(len(t.Columns))
	reqs := []*docs.Request{{
		InsertTable: &docs.InsertTableRequest{Rows: rows, Columns: cols, Location: at},
	}}
	n := tableSize(rows, cols)

	for r := rows - 1; r >= 0; r-- {
		cells := t.Columns
		if r > 0 {
			cells = t.Rows[r-1]
		}
		for c := int64(len(cells)) - 1; c >= 0; c-- {
			text := cells[c]
			if text == "" {
				continue
			}
			reqs = append(reqs, insertText(&docs.Location{
				Index:     cellIndex(at.Index, r, c, cols),
				SegmentId: at.SegmentId,
			}, text))
			n += utf16Len(text)
		}
	}
	return reqs, n
}

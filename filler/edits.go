package filler

import "sort"

// Edit is one pending change to a segment: Deleted units removed at At,
// followed by Inserted units added at At. At is expressed in the segment's
// indices as fetched, before any edit of the batch is applied.
type Edit struct {
	At       int64
	Deleted  int64
	Inserted int64
}

// Delta is how far the edit moves everything after it.
func (e Edit) Delta() int64 { return e.Inserted - e.Deleted }

// Shift maps index, taken from the document as fetched, to where it lands
// once every edit has been applied. Edits must not overlap. An index inside
// a deleted range collapses onto the start of the edit.
func Shift(edits []Edit, index int64) int64 {
	var delta int64
	for _, e := range edits {
		switch {
		case index >= e.At+e.Deleted && e.Deleted > 0:
			delta += e.Delta()
		case e.Deleted == 0 && index >= e.At:
			delta += e.Delta()
		case index > e.At:
			// inside the deleted range
			delta += e.At - index
		}
	}
	return index + delta
}

// sortEdits orders edits by ascending position.
func sortEdits(edits []Edit) {
	sort.Slice(edits, func(i, j int) bool { return edits[i].At < edits[j].At })
}

package filler

import (
	"fmt"
	"sort"

	"google.golang.org/api/docs/v1"
)

// Placement is where a marker's new content sits once the batch is applied.
type Placement struct {
	Name    string `json:"name"`
	Segment string `json:"segment,omitempty"`
	Start   int64  `json:"start"`
	End     int64  `json:"end"`
}

// Plan is the batch of requests replacing every selected occurrence.
type Plan struct {
	Requests   []*docs.Request
	Placements []Placement
}

// Select keeps the occurrences whose name is in mapping, ordered by segment
// and descending start. When two occurrences overlap, the one starting
// later is dropped.
func Select(occs []Occurrence, mapping map[string]Value) []Occurrence {
	var picked []Occurrence
	for _, occ := range occs {
		if _, ok := mapping[occ.Name]; !ok || occ.End <= occ.Start {
			continue
		}
		picked = append(picked, occ)
	}
	sortOccurrences(picked)

	out := make([]Occurrence, 0, len(picked))
	for _, occ := range picked {
		keep := true
		for len(out) > 0 {
			last := out[len(out)-1]
			if last.Segment != occ.Segment || occ.End <= last.Start {
				break
			}
			if last.Start == occ.Start {
				// same start: the wider one was sorted first and wins
				keep = false
				break
			}
			out = out[:len(out)-1]
		}
		if keep {
			out = append(out, occ)
		}
	}
	return out
}

// BuildPlan turns the occurrences found in a document into one batch.
// images maps marker names with an Image value to a URI the Docs API can
// fetch the image from.
//
// Occurrences are processed by descending start offset so that an edit never
// moves an occurrence that has not been processed yet.
func BuildPlan(occs []Occurrence, mapping map[string]Value, images map[string]string) (*Plan, error) {
	selected := Select(occs, mapping)
	plan := &Plan{}

	named := map[string]bool{}
	for _, occ := range selected {
		if occ.Named {
			named[occ.Name] = true
		}
	}
	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		plan.Requests = append(plan.Requests, &docs.Request{
			DeleteNamedRange: &docs.DeleteNamedRangeRequest{Name: name},
		})
	}

	edits := map[string][]Edit{}
	inserted := make([]int64, len(selected))
	for i, occ := range selected {
		value := mapping[occ.Name]
		if err := Validate(value); err != nil {
			return nil, fmt.Errorf("marker %q: %w", occ.Name, err)
		}
		reqs, n, err := planOccurrence(occ, value, images[occ.Name])
		if err != nil {
			return nil, fmt.Errorf("marker %q: %w", occ.Name, err)
		}
		plan.Requests = append(plan.Requests, &docs.Request{
			DeleteContentRange: &docs.DeleteContentRangeRequest{
				Range: &docs.Range{StartIndex: occ.Start, EndIndex: occ.End, SegmentId: occ.Segment},
			},
		})
		plan.Requests = append(plan.Requests, reqs...)
		plan.Requests = append(plan.Requests, &docs.Request{
			CreateNamedRange: &docs.CreateNamedRangeRequest{
				Name:  occ.Name,
				Range: &docs.Range{StartIndex: occ.Start, EndIndex: occ.Start + n, SegmentId: occ.Segment},
			},
		})
		edits[occ.Segment] = append(edits[occ.Segment], Edit{At: occ.Start, Deleted: occ.End - occ.Start, Inserted: n})
		inserted[i] = n
	}

	for _, segment := range edits {
		sortEdits(segment)
	}
	for i := len(selected) - 1; i >= 0; i-- {
		occ := selected[i]
		start := Shift(edits[occ.Segment], occ.Start)
		plan.Placements = append(plan.Placements, Placement{
			Name:    occ.Name,
			Segment: occ.Segment,
			Start:   start,
			End:     start + inserted[i],
		})
	}
	return plan, nil
}

// planOccurrence returns the requests inserting value at occ.Start once the
// marker text has been deleted, and the number of index units they add.
func planOccurrence(occ Occurrence, value Value, imageURI string) ([]*docs.Request, int64, error) {
	at := &docs.Location{Index: occ.Start, SegmentId: occ.Segment}
	switch v := value.(type) {
	case Text:
		n := utf16Len(string(v))
		// inserted text takes the style of the text before it, which may be
		// a link that is about to be deleted
		return []*docs.Request{insertText(at, string(v)), setLink(at, n, nil)}, n, nil
	case Link:
		return linkRequests(at, v), utf16Len(v.Text), nil
	case Image:
		if imageURI == "" {
			return nil, 0, fmt.Errorf("image was not uploaded")
		}
		return []*docs.Request{{
			InsertInlineImage: &docs.InsertInlineImageRequest{Uri: imageURI, Location: at},
		}}, 1, nil
	case Table:
		reqs, n := tableRequests(at, v)
		return reqs, n, nil
	default:
		return nil, 0, fmt.Errorf("unsupported replacement value %T", value)
	}
}

func insertText(at *docs.Location, text string) *docs.Request {
	return &docs.Request{InsertText: &docs.InsertTextRequest{Text: text, Location: at}}
}

func linkRequests(at *docs.Location, l Link) []*docs.Request {
	return []*docs.Request{
		insertText(at, l.Text),
		setLink(at, utf16Len(l.Text), &docs.Link{Url: l.URL}),
	}
}

// setLink sets the link of the n units at at. A nil link clears it.
func setLink(at *docs.Location, n int64, link *docs.Link) *docs.Request {
	return &docs.Request{UpdateTextStyle: &docs.UpdateTextStyleRequest{
		Range: &docs.Range{
			StartIndex: at.Index,
			EndIndex:   at.Index + n,
			SegmentId:  at.SegmentId,
		},
		TextStyle: &docs.TextStyle{Link: link},
		Fields:    "link",
	}}
}

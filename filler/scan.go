package filler

import (
	"regexp"
	"sort"
	"strings"

	"google.golang.org/api/docs/v1"
)

var markerPattern = regexp.MustCompile(`\{\{\s*([^{}\s]+)\s*\}\}`)

// objectReplacement stands in for non-text paragraph elements so that
// match offsets stay aligned with document indices.
const objectReplacement = "\uFFFC"

// maxNameLen is the longest named range name Docs accepts, in UTF-16 units.
// Longer markers could not be tracked across runs and are not reported.
const maxNameLen = 256

// Occurrence locates one marker in a document segment. Offsets are only
// valid for the revision they were read from.
type Occurrence struct {
	Name    string `json:"name"`
	Segment string `json:"segment,omitempty"`
	Start   int64  `json:"start"`
	End     int64  `json:"end"`
	// Named is set when the occurrence is content inserted by an earlier
	// run, tracked through a named range, rather than {{name}} text.
	Named bool `json:"named,omitempty"`
}

// Scan returns every {{name}} marker and every named range of doc, ordered
// by segment and then by descending start offset.
func Scan(doc *docs.Document) []Occurrence {
	if doc == nil {
		return nil
	}
	s := &scanner{tables: map[string][]span{}}
	if doc.Body != nil {
		s.walk("", doc.Body.Content)
	}
	for id, h := range doc.Headers {
		s.walk(id, h.Content)
	}
	for id, f := range doc.Footers {
		s.walk(id, f.Content)
	}
	for id, fn := range doc.Footnotes {
		s.walk(id, fn.Content)
	}
	for name, group := range doc.NamedRanges {
		for _, nr := range group.NamedRanges {
			if nr == nil {
				continue
			}
			for _, r := range nr.Ranges {
				if r == nil || r.EndIndex <= r.StartIndex {
					continue
				}
				occ := Occurrence{
					Name:    name,
					Segment: r.SegmentId,
					Start:   r.StartIndex,
					End:     r.EndIndex,
					Named:   true,
				}
				s.out = append(s.out, s.coverTables(occ))
			}
		}
	}
	sortOccurrences(s.out)
	return s.out
}

type span struct{ start, end int64 }

type scanner struct {
	out    []Occurrence
	tables map[string][]span
}

func (s *scanner) walk(segment string, content []*docs.StructuralElement) {
	for _, el := range content {
		if el == nil {
			continue
		}
		switch {
		case el.Paragraph != nil:
			s.paragraph(segment, el.Paragraph)
		case el.Table != nil:
			s.tables[segment] = append(s.tables[segment], span{el.StartIndex, el.EndIndex})
			for _, row := range el.Table.TableRows {
				for _, cell := range row.TableCells {
					s.walk(segment, cell.Content)
				}
			}
		case el.TableOfContents != nil:
			s.walk(segment, el.TableOfContents.Content)
		}
	}
}

func (s *scanner) paragraph(segment string, p *docs.Paragraph) {
	if len(p.Elements) == 0 {
		return
	}
	base := p.Elements[0].StartIndex
	var b strings.Builder
	for _, pe := range p.Elements {
		if pe.TextRun != nil {
			b.WriteString(pe.TextRun.Content)
			continue
		}
		b.WriteString(strings.Repeat(objectReplacement, int(pe.EndIndex-pe.StartIndex)))
	}
	text := b.String()

	var (
		offset int64
		last   int
	)
	for _, m := range markerPattern.FindAllStringSubmatchIndex(text, -1) {
		offset += utf16Len(text[last:m[0]])
		start := base + offset
		end := start + utf16Len(text[m[0]:m[1]])
		if name := text[m[2]:m[3]]; utf16Len(name) <= maxNameLen {
			s.out = append(s.out, Occurrence{
				Name:    name,
				Segment: segment,
				Start:   start,
				End:     end,
			})
		}
		offset += end - start
		last = m[1]
	}
}

// coverTables widens a named occurrence so that it fully contains any table
// starting inside it; table content is only deleted as a whole.
func (s *scanner) coverTables(occ Occurrence) Occurrence {
	for _, t := range s.tables[occ.Segment] {
		if t.start >= occ.Start && t.start < occ.End && t.end > occ.End {
			occ.End = t.end
		}
	}
	return occ
}

func sortOccurrences(occs []Occurrence) {
	sort.SliceStable(occs, func(i, j int) bool {
		if occs[i].Segment != occs[j].Segment {
			return occs[i].Segment < occs[j].Segment
		}
		if occs[i].Start != occs[j].Start {
			return occs[i].Start > occs[j].Start
		}
		return occs[i].End > occs[j].End
	})
}

package filler

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"unicode/utf16"

	"google.golang.org/api/docs/v1"
	"google.golang.org/api/googleapi"
)

// Units the fake uses for table structure. Cell paragraphs are '\n'.
const (
	unitTableStart = 0x0001
	unitRowStart   = 0x0002
	unitCellStart  = 0x0003
	unitTableEnd   = 0x0004
	unitImage      = 0xFFFC
)

// fakeDoc models the body of a document as one flat run of UTF-16 units
// starting at index 1, the way the Docs API indexes it.
type fakeDoc struct {
	units []uint16
	links []string
	named map[string][]span
}

func newFakeDoc(body string) *fakeDoc {
	d := &fakeDoc{named: map[string][]span{}}
	d.units = utf16.Encode([]rune(body + "\n"))
	d.links = make([]string, len(d.units))
	return d
}

func (d *fakeDoc) clone() *fakeDoc {
	c := &fakeDoc{
		units: append([]uint16(nil), d.units...),
		links: append([]string(nil), d.links...),
		named: map[string][]span{},
	}
	for k, v := range d.named {
		c.named[k] = append([]span(nil), v...)
	}
	return c
}

// text is the body without its final newline.
func (d *fakeDoc) text() string {
	return string(utf16.Decode(d.units[:len(d.units)-1]))
}

// insert adds units before index. With inherit set, the new units take the
// link of the unit before them, as inserted text does in Docs.
func (d *fakeDoc) insert(index int64, units []uint16, inherit bool) error {
	pos := int(index - 1)
	if pos < 0 || pos >= len(d.units) {
		return fmt.Errorf("index %d out of bounds", index)
	}
	if pos > 0 {
		switch d.units[pos-1] {
		case unitTableStart, unitRowStart:
			return fmt.Errorf("index %d is not inside a paragraph", index)
		}
	}
	n := len(units)
	added := make([]string, n)
	if inherit && pos > 0 && d.units[pos-1] != '\n' && d.units[pos-1] != unitCellStart {
		for i := range added {
			added[i] = d.links[pos-1]
		}
	}
	d.units = append(d.units[:pos], append(append([]uint16(nil), units...), d.units[pos:]...)...)
	d.links = append(d.links[:pos], append(added, d.links[pos:]...)...)
	for name, spans := range d.named {
		for i := range spans {
			if spans[i].start >= index {
				spans[i].start += int64(n)
				spans[i].end += int64(n)
			} else if spans[i].end > index {
				spans[i].end += int64(n)
			}
		}
		d.named[name] = spans
	}
	return nil
}

func (d *fakeDoc) delete(start, end int64) error {
	if start < 1 || end <= start || int(end-1) >= len(d.units) {
		return fmt.Errorf("invalid range [%d, %d)", start, end)
	}
	d.units = append(d.units[:start-1], d.units[end-1:]...)
	d.links = append(d.links[:start-1], d.links[end-1:]...)
	move := func(p int64) int64 {
		switch {
		case p >= end:
			return p - (end - start)
		case p > start:
			return start
		}
		return p
	}
	for name, spans := range d.named {
		var kept []span
		for _, s := range spans {
			s = span{move(s.start), move(s.end)}
			if s.end > s.start {
				kept = append(kept, s)
			}
		}
		d.named[name] = kept
	}
	return nil
}

func (d *fakeDoc) apply(req *docs.Request) error {
	checkSegment := func(segment string) error {
		if segment != "" {
			return fmt.Errorf("unknown segment %q", segment)
		}
		return nil
	}
	switch {
	case req.DeleteContentRange != nil:
		r := req.DeleteContentRange.Range
		if err := checkSegment(r.SegmentId); err != nil {
			return err
		}
		return d.delete(r.StartIndex, r.EndIndex)
	case req.InsertText != nil:
		if req.InsertText.Text == "" {
			return fmt.Errorf("insertText: empty text")
		}
		if err := checkSegment(req.InsertText.Location.SegmentId); err != nil {
			return err
		}
		return d.insert(req.InsertText.Location.Index, utf16.Encode([]rune(req.InsertText.Text)), true)
	case req.UpdateTextStyle != nil:
		r := req.UpdateTextStyle.Range
		if req.UpdateTextStyle.Fields != "link" || req.UpdateTextStyle.TextStyle == nil {
			return fmt.Errorf("updateTextStyle: unsupported fields %q", req.UpdateTextStyle.Fields)
		}
		if r.StartIndex < 1 || int(r.EndIndex-1) > len(d.units) {
			return fmt.Errorf("updateTextStyle: invalid range")
		}
		url := ""
		if l := req.UpdateTextStyle.TextStyle.Link; l != nil {
			url = l.Url
		}
		for i := r.StartIndex - 1; i < r.EndIndex-1; i++ {
			d.links[i] = url
		}
		return nil
	case req.InsertInlineImage != nil:
		if req.InsertInlineImage.Uri == "" {
			return fmt.Errorf("insertInlineImage: uri required")
		}
		return d.insert(req.InsertInlineImage.Location.Index, []uint16{unitImage}, false)
	case req.InsertTable != nil:
		t := req.InsertTable
		units := []uint16{'\n', unitTableStart}
		for r := int64(0); r < t.Rows; r++ {
			units = append(units, unitRowStart)
			for c := int64(0); c < t.Columns; c++ {
				units = append(units, unitCellStart, '\n')
			}
		}
		units = append(units, unitTableEnd)
		return d.insert(t.Location.Index, units, false)
	case req.CreateNamedRange != nil:
		r := req.CreateNamedRange.Range
		if r.EndIndex <= r.StartIndex {
			return fmt.Errorf("createNamedRange: empty range")
		}
		d.named[req.CreateNamedRange.Name] = append(d.named[req.CreateNamedRange.Name], span{r.StartIndex, r.EndIndex})
		return nil
	case req.DeleteNamedRange != nil:
		if _, ok := d.named[req.DeleteNamedRange.Name]; !ok {
			return fmt.Errorf("deleteNamedRange: no range named %q", req.DeleteNamedRange.Name)
		}
		delete(d.named, req.DeleteNamedRange.Name)
		return nil
	}
	return fmt.Errorf("unsupported request")
}

// document renders the fake as a Docs API document with a single paragraph.
func (d *fakeDoc) document(id string) *docs.Document {
	para := &docs.Paragraph{}
	flush := func(start, end int) {
		if start == end {
			return
		}
		pe := &docs.ParagraphElement{StartIndex: int64(start + 1), EndIndex: int64(end + 1)}
		if d.units[start] == unitImage {
			pe.InlineObjectElement = &docs.InlineObjectElement{InlineObjectId: fmt.Sprintf("kix.%d", start)}
		} else {
			pe.TextRun = &docs.TextRun{Content: string(utf16.Decode(d.units[start:end]))}
			if d.links[start] != "" {
				pe.TextRun.TextStyle = &docs.TextStyle{Link: &docs.Link{Url: d.links[start]}}
			}
		}
		para.Elements = append(para.Elements, pe)
	}
	start := 0
	for i := 1; i <= len(d.units); i++ {
		if i == len(d.units) || d.units[i] == unitImage || d.units[i-1] == unitImage || d.links[i] != d.links[i-1] {
			flush(start, i)
			start = i
		}
	}

	doc := &docs.Document{
		DocumentId: id,
		Body: &docs.Body{Content: []*docs.StructuralElement{
			{EndIndex: 1, SectionBreak: &docs.SectionBreak{}},
			{StartIndex: 1, EndIndex: int64(len(d.units) + 1), Paragraph: para},
		}},
		NamedRanges: map[string]docs.NamedRanges{},
	}
	names := make([]string, 0, len(d.named))
	for name := range d.named {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		nr := &docs.NamedRange{Name: name, NamedRangeId: "kix." + name}
		for _, s := range d.named[name] {
			nr.Ranges = append(nr.Ranges, &docs.Range{StartIndex: s.start, EndIndex: s.end})
		}
		doc.NamedRanges[name] = docs.NamedRanges{Name: name, NamedRanges: []*docs.NamedRange{nr}}
	}
	return doc
}

type fakeDocs struct {
	docs    map[string]*fakeDoc
	batches int
	fail    error
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{docs: map[string]*fakeDoc{}}
}

func (f *fakeDocs) Get(_ context.Context, id string) (*docs.Document, error) {
	d, ok := f.docs[id]
	if !ok {
		return nil, &googleapi.Error{Code: http.StatusNotFound, Message: "Requested entity was not found."}
	}
	return d.document(id), nil
}

// BatchUpdate applies every request or none of them.
func (f *fakeDocs) BatchUpdate(_ context.Context, id string, requests []*docs.Request) error {
	d, ok := f.docs[id]
	if !ok {
		return &googleapi.Error{Code: http.StatusNotFound, Message: "Requested entity was not found."}
	}
	if f.fail != nil {
		return f.fail
	}
	f.batches++
	next := d.clone()
	for i, req := range requests {
		if err := next.apply(req); err != nil {
			return &googleapi.Error{
				Code:    http.StatusBadRequest,
				Message: fmt.Sprintf("Invalid requests[%d]: %v", i, err),
			}
		}
	}
	f.docs[id] = next
	return nil
}

type fakeImages struct {
	uploaded []string
	removed  []string
	fail     error
}

func (f *fakeImages) Upload(_ context.Context, name string, img Image) (string, func(context.Context) error, error) {
	if f.fail != nil {
		return "", nil, f.fail
	}
	uri := "https://images.test/" + name
	f.uploaded = append(f.uploaded, uri)
	return uri, func(context.Context) error {
		f.removed = append(f.removed, uri)
		return nil
	}, nil
}

// cellTexts returns the cell contents of every table in d, in document order.
func (d *fakeDoc) cellTexts() [][]string {
	var (
		tables [][]string
		cur    []string
		cell   *strings.Builder
	)
	for _, u := range d.units {
		switch u {
		case unitTableStart:
			cur = nil
		case unitCellStart:
			if cell != nil {
				cur = append(cur, cell.String())
			}
			cell = &strings.Builder{}
		case unitTableEnd:
			if cell != nil {
				cur = append(cur, cell.String())
			}
			cell = nil
			tables = append(tables, cur)
		case unitRowStart:
			if cell != nil {
				cur = append(cur, cell.String())
				cell = nil
			}
		case '\n':
			if cell != nil {
				cur = append(cur, cell.String())
				cell = nil
			}
		default:
			if cell != nil {
				cell.WriteRune(rune(u))
			}
		}
	}
	return tables
}

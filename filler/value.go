package filler

import (
	"errors"
	"fmt"
	"unicode/utf16"
)

// ErrEmptyValue is returned for values that would insert no content.
var ErrEmptyValue = errors.New("replacement value is empty")

// Value is what a marker is replaced with. The set of implementations is
// closed: Text, Link, Image and Table.
type Value interface {
	isValue()
}

// Text is inserted as a plain text run.
type Text string

// Link is inserted as Text styled with a hyperlink to URL.
type Link struct {
	URL  string `json:"url" yaml:"url"`
	Text string `json:"text" yaml:"text"`
}

// Image is inserted as an inline image. Data holds the encoded PNG, JPEG or GIF bytes.
type Image struct {
	Data     []byte
	MIMEType string
}

// Table is inserted as a grid with a header row built from Columns.
type Table struct {
	Columns []string   `json:"columns" yaml:"columns"`
	Rows    [][]string `json:"rows" yaml:"rows"`
}

func (Text) isValue()  {}
func (Link) isValue()  {}
func (Image) isValue() {}
func (Table) isValue() {}

// Validate reports whether v can be inserted into a document.
func Validate(v Value) error {
	switch v := v.(type) {
	case Text:
		if v == "" {
			return ErrEmptyValue
		}
	case Link:
		if v.Text == "" {
			return ErrEmptyValue
		}
		if v.URL == "" {
			return errors.New("link url is required")
		}
	case Image:
		if len(v.Data) == 0 {
			return ErrEmptyValue
		}
	case Table:
		if len(v.Columns) == 0 {
			return ErrEmptyValue
		}
		for i, row := range v.Rows {
			if len(row) > len(v.Columns) {
				return fmt.Errorf("table row %d has %d cells, want at most %d", i, len(row), len(v.Columns))
			}
		}
	case nil:
		return errors.New("nil replacement value")
	default:
		return fmt.Errorf("unsupported replacement value %T", v)
	}
	return nil
}

// utf16Len is the length of s in the document's index space.
func utf16Len(s string) int64 {
	var n int64
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += int64(l)
		} else {
			n++
		}
	}
	return n
}

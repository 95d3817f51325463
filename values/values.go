// Package values builds marker replacement values from a values file.
//
// A values file maps marker names to entries. A scalar becomes text (or a
// link when it is a single Markdown link); a mapping selects exactly one
// kind:
//
//	title: Quarterly report
//	home: "[Our site](https://example.com)"
//	contact: {link: {url: "mailto:team@example.com", text: Write to us}}
//	intro: {markdown: "**Bold** claims, _carefully_ made."}
//	logo: {image: logo.png}
//	trend: {chart: {title: Sales, x: [1, 2, 3], series: [{label: EU, y: [3, 5, 4]}]}}
//	figures: {table: {csv: figures.csv}}
//	summary: {prompt: "Summarize last quarter in two sentences", words: 60}
//
// JSON documents are valid YAML and decode the same way.
package values

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"push_to_gdoc/filler"
	"push_to_gdoc/generator"
)

// Writer produces text for prompt entries.
type Writer interface {
	Write(ctx context.Context, brief generator.Brief) (string, error)
}

// Loader decodes values documents.
type Loader struct {
	// BaseDir resolves relative image and CSV paths. When empty, entries
	// referring to files are rejected.
	BaseDir string
	// Writer handles prompt entries; they are rejected when nil.
	Writer Writer
}

// Load reads a values file; relative paths inside it are resolved against
// the file's directory.
func Load(ctx context.Context, path string, w Writer) (map[string]filler.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	l := Loader{BaseDir: filepath.Dir(path), Writer: w}
	return l.Decode(ctx, data)
}

type linkEntry struct {
	URL  string `yaml:"url"`
	Text string `yaml:"text"`
}

type tableEntry struct {
	CSV     string     `yaml:"csv"`
	Columns []string   `yaml:"columns"`
	Rows    [][]string `yaml:"rows"`
}

type entry struct {
	scalar *string

	Link        *linkEntry  `yaml:"link"`
	Markdown    *string     `yaml:"markdown"`
	Image       string      `yaml:"image"`
	ImageBase64 string      `yaml:"image_base64"`
	Chart       *Chart      `yaml:"chart"`
	Table       *tableEntry `yaml:"table"`
	Prompt      string      `yaml:"prompt"`
	Words       int         `yaml:"words"`
	Tone        string      `yaml:"tone"`
}

func (e *entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if node.ShortTag() == "!!null" {
			return errors.New("empty entry")
		}
		s := node.Value
		e.scalar = &s
		return nil
	}
	type plain entry
	return node.Decode((*plain)(e))
}

func (e *entry) kinds() int {
	n := 0
	for _, set := range []bool{
		e.Link != nil,
		e.Markdown != nil,
		e.Image != "",
		e.ImageBase64 != "",
		e.Chart != nil,
		e.Table != nil,
		e.Prompt != "",
	} {
		if set {
			n++
		}
	}
	return n
}

// Decode parses a values document.
func (l Loader) Decode(ctx context.Context, data []byte) (map[string]filler.Value, error) {
	var raw map[string]*entry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse values: %w", err)
	}
	out := make(map[string]filler.Value, len(raw))
	for name, e := range raw {
		if e == nil {
			return nil, fmt.Errorf("marker %q: empty entry", name)
		}
		v, err := l.value(ctx, e)
		if err != nil {
			return nil, fmt.Errorf("marker %q: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

func (l Loader) value(ctx context.Context, e *entry) (filler.Value, error) {
	if e.scalar != nil {
		return ParseInline(*e.scalar), nil
	}
	if e.kinds() != 1 {
		return nil, errors.New("want exactly one of link, markdown, image, image_base64, chart, table, prompt")
	}
	switch {
	case e.Link != nil:
		return filler.Link{URL: e.Link.URL, Text: e.Link.Text}, nil
	case e.Markdown != nil:
		return Markdown(*e.Markdown), nil
	case e.Image != "":
		path, err := l.path(e.Image)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return NewImage(data)
	case e.ImageBase64 != "":
		data, err := base64.StdEncoding.DecodeString(e.ImageBase64)
		if err != nil {
			return nil, fmt.Errorf("decode image_base64: %w", err)
		}
		return NewImage(data)
	case e.Chart != nil:
		return RenderChart(*e.Chart)
	case e.Table != nil:
		return l.table(e.Table)
	default:
		if l.Writer == nil {
			return nil, errors.New("prompt entries need an llm configuration")
		}
		text, err := l.Writer.Write(ctx, generator.Brief{Prompt: e.Prompt, Words: e.Words, Tone: e.Tone})
		if err != nil {
			return nil, err
		}
		return Markdown(text), nil
	}
}

func (l Loader) table(t *tableEntry) (filler.Table, error) {
	if t.CSV == "" {
		return filler.Table{Columns: t.Columns, Rows: t.Rows}, nil
	}
	if len(t.Columns) > 0 || len(t.Rows) > 0 {
		return filler.Table{}, errors.New("table: csv cannot be combined with columns or rows")
	}
	path, err := l.path(t.CSV)
	if err != nil {
		return filler.Table{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return filler.Table{}, err
	}
	defer f.Close()
	return TableFromCSV(f)
}

func (l Loader) path(p string) (string, error) {
	if l.BaseDir == "" {
		return "", fmt.Errorf("file reference %q not allowed here", p)
	}
	if filepath.IsAbs(p) {
		return p, nil
	}
	return filepath.Join(l.BaseDir, p), nil
}

// NewImage wraps encoded image bytes, detecting their MIME type. The Docs
// API accepts PNG, JPEG and GIF.
func NewImage(data []byte) (filler.Image, error) {
	mime := http.DetectContentType(data)
	switch mime {
	case "image/png", "image/jpeg", "image/gif":
		return filler.Image{Data: data, MIMEType: mime}, nil
	}
	return filler.Image{}, fmt.Errorf("unsupported image type %s", strings.TrimSpace(mime))
}

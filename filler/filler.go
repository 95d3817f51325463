package filler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"sort"
	"strings"
)

// Filler replaces markers in Google Docs documents.
type Filler struct {
	docs    DocumentService
	images  ImageHost
	verbose bool
	logger  *log.Logger
}

// New creates a Filler. images may be nil when no Image values are used.
func New(docs DocumentService, images ImageHost, verbose bool, logger *log.Logger) (*Filler, error) {
	if docs == nil {
		return nil, errors.New("document service is required")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Filler{
		docs:    docs,
		images:  images,
		verbose: verbose,
		logger:  logger,
	}, nil
}

func (f *Filler) infof(format string, args ...interface{}) {
	if !f.verbose {
		return
	}
	f.logger.Printf("[INFO] "+format, args...)
}

// Markers lists the markers and previously filled ranges of a document.
func (f *Filler) Markers(ctx context.Context, documentID string) ([]Occurrence, error) {
	doc, err := f.docs.Get(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", documentID, err)
	}
	return Scan(doc), nil
}

// Replace replaces every occurrence of the markers named in mapping, and the
// content inserted for them by earlier runs, in one batch update.
// Markers without an entry in mapping are left alone.
func (f *Filler) Replace(ctx context.Context, documentID string, mapping map[string]Value) error {
	doc, err := f.docs.Get(ctx, documentID)
	if err != nil {
		return fmt.Errorf("get document %s: %w", documentID, err)
	}
	occs := Select(Scan(doc), mapping)
	if len(occs) == 0 {
		f.infof("No markers to replace in %s", documentID)
		return nil
	}
	f.infof("Found %d marker occurrences in %s", len(occs), documentID)

	for _, name := range markerNames(occs) {
		if err := Validate(mapping[name]); err != nil {
			return fmt.Errorf("marker %q: %w", name, err)
		}
	}

	uris, cleanup, err := f.hostImages(ctx, occs, mapping)
	defer cleanup()
	if err != nil {
		return err
	}

	plan, err := BuildPlan(occs, mapping, uris)
	if err != nil {
		return err
	}
	if err := f.docs.BatchUpdate(ctx, documentID, plan.Requests); err != nil {
		return fmt.Errorf("update document %s: %w", documentID, err)
	}
	for _, p := range plan.Placements {
		f.infof("Replaced %s -> [%d, %d)", p.Name, p.Start, p.End)
	}
	return nil
}

// hostImages uploads each Image value once. The returned cleanup removes
// whatever was uploaded and is safe to call on error.
func (f *Filler) hostImages(ctx context.Context, occs []Occurrence, mapping map[string]Value) (map[string]string, func(), error) {
	uris := map[string]string{}
	var removers []func(context.Context) error
	cleanup := func() {
		rctx := context.WithoutCancel(ctx)
		for _, remove := range removers {
			if err := remove(rctx); err != nil {
				f.logger.Printf("[WARN] remove temporary image: %v", err)
			}
		}
	}

	for _, name := range markerNames(occs) {
		img, ok := mapping[name].(Image)
		if !ok {
			continue
		}
		if f.images == nil {
			return nil, cleanup, fmt.Errorf("marker %q: no image host configured", name)
		}
		uri, remove, err := f.images.Upload(ctx, imageName(name, img.MIMEType), img)
		if err != nil {
			return nil, cleanup, err
		}
		removers = append(removers, remove)
		uris[name] = uri
		f.infof("Uploaded image for %s -> %s", name, uri)
	}
	return uris, cleanup, nil
}

func markerNames(occs []Occurrence) []string {
	seen := map[string]bool{}
	var names []string
	for _, occ := range occs {
		if !seen[occ.Name] {
			seen[occ.Name] = true
			names = append(names, occ.Name)
		}
	}
	sort.Strings(names)
	return names
}

func imageName(marker, mimeType string) string {
	ext := ".png"
	if _, sub, ok := strings.Cut(mimeType, "/"); ok && sub != "" {
		ext = "." + sub
	}
	return "push_to_gdoc-" + path.Base(marker) + ext
}

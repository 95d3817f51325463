package filler

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// Services bundles the Google API clients used to fill documents.
type Services struct {
	Docs  *docs.Service
	Drive *drive.Service
}

// NewServices builds the Docs and Drive clients from cfg.CredentialsFile.
func NewServices(ctx context.Context, cfg Config) (*Services, error) {
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}
	creds, err := google.CredentialsFromJSON(ctx, data, docs.DocumentsScope, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials %s: %w", cfg.CredentialsFile, err)
	}
	docsSvc, err := docs.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("unable to create Docs service: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("unable to create Drive service: %w", err)
	}
	return &Services{Docs: docsSvc, Drive: driveSvc}, nil
}

// DocumentService is the part of the Docs API a Filler needs.
type DocumentService interface {
	Get(ctx context.Context, documentID string) (*docs.Document, error)
	BatchUpdate(ctx context.Context, documentID string, requests []*docs.Request) error
}

// ImageHost makes image bytes reachable by URI for the duration of a batch.
type ImageHost interface {
	// Upload stores img and returns its URI along with a func removing it.
	Upload(ctx context.Context, name string, img Image) (uri string, remove func(context.Context) error, err error)
}

type docsAPI struct {
	svc *docs.Service
}

// NewDocumentService adapts a Docs API client.
func NewDocumentService(svc *docs.Service) DocumentService {
	return &docsAPI{svc: svc}
}

func (d *docsAPI) Get(ctx context.Context, documentID string) (*docs.Document, error) {
	return d.svc.Documents.Get(documentID).Context(ctx).Do()
}

func (d *docsAPI) BatchUpdate(ctx context.Context, documentID string, requests []*docs.Request) error {
	_, err := d.svc.Documents.BatchUpdate(documentID, &docs.BatchUpdateDocumentRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}

type driveHost struct {
	svc      *drive.Service
	folderID string
}

// NewDriveImageHost uploads images as Drive files readable by anyone with
// the link. The Docs API copies an image when it is inserted, so the file
// can be removed right after the batch.
func NewDriveImageHost(svc *drive.Service, folderID string) ImageHost {
	return &driveHost{svc: svc, folderID: folderID}
}

func (d *driveHost) Upload(ctx context.Context, name string, img Image) (string, func(context.Context) error, error) {
	meta := &drive.File{Name: name, MimeType: img.MIMEType}
	if d.folderID != "" {
		meta.Parents = []string{d.folderID}
	}
	f, err := d.svc.Files.Create(meta).
		Media(bytes.NewReader(img.Data)).
		Fields("id", "webContentLink").
		Context(ctx).
		Do()
	if err != nil {
		return "", nil, fmt.Errorf("upload image %s: %w", name, err)
	}
	remove := func(ctx context.Context) error {
		return d.svc.Files.Delete(f.Id).Context(ctx).Do()
	}

	if _, err := d.svc.Permissions.Create(f.Id, &drive.Permission{Type: "anyone", Role: "reader"}).Context(ctx).Do(); err != nil {
		_ = remove(ctx)
		return "", nil, fmt.Errorf("share image %s: %w", name, err)
	}

	uri := f.WebContentLink
	if uri == "" {
		uri = "https://drive.google.com/uc?export=download&id=" + f.Id
	}
	return uri, remove, nil
}

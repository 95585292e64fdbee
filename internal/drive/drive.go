package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"chaindrive/internal/domain"
)

const (
	fileFields  = "id, name, mimeType, size, modifiedTime, parents"
	listFields  = "nextPageToken, files(" + fileFields + ")"
	defaultPage = 50
	// maxDownload caps downloads held in memory.
	maxDownload = 64 << 20
)

// ErrNotFound is returned when the requested file does not exist.
var ErrNotFound = errors.New("file not found")

// Storage is a stateless Drive client factory.
type Storage struct {
	opts []option.ClientOption
}

// New returns a Storage. opts are appended after the per-call token source,
// e.g. option.WithEndpoint for tests.
func New(opts ...option.ClientOption) *Storage {
	return &Storage{opts: opts}
}

func (s *Storage) service(ctx context.Context, token string) (*drive.Service, error) {
	if token == "" {
		return nil, domain.ErrNotAuthenticated
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, s.opts...)
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive client: %w", err)
	}
	return svc, nil
}

// List returns one page of files matching q.
func (s *Storage) List(ctx context.Context, token string, q domain.ListQuery) (domain.FileList, error) {
	svc, err := s.service(ctx, token)
	if err != nil {
		return domain.FileList{}, err
	}
	size := q.PageSize
	if size <= 0 {
		size = defaultPage
	}
	call := svc.Files.List().
		PageSize(int64(size)).
		Fields(listFields).
		OrderBy("modifiedTime desc").
		Context(ctx)
	if q.PageToken != "" {
		call = call.PageToken(q.PageToken)
	}
	if q.Query != "" {
		call = call.Q(q.Query)
	}
	res, err := call.Do()
	if err != nil {
		return domain.FileList{}, classify(err)
	}

	out := domain.FileList{NextPageToken: res.NextPageToken, Files: make([]domain.File, 0, len(res.Files))}
	for _, f := range res.Files {
		out.Files = append(out.Files, toFile(f))
	}
	return out, nil
}

// Download returns the content of fileID.
func (s *Storage) Download(ctx context.Context, token, fileID string) ([]byte, error) {
	svc, err := s.service(ctx, token)
	if err != nil {
		return nil, err
	}
	resp, err := svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fileID, err)
	}
	if len(b) > maxDownload {
		return nil, fmt.Errorf("file %s exceeds %d bytes", fileID, maxDownload)
	}
	return b, nil
}

// Upload creates a file named name in folderID (or the root) with content.
func (s *Storage) Upload(
	ctx context.Context,
	token string,
	content []byte,
	name string,
	folderID string,
	progress domain.ProgressFunc,
) (domain.File, error) {
	svc, err := s.service(ctx, token)
	if err != nil {
		return domain.File{}, err
	}
	meta := &drive.File{Name: name}
	if folderID != "" {
		meta.Parents = []string{folderID}
	}
	total := int64(len(content))
	call := svc.Files.Create(meta).
		Media(bytes.NewReader(content), googleapi.ContentType(http.DetectContentType(content))).
		Fields(fileFields).
		Context(ctx)
	if progress != nil {
		call = call.ProgressUpdater(func(current, _ int64) { progress(current, total) })
	}
	f, err := call.Do()
	if err != nil {
		return domain.File{}, classify(err)
	}
	if progress != nil {
		progress(total, total)
	}
	return toFile(f), nil
}

// CreateFolder creates a folder under parentID (or the root).
func (s *Storage) CreateFolder(ctx context.Context, token, name, parentID string) (domain.File, error) {
	svc, err := s.service(ctx, token)
	if err != nil {
		return domain.File{}, err
	}
	meta := &drive.File{Name: name, MimeType: domain.FolderMimeType}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}
	f, err := svc.Files.Create(meta).Fields(fileFields).Context(ctx).Do()
	if err != nil {
		return domain.File{}, classify(err)
	}
	return toFile(f), nil
}

// Delete permanently removes fileID.
func (s *Storage) Delete(ctx context.Context, token, fileID string) error {
	svc, err := s.service(ctx, token)
	if err != nil {
		return err
	}
	if err := svc.Files.Delete(fileID).Context(ctx).Do(); err != nil {
		return classify(err)
	}
	return nil
}

func toFile(f *drive.File) domain.File {
	out := domain.File{
		ID:       f.Id,
		Name:     f.Name,
		MimeType: f.MimeType,
		Size:     f.Size,
		Parents:  f.Parents,
	}
	if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
		out.ModifiedTime = t
	}
	return out
}

// classify maps Drive status codes onto domain sentinels.
func classify(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	switch gerr.Code {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %v", domain.ErrNotAuthenticated, err)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

// Compile-time assertion that Storage implements domain.FileStorage.
var _ domain.FileStorage = (*Storage)(nil)

package files

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"chaindrive/internal/domain"
	"chaindrive/internal/session"
)

// DefaultPageSize is used when a list request does not set one.
const DefaultPageSize = 50

// ErrEmptyName is returned for uploads and folders without a name.
var ErrEmptyName = errors.New("name must not be empty")

// Service lists, uploads, downloads and deletes Drive files for a session.
type Service struct {
	storage domain.FileStorage
	log     *zap.Logger
}

// New returns a file browser controller.
func New(st domain.FileStorage, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{storage: st, log: log}
}

// List returns one page of files. First pages are cached on the session.
func (s *Service) List(ctx context.Context, sess *session.Session, q domain.ListQuery) (domain.FileList, error) {
	token, release, err := s.begin(sess, session.DriveListing)
	if err != nil {
		return domain.FileList{}, err
	}
	defer release()

	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.Query == "" {
		q.Query = "trashed = false"
	}
	res, err := s.storage.List(ctx, token, q)
	if err != nil {
		return domain.FileList{}, s.fail(sess, "list", "", err)
	}
	if q.PageToken == "" {
		sess.SetFiles(res)
	}
	return res, nil
}

// Upload stores content as name inside folderID, recording progress on the session.
func (s *Service) Upload(
	ctx context.Context,
	sess *session.Session,
	name string,
	content []byte,
	folderID string,
) (domain.File, error) {
	if strings.TrimSpace(name) == "" {
		return domain.File{}, ErrEmptyName
	}
	token, release, err := s.begin(sess, session.DriveUploading)
	if err != nil {
		return domain.File{}, err
	}
	defer release()

	f, err := s.storage.Upload(ctx, token, content, name, folderID, sess.SetUploadProgress)
	if err != nil {
		return domain.File{}, s.fail(sess, "upload", name, err)
	}
	s.log.Info("file uploaded", zap.String("file", name), zap.Int("bytes", len(content)))
	sess.Notify(domain.LevelInfo, "upload", name, "Uploaded "+name)
	s.refresh(ctx, sess, token)
	return f, nil
}

// Download returns the content of fileID. name is used for notifications only.
func (s *Service) Download(ctx context.Context, sess *session.Session, fileID, name string) ([]byte, error) {
	token, release, err := s.begin(sess, session.DriveDownloading)
	if err != nil {
		return nil, err
	}
	defer release()

	b, err := s.storage.Download(ctx, token, fileID)
	if err != nil {
		return nil, s.fail(sess, "download", name, err)
	}
	return b, nil
}

// Delete removes fileID.
func (s *Service) Delete(ctx context.Context, sess *session.Session, fileID, name string) error {
	token, release, err := s.begin(sess, session.DriveDeleting)
	if err != nil {
		return err
	}
	defer release()

	if err := s.storage.Delete(ctx, token, fileID); err != nil {
		return s.fail(sess, "delete", name, err)
	}
	label := name
	if label == "" {
		label = fileID
	}
	sess.Notify(domain.LevelInfo, "delete", name, "Deleted "+label)
	s.refresh(ctx, sess, token)
	return nil
}

// CreateFolder creates a folder under parentID.
func (s *Service) CreateFolder(ctx context.Context, sess *session.Session, name, parentID string) (domain.File, error) {
	if strings.TrimSpace(name) == "" {
		return domain.File{}, ErrEmptyName
	}
	token, release, err := s.begin(sess, session.DriveCreatingFolder)
	if err != nil {
		return domain.File{}, err
	}
	defer release()

	f, err := s.storage.CreateFolder(ctx, token, name, parentID)
	if err != nil {
		return domain.File{}, s.fail(sess, "create folder", name, err)
	}
	sess.Notify(domain.LevelInfo, "create folder", name, "Created folder "+name)
	s.refresh(ctx, sess, token)
	return f, nil
}

func (s *Service) begin(sess *session.Session, op session.DriveOp) (string, func(), error) {
	token, ok := sess.Token()
	if !ok {
		return "", nil, domain.ErrNotAuthenticated
	}
	release, err := sess.BeginDrive(op)
	if err != nil {
		return "", nil, err
	}
	return token, release, nil
}

// fail notifies the user and wraps err as a storage error.
func (s *Service) fail(sess *session.Session, op, name string, err error) error {
	s.log.Warn("drive operation failed", zap.String("op", op), zap.String("file", name), zap.Error(err))
	msg := "Drive " + op + " failed"
	if name != "" {
		msg += " for " + name
	}
	sess.Notify(domain.LevelError, op, name, msg+": "+err.Error())
	kind := domain.KindStorage
	if errors.Is(err, domain.ErrNotAuthenticated) {
		kind = domain.KindAuth
	}
	return domain.Wrap(kind, op, name, err)
}

// refresh re-lists the first page into the session cache. Failures are logged only.
func (s *Service) refresh(ctx context.Context, sess *session.Session, token string) {
	res, err := s.storage.List(ctx, token, domain.ListQuery{PageSize: DefaultPageSize, Query: "trashed = false"})
	if err != nil {
		s.log.Debug("file list refresh failed", zap.Error(err))
		return
	}
	sess.SetFiles(res)
}

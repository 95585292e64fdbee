package files_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"chaindrive/internal/domain"
	"chaindrive/internal/services/files"
	"chaindrive/internal/session"
)

type fakeStorage struct {
	files     []domain.File
	lastQuery domain.ListQuery
	err       error
	block     chan struct{}
	deleted   []string
}

func (f *fakeStorage) List(_ context.Context, _ string, q domain.ListQuery) (domain.FileList, error) {
	f.lastQuery = q
	if f.err != nil {
		return domain.FileList{}, f.err
	}
	return domain.FileList{Files: f.files}, nil
}

func (f *fakeStorage) Download(context.Context, string, string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("content"), nil
}

func (f *fakeStorage) Upload(
	_ context.Context,
	_ string,
	content []byte,
	name, _ string,
	progress domain.ProgressFunc,
) (domain.File, error) {
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return domain.File{}, f.err
	}
	progress(int64(len(content))/2, int64(len(content)))
	file := domain.File{ID: "new", Name: name}
	f.files = append(f.files, file)
	return file, nil
}

func (f *fakeStorage) CreateFolder(_ context.Context, _ string, name, _ string) (domain.File, error) {
	return domain.File{ID: "dir", Name: name, MimeType: domain.FolderMimeType}, nil
}

func (f *fakeStorage) Delete(_ context.Context, _ string, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func signedIn() *session.Session {
	s := session.New("t")
	s.SetAuth(domain.Identity{Email: "a@b.c"}, domain.Token{AccessToken: "tok"})
	return s
}

func TestList_DefaultsAndCache(t *testing.T) {
	st := &fakeStorage{files: []domain.File{{ID: "1", Name: "a.txt"}}}
	svc := files.New(st, zaptest.NewLogger(t))
	sess := signedIn()

	res, err := svc.List(context.Background(), sess, domain.ListQuery{})
	require.NoError(t, err)

	assert.Len(t, res.Files, 1)
	assert.Equal(t, files.DefaultPageSize, st.lastQuery.PageSize)
	assert.Equal(t, "trashed = false", st.lastQuery.Query)
	assert.Equal(t, res, sess.Files())
	assert.Equal(t, session.DriveNone, sess.DriveOp())
}

func TestList_RequiresToken(t *testing.T) {
	svc := files.New(&fakeStorage{}, zaptest.NewLogger(t))
	_, err := svc.List(context.Background(), session.New("anon"), domain.ListQuery{})
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestUpload_ProgressAndRefresh(t *testing.T) {
	st := &fakeStorage{}
	svc := files.New(st, zaptest.NewLogger(t))
	sess := signedIn()

	f, err := svc.Upload(context.Background(), sess, "notes.txt", []byte("0123456789"), "")
	require.NoError(t, err)

	assert.Equal(t, "notes.txt", f.Name)
	assert.InDelta(t, 0.5, sess.UploadProgress(), 1e-9)
	assert.Len(t, sess.Files().Files, 1)
}

func TestUpload_BusyDuringUpload(t *testing.T) {
	st := &fakeStorage{block: make(chan struct{})}
	svc := files.New(st, zaptest.NewLogger(t))
	sess := signedIn()

	done := make(chan error, 1)
	go func() {
		_, err := svc.Upload(context.Background(), sess, "a", []byte("x"), "")
		done <- err
	}()
	require.Eventually(t, func() bool { return sess.DriveOp() == session.DriveUploading }, time.Second, time.Millisecond)

	_, err := svc.List(context.Background(), sess, domain.ListQuery{})
	assert.ErrorIs(t, err, domain.ErrBusy)

	close(st.block)
	require.NoError(t, <-done)
}

func TestStorageFailureNotifies(t *testing.T) {
	st := &fakeStorage{err: errors.New("500 backend error")}
	svc := files.New(st, zaptest.NewLogger(t))
	sess := signedIn()

	err := svc.Delete(context.Background(), sess, "id1", "report.pdf")
	require.Error(t, err)
	assert.Equal(t, domain.KindStorage, domain.KindOf(err))

	ns := sess.Notifications()
	require.Len(t, ns, 1)
	assert.Equal(t, domain.LevelError, ns[0].Level)
	assert.Equal(t, "delete", ns[0].Operation)
	assert.Equal(t, "report.pdf", ns[0].FileName)
}

func TestAuthFailureClassified(t *testing.T) {
	st := &fakeStorage{err: domain.ErrNotAuthenticated}
	svc := files.New(st, zaptest.NewLogger(t))

	_, err := svc.Download(context.Background(), signedIn(), "id", "x")
	assert.Equal(t, domain.KindAuth, domain.KindOf(err))
}

func TestCreateFolderAndDelete(t *testing.T) {
	st := &fakeStorage{}
	svc := files.New(st, zaptest.NewLogger(t))
	sess := signedIn()

	dir, err := svc.CreateFolder(context.Background(), sess, "keys", "")
	require.NoError(t, err)
	assert.True(t, dir.IsFolder())

	require.NoError(t, svc.Delete(context.Background(), sess, "dir", "keys"))
	assert.Equal(t, []string{"dir"}, st.deleted)

	_, err = svc.CreateFolder(context.Background(), sess, " ", "")
	assert.ErrorIs(t, err, files.ErrEmptyName)
}

package server

import (
	"context"

	"chaindrive/internal/domain"
	"chaindrive/internal/session"
)

// Accounts is the keystore lifecycle controller.
type Accounts interface {
	Generate(ctx context.Context, sess *session.Session, label string) (domain.Account, error)
	Persist(ctx context.Context, sess *session.Session) (domain.File, error)
	Retrieve(ctx context.Context, sess *session.Session) (domain.Account, error)
}

// Transactions is the test-transaction workflow.
type Transactions interface {
	Submit(ctx context.Context, sess *session.Session) (domain.TransactionResult, error)
}

// Files is the Drive file browser.
type Files interface {
	List(ctx context.Context, sess *session.Session, q domain.ListQuery) (domain.FileList, error)
	Upload(ctx context.Context, sess *session.Session, name string, content []byte, folderID string) (domain.File, error)
	Download(ctx context.Context, sess *session.Session, fileID, name string) ([]byte, error)
	Delete(ctx context.Context, sess *session.Session, fileID, name string) error
	CreateFolder(ctx context.Context, sess *session.Session, name, parentID string) (domain.File, error)
}

// Identity runs the OAuth login flow.
type Identity interface {
	LoginURL(state string) string
	Complete(ctx context.Context, sess *session.Session, code string) (domain.Identity, error)
	Logout(sess *session.Session)
}

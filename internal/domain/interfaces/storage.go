package interfaces

import (
	"context"

	domaintypes "chaindrive/internal/domain/types"
)

// FileStorage is the remote file store. Every call carries the caller's
// bearer token; the adapter keeps no per-user state.
type FileStorage interface {
	List(ctx context.Context, token string, query domaintypes.ListQuery) (domaintypes.FileList, error)
	Download(ctx context.Context, token, fileID string) ([]byte, error)
	Upload(
		ctx context.Context,
		token string,
		content []byte,
		name string,
		folderID string,
		progress domaintypes.ProgressFunc,
	) (domaintypes.File, error)
	CreateFolder(ctx context.Context, token, name, parentID string) (domaintypes.File, error)
	Delete(ctx context.Context, token, fileID string) error
}

package types

import "time"

// FolderMimeType is the Drive mime type of folders.
const FolderMimeType = "application/vnd.google-apps.folder"

// File describes a remote file or folder.
type File struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	ModifiedTime time.Time `json:"modified_time"`
	Parents      []string  `json:"parents,omitempty"`
}

// IsFolder reports whether f is a folder.
func (f File) IsFolder() bool { return f.MimeType == FolderMimeType }

// FileList is one page of a listing.
type FileList struct {
	Files         []File `json:"files"`
	NextPageToken string `json:"next_page_token,omitempty"`
}

// ListQuery selects a page of files. Query follows the remote store's filter
// grammar, e.g. "name contains 'x' and trashed = false".
type ListQuery struct {
	PageSize  int
	PageToken string
	Query     string
}

// ProgressFunc receives upload progress as bytes sent and total bytes.
type ProgressFunc func(sent, total int64)

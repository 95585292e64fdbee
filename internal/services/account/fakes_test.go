package account_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"chaindrive/internal/domain"
)

// memStorage is an in-memory domain.FileStorage. List matches on the
// "name contains '<x>'" clause of the query only.
type memStorage struct {
	mu      sync.Mutex
	files   []domain.File
	content map[string][]byte
	queries []string
	nextID  int

	uploadErr error
}

func newMemStorage() *memStorage { return &memStorage{content: map[string][]byte{}} }

func (m *memStorage) put(name string, b []byte) domain.File {
	m.nextID++
	f := domain.File{ID: fmt.Sprintf("id-%d", m.nextID), Name: name, Size: int64(len(b))}
	// Newest first, like the adapter's modifiedTime ordering.
	m.files = append([]domain.File{f}, m.files...)
	m.content[f.ID] = b
	return f
}

func (m *memStorage) List(_ context.Context, _ string, q domain.ListQuery) (domain.FileList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q.Query)

	needle := ""
	if _, rest, ok := strings.Cut(q.Query, "name contains '"); ok {
		needle, _, _ = strings.Cut(rest, "'")
	}
	var out domain.FileList
	for _, f := range m.files {
		if strings.Contains(f.Name, needle) {
			out.Files = append(out.Files, f)
		}
	}
	return out, nil
}

func (m *memStorage) Download(_ context.Context, _ string, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.content[id]
	if !ok {
		return nil, fmt.Errorf("no file %s", id)
	}
	return b, nil
}

func (m *memStorage) Upload(
	_ context.Context,
	_ string,
	content []byte,
	name, _ string,
	_ domain.ProgressFunc,
) (domain.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploadErr != nil {
		return domain.File{}, m.uploadErr
	}
	return m.put(name, content), nil
}

func (m *memStorage) CreateFolder(context.Context, string, string, string) (domain.File, error) {
	return domain.File{}, nil
}

func (m *memStorage) Delete(context.Context, string, string) error { return nil }

func (m *memStorage) listQueries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// blockingKeystore wraps a real keystore and parks Generate until released.
type blockingKeystore struct {
	domain.AccountKeystore
	entered chan struct{}
	release chan struct{}

	mu    sync.Mutex
	calls int
}

func (b *blockingKeystore) Generate(label, pass string) (domain.Account, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	b.entered <- struct{}{}
	<-b.release
	return b.AccountKeystore.Generate(label, pass)
}

func jsonDoc(doc domain.KeystoreDocument) ([]byte, error) { return json.Marshal(doc) }

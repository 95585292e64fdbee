package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"chaindrive/internal/domain"
	"chaindrive/internal/server"
	"chaindrive/internal/session"
)

type fakeAccounts struct {
	generateErr error
	retrieved   *domain.Account
}

func (f *fakeAccounts) Generate(_ context.Context, sess *session.Session, label string) (domain.Account, error) {
	if f.generateErr != nil {
		return domain.Account{}, f.generateErr
	}
	acc := domain.Account{
		RecoveryPhrase: "twelve words",
		Address:        "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY",
		Keystore:       domain.KeystoreDocument{Encoded: "x"},
		Meta:           domain.AccountMeta{Name: label},
	}
	sess.SetAccount(acc)
	return acc, nil
}

func (f *fakeAccounts) Persist(context.Context, *session.Session) (domain.File, error) {
	return domain.File{}, domain.Wrap(domain.KindStorage, "persist", "k.json", assert.AnError)
}

func (f *fakeAccounts) Retrieve(_ context.Context, sess *session.Session) (domain.Account, error) {
	if f.retrieved != nil {
		sess.SetAccount(*f.retrieved)
		return *f.retrieved, nil
	}
	return domain.Account{}, domain.Wrap(domain.KindKeystore, "retrieve", "", domain.ErrKeystoreNotFound)
}

type fakeTxs struct{}

func (fakeTxs) Submit(_ context.Context, sess *session.Session) (domain.TransactionResult, error) {
	if err := sess.BeginTransaction(); err != nil {
		return domain.TransactionResult{}, err
	}
	sess.SetTxState(domain.TxSubmitting)
	res := domain.TransactionResult{Status: domain.TransactionSucceeded, TxHash: "0x1", BlockHash: "0x2"}
	sess.SettleTransaction(res)
	return res, nil
}

type fakeFiles struct {
	mu       sync.Mutex
	uploaded map[string][]byte
}

func (f *fakeFiles) List(_ context.Context, sess *session.Session, q domain.ListQuery) (domain.FileList, error) {
	if _, ok := sess.Token(); !ok {
		return domain.FileList{}, domain.ErrNotAuthenticated
	}
	return domain.FileList{Files: []domain.File{{ID: "1", Name: q.Query}}}, nil
}

func (f *fakeFiles) Upload(_ context.Context, _ *session.Session, name string, content []byte, _ string) (domain.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploaded == nil {
		f.uploaded = map[string][]byte{}
	}
	f.uploaded[name] = content
	return domain.File{ID: "up", Name: name}, nil
}

func (f *fakeFiles) Download(context.Context, *session.Session, string, string) ([]byte, error) {
	return []byte("file body"), nil
}

func (f *fakeFiles) Delete(context.Context, *session.Session, string, string) error { return nil }

func (f *fakeFiles) CreateFolder(_ context.Context, _ *session.Session, name, _ string) (domain.File, error) {
	return domain.File{ID: "d", Name: name, MimeType: domain.FolderMimeType}, nil
}

type fakeIdentity struct{}

func (fakeIdentity) LoginURL(state string) string {
	return "https://accounts.example/o/oauth2/auth?state=" + url.QueryEscape(state)
}

func (fakeIdentity) Complete(_ context.Context, sess *session.Session, code string) (domain.Identity, error) {
	if code != "good" {
		return domain.Identity{}, domain.Wrap(domain.KindAuth, "login", "", domain.ErrNotAuthenticated)
	}
	id := domain.Identity{Email: "ada@example.com", SubjectID: "1"}
	sess.SetAuth(id, domain.Token{AccessToken: "tok"})
	return id, nil
}

func (fakeIdentity) Logout(sess *session.Session) { sess.ClearAuth() }

type harness struct {
	srv    *httptest.Server
	client *http.Client
	files  *fakeFiles
	accs   *fakeAccounts
	reg    *session.Registry
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	files := &fakeFiles{}
	accs := &fakeAccounts{}
	reg := session.NewRegistry(time.Hour)
	s := server.New(
		server.Config{SessionKeys: [][]byte{bytes.Repeat([]byte{7}, 32)}},
		reg,
		accs, fakeTxs{}, files, fakeIdentity{},
		zaptest.NewLogger(t),
	)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &harness{srv: srv, client: client, files: files, accs: accs, reg: reg}
}

func (h *harness) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, h.srv.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := h.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (h *harness) signIn(t *testing.T) {
	t.Helper()
	resp := h.do(t, http.MethodGet, "/auth/login", nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	resp = h.do(t, http.MethodGet, "/auth/callback?code=good&state="+url.QueryEscape(state), nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	resp := h.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSession_AnonymousThenSignedIn(t *testing.T) {
	h := newHarness(t)

	snap := decode[session.Snapshot](t, h.do(t, http.MethodGet, "/api/session", nil))
	assert.False(t, snap.Authenticated)
	firstID := snap.ID

	h.signIn(t)

	snap = decode[session.Snapshot](t, h.do(t, http.MethodGet, "/api/session", nil))
	assert.True(t, snap.Authenticated)
	assert.Equal(t, firstID, snap.ID)
	require.NotNil(t, snap.Identity)
	assert.Equal(t, "ada@example.com", snap.Identity.Email)

	resp := h.do(t, http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_, ok := h.reg.Get(firstID)
	assert.False(t, ok, "logout drops the server session")

	snap = decode[session.Snapshot](t, h.do(t, http.MethodGet, "/api/session", nil))
	assert.False(t, snap.Authenticated)
	assert.NotEqual(t, firstID, snap.ID)
	assert.Equal(t, 1, h.reg.Len())
}

func TestCallback_StateMismatch(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodGet, "/auth/login", nil)

	resp := h.do(t, http.MethodGet, "/auth/callback?code=good&state=forged", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCallback_FailedExchangeStaysSignedOut(t *testing.T) {
	h := newHarness(t)
	resp := h.do(t, http.MethodGet, "/auth/login", nil)
	loc, _ := url.Parse(resp.Header.Get("Location"))

	resp = h.do(t, http.MethodGet, "/auth/callback?code=bad&state="+url.QueryEscape(loc.Query().Get("state")), nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	snap := decode[session.Snapshot](t, h.do(t, http.MethodGet, "/api/session", nil))
	assert.False(t, snap.Authenticated)
}

func TestFiles_RequireAuth(t *testing.T) {
	h := newHarness(t)
	resp := h.do(t, http.MethodGet, "/api/files", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	h.signIn(t)
	resp = h.do(t, http.MethodGet, "/api/files?q=name+contains+%27x%27", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[domain.FileList](t, resp)
	assert.Equal(t, "name contains 'x'", list.Files[0].Name)

	resp = h.do(t, http.MethodGet, "/api/files?pageSize=abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadAndDownload(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("hello"))
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, h.srv.URL+"/api/files", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := h.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, []byte("hello"), h.files.uploaded["notes.txt"])

	resp = h.do(t, http.MethodGet, "/api/files/abc/content?name=notes.txt", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "notes.txt")
}

func TestAccountRoutes_ErrorMapping(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodPost, "/api/account/generate", map[string]string{"label": "main"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	acc := decode[session.AccountSummary](t, resp)
	assert.Equal(t, "twelve words", acc.RecoveryPhrase)

	// The phrase is handed out once.
	snap := decode[session.Snapshot](t, h.do(t, http.MethodGet, "/api/session", nil))
	require.NotNil(t, snap.Account)
	assert.Empty(t, snap.Account.RecoveryPhrase)

	resp = h.do(t, http.MethodPost, "/api/account/persist", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "storage", body["kind"])

	resp = h.do(t, http.MethodPost, "/api/account/retrieve", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	h.accs.generateErr = domain.ErrBusy
	resp = h.do(t, http.MethodPost, "/api/account/generate", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRetrieve_LegacyPhraseShownOnce(t *testing.T) {
	h := newHarness(t)
	h.accs.retrieved = &domain.Account{
		RecoveryPhrase: "legacy words",
		Address:        "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY",
		Keystore:       domain.KeystoreDocument{Encoded: "x"},
	}

	resp := h.do(t, http.MethodPost, "/api/account/retrieve", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	acc := decode[session.AccountSummary](t, resp)
	assert.Equal(t, "legacy words", acc.RecoveryPhrase)

	snap := decode[session.Snapshot](t, h.do(t, http.MethodGet, "/api/session", nil))
	require.NotNil(t, snap.Account)
	assert.Empty(t, snap.Account.RecoveryPhrase)
	assert.Equal(t, "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY", string(snap.Account.Address))
}

func TestTransactionStream(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodGet, "/api/session", nil)

	u, err := url.Parse(h.srv.URL)
	require.NoError(t, err)
	wsURL := "ws://" + u.Host + "/api/transactions/stream"
	hdr := http.Header{}
	for _, c := range h.client.Jar.Cookies(u) {
		hdr.Add("Cookie", c.String())
	}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, hdr)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	// The subscription is registered right after the upgrade; give it a moment.
	time.Sleep(50 * time.Millisecond)
	resp = h.do(t, http.MethodPost, "/api/transactions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var states []string
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for len(states) < 3 {
		var ev session.Event
		require.NoError(t, conn.ReadJSON(&ev))
		if ev.Kind == session.EventTxState {
			states = append(states, ev.TxState)
		}
	}
	assert.Equal(t, []string{"connecting", "submitting", "settled_success"}, states)
}

func TestUnknownRoute(t *testing.T) {
	h := newHarness(t)
	resp := h.do(t, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, strings.Contains(resp.Header.Get("Content-Type"), "json"))
}

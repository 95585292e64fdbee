package session

import (
	"sync"
	"time"

	"chaindrive/internal/domain"
)

// maxNotifications bounds the notification backlog kept per session.
const maxNotifications = 50

// EventKind tags an Event.
type EventKind string

const (
	EventTxState      EventKind = "tx_state"
	EventTxResult     EventKind = "tx_result"
	EventNotification EventKind = "notification"
)

// Event is pushed to subscribers when observable state changes.
type Event struct {
	Kind         EventKind                 `json:"kind"`
	TxState      string                    `json:"tx_state,omitempty"`
	Result       *domain.TransactionResult `json:"result,omitempty"`
	Notification *domain.Notification      `json:"notification,omitempty"`
}

// Session is the state of one user.
type Session struct {
	id  string
	now func() time.Time

	mu            sync.Mutex
	identity      *domain.Identity
	token         domain.Token
	account       *domain.Account
	accountOp     AccountOp
	driveOp       DriveOp
	txState       domain.TxState
	lastTx        *domain.TransactionResult
	notifications []domain.Notification
	progress      float64
	files         domain.FileList
	lastSeen      time.Time
	subs          map[int]chan Event
	nextSub       int
}

// New returns an empty session with the given id.
func New(id string) *Session { return newSession(id, time.Now) }

func newSession(id string, now func() time.Time) *Session {
	return &Session{id: id, now: now, lastSeen: now(), subs: make(map[int]chan Event)}
}

func (s *Session) ID() string { return s.id }

// Identity returns the authenticated user, if any.
func (s *Session) Identity() (domain.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return domain.Identity{}, false
	}
	return *s.identity, true
}

// Token returns the storage bearer token, if authenticated.
func (s *Session) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil || s.token.AccessToken == "" {
		return "", false
	}
	return s.token.AccessToken, true
}

// SetAuth records a successful login.
func (s *Session) SetAuth(id domain.Identity, tok domain.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = &id
	s.token = tok
}

// ClearAuth forgets the identity, the token and anything fetched with it.
func (s *Session) ClearAuth() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
	s.token = domain.Token{}
	s.files = domain.FileList{}
}

// Account returns the loaded account, if any.
func (s *Session) Account() (domain.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == nil {
		return domain.Account{}, false
	}
	return *s.account, true
}

// SetAccount replaces the loaded account.
func (s *Session) SetAccount(a domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = &a
}

// ClearRecoveryPhrase drops the phrase from the loaded account once shown.
func (s *Session) ClearRecoveryPhrase() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account != nil {
		s.account.RecoveryPhrase = ""
	}
}

// BeginAccount marks op as running on the account resource. The returned
// func returns the resource to idle and must be called exactly once.
func (s *Session) BeginAccount(op AccountOp) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accountOp != AccountIdle {
		return nil, domain.ErrBusy
	}
	s.accountOp = op
	return s.releaseOnce(func() { s.accountOp = AccountIdle }), nil
}

// BeginDrive marks op as running on the drive resource.
func (s *Session) BeginDrive(op DriveOp) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.driveOp != DriveNone {
		return nil, domain.ErrBusy
	}
	s.driveOp = op
	if op == DriveUploading {
		s.progress = 0
	}
	return s.releaseOnce(func() { s.driveOp = DriveNone }), nil
}

func (s *Session) releaseOnce(reset func()) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			reset()
		})
	}
}

// AccountOp returns the operation running on the account resource.
func (s *Session) AccountOp() AccountOp {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accountOp
}

// DriveOp returns the operation running on the drive resource.
func (s *Session) DriveOp() DriveOp {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.driveOp
}

// BeginTransaction moves the workflow from idle or settled to connecting and
// clears the previous result.
func (s *Session) BeginTransaction() error {
	s.mu.Lock()
	if s.txState != domain.TxIdle && !s.txState.Settled() {
		s.mu.Unlock()
		return domain.ErrBusy
	}
	s.txState = domain.TxConnecting
	s.lastTx = nil
	s.mu.Unlock()

	s.publish(Event{Kind: EventTxState, TxState: domain.TxConnecting.String()})
	return nil
}

// SetTxState records an intermediate workflow state.
func (s *Session) SetTxState(st domain.TxState) {
	s.mu.Lock()
	s.txState = st
	s.mu.Unlock()
	s.publish(Event{Kind: EventTxState, TxState: st.String()})
}

// SettleTransaction stores res and moves the workflow to the matching settled state.
func (s *Session) SettleTransaction(res domain.TransactionResult) {
	st := domain.TxSettledFailure
	if res.Succeeded() {
		st = domain.TxSettledSuccess
	}
	s.mu.Lock()
	s.txState = st
	s.lastTx = &res
	s.mu.Unlock()

	s.publish(Event{Kind: EventTxState, TxState: st.String()})
	s.publish(Event{Kind: EventTxResult, Result: &res})
}

// TxState returns the workflow state.
func (s *Session) TxState() domain.TxState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txState
}

// LastTransaction returns the most recent settled result.
func (s *Session) LastTransaction() (domain.TransactionResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastTx == nil {
		return domain.TransactionResult{}, false
	}
	return *s.lastTx, true
}

// Notify appends a notification, dropping the oldest past the backlog limit.
func (s *Session) Notify(level domain.Level, op, fileName, msg string) {
	n := domain.Notification{Level: level, Operation: op, FileName: fileName, Message: msg, Time: s.now()}
	s.mu.Lock()
	s.notifications = append(s.notifications, n)
	if over := len(s.notifications) - maxNotifications; over > 0 {
		s.notifications = append([]domain.Notification(nil), s.notifications[over:]...)
	}
	s.mu.Unlock()
	s.publish(Event{Kind: EventNotification, Notification: &n})
}

// Notifications returns a copy of the backlog, oldest first.
func (s *Session) Notifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Notification(nil), s.notifications...)
}

// SetUploadProgress records the advisory upload fraction in [0, 1].
func (s *Session) SetUploadProgress(sent, total int64) {
	f := 1.0
	if total > 0 {
		f = float64(sent) / float64(total)
	}
	if f > 1 {
		f = 1
	}
	s.mu.Lock()
	s.progress = f
	s.mu.Unlock()
}

// UploadProgress returns the last recorded upload fraction.
func (s *Session) UploadProgress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// SetFiles caches the latest listing.
func (s *Session) SetFiles(l domain.FileList) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = l
}

// Files returns the cached listing.
func (s *Session) Files() domain.FileList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files
}

// Touch marks the session as used now.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = s.now()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Subscribe returns a channel of state events and a func that ends the subscription.
// Events are dropped for subscribers that fall behind.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Session) publish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

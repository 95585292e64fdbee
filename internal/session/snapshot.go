package session

import "chaindrive/internal/domain"

// AccountSummary is the public view of the loaded account.
type AccountSummary struct {
	Address        domain.Address     `json:"address"`
	ShortAddress   string             `json:"short_address"`
	PublicKey      string             `json:"public_key,omitempty"`
	Meta           domain.AccountMeta `json:"meta"`
	HasKeystore    bool               `json:"has_keystore"`
	RecoveryPhrase string             `json:"recovery_phrase,omitempty"`
}

// Snapshot is a consistent copy of the session for presentation.
type Snapshot struct {
	ID             string                    `json:"id"`
	Authenticated  bool                      `json:"authenticated"`
	Identity       *domain.Identity          `json:"identity,omitempty"`
	Account        *AccountSummary           `json:"account,omitempty"`
	AccountOp      string                    `json:"account_op"`
	DriveOp        string                    `json:"drive_op"`
	TxState        string                    `json:"tx_state"`
	LastTx         *domain.TransactionResult `json:"last_transaction,omitempty"`
	UploadProgress float64                   `json:"upload_progress"`
	Notifications  []domain.Notification     `json:"notifications"`
}

// Snapshot copies the session. The recovery phrase is included only while
// it is still held: right after generation or a legacy retrieve, until the
// caller clears it.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:             s.id,
		Authenticated:  s.identity != nil,
		AccountOp:      s.accountOp.String(),
		DriveOp:        s.driveOp.String(),
		TxState:        s.txState.String(),
		UploadProgress: s.progress,
		Notifications:  append([]domain.Notification{}, s.notifications...),
	}
	if s.identity != nil {
		id := *s.identity
		snap.Identity = &id
	}
	if s.account != nil {
		snap.Account = &AccountSummary{
			Address:        s.account.Address,
			ShortAddress:   s.account.Address.Short(),
			PublicKey:      s.account.PublicKey,
			Meta:           s.account.Meta,
			HasKeystore:    s.account.HasKeystore(),
			RecoveryPhrase: s.account.RecoveryPhrase,
		}
	}
	if s.lastTx != nil {
		tx := *s.lastTx
		snap.LastTx = &tx
	}
	return snap
}

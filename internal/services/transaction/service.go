package transaction

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"chaindrive/internal/domain"
	"chaindrive/internal/session"
)

// DefaultTimeout bounds a whole submission.
const DefaultTimeout = 2 * time.Minute

// SignerLoader decrypts an account's keystore for signing.
type SignerLoader interface {
	LoadSigner(ctx context.Context, acc domain.Account, passphrase string) (domain.Signer, error)
}

// Config holds the transfer parameters.
type Config struct {
	Endpoint   string
	Recipient  domain.Address
	Amount     *big.Int
	Passphrase string
	Timeout    time.Duration
}

// Service is the test-transaction workflow controller.
type Service struct {
	chain   domain.ChainClient
	signers SignerLoader
	cfg     Config
	log     *zap.Logger
	now     func() time.Time
}

// New returns a workflow controller.
func New(chain domain.ChainClient, signers SignerLoader, cfg Config, log *zap.Logger) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Amount == nil {
		cfg.Amount = new(big.Int)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{chain: chain, signers: signers, cfg: cfg, log: log, now: time.Now}
}

// Submit runs one test transfer for the session's account and returns its
// settled result. Errors are returned only when the workflow could not start;
// every failure after that is reported through the result.
func (s *Service) Submit(ctx context.Context, sess *session.Session) (domain.TransactionResult, error) {
	acc, ok := sess.Account()
	if !ok {
		return domain.TransactionResult{}, domain.ErrNoAccount
	}
	if !acc.HasKeystore() {
		return domain.TransactionResult{}, domain.ErrNoKeystore
	}
	if err := sess.BeginTransaction(); err != nil {
		return domain.TransactionResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	res := s.run(ctx, sess, acc)
	res.SettledAt = s.now().UTC()
	sess.SettleTransaction(res)

	if res.Succeeded() {
		s.log.Info("transaction included", zap.String("tx", res.TxHash), zap.String("block", res.BlockHash))
		sess.Notify(domain.LevelInfo, "transaction", "", "Transaction included in block "+res.BlockHash)
	} else {
		s.log.Warn("transaction failed", zap.String("tx", res.TxHash), zap.String("error", res.Error))
		sess.Notify(domain.LevelError, "transaction", "", "Transaction failed: "+res.Error)
	}
	return res, nil
}

func (s *Service) run(ctx context.Context, sess *session.Session, acc domain.Account) domain.TransactionResult {
	conn, err := s.chain.Connect(ctx, s.cfg.Endpoint)
	if err != nil {
		return s.failure(ctx, "", fmt.Errorf("connect to %s: %w", s.cfg.Endpoint, err))
	}
	defer func() {
		if err := conn.Close(); err != nil {
			s.log.Warn("closing chain connection", zap.Error(err))
		}
	}()

	sess.SetTxState(domain.TxLoadingSigner)
	signer, err := s.signers.LoadSigner(ctx, acc, s.cfg.Passphrase)
	if err != nil {
		return s.failure(ctx, "", fmt.Errorf("load signer: %w", err))
	}
	defer signer.Wipe()

	sess.SetTxState(domain.TxCheckingBalance)
	bal, err := conn.QueryBalance(ctx, signer.Address())
	if err != nil {
		return s.failure(ctx, "", fmt.Errorf("query balance: %w", err))
	}
	if bal.IsZero() {
		sess.Notify(domain.LevelWarning, "transaction", "",
			"Account "+signer.Address().Short()+" has no free balance; the transfer will likely fail")
	}

	sess.SetTxState(domain.TxSubmitting)
	updates, err := conn.SubmitTransfer(ctx, signer, s.cfg.Recipient, s.cfg.Amount)
	if err != nil {
		return s.failure(ctx, "", fmt.Errorf("submit transfer: %w", err))
	}

	sess.SetTxState(domain.TxAwaitingInclusion)
	var txHash string
	for {
		select {
		case <-ctx.Done():
			return s.failure(ctx, txHash, ctx.Err())
		case st, ok := <-updates:
			if !ok {
				if ctx.Err() != nil {
					return s.failure(ctx, txHash, ctx.Err())
				}
				return s.failure(ctx, txHash, errors.New("status stream ended before inclusion"))
			}
			if st.TxHash != "" {
				txHash = st.TxHash
			}
			s.log.Debug("transfer status", zap.Stringer("stage", st.Stage), zap.String("tx", txHash))

			switch st.Stage {
			case domain.StageInBlock:
				return domain.TransactionResult{
					Status:    domain.TransactionSucceeded,
					TxHash:    txHash,
					BlockHash: st.BlockHash,
					Events:    st.Events,
				}
			case domain.StageDispatchError:
				msg := st.Error
				if msg == "" {
					msg = fmt.Sprintf("%+v", st)
				}
				res := s.failure(ctx, txHash, errors.New("dispatch error: "+msg))
				res.BlockHash = st.BlockHash
				res.Events = st.Events
				return res
			case domain.StageDropped:
				return s.failure(ctx, txHash, errors.New(st.Error))
			}
		}
	}
}

func (s *Service) failure(ctx context.Context, txHash string, err error) domain.TransactionResult {
	msg := err.Error()
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		msg = fmt.Sprintf("timed out after %s: %s", s.cfg.Timeout, msg)
	case errors.Is(err, context.Canceled):
		msg = "cancelled: " + msg
	}
	return domain.TransactionResult{Status: domain.TransactionFailed, TxHash: txHash, Error: msg}
}

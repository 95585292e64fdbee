package types

import (
	"math/big"
	"time"
)

// Balance is an account's balance on chain, in plancks.
type Balance struct {
	Free     *big.Int `json:"free"`
	Reserved *big.Int `json:"reserved"`
	Frozen   *big.Int `json:"frozen"`
}

// IsZero reports whether the free balance is zero or unknown.
func (b Balance) IsZero() bool { return b.Free == nil || b.Free.Sign() == 0 }

// ChainEvent is an emitted runtime event reduced for display.
type ChainEvent struct {
	Section     string `json:"section"`
	Method      string `json:"method"`
	DataSummary string `json:"data_summary"`
}

// TransferStage is the lifecycle position reported by the chain adapter.
type TransferStage int

const (
	StageSubmitted TransferStage = iota
	StageReady
	StageBroadcast
	StageInBlock
	StageDispatchError
	StageDropped
)

func (s TransferStage) String() string {
	switch s {
	case StageSubmitted:
		return "submitted"
	case StageReady:
		return "ready"
	case StageBroadcast:
		return "broadcast"
	case StageInBlock:
		return "in_block"
	case StageDispatchError:
		return "dispatch_error"
	case StageDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further updates follow s.
func (s TransferStage) Terminal() bool {
	return s == StageInBlock || s == StageDispatchError || s == StageDropped
}

// TransferStatus is one asynchronous update for a submitted transfer.
type TransferStatus struct {
	Stage     TransferStage
	TxHash    string
	BlockHash string
	Events    []ChainEvent
	// Error is the decoded dispatch error, or the raw reason for drops.
	Error string
}

// TxState is the position of the test-transaction workflow.
type TxState int

const (
	TxIdle TxState = iota
	TxConnecting
	TxLoadingSigner
	TxCheckingBalance
	TxSubmitting
	TxAwaitingInclusion
	TxSettledSuccess
	TxSettledFailure
)

func (s TxState) String() string {
	switch s {
	case TxIdle:
		return "idle"
	case TxConnecting:
		return "connecting"
	case TxLoadingSigner:
		return "loading_signer"
	case TxCheckingBalance:
		return "checking_balance"
	case TxSubmitting:
		return "submitting"
	case TxAwaitingInclusion:
		return "awaiting_inclusion"
	case TxSettledSuccess:
		return "settled_success"
	case TxSettledFailure:
		return "settled_failure"
	default:
		return "unknown"
	}
}

// Settled reports whether s is terminal.
func (s TxState) Settled() bool { return s == TxSettledSuccess || s == TxSettledFailure }

// TransactionStatus tags a TransactionResult.
type TransactionStatus string

const (
	TransactionSucceeded TransactionStatus = "succeeded"
	TransactionFailed    TransactionStatus = "failed"
)

// TransactionResult is the outcome of one submission attempt.
type TransactionResult struct {
	Status    TransactionStatus `json:"status"`
	TxHash    string            `json:"tx_hash,omitempty"`
	BlockHash string            `json:"block_hash,omitempty"`
	Events    []ChainEvent      `json:"events,omitempty"`
	Error     string            `json:"error,omitempty"`
	SettledAt time.Time         `json:"settled_at"`
}

// Succeeded reports whether the result is a success.
func (r TransactionResult) Succeeded() bool { return r.Status == TransactionSucceeded }

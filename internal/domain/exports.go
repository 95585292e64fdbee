package domain

import (
	interfaces "chaindrive/internal/domain/interfaces"
	types "chaindrive/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Address           = types.Address
	Identity          = types.Identity
	Token             = types.Token
	Account           = types.Account
	AccountMeta       = types.AccountMeta
	KeyPair           = types.KeyPair
	KeystoreDocument  = types.KeystoreDocument
	KeystoreEncoding  = types.KeystoreEncoding
	KeystoreMeta      = types.KeystoreMeta
	LegacyAccountFile = types.LegacyAccountFile
	DocumentFormat    = types.DocumentFormat
	Field             = types.Field
	ParsedDocument    = types.ParsedDocument
	File              = types.File
	FileList          = types.FileList
	ListQuery         = types.ListQuery
	ProgressFunc      = types.ProgressFunc
	Balance           = types.Balance
	ChainEvent        = types.ChainEvent
	TransferStage     = types.TransferStage
	TransferStatus    = types.TransferStatus
	TxState           = types.TxState
	TransactionStatus = types.TransactionStatus
	TransactionResult = types.TransactionResult
	Notification      = types.Notification
	Level             = types.Level
	ErrorKind         = types.ErrorKind
	OpError           = types.OpError
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	FileStorage      = interfaces.FileStorage
	Signer           = interfaces.Signer
	AccountKeystore  = interfaces.AccountKeystore
	ChainClient      = interfaces.ChainClient
	ChainConnection  = interfaces.ChainConnection
	IdentityProvider = interfaces.IdentityProvider
)

const (
	KeystoreVersion       = types.KeystoreVersion
	FolderMimeType        = types.FolderMimeType
	FormatUnknown         = types.FormatUnknown
	FormatKeystore        = types.FormatKeystore
	FormatLegacyPlaintext = types.FormatLegacyPlaintext

	FieldAddress        = types.FieldAddress
	FieldPublicKey      = types.FieldPublicKey
	FieldKeystore       = types.FieldKeystore
	FieldRecoveryPhrase = types.FieldRecoveryPhrase
	FieldMeta           = types.FieldMeta

	StageSubmitted     = types.StageSubmitted
	StageReady         = types.StageReady
	StageBroadcast     = types.StageBroadcast
	StageInBlock       = types.StageInBlock
	StageDispatchError = types.StageDispatchError
	StageDropped       = types.StageDropped

	TxIdle              = types.TxIdle
	TxConnecting        = types.TxConnecting
	TxLoadingSigner     = types.TxLoadingSigner
	TxCheckingBalance   = types.TxCheckingBalance
	TxSubmitting        = types.TxSubmitting
	TxAwaitingInclusion = types.TxAwaitingInclusion
	TxSettledSuccess    = types.TxSettledSuccess
	TxSettledFailure    = types.TxSettledFailure

	TransactionSucceeded = types.TransactionSucceeded
	TransactionFailed    = types.TransactionFailed

	LevelInfo    = types.LevelInfo
	LevelWarning = types.LevelWarning
	LevelError   = types.LevelError

	KindInternal     = types.KindInternal
	KindAuth         = types.KindAuth
	KindStorage      = types.KindStorage
	KindKeystore     = types.KindKeystore
	KindChain        = types.KindChain
	KindPrecondition = types.KindPrecondition
	KindBusy         = types.KindBusy
)

// Sentinel errors shared by controllers and adapters.
var (
	ErrNotAuthenticated     = types.ErrNotAuthenticated
	ErrBusy                 = types.ErrBusy
	ErrNoAccount            = types.ErrNoAccount
	ErrNoKeystore           = types.ErrNoKeystore
	ErrKeystoreNotFound     = types.ErrKeystoreNotFound
	ErrUnrecognizedKeystore = types.ErrUnrecognizedKeystore
	ErrWrongPassphrase      = types.ErrWrongPassphrase
	ErrMalformedKeystore    = types.ErrMalformedKeystore
	ErrLegacyDisabled       = types.ErrLegacyDisabled
)

// Wrap and KindOf are re-exported from the types subpackage.
var (
	Wrap   = types.Wrap
	KindOf = types.KindOf
)

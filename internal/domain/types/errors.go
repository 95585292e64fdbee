package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures for notification and transport mapping.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindAuth
	KindStorage
	KindKeystore
	KindChain
	KindPrecondition
	KindBusy
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindStorage:
		return "storage"
	case KindKeystore:
		return "keystore"
	case KindChain:
		return "chain"
	case KindPrecondition:
		return "precondition"
	case KindBusy:
		return "busy"
	default:
		return "internal"
	}
}

var (
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrBusy                 = errors.New("operation already in progress")
	ErrNoAccount            = errors.New("no account loaded")
	ErrNoKeystore           = errors.New("account has no keystore document")
	ErrKeystoreNotFound     = errors.New("no keystore file found")
	ErrUnrecognizedKeystore = errors.New("keystore file is in no recognised format")
	ErrWrongPassphrase      = errors.New("wrong passphrase or corrupted keystore")
	ErrMalformedKeystore    = errors.New("malformed keystore document")
	ErrLegacyDisabled       = errors.New("legacy plaintext keystores are disabled")
)

// OpError records the failed operation, its kind and the affected file.
type OpError struct {
	Kind     ErrorKind
	Op       string
	FileName string
	Err      error
}

func (e *OpError) Error() string {
	if e.FileName != "" {
		return fmt.Sprintf("%s %q: %v", e.Op, e.FileName, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// Wrap returns err as an *OpError of the given kind. A nil err stays nil.
func Wrap(kind ErrorKind, op, fileName string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Kind: kind, Op: op, FileName: fileName, Err: err}
}

// KindOf returns the kind of the outermost *OpError in err's chain.
func KindOf(err error) ErrorKind {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind
	}
	switch {
	case errors.Is(err, ErrBusy):
		return KindBusy
	case errors.Is(err, ErrNotAuthenticated):
		return KindAuth
	case errors.Is(err, ErrNoAccount), errors.Is(err, ErrNoKeystore):
		return KindPrecondition
	}
	return KindInternal
}

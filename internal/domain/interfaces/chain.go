package interfaces

import (
	"context"
	"math/big"

	domaintypes "chaindrive/internal/domain/types"
)

// ChainClient opens connections to a chain node.
type ChainClient interface {
	Connect(ctx context.Context, endpoint string) (ChainConnection, error)
}

// ChainConnection is an open node connection. Close must be called exactly once.
type ChainConnection interface {
	QueryBalance(ctx context.Context, address domaintypes.Address) (domaintypes.Balance, error)
	// SubmitTransfer signs and submits a balance transfer. The returned channel
	// yields status updates and is closed after a terminal stage or when ctx ends.
	SubmitTransfer(
		ctx context.Context,
		signer Signer,
		recipient domaintypes.Address,
		amount *big.Int,
	) (<-chan domaintypes.TransferStatus, error)
	Close() error
}

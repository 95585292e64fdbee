package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	"github.com/centrifuge/go-substrate-rpc-client/v4/registry/retriever"
	"github.com/centrifuge/go-substrate-rpc-client/v4/registry/state"
	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/vedhavyas/go-subkey/v2"
	"go.uber.org/zap"

	"chaindrive/internal/domain"
)

// DefaultTransferCall is the runtime call used for test transfers.
const DefaultTransferCall = "Balances.transfer_keep_alive"

var (
	// ErrUnsupportedSigner is returned for signers that cannot expose an sr25519 keyring pair.
	ErrUnsupportedSigner = errors.New("signer cannot sign extrinsics")
	// ErrClosed is returned by calls on a closed connection.
	ErrClosed = errors.New("connection closed")
)

// keyringSigner is the part of keystore.Signer the extrinsic signer needs.
type keyringSigner interface {
	domain.Signer
	KeyringPair() signature.KeyringPair
}

// Client dials Substrate nodes.
type Client struct {
	transferCall string
	log          *zap.Logger
}

// NewClient returns a Client submitting transfers with transferCall
// (DefaultTransferCall when empty).
func NewClient(transferCall string, log *zap.Logger) *Client {
	if transferCall == "" {
		transferCall = DefaultTransferCall
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{transferCall: transferCall, log: log}
}

type dialResult struct {
	api *gsrpc.SubstrateAPI
	err error
}

// Connect dials endpoint and loads the latest runtime metadata.
func (c *Client) Connect(ctx context.Context, endpoint string) (domain.ChainConnection, error) {
	done := make(chan dialResult, 1)
	go func() {
		api, err := gsrpc.NewSubstrateAPI(endpoint)
		done <- dialResult{api: api, err: err}
	}()

	var api *gsrpc.SubstrateAPI
	select {
	case <-ctx.Done():
		go func() {
			if r := <-done; r.err == nil {
				closeAPI(r.api)
			}
		}()
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("connect %s: %w", endpoint, r.err)
		}
		api = r.api
	}

	meta, err := api.RPC.State.GetMetadataLatest()
	if err != nil {
		closeAPI(api)
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}
	events, err := retriever.NewDefaultEventRetriever(state.NewEventProvider(api.RPC.State), api.RPC.State)
	if err != nil {
		closeAPI(api)
		return nil, fmt.Errorf("event retriever: %w", err)
	}
	c.log.Debug("chain connected", zap.String("endpoint", endpoint))
	return &Connection{
		api:          api,
		meta:         meta,
		events:       events,
		transferCall: c.transferCall,
		log:          c.log,
		closed:       make(chan struct{}),
	}, nil
}

// accountInfo mirrors System.Account storage. The four balance words cover
// both the older (misc_frozen, fee_frozen) and the newer (frozen, flags) layouts.
type accountInfo struct {
	Nonce       types.U32
	Consumers   types.U32
	Providers   types.U32
	Sufficients types.U32
	Data        struct {
		Free     types.U128
		Reserved types.U128
		Frozen   types.U128
		Flags    types.U128
	}
}

func accountPublicKey(addr domain.Address) ([]byte, error) {
	_, pub, err := subkey.SS58Decode(addr.String())
	if err != nil {
		return nil, fmt.Errorf("decode address %s: %w", addr.Short(), err)
	}
	return pub, nil
}

func u128(v types.U128) *big.Int {
	if v.Int == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v.Int)
}

func closeAPI(api *gsrpc.SubstrateAPI) {
	if api == nil {
		return
	}
	if cl, ok := api.Client.(interface{ Close() }); ok {
		cl.Close()
	}
}

// Compile-time assertion that Client implements domain.ChainClient.
var _ domain.ChainClient = (*Client)(nil)

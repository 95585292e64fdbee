package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	"github.com/centrifuge/go-substrate-rpc-client/v4/registry/retriever"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"go.uber.org/zap"

	"chaindrive/internal/crypto"
	"chaindrive/internal/domain"
)

// Connection is an open node connection.
type Connection struct {
	api          *gsrpc.SubstrateAPI
	meta         *types.Metadata
	events       retriever.EventRetriever
	transferCall string
	log          *zap.Logger

	closeOnce sync.Once
	closed    chan struct{}
}

func (c *Connection) done() <-chan struct{} { return c.closed }

func (c *Connection) isClosed() bool {
	select {
	case <-c.done():
		return true
	default:
		return false
	}
}

// QueryBalance reads System.Account for address.
func (c *Connection) QueryBalance(ctx context.Context, address domain.Address) (domain.Balance, error) {
	if c.isClosed() {
		return domain.Balance{}, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return domain.Balance{}, err
	}
	pub, err := accountPublicKey(address)
	if err != nil {
		return domain.Balance{}, err
	}
	key, err := types.CreateStorageKey(c.meta, "System", "Account", pub)
	if err != nil {
		return domain.Balance{}, fmt.Errorf("storage key: %w", err)
	}

	var info accountInfo
	ok, err := c.api.RPC.State.GetStorageLatest(key, &info)
	if err != nil {
		return domain.Balance{}, fmt.Errorf("query account: %w", err)
	}
	if !ok {
		return domain.Balance{Free: new(big.Int), Reserved: new(big.Int), Frozen: new(big.Int)}, nil
	}
	return domain.Balance{
		Free:     u128(info.Data.Free),
		Reserved: u128(info.Data.Reserved),
		Frozen:   u128(info.Data.Frozen),
	}, nil
}

// SubmitTransfer signs a transfer of amount to recipient and watches it.
func (c *Connection) SubmitTransfer(
	ctx context.Context,
	signer domain.Signer,
	recipient domain.Address,
	amount *big.Int,
) (<-chan domain.TransferStatus, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}
	ks, ok := signer.(keyringSigner)
	if !ok {
		return nil, ErrUnsupportedSigner
	}
	pair := ks.KeyringPair()

	dest, err := accountPublicKey(recipient)
	if err != nil {
		return nil, err
	}
	to, err := types.NewMultiAddressFromAccountID(dest)
	if err != nil {
		return nil, fmt.Errorf("recipient: %w", err)
	}
	call, err := types.NewCall(c.meta, c.transferCall, to, types.NewUCompact(amount))
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", c.transferCall, err)
	}

	genesis, err := c.api.RPC.Chain.GetBlockHash(0)
	if err != nil {
		return nil, fmt.Errorf("genesis hash: %w", err)
	}
	rv, err := c.api.RPC.State.GetRuntimeVersionLatest()
	if err != nil {
		return nil, fmt.Errorf("runtime version: %w", err)
	}
	key, err := types.CreateStorageKey(c.meta, "System", "Account", pair.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("storage key: %w", err)
	}
	var info accountInfo
	if _, err := c.api.RPC.State.GetStorageLatest(key, &info); err != nil {
		return nil, fmt.Errorf("query nonce: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := types.NewExtrinsic(call)
	err = ext.Sign(pair, types.SignatureOptions{
		BlockHash:          genesis,
		Era:                types.ExtrinsicEra{IsMortalEra: false},
		GenesisHash:        genesis,
		Nonce:              types.NewUCompactFromUInt(uint64(info.Nonce)),
		SpecVersion:        rv.SpecVersion,
		Tip:                types.NewUCompactFromUInt(0),
		TransactionVersion: rv.TransactionVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("sign extrinsic: %w", err)
	}
	txHash, err := extrinsicHash(ext)
	if err != nil {
		return nil, err
	}

	sub, err := c.api.RPC.Author.SubmitAndWatchExtrinsic(ext)
	if err != nil {
		return nil, fmt.Errorf("submit extrinsic: %w", err)
	}
	c.log.Info("transfer submitted",
		zap.String("from", domain.Address(pair.Address).Short()),
		zap.String("to", recipient.Short()),
		zap.String("tx", txHash),
	)

	out := make(chan domain.TransferStatus, 4)
	w := &watcher{
		conn:   c,
		txHash: txHash,
		out:    out,
		status: sub.Chan(),
		errs:   sub.Err(),
		stop:   sub.Unsubscribe,
	}
	go w.run(ctx)
	return out, nil
}

// Close releases the node connection. Calls after the first are no-ops.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		closeAPI(c.api)
	})
	return nil
}

// eventsFor returns the flattened events of the extrinsic whose hash is txHash
// in block, and the dispatch error description when it failed.
func (c *Connection) eventsFor(block types.Hash, txHash string) ([]domain.ChainEvent, string, bool, error) {
	signed, err := c.api.RPC.Chain.GetBlock(block)
	if err != nil {
		return nil, "", false, fmt.Errorf("get block: %w", err)
	}
	index := -1
	for i, ext := range signed.Block.Extrinsics {
		h, err := extrinsicHash(ext)
		if err == nil && h == txHash {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, "", false, fmt.Errorf("extrinsic %s not found in block %s", txHash, codec.HexEncodeToString(block[:]))
	}

	raw, err := c.events.GetEvents(block)
	if err != nil {
		return nil, "", false, fmt.Errorf("decode events: %w", err)
	}
	evs := extrinsicEvents(raw, uint32(index))
	desc, failed := dispatchError(evs, c.errorName)
	return flatten(evs), desc, failed, nil
}

// errorName names a pallet error from the runtime metadata.
func (c *Connection) errorName(index types.U8, code [4]types.U8) (string, bool) {
	me, err := c.meta.FindError(index, code)
	if err != nil {
		c.log.Debug("unknown module error", zap.Uint8("index", uint8(index)), zap.Error(err))
		return "", false
	}
	if me.Value == "" {
		return me.Name, true
	}
	return me.Name + ": " + me.Value, true
}

func extrinsicHash(ext types.Extrinsic) (string, error) {
	enc, err := codec.Encode(ext)
	if err != nil {
		return "", fmt.Errorf("encode extrinsic: %w", err)
	}
	sum := crypto.Hash256(enc)
	return codec.HexEncodeToString(sum[:]), nil
}

// Compile-time assertion that Connection implements domain.ChainConnection.
var _ domain.ChainConnection = (*Connection)(nil)

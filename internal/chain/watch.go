package chain

import (
	"context"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"go.uber.org/zap"

	"chaindrive/internal/domain"
)

// watcher follows one extrinsic subscription and forwards status updates.
type watcher struct {
	conn   *Connection
	txHash string
	out    chan<- domain.TransferStatus
	status <-chan types.ExtrinsicStatus
	errs   <-chan error
	stop   func()
}

func (w *watcher) run(ctx context.Context) {
	defer close(w.out)
	defer w.stop()

	if !w.send(ctx, domain.TransferStatus{Stage: domain.StageSubmitted, TxHash: w.txHash}) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.conn.done():
			return
		case err, ok := <-w.errs:
			if !ok {
				return
			}
			w.send(ctx, domain.TransferStatus{Stage: domain.StageDropped, TxHash: w.txHash, Error: err.Error()})
			return
		case st, ok := <-w.status:
			if !ok {
				return
			}
			next, terminal := w.translate(st)
			if next == nil {
				continue
			}
			if !w.send(ctx, *next) || terminal {
				return
			}
		}
	}
}

// translate maps a node status onto a TransferStatus; nil means "skip".
func (w *watcher) translate(st types.ExtrinsicStatus) (*domain.TransferStatus, bool) {
	stage, block, ok := stageOf(st)
	if !ok {
		return nil, false
	}
	ts := &domain.TransferStatus{Stage: stage, TxHash: w.txHash}
	switch stage {
	case domain.StageInBlock:
		ts.BlockHash = codec.HexEncodeToString(block[:])
		events, desc, failed, err := w.conn.eventsFor(block, w.txHash)
		if err != nil {
			// Inclusion is known even when the events cannot be decoded.
			w.conn.log.Warn("event lookup failed", zap.String("tx", w.txHash), zap.Error(err))
		}
		ts.Events = events
		if failed {
			ts.Stage = domain.StageDispatchError
			ts.Error = desc
		}
	case domain.StageDropped:
		ts.Error = dropReason(st)
	}
	return ts, stage.Terminal()
}

func (w *watcher) send(ctx context.Context, ts domain.TransferStatus) bool {
	select {
	case w.out <- ts:
		return true
	case <-ctx.Done():
		return false
	}
}

// stageOf classifies a node status. Finalized counts as inclusion in case the
// InBlock notification was missed.
func stageOf(st types.ExtrinsicStatus) (domain.TransferStage, types.Hash, bool) {
	switch {
	case st.IsReady:
		return domain.StageReady, types.Hash{}, true
	case st.IsBroadcast:
		return domain.StageBroadcast, types.Hash{}, true
	case st.IsInBlock:
		return domain.StageInBlock, st.AsInBlock, true
	case st.IsFinalized:
		return domain.StageInBlock, st.AsFinalized, true
	case st.IsDropped, st.IsInvalid, st.IsUsurped, st.IsFinalityTimeout:
		return domain.StageDropped, types.Hash{}, true
	}
	return 0, types.Hash{}, false
}

func dropReason(st types.ExtrinsicStatus) string {
	switch {
	case st.IsInvalid:
		return "transaction invalid"
	case st.IsUsurped:
		return "transaction usurped"
	case st.IsFinalityTimeout:
		return "finality timeout"
	default:
		return "transaction dropped"
	}
}

package chain

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/centrifuge/go-substrate-rpc-client/v4/registry"
	"github.com/centrifuge/go-substrate-rpc-client/v4/registry/parser"
	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chaindrive/internal/domain"
)

func applyPhase(i uint32) *types.Phase {
	return &types.Phase{IsApplyExtrinsic: true, AsApplyExtrinsic: i}
}

func TestExtrinsicEvents_FiltersByIndex(t *testing.T) {
	all := []*parser.Event{
		{Name: "System.ExtrinsicSuccess", Phase: applyPhase(0)},
		{Name: "Balances.Withdraw", Phase: applyPhase(1)},
		{Name: "Balances.Transfer", Phase: applyPhase(1)},
		{Name: "System.ExtrinsicSuccess", Phase: applyPhase(1)},
		{Name: "Treasury.Deposit", Phase: &types.Phase{IsFinalization: true}},
		nil,
	}

	got := extrinsicEvents(all, 1)

	require.Len(t, got, 3)
	assert.Equal(t, "Balances.Withdraw", got[0].Name)
}

func TestFlatten(t *testing.T) {
	evs := []*parser.Event{{
		Name: "Balances.Transfer",
		Fields: registry.DecodedFields{
			{Name: "from", Value: "alice"},
			{Name: "amount", Value: uint64(1000)},
		},
	}}

	got := flatten(evs)

	require.Len(t, got, 1)
	assert.Equal(t, domain.ChainEvent{
		Section:     "Balances",
		Method:      "Transfer",
		DataSummary: "from=alice, amount=1000",
	}, got[0])
}

// dispatchErrorDecoder mirrors the decoder the registry builds for
// sp_runtime::DispatchError: BadOrigin is a unit variant, Module wraps ModuleError.
func dispatchErrorDecoder() registry.FieldDecoder {
	u8 := &registry.ValueDecoder[types.U8]{}
	moduleErr := &registry.CompositeDecoder{
		FieldName: "sp_runtime.ModuleError",
		Fields: []*registry.Field{
			{Name: "index", FieldDecoder: u8},
			{Name: "error", FieldDecoder: &registry.ArrayDecoder{Length: 4, ItemDecoder: u8}},
		},
	}
	return &registry.VariantDecoder{FieldDecoderMap: map[byte]registry.FieldDecoder{
		2: &registry.NoopDecoder{},
		3: &registry.CompositeDecoder{
			FieldName: "variant_item_3",
			Fields:    []*registry.Field{{Name: "sp_runtime.ModuleError", FieldDecoder: moduleErr}},
		},
	}}
}

func failedEvent(t *testing.T, raw []byte) []*parser.Event {
	t.Helper()
	v, err := dispatchErrorDecoder().Decode(scale.NewDecoder(bytes.NewReader(raw)))
	require.NoError(t, err)
	return []*parser.Event{
		{Name: "Balances.Withdraw"},
		{
			Name: "System.ExtrinsicFailed",
			Fields: registry.DecodedFields{
				{Name: "sp_runtime.DispatchError.dispatch_error", Value: v},
			},
		},
	}
}

func TestDispatchError_ModuleResolvedFromMetadata(t *testing.T) {
	var gotIndex types.U8
	var gotCode [4]types.U8
	lookup := func(index types.U8, code [4]types.U8) (string, bool) {
		gotIndex, gotCode = index, code
		return "InsufficientBalance: Balance too low to send value.", true
	}

	desc, failed := dispatchError(failedEvent(t, []byte{3, 4, 2, 0, 0, 0}), lookup)

	assert.True(t, failed)
	assert.Equal(t, "InsufficientBalance: Balance too low to send value.", desc)
	assert.Equal(t, types.U8(4), gotIndex)
	assert.Equal(t, [4]types.U8{2, 0, 0, 0}, gotCode)
}

func TestDispatchError_ModuleUnknown(t *testing.T) {
	lookup := func(types.U8, [4]types.U8) (string, bool) { return "", false }

	desc, failed := dispatchError(failedEvent(t, []byte{3, 4, 2, 0, 0, 0}), lookup)

	assert.True(t, failed)
	assert.Equal(t, "Module(index=4, error=2)", desc)
}

func TestDispatchError_UnitVariant(t *testing.T) {
	desc, failed := dispatchError(failedEvent(t, []byte{2}), nil)

	assert.True(t, failed)
	assert.Equal(t, "BadOrigin", desc)
}

func TestDispatchError_None(t *testing.T) {
	_, failed := dispatchError([]*parser.Event{{Name: "System.ExtrinsicSuccess"}}, nil)
	assert.False(t, failed)
}

func TestStageOf(t *testing.T) {
	block := types.NewHash([]byte{1, 2, 3})

	cases := []struct {
		name   string
		status types.ExtrinsicStatus
		stage  domain.TransferStage
		known  bool
	}{
		{"future", types.ExtrinsicStatus{IsFuture: true}, 0, false},
		{"ready", types.ExtrinsicStatus{IsReady: true}, domain.StageReady, true},
		{"broadcast", types.ExtrinsicStatus{IsBroadcast: true}, domain.StageBroadcast, true},
		{"in block", types.ExtrinsicStatus{IsInBlock: true, AsInBlock: block}, domain.StageInBlock, true},
		{"finalized", types.ExtrinsicStatus{IsFinalized: true, AsFinalized: block}, domain.StageInBlock, true},
		{"invalid", types.ExtrinsicStatus{IsInvalid: true}, domain.StageDropped, true},
		{"dropped", types.ExtrinsicStatus{IsDropped: true}, domain.StageDropped, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stage, hash, ok := stageOf(tc.status)
			assert.Equal(t, tc.known, ok)
			if !ok {
				return
			}
			assert.Equal(t, tc.stage, stage)
			if stage == domain.StageInBlock {
				assert.Equal(t, block, hash)
			}
		})
	}
}

func TestDropReason(t *testing.T) {
	assert.Equal(t, "transaction invalid", dropReason(types.ExtrinsicStatus{IsInvalid: true}))
	assert.Equal(t, "transaction dropped", dropReason(types.ExtrinsicStatus{IsDropped: true}))
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	s := strings.Repeat("a", maxSummary-1) + "é" + "tail"

	got := truncate(s)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", maxSummary-1)+"…", got)
	assert.Equal(t, "short", truncate("short"))
}

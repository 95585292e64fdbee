package chain

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/centrifuge/go-substrate-rpc-client/v4/registry"
	"github.com/centrifuge/go-substrate-rpc-client/v4/registry/parser"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"

	"chaindrive/internal/domain"
)

const (
	extrinsicFailed = "System.ExtrinsicFailed"
	maxSummary      = 160
)

// extrinsicEvents keeps the events emitted while applying extrinsic index.
func extrinsicEvents(all []*parser.Event, index uint32) []*parser.Event {
	var out []*parser.Event
	for _, ev := range all {
		if ev == nil || ev.Phase == nil {
			continue
		}
		if ev.Phase.IsApplyExtrinsic && ev.Phase.AsApplyExtrinsic == index {
			out = append(out, ev)
		}
	}
	return out
}

// flatten reduces decoded events to section, method and a one-line data summary.
func flatten(evs []*parser.Event) []domain.ChainEvent {
	out := make([]domain.ChainEvent, 0, len(evs))
	for _, ev := range evs {
		section, method := splitName(ev.Name)
		out = append(out, domain.ChainEvent{
			Section:     section,
			Method:      method,
			DataSummary: summarize(ev.Fields),
		})
	}
	return out
}

// dispatchErrors names the unit variants of sp_runtime::DispatchError by index.
var dispatchErrors = []string{
	"Other", "CannotLookup", "BadOrigin", "Module", "ConsumerRemaining", "NoProviders",
	"TooManyConsumers", "Token", "Arithmetic", "Transactional", "Exhausted", "Corruption",
	"Unavailable", "RootNotAllowed",
}

// moduleLookup resolves a pallet error to "Name: docs".
type moduleLookup func(index types.U8, code [4]types.U8) (string, bool)

// dispatchError reports whether evs contain ExtrinsicFailed and describes it.
func dispatchError(evs []*parser.Event, lookup moduleLookup) (string, bool) {
	for _, ev := range evs {
		if ev.Name != extrinsicFailed {
			continue
		}
		for _, f := range ev.Fields {
			if f != nil && strings.Contains(strings.ToLower(f.Name), "dispatch_error") {
				return describeDispatch(f.Value, lookup), true
			}
		}
		return summarize(ev.Fields), true
	}
	return "", false
}

// describeDispatch renders a decoded DispatchError. The registry decodes unit
// variants to their index byte and data variants to their inner fields only.
func describeDispatch(v any, lookup moduleLookup) string {
	switch x := v.(type) {
	case byte:
		if int(x) < len(dispatchErrors) {
			return dispatchErrors[x]
		}
	case registry.DecodedFields:
		index, code, ok := moduleError(x)
		if !ok {
			break
		}
		if lookup != nil {
			if name, ok := lookup(index, code); ok {
				return name
			}
		}
		return fmt.Sprintf("Module(index=%d, error=%d)", index, code[0])
	}
	return describe(v)
}

// moduleError finds the {index, error} pair of a ModuleError in fields.
func moduleError(fields registry.DecodedFields) (types.U8, [4]types.U8, bool) {
	var index, code any
	for _, f := range fields {
		if f == nil {
			continue
		}
		switch f.Name {
		case "index":
			index = f.Value
		case "error":
			code = f.Value
		}
	}
	if index != nil && code != nil {
		i, ok := asU8(index)
		c, ok2 := errorCode(code)
		return i, c, ok && ok2
	}
	for _, f := range fields {
		if f == nil {
			continue
		}
		if inner, ok := f.Value.(registry.DecodedFields); ok {
			if i, c, ok := moduleError(inner); ok {
				return i, c, true
			}
		}
	}
	return 0, [4]types.U8{}, false
}

func asU8(v any) (types.U8, bool) {
	switch x := v.(type) {
	case types.U8:
		return x, true
	case byte:
		return types.U8(x), true
	}
	return 0, false
}

// errorCode accepts the [u8; 4] error of current runtimes and the single u8 of older ones.
func errorCode(v any) ([4]types.U8, bool) {
	var code [4]types.U8
	switch x := v.(type) {
	case [4]types.U8:
		return x, true
	case []any:
		if len(x) == 0 || len(x) > len(code) {
			return code, false
		}
		for i, item := range x {
			b, ok := asU8(item)
			if !ok {
				return code, false
			}
			code[i] = b
		}
		return code, true
	default:
		b, ok := asU8(v)
		code[0] = b
		return code, ok
	}
}

func splitName(name string) (string, string) {
	section, method, ok := strings.Cut(name, ".")
	if !ok {
		return "", name
	}
	return section, method
}

func summarize(fields registry.DecodedFields) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", f.Name, describe(f.Value)))
	}
	return truncate(strings.Join(parts, ", "))
}

// describe renders a decoded value. Variant enums decode to single-key maps,
// which are rendered as Key(inner) so that dispatch errors read as
// Module(index=5, error=...).
func describe(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case registry.DecodedFields:
		return summarize(x)
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if len(keys) == 1 {
			inner := describe(x[keys[0]])
			if inner == "" {
				return keys[0]
			}
			return keys[0] + "(" + inner + ")"
		}
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+describe(x[k]))
		}
		return strings.Join(parts, ", ")
	case fmt.Stringer:
		return truncate(x.String())
	default:
		return truncate(fmt.Sprint(x))
	}
}

// truncate cuts s to at most maxSummary bytes on a rune boundary.
func truncate(s string) string {
	if len(s) <= maxSummary {
		return s
	}
	cut := maxSummary
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

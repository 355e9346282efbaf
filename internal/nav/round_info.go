package nav

import (
	"context"
	"encoding/json"
	"fmt"
)

// Op identifies the mutation that triggered a round.
type Op int

const (
	OpPush       Op = iota // single push
	OpPushMany             // batched push, one round for all descriptors
	OpPop                  // single pop
	OpPopCount             // pop of n entries
	OpPopToIndex           // truncate to an index
	OpClear                // empty the stack
)

// String returns the label used in logs and trace attributes.
func (o Op) String() string {
	switch o {
	case OpPush:
		return "push"
	case OpPushMany:
		return "push-many"
	case OpPop:
		return "pop"
	case OpPopCount:
		return "pop-count"
	case OpPopToIndex:
		return "pop-to-index"
	case OpClear:
		return "clear"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler.
func (o Op) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Op) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "push":
		*o = OpPush
	case "push-many":
		*o = OpPushMany
	case "pop":
		*o = OpPop
	case "pop-count":
		*o = OpPopCount
	case "pop-to-index":
		*o = OpPopToIndex
	case "clear":
		*o = OpClear
	default:
		return fmt.Errorf("unknown Op: %s", s)
	}
	return nil
}

// RoundInfo describes one transition round. Depth and Top reflect the stack
// right after the triggering mutation.
type RoundInfo struct {
	ID          uint64 `json:"id"`
	Op          Op     `json:"op"`
	Depth       int    `json:"depth"`
	Top         string `json:"top,omitempty"`
	Controllers int    `json:"controllers"`
}

type roundKey struct{}

func withRound(ctx context.Context, info RoundInfo) context.Context {
	return context.WithValue(ctx, roundKey{}, info)
}

// RoundFromContext returns the round a controller is being invoked for.
func RoundFromContext(ctx context.Context) (RoundInfo, bool) {
	info, ok := ctx.Value(roundKey{}).(RoundInfo)
	return info, ok
}

// RoundHook observes round boundaries. Both methods run on the goroutine
// executing the round and must not block.
type RoundHook interface {
	RoundStarted(info RoundInfo)
	RoundFinished(info RoundInfo, err error)
}

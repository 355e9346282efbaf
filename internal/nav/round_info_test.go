package nav

import (
	"context"
	"encoding/json"
	"testing"
)

func TestOp_StringAndJSON(t *testing.T) {
	ops := []Op{OpPush, OpPushMany, OpPop, OpPopCount, OpPopToIndex, OpClear}
	for _, op := range ops {
		data, err := json.Marshal(op)
		if err != nil {
			t.Fatalf("Marshal(%v): %v", op, err)
		}
		var got Op
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("Unmarshal(%s): %v", data, err)
		}
		if got != op {
			t.Errorf("round trip %s: expected %v, got %v", data, op, got)
		}
	}
	if Op(99).String() != "unknown" {
		t.Errorf("expected unknown label, got %q", Op(99).String())
	}
	var op Op
	if err := json.Unmarshal([]byte(`"sideways"`), &op); err == nil {
		t.Error("expected error for unknown op")
	}
}

func TestRoundFromContext(t *testing.T) {
	if _, ok := RoundFromContext(context.Background()); ok {
		t.Error("expected no round in a bare context")
	}
	info := RoundInfo{ID: 7, Op: OpClear}
	got, ok := RoundFromContext(withRound(context.Background(), info))
	if !ok || got != info {
		t.Errorf("expected %+v, got %+v (ok=%v)", info, got, ok)
	}
}

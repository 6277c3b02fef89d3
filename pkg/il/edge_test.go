package il

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNewEdgeRejectsNon1BitCondition(t *testing.T) {
	cond := Const(1, 8)
	_, err := newEdge(0, 1, &cond)
	if err == nil || !errors.Is(err, ErrSort) {
		t.Errorf("expected a sort error, got %v", err)
	}
}

func TestEdgeUnconditional(t *testing.T) {
	e, err := newEdge(0, 1, nil)
	if err != nil {
		t.Fatalf("newEdge: %v", err)
	}
	if e.IsConditional() {
		t.Error("IsConditional() = true, want false")
	}
	if _, ok := e.Condition(); ok {
		t.Error("Condition() ok = true, want false")
	}
}

func TestEdgeConditional(t *testing.T) {
	cond := Var("zf", 1)
	e, err := newEdge(2, 3, &cond)
	if err != nil {
		t.Fatalf("newEdge: %v", err)
	}
	if !e.IsConditional() {
		t.Error("IsConditional() = false, want true")
	}
	got, ok := e.Condition()
	if !ok || got.String() != cond.String() {
		t.Errorf("Condition() = (%v, %v), want (%v, true)", got, ok, cond)
	}
}

func TestEdgeJSONRoundTrip(t *testing.T) {
	cond := Var("zf", 1)
	e, err := newEdge(1, 2, &cond)
	if err != nil {
		t.Fatalf("newEdge: %v", err)
	}
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Edge
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.String() != e.String() {
		t.Errorf("round trip mismatch: got %s, want %s", got, e)
	}
}

package il

import (
	"encoding/json"
	"fmt"
)

// Edge is a directed link between two blocks in a ControlFlowGraph, named by
// their graph-local indices rather than by a back-reference — edges, like
// blocks, are owned data, not pointers into a shared mutable graph.
//
// An Edge with no Condition is unconditional. Well-formedness (at most one
// unconditional outgoing edge per block) is not enforced at insertion time;
// it is left to analyses that care.
type Edge struct {
	head      uint64
	tail      uint64
	condition *Expression
}

// newEdge builds an edge, validating that any condition is 1 bit wide.
func newEdge(head, tail uint64, condition *Expression) (Edge, error) {
	if condition != nil && condition.Bits() != 1 {
		return Edge{}, sortErrorf("edge condition width %d != 1", condition.Bits())
	}
	return Edge{head: head, tail: tail, condition: condition}, nil
}

// Head returns the edge's source block index.
func (e Edge) Head() uint64 { return e.head }

// Tail returns the edge's destination block index.
func (e Edge) Tail() uint64 { return e.tail }

// Condition returns the edge's guard expression, if any.
func (e Edge) Condition() (Expression, bool) {
	if e.condition == nil {
		return Expression{}, false
	}
	return *e.condition, true
}

// IsConditional reports whether the edge carries a guard.
func (e Edge) IsConditional() bool { return e.condition != nil }

type edgeJSON struct {
	Head      uint64      `json:"head"`
	Tail      uint64      `json:"tail"`
	Condition *Expression `json:"condition,omitempty"`
}

func (e Edge) MarshalJSON() ([]byte, error) {
	return json.Marshal(edgeJSON{Head: e.head, Tail: e.tail, Condition: e.condition})
}

func (e *Edge) UnmarshalJSON(data []byte) error {
	var shadow edgeJSON
	if err := json.Unmarshal(data, &shadow); err != nil {
		return err
	}
	built, err := newEdge(shadow.Head, shadow.Tail, shadow.Condition)
	if err != nil {
		return err
	}
	*e = built
	return nil
}

func (e Edge) String() string {
	if cond, ok := e.Condition(); ok {
		return fmt.Sprintf("%02x -> %02x [%s]", e.head, e.tail, cond)
	}
	return fmt.Sprintf("%02x -> %02x", e.head, e.tail)
}

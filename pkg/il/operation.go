package il

import (
	"encoding/json"
	"fmt"
)

type opKind int

const (
	opAssign opKind = iota
	opStore
	opLoad
	opBrc
	opRaise
)

// Operation is the closed, five-variant sum: Assign, Store, Load, Brc
// (branch conditional), and Raise. Go has no native
// sum type, so this is one struct carrying a kind tag plus the fields for
// whichever variant is active — a tag plus a fixed-size payload, rather
// than an interface-per-variant hierarchy.
type Operation struct {
	kind opKind

	assignDst Scalar
	assignSrc Expression

	storeDst   Array
	storeIndex Expression
	storeValue Expression

	loadDst   Scalar
	loadIndex Expression
	loadSrc   Array

	brcTarget    Expression
	brcCondition Expression

	raiseExpr Expression
}

// NewAssign builds an Assign operation. src.Bits() must equal dst.Bits().
func NewAssign(dst Scalar, src Expression) (Operation, error) {
	if dst.Bits() != src.Bits() {
		return Operation{}, sortErrorf("assign: dst width %d != src width %d", dst.Bits(), src.Bits())
	}
	return Operation{kind: opAssign, assignDst: dst, assignSrc: src}, nil
}

// NewStore builds a Store operation. value.Bits() must be a multiple of 8;
// the transfer size is value.Bits()/8 bytes.
func NewStore(dst Array, index, value Expression) (Operation, error) {
	if value.Bits()%8 != 0 {
		return Operation{}, sortErrorf("store: value width %d is not a multiple of 8", value.Bits())
	}
	return Operation{kind: opStore, storeDst: dst, storeIndex: index, storeValue: value}, nil
}

// NewLoad builds a Load operation. dst.Bits() must be a multiple of 8; the
// transfer size is dst.Bits()/8 bytes.
func NewLoad(dst Scalar, index Expression, src Array) (Operation, error) {
	if dst.Bits()%8 != 0 {
		return Operation{}, sortErrorf("load: dst width %d is not a multiple of 8", dst.Bits())
	}
	return Operation{kind: opLoad, loadDst: dst, loadIndex: index, loadSrc: src}, nil
}

// NewBrc builds a Brc (branch-conditional) operation. condition.Bits() must
// be 1.
func NewBrc(target, condition Expression) (Operation, error) {
	if condition.Bits() != 1 {
		return Operation{}, sortErrorf("brc: condition width %d != 1", condition.Bits())
	}
	return Operation{kind: opBrc, brcTarget: target, brcCondition: condition}, nil
}

// NewRaise builds a Raise operation. Its expression is architecture-defined
// and carries no further sort constraint.
func NewRaise(expr Expression) Operation {
	return Operation{kind: opRaise, raiseExpr: expr}
}

func (o Operation) IsAssign() bool { return o.kind == opAssign }
func (o Operation) IsStore() bool  { return o.kind == opStore }
func (o Operation) IsLoad() bool   { return o.kind == opLoad }
func (o Operation) IsBrc() bool    { return o.kind == opBrc }
func (o Operation) IsRaise() bool  { return o.kind == opRaise }

// Assign returns the Assign variant's fields; ok is false for any other kind.
func (o Operation) Assign() (dst Scalar, src Expression, ok bool) {
	if o.kind != opAssign {
		return Scalar{}, Expression{}, false
	}
	return o.assignDst, o.assignSrc, true
}

// Store returns the Store variant's fields; ok is false for any other kind.
func (o Operation) Store() (dst Array, index, value Expression, ok bool) {
	if o.kind != opStore {
		return Array{}, Expression{}, Expression{}, false
	}
	return o.storeDst, o.storeIndex, o.storeValue, true
}

// Load returns the Load variant's fields; ok is false for any other kind.
func (o Operation) Load() (dst Scalar, index Expression, src Array, ok bool) {
	if o.kind != opLoad {
		return Scalar{}, Expression{}, Array{}, false
	}
	return o.loadDst, o.loadIndex, o.loadSrc, true
}

// Brc returns the Brc variant's fields; ok is false for any other kind.
func (o Operation) Brc() (target, condition Expression, ok bool) {
	if o.kind != opBrc {
		return Expression{}, Expression{}, false
	}
	return o.brcTarget, o.brcCondition, true
}

// Raise returns the Raise variant's expression; ok is false for any other
// kind.
func (o Operation) Raise() (expr Expression, ok bool) {
	if o.kind != opRaise {
		return Expression{}, false
	}
	return o.raiseExpr, true
}

// VariableWritten returns the variable this operation writes, if any:
// Assign and Load write a Scalar; Store writes its destination Array (its
// state is updated, so it counts as written); Brc and Raise write nothing.
func (o Operation) VariableWritten() (Variable, bool) {
	switch o.kind {
	case opAssign:
		return o.assignDst, true
	case opLoad:
		return o.loadDst, true
	case opStore:
		return o.storeDst, true
	default:
		return nil, false
	}
}

// VariablesRead returns every scalar and array appearing in a read position:
// for Load, the source array plus the index expression's scalars; for
// Store, the destination array (read-and-written) plus the index and value
// expressions' scalars; for Assign, the src expression's scalars; for Brc,
// the target and condition expressions' scalars; Raise reads its
// expression's scalars.
func (o Operation) VariablesRead() []Variable {
	var out []Variable
	appendScalars := func(e Expression) {
		for _, s := range e.Scalars() {
			out = append(out, s)
		}
	}
	switch o.kind {
	case opAssign:
		appendScalars(o.assignSrc)
	case opStore:
		out = append(out, o.storeDst)
		appendScalars(o.storeIndex)
		appendScalars(o.storeValue)
	case opLoad:
		out = append(out, o.loadSrc)
		appendScalars(o.loadIndex)
	case opBrc:
		appendScalars(o.brcTarget)
		appendScalars(o.brcCondition)
	case opRaise:
		appendScalars(o.raiseExpr)
	}
	return out
}

// VariableSlot is a mutable handle onto a single Scalar or Array location
// inside an Operation or Expression, returned by VariableWrittenMut and
// VariablesReadMut so a rename pass can mutate in place instead of
// rebuilding the owning tree. Go has no mutable trait-object equivalent of
// Rust's `&mut dyn Variable`, so this wraps exactly one of the two pointer
// kinds instead of abstracting over both.
type VariableSlot struct {
	scalar *Scalar
	array  *Array
}

// Variable returns a read-only copy of the referenced variable.
func (v VariableSlot) Variable() Variable {
	if v.scalar != nil {
		return *v.scalar
	}
	return *v.array
}

// Rename replaces the variable's name in place, preserving its bit-width (or
// size) and SSA index.
func (v VariableSlot) Rename(name string) {
	if v.scalar != nil {
		v.scalar.name = name
		return
	}
	v.array.name = name
}

// SetSSAIndex sets the variable's SSA index in place.
func (v VariableSlot) SetSSAIndex(index uint32) {
	if v.scalar != nil {
		v.scalar.ssaIndex = index
		v.scalar.hasSSA = true
		return
	}
	v.array.ssaIndex = index
	v.array.hasSSA = true
}

// VariableWrittenMut is the mutable counterpart to VariableWritten.
func (o *Operation) VariableWrittenMut() (VariableSlot, bool) {
	switch o.kind {
	case opAssign:
		return VariableSlot{scalar: &o.assignDst}, true
	case opLoad:
		return VariableSlot{scalar: &o.loadDst}, true
	case opStore:
		return VariableSlot{array: &o.storeDst}, true
	default:
		return VariableSlot{}, false
	}
}

// VariablesReadMut is the mutable counterpart to VariablesRead.
func (o *Operation) VariablesReadMut() []VariableSlot {
	var out []VariableSlot
	appendScalars := func(e *Expression) {
		for _, s := range e.ScalarsMut() {
			out = append(out, VariableSlot{scalar: s})
		}
	}
	switch o.kind {
	case opAssign:
		appendScalars(&o.assignSrc)
	case opStore:
		out = append(out, VariableSlot{array: &o.storeDst})
		appendScalars(&o.storeIndex)
		appendScalars(&o.storeValue)
	case opLoad:
		out = append(out, VariableSlot{array: &o.loadSrc})
		appendScalars(&o.loadIndex)
	case opBrc:
		appendScalars(&o.brcTarget)
		appendScalars(&o.brcCondition)
	case opRaise:
		appendScalars(&o.raiseExpr)
	}
	return out
}

type operationJSON struct {
	Kind string `json:"kind"`

	AssignDst *Scalar     `json:"dst,omitempty"`
	AssignSrc *Expression `json:"src,omitempty"`

	StoreDst   *Array      `json:"store_dst,omitempty"`
	StoreIndex *Expression `json:"store_index,omitempty"`
	StoreValue *Expression `json:"store_value,omitempty"`

	LoadDst   *Scalar     `json:"load_dst,omitempty"`
	LoadIndex *Expression `json:"load_index,omitempty"`
	LoadSrc   *Array      `json:"load_src,omitempty"`

	BrcTarget    *Expression `json:"brc_target,omitempty"`
	BrcCondition *Expression `json:"brc_condition,omitempty"`

	RaiseExpr *Expression `json:"raise_expr,omitempty"`
}

func (o Operation) MarshalJSON() ([]byte, error) {
	var shadow operationJSON
	switch o.kind {
	case opAssign:
		shadow.Kind = "assign"
		shadow.AssignDst = &o.assignDst
		shadow.AssignSrc = &o.assignSrc
	case opStore:
		shadow.Kind = "store"
		shadow.StoreDst = &o.storeDst
		shadow.StoreIndex = &o.storeIndex
		shadow.StoreValue = &o.storeValue
	case opLoad:
		shadow.Kind = "load"
		shadow.LoadDst = &o.loadDst
		shadow.LoadIndex = &o.loadIndex
		shadow.LoadSrc = &o.loadSrc
	case opBrc:
		shadow.Kind = "brc"
		shadow.BrcTarget = &o.brcTarget
		shadow.BrcCondition = &o.brcCondition
	case opRaise:
		shadow.Kind = "raise"
		shadow.RaiseExpr = &o.raiseExpr
	default:
		return nil, fmt.Errorf("operation: invalid kind %d", o.kind)
	}
	return json.Marshal(shadow)
}

func (o *Operation) UnmarshalJSON(data []byte) error {
	var shadow operationJSON
	if err := json.Unmarshal(data, &shadow); err != nil {
		return err
	}
	var result Operation
	var err error
	switch shadow.Kind {
	case "assign":
		result, err = NewAssign(*shadow.AssignDst, *shadow.AssignSrc)
	case "store":
		result, err = NewStore(*shadow.StoreDst, *shadow.StoreIndex, *shadow.StoreValue)
	case "load":
		result, err = NewLoad(*shadow.LoadDst, *shadow.LoadIndex, *shadow.LoadSrc)
	case "brc":
		result, err = NewBrc(*shadow.BrcTarget, *shadow.BrcCondition)
	case "raise":
		result = NewRaise(*shadow.RaiseExpr)
	default:
		return fmt.Errorf("operation: unknown kind %q", shadow.Kind)
	}
	if err != nil {
		return err
	}
	*o = result
	return nil
}

func (o Operation) String() string {
	switch o.kind {
	case opAssign:
		return fmt.Sprintf("%s = %s", o.assignDst, o.assignSrc)
	case opStore:
		return fmt.Sprintf("%s[%s] = %s", o.storeDst, o.storeIndex, o.storeValue)
	case opLoad:
		return fmt.Sprintf("%s = %s[%s]", o.loadDst, o.loadSrc, o.loadIndex)
	case opBrc:
		return fmt.Sprintf("brc %s ? %s", o.brcCondition, o.brcTarget)
	case opRaise:
		return fmt.Sprintf("raise(%s)", o.raiseExpr)
	default:
		return "invalid"
	}
}

package il

import (
	"encoding/json"
	"fmt"
)

// Scalar is a named bit-vector variable of fixed width. Its identity is
// (Name, SSAIndex); two scalars sharing a name must agree on Bits within a
// single function — the IL does not enforce this globally (it has no notion
// of "a function's scalars"), but analyses that introduce a name are
// expected to keep it consistent.
type Scalar struct {
	name     string
	bits     uint
	ssaIndex uint32
	hasSSA   bool
}

// NewScalar builds a Scalar with no SSA index.
func NewScalar(name string, bits uint) Scalar {
	return Scalar{name: name, bits: bits}
}

// NewSSAScalar builds a Scalar carrying an explicit SSA index.
func NewSSAScalar(name string, bits uint, ssaIndex uint32) Scalar {
	return Scalar{name: name, bits: bits, ssaIndex: ssaIndex, hasSSA: true}
}

// Var is the preferred way to build a Scalar expression, mirroring the
// original IL's `scalar`/`expr_scalar` convenience functions.
func Var(name string, bits uint) Expression {
	return Expression{tag: tagScalar, bits: bits, scalar: NewScalar(name, bits)}
}

// VarSSA is Var for a scalar carrying an explicit SSA index.
func VarSSA(name string, bits uint, ssaIndex uint32) Expression {
	s := NewSSAScalar(name, bits, ssaIndex)
	return Expression{tag: tagScalar, bits: bits, scalar: s}
}

// Bits returns the scalar's bit-width.
func (s Scalar) Bits() uint { return s.bits }

// WithSSAIndex returns a copy of s carrying the given SSA index, used by
// SSA-renaming passes that need a fresh identity for the same name/width.
func (s Scalar) WithSSAIndex(index uint32) Scalar {
	s.ssaIndex = index
	s.hasSSA = true
	return s
}

func (s Scalar) VarName() string { return s.name }

func (s Scalar) VarSSAIndex() (uint32, bool) { return s.ssaIndex, s.hasSSA }

func (s Scalar) VarIdentity() Identity {
	return Identity{Name: s.name, SSAIndex: s.ssaIndex, HasSSA: s.hasSSA}
}

func (s Scalar) String() string {
	if s.hasSSA {
		return fmt.Sprintf("%s_%d:%d", s.name, s.ssaIndex, s.bits)
	}
	return fmt.Sprintf("%s:%d", s.name, s.bits)
}

type scalarJSON struct {
	Name     string  `json:"name"`
	Bits     uint    `json:"bits"`
	SSAIndex *uint32 `json:"ssa_index,omitempty"`
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	shadow := scalarJSON{Name: s.name, Bits: s.bits}
	if s.hasSSA {
		idx := s.ssaIndex
		shadow.SSAIndex = &idx
	}
	return json.Marshal(shadow)
}

func (s *Scalar) UnmarshalJSON(data []byte) error {
	var shadow scalarJSON
	if err := json.Unmarshal(data, &shadow); err != nil {
		return err
	}
	if shadow.SSAIndex != nil {
		*s = NewSSAScalar(shadow.Name, shadow.Bits, *shadow.SSAIndex)
	} else {
		*s = NewScalar(shadow.Name, shadow.Bits)
	}
	return nil
}

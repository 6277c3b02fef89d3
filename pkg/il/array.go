package il

import (
	"encoding/json"
	"fmt"
)

// Array models a memory region of Size bytes. Unlike Scalar it never
// appears as an Expression operand — it is referenced directly by
// Operation::Load/Store, indexed by an Expression rather than through a
// fixed layout.
type Array struct {
	name     string
	size     uint64
	ssaIndex uint32
	hasSSA   bool
}

// NewArray builds an Array with no SSA index.
func NewArray(name string, sizeBytes uint64) Array {
	return Array{name: name, size: sizeBytes}
}

// NewSSAArray builds an Array carrying an explicit SSA index.
func NewSSAArray(name string, sizeBytes uint64, ssaIndex uint32) Array {
	return Array{name: name, size: sizeBytes, ssaIndex: ssaIndex, hasSSA: true}
}

// ArrayRef is the preferred way to build an Array, mirroring the original
// IL's `array` convenience function.
func ArrayRef(name string, sizeBytes uint64) Array {
	return NewArray(name, sizeBytes)
}

// Size returns the array's size in bytes.
func (a Array) Size() uint64 { return a.size }

// WithSSAIndex returns a copy of a carrying the given SSA index.
func (a Array) WithSSAIndex(index uint32) Array {
	a.ssaIndex = index
	a.hasSSA = true
	return a
}

func (a Array) VarName() string { return a.name }

func (a Array) VarSSAIndex() (uint32, bool) { return a.ssaIndex, a.hasSSA }

func (a Array) VarIdentity() Identity {
	return Identity{Name: a.name, SSAIndex: a.ssaIndex, HasSSA: a.hasSSA}
}

func (a Array) String() string {
	if a.hasSSA {
		return fmt.Sprintf("%s_%d[%d]", a.name, a.ssaIndex, a.size)
	}
	return fmt.Sprintf("%s[%d]", a.name, a.size)
}

type arrayJSON struct {
	Name     string  `json:"name"`
	Size     uint64  `json:"size"`
	SSAIndex *uint32 `json:"ssa_index,omitempty"`
}

func (a Array) MarshalJSON() ([]byte, error) {
	shadow := arrayJSON{Name: a.name, Size: a.size}
	if a.hasSSA {
		idx := a.ssaIndex
		shadow.SSAIndex = &idx
	}
	return json.Marshal(shadow)
}

func (a *Array) UnmarshalJSON(data []byte) error {
	var shadow arrayJSON
	if err := json.Unmarshal(data, &shadow); err != nil {
		return err
	}
	if shadow.SSAIndex != nil {
		*a = NewSSAArray(shadow.Name, shadow.Size, *shadow.SSAIndex)
	} else {
		*a = NewArray(shadow.Name, shadow.Size)
	}
	return nil
}

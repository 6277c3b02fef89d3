package il

import (
	"encoding/json"
	"fmt"
)

// Instruction binds an Operation to a position (Index) within a Block, with
// an optional source Address and an optional human comment. You should
// almost never build one directly — use the matching factory method on
// Block (Assign/Store/Load/Brc/Raise), which allocates the index for you.
type Instruction struct {
	operation Operation
	index     uint64
	comment   *string
	address   *uint64
}

// NewInstruction builds an Instruction from an explicit index and
// Operation. Direct use is permitted but discouraged; prefer a Block
// factory method so instruction indices stay block-unique automatically.
func NewInstruction(index uint64, operation Operation) Instruction {
	return Instruction{operation: operation, index: index}
}

// Operation returns the instruction's operation.
func (i Instruction) Operation() Operation { return i.operation }

// OperationMut returns a pointer to the instruction's operation so its
// operands can be rewritten in place.
func (i *Instruction) OperationMut() *Operation { return &i.operation }

// Index returns the instruction's index, unique within its owning Block.
func (i Instruction) Index() uint64 { return i.index }

// Comment returns the instruction's optional comment.
func (i Instruction) Comment() (string, bool) {
	if i.comment == nil {
		return "", false
	}
	return *i.comment, true
}

// SetComment sets or clears (comment == nil) the instruction's comment.
func (i *Instruction) SetComment(comment *string) { i.comment = comment }

// Address returns the instruction's optional source address.
func (i Instruction) Address() (uint64, bool) {
	if i.address == nil {
		return 0, false
	}
	return *i.address, true
}

// SetAddress sets or clears (address == nil) the instruction's source
// address.
func (i *Instruction) SetAddress(address *uint64) { i.address = address }

// CloneNewIndex returns a copy of i carrying a new index, leaving the
// original untouched. ControlFlowGraph.Append does not call it: absorbed
// instructions land in fresh blocks and keep their original indices.
func (i Instruction) CloneNewIndex(index uint64) Instruction {
	i.index = index
	return i
}

// VariableWritten is a convenience forward to Operation.VariableWritten.
func (i Instruction) VariableWritten() (Variable, bool) { return i.operation.VariableWritten() }

// VariablesRead is a convenience forward to Operation.VariablesRead.
func (i Instruction) VariablesRead() []Variable { return i.operation.VariablesRead() }

type instructionJSON struct {
	Operation Operation `json:"operation"`
	Index     uint64    `json:"index"`
	Comment   *string   `json:"comment,omitempty"`
	Address   *uint64   `json:"address,omitempty"`
}

func (i Instruction) MarshalJSON() ([]byte, error) {
	return json.Marshal(instructionJSON{
		Operation: i.operation,
		Index:     i.index,
		Comment:   i.comment,
		Address:   i.address,
	})
}

func (i *Instruction) UnmarshalJSON(data []byte) error {
	var shadow instructionJSON
	if err := json.Unmarshal(data, &shadow); err != nil {
		return err
	}
	*i = Instruction{
		operation: shadow.Operation,
		index:     shadow.Index,
		comment:   shadow.Comment,
		address:   shadow.Address,
	}
	return nil
}

func (i Instruction) String() string {
	var prefix string
	if addr, ok := i.Address(); ok {
		prefix = fmt.Sprintf("%x %02x %s", addr, i.index, i.operation)
	} else {
		prefix = fmt.Sprintf("%02x %s", i.index, i.operation)
	}
	if comment, ok := i.Comment(); ok {
		return fmt.Sprintf("%s // %s", prefix, comment)
	}
	return prefix
}

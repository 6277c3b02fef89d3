package il

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Block is a basic block: an ordered sequence of Instructions plus a
// block-local Index assigned by its owning ControlFlowGraph. Block owns its
// instructions outright — there is no back-reference to the graph, so a
// Block is serializable and testable on its own.
type Block struct {
	index        uint64
	instructions []Instruction
	position     map[uint64]int // instruction index -> position in instructions
	nextIndex    uint64
}

// NewBlock builds an empty block with the given graph-assigned index.
// Lifters should use ControlFlowGraph.NewBlock instead of calling this
// directly, so the index is guaranteed graph-unique.
func NewBlock(index uint64) *Block {
	return &Block{index: index, position: make(map[uint64]int)}
}

// Index returns the block's index within its owning graph.
func (b *Block) Index() uint64 { return b.index }

// Len returns the number of instructions in the block.
func (b *Block) Len() int { return len(b.instructions) }

// Instructions returns the block's instructions in insertion order,
// read-only.
func (b *Block) Instructions() []Instruction {
	out := make([]Instruction, len(b.instructions))
	copy(out, b.instructions)
	return out
}

// InstructionByIndex looks up an instruction by its in-block index.
func (b *Block) InstructionByIndex(index uint64) (Instruction, bool) {
	pos, ok := b.position[index]
	if !ok {
		return Instruction{}, false
	}
	return b.instructions[pos], true
}

// InstructionMut returns a pointer to the instruction at the given index so
// its operation can be rewritten in place.
func (b *Block) InstructionMut(index uint64) (*Instruction, bool) {
	pos, ok := b.position[index]
	if !ok {
		return nil, false
	}
	return &b.instructions[pos], true
}

func (b *Block) allocIndex() uint64 {
	idx := b.nextIndex
	b.nextIndex++
	return idx
}

func (b *Block) append(op Operation) *Instruction {
	idx := b.allocIndex()
	instr := NewInstruction(idx, op)
	b.instructions = append(b.instructions, instr)
	b.position[idx] = len(b.instructions) - 1
	return &b.instructions[len(b.instructions)-1]
}

// Assign appends a new Assign instruction, allocating a fresh index.
func (b *Block) Assign(dst Scalar, src Expression) (*Instruction, error) {
	op, err := NewAssign(dst, src)
	if err != nil {
		return nil, err
	}
	return b.append(op), nil
}

// Store appends a new Store instruction, allocating a fresh index.
func (b *Block) Store(dst Array, index, value Expression) (*Instruction, error) {
	op, err := NewStore(dst, index, value)
	if err != nil {
		return nil, err
	}
	return b.append(op), nil
}

// Load appends a new Load instruction, allocating a fresh index.
func (b *Block) Load(dst Scalar, index Expression, src Array) (*Instruction, error) {
	op, err := NewLoad(dst, index, src)
	if err != nil {
		return nil, err
	}
	return b.append(op), nil
}

// Brc appends a new Brc instruction, allocating a fresh index.
func (b *Block) Brc(target, condition Expression) (*Instruction, error) {
	op, err := NewBrc(target, condition)
	if err != nil {
		return nil, err
	}
	return b.append(op), nil
}

// Raise appends a new Raise instruction, allocating a fresh index.
func (b *Block) Raise(expr Expression) *Instruction {
	return b.append(NewRaise(expr))
}

// InsertInstruction inserts a manually constructed instruction, failing with
// ErrInstructionIndexCollision if its index is already used in this block.
// This is the discouraged path; prefer the factory methods above.
func (b *Block) InsertInstruction(instr Instruction) error {
	if _, exists := b.position[instr.Index()]; exists {
		return errors.Wrapf(ErrInstructionIndexCollision, "block %d: instruction index %d", b.index, instr.Index())
	}
	b.instructions = append(b.instructions, instr)
	b.position[instr.Index()] = len(b.instructions) - 1
	if instr.Index() >= b.nextIndex {
		b.nextIndex = instr.Index() + 1
	}
	return nil
}

type blockJSON struct {
	Index        uint64        `json:"index"`
	Instructions []Instruction `json:"instructions"`
}

func (b *Block) MarshalJSON() ([]byte, error) {
	return json.Marshal(blockJSON{Index: b.index, Instructions: b.Instructions()})
}

func (b *Block) UnmarshalJSON(data []byte) error {
	var shadow blockJSON
	if err := json.Unmarshal(data, &shadow); err != nil {
		return err
	}
	nb := NewBlock(shadow.Index)
	for _, instr := range shadow.Instructions {
		if err := nb.InsertInstruction(instr); err != nil {
			return err
		}
	}
	*b = *nb
	return nil
}

func (b *Block) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%02x]\n", b.index)
	for _, instr := range b.instructions {
		fmt.Fprintf(&sb, "  %s\n", instr)
	}
	return sb.String()
}

package il

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ControlFlowGraph is a directed graph of Blocks and Edges with optional
// Entry and Exit block indices. Lifters build one small graph per machine
// instruction (entry/exit always set) and chain them with AppendWithEdge to
// build up a basic block's graph — block indices in the final graph carry
// no address meaning.
type ControlFlowGraph struct {
	blocks        map[uint64]*Block
	edges         []Edge
	entry         *uint64
	exit          *uint64
	nextBlockIndex uint64
}

// NewControlFlowGraph builds an empty graph.
func NewControlFlowGraph() *ControlFlowGraph {
	return &ControlFlowGraph{blocks: make(map[uint64]*Block)}
}

// NewBlock allocates a block with a fresh graph-unique index and returns a
// handle to it.
func (g *ControlFlowGraph) NewBlock() *Block {
	idx := g.nextBlockIndex
	g.nextBlockIndex++
	b := NewBlock(idx)
	g.blocks[idx] = b
	return b
}

// InsertBlock inserts a manually constructed block, failing with
// ErrBlockIndexCollision if its index is already used in this graph. Prefer
// NewBlock, which guarantees a fresh index.
func (g *ControlFlowGraph) InsertBlock(b *Block) error {
	if _, exists := g.blocks[b.Index()]; exists {
		return errors.Wrapf(ErrBlockIndexCollision, "graph: block index %d", b.Index())
	}
	g.blocks[b.Index()] = b
	if b.Index() >= g.nextBlockIndex {
		g.nextBlockIndex = b.Index() + 1
	}
	return nil
}

// BlockByIndex looks up a block by its graph index.
func (g *ControlFlowGraph) BlockByIndex(index uint64) (*Block, bool) {
	b, ok := g.blocks[index]
	return b, ok
}

// Blocks returns every block, ordered by index ascending.
func (g *ControlFlowGraph) Blocks() []*Block {
	indices := make([]uint64, 0, len(g.blocks))
	for idx := range g.blocks {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	out := make([]*Block, len(indices))
	for i, idx := range indices {
		out[i] = g.blocks[idx]
	}
	return out
}

// Edges returns every edge, ordered by (head, tail) ascending.
func (g *ControlFlowGraph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Head() != out[j].Head() {
			return out[i].Head() < out[j].Head()
		}
		return out[i].Tail() < out[j].Tail()
	})
	return out
}

// Entry returns the graph's entry block index, if set.
func (g *ControlFlowGraph) Entry() (uint64, bool) {
	if g.entry == nil {
		return 0, false
	}
	return *g.entry, true
}

// Exit returns the graph's exit block index, if set.
func (g *ControlFlowGraph) Exit() (uint64, bool) {
	if g.exit == nil {
		return 0, false
	}
	return *g.exit, true
}

// SetEntry records the graph's entry block, failing with
// ErrEdgeTargetMissing if the block does not exist in this graph.
func (g *ControlFlowGraph) SetEntry(block uint64) error {
	if _, ok := g.blocks[block]; !ok {
		return errors.Wrapf(ErrEdgeTargetMissing, "graph: entry block %d", block)
	}
	idx := block
	g.entry = &idx
	return nil
}

// SetExit records the graph's exit block, failing with
// ErrEdgeTargetMissing if the block does not exist in this graph.
func (g *ControlFlowGraph) SetExit(block uint64) error {
	if _, ok := g.blocks[block]; !ok {
		return errors.Wrapf(ErrEdgeTargetMissing, "graph: exit block %d", block)
	}
	idx := block
	g.exit = &idx
	return nil
}

func (g *ControlFlowGraph) insertEdge(head, tail uint64, condition *Expression) (Edge, error) {
	if _, ok := g.blocks[head]; !ok {
		return Edge{}, errors.Wrapf(ErrEdgeTargetMissing, "graph: edge head %d", head)
	}
	if _, ok := g.blocks[tail]; !ok {
		return Edge{}, errors.Wrapf(ErrEdgeTargetMissing, "graph: edge tail %d", tail)
	}
	e, err := newEdge(head, tail, condition)
	if err != nil {
		return Edge{}, err
	}
	g.edges = append(g.edges, e)
	return e, nil
}

// UnconditionalEdge inserts an unconditional edge from head to tail.
func (g *ControlFlowGraph) UnconditionalEdge(head, tail uint64) (Edge, error) {
	return g.insertEdge(head, tail, nil)
}

// ConditionalEdge inserts an edge from head to tail guarded by condition,
// which must be 1 bit wide.
func (g *ControlFlowGraph) ConditionalEdge(head, tail uint64, condition Expression) (Edge, error) {
	cond := condition
	return g.insertEdge(head, tail, &cond)
}

// Predecessors returns the indices of every block with an edge into block.
func (g *ControlFlowGraph) Predecessors(block uint64) []uint64 {
	var out []uint64
	for _, e := range g.Edges() {
		if e.Tail() == block {
			out = append(out, e.Head())
		}
	}
	return out
}

// Successors returns the indices of every block with an edge out of block.
func (g *ControlFlowGraph) Successors(block uint64) []uint64 {
	var out []uint64
	for _, e := range g.Edges() {
		if e.Head() == block {
			out = append(out, e.Tail())
		}
	}
	return out
}

// Append absorbs every block and edge of other into g. Block indices from
// other are rewritten to fresh indices in g; since each absorbed block
// lands in a brand-new (empty) Block, its instruction indices never
// collide and are kept as-is. g's entry/exit are left unchanged; other's
// are discarded (the caller gets the block-index rewriting map to use them
// if needed, as AppendWithEdge does). Returns the map from other's original
// block indices to their new indices in g.
func (g *ControlFlowGraph) Append(other *ControlFlowGraph) (map[uint64]uint64, error) {
	blockMap := make(map[uint64]uint64, len(other.blocks))
	for _, ob := range other.Blocks() {
		nb := g.NewBlock()
		blockMap[ob.Index()] = nb.Index()
		for _, instr := range ob.Instructions() {
			if err := nb.InsertInstruction(instr); err != nil {
				return nil, err
			}
		}
	}
	for _, oe := range other.Edges() {
		var cond *Expression
		if c, ok := oe.Condition(); ok {
			cc := c
			cond = &cc
		}
		if _, err := g.insertEdge(blockMap[oe.Head()], blockMap[oe.Tail()], cond); err != nil {
			return nil, err
		}
	}
	return blockMap, nil
}

// AppendWithEdge appends other into g (via Append) and then adds an edge
// from g's exit to the rewritten image of other's entry, guarded by
// condition (nil for unconditional). g's exit becomes the rewritten image
// of other's exit. Fails with ErrGraphMissingTerminal if other's entry or
// exit is unset, or if g is non-empty and has no exit set.
//
// Special case: if g is completely empty (no blocks, no entry, no exit),
// AppendWithEdge degenerates to a plain insertion of other — no edge is
// added (there is no g exit to connect from), and g adopts other's
// entry/exit wholesale.
func (g *ControlFlowGraph) AppendWithEdge(other *ControlFlowGraph, condition *Expression) error {
	otherEntry, entryOK := other.Entry()
	otherExit, exitOK := other.Exit()
	if !entryOK || !exitOK {
		return errors.Wrapf(ErrGraphMissingTerminal, "graph: appended graph entry or exit unset")
	}

	empty := len(g.blocks) == 0 && g.entry == nil && g.exit == nil
	var selfExit uint64
	if !empty {
		se, ok := g.Exit()
		if !ok {
			return errors.Wrapf(ErrGraphMissingTerminal, "graph: receiver exit unset")
		}
		selfExit = se
	}

	blockMap, err := g.Append(other)
	if err != nil {
		return err
	}
	newEntryImage := blockMap[otherEntry]
	newExitImage := blockMap[otherExit]

	if empty {
		g.entry = &newEntryImage
		g.exit = &newExitImage
		return nil
	}

	if _, err := g.insertEdge(selfExit, newEntryImage, condition); err != nil {
		return err
	}
	g.exit = &newExitImage
	return nil
}

type controlFlowGraphJSON struct {
	Blocks []*Block `json:"blocks"`
	Edges  []Edge   `json:"edges"`
	Entry  *uint64  `json:"entry,omitempty"`
	Exit   *uint64  `json:"exit,omitempty"`
}

func (g *ControlFlowGraph) MarshalJSON() ([]byte, error) {
	return json.Marshal(controlFlowGraphJSON{
		Blocks: g.Blocks(),
		Edges:  g.Edges(),
		Entry:  g.entry,
		Exit:   g.exit,
	})
}

func (g *ControlFlowGraph) UnmarshalJSON(data []byte) error {
	var shadow controlFlowGraphJSON
	if err := json.Unmarshal(data, &shadow); err != nil {
		return err
	}
	ng := NewControlFlowGraph()
	for _, b := range shadow.Blocks {
		if err := ng.InsertBlock(b); err != nil {
			return err
		}
	}
	for _, e := range shadow.Edges {
		if _, err := ng.insertEdge(e.head, e.tail, e.condition); err != nil {
			return err
		}
	}
	ng.entry = shadow.Entry
	ng.exit = shadow.Exit
	*g = *ng
	return nil
}

func (g *ControlFlowGraph) String() string {
	var sb strings.Builder
	for _, b := range g.Blocks() {
		sb.WriteString(b.String())
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&sb, "  %s\n", e)
	}
	return sb.String()
}

package il

import (
	"errors"
	"testing"
)

func singleBlockGraph(t *testing.T, raiseValue uint64) *ControlFlowGraph {
	t.Helper()
	g := NewControlFlowGraph()
	b := g.NewBlock()
	b.Raise(Const(raiseValue, 32))
	if err := g.SetEntry(b.Index()); err != nil {
		t.Fatalf("SetEntry: %v", err)
	}
	if err := g.SetExit(b.Index()); err != nil {
		t.Fatalf("SetExit: %v", err)
	}
	return g
}

func TestSetEntryExitRejectUnknownBlock(t *testing.T) {
	g := NewControlFlowGraph()
	if err := g.SetEntry(42); err == nil || !errors.Is(err, ErrEdgeTargetMissing) {
		t.Errorf("SetEntry(42) = %v, want ErrEdgeTargetMissing", err)
	}
	if err := g.SetExit(42); err == nil || !errors.Is(err, ErrEdgeTargetMissing) {
		t.Errorf("SetExit(42) = %v, want ErrEdgeTargetMissing", err)
	}
}

func TestInsertBlockRejectsCollision(t *testing.T) {
	g := NewControlFlowGraph()
	b := NewBlock(0)
	if err := g.InsertBlock(b); err != nil {
		t.Fatalf("InsertBlock: %v", err)
	}
	if err := g.InsertBlock(NewBlock(0)); err == nil || !errors.Is(err, ErrBlockIndexCollision) {
		t.Errorf("expected ErrBlockIndexCollision, got %v", err)
	}
}

func TestBlocksAndEdgesAreDeterministicallyOrdered(t *testing.T) {
	g := NewControlFlowGraph()
	b2 := g.NewBlock()
	b0 := g.NewBlock()
	b1 := g.NewBlock()
	_ = b1
	if _, err := g.UnconditionalEdge(b2.Index(), b0.Index()); err != nil {
		t.Fatalf("UnconditionalEdge: %v", err)
	}
	if _, err := g.UnconditionalEdge(b0.Index(), b2.Index()); err != nil {
		t.Fatalf("UnconditionalEdge: %v", err)
	}

	blocks := g.Blocks()
	for i := 1; i < len(blocks); i++ {
		if blocks[i-1].Index() >= blocks[i].Index() {
			t.Fatalf("Blocks() not ascending: %v", blocks)
		}
	}

	edges := g.Edges()
	for i := 1; i < len(edges); i++ {
		prev, cur := edges[i-1], edges[i]
		if prev.Head() > cur.Head() || (prev.Head() == cur.Head() && prev.Tail() > cur.Tail()) {
			t.Fatalf("Edges() not (head, tail) ascending: %v", edges)
		}
	}
}

func TestAppendRewritesBlockIndices(t *testing.T) {
	g := singleBlockGraph(t, 1)
	other := singleBlockGraph(t, 2)

	blockMap, err := g.Append(other)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if len(g.Blocks()) != 2 {
		t.Fatalf("g has %d blocks, want 2", len(g.Blocks()))
	}
	otherEntry, _ := other.Entry()
	newIdx, ok := blockMap[otherEntry]
	if !ok {
		t.Fatal("block map missing other's entry")
	}
	if _, ok := g.BlockByIndex(newIdx); !ok {
		t.Errorf("rewritten block index %d not present in g", newIdx)
	}
}

func TestAppendWithEdgeOnEmptyGraphAdoptsOtherWholesale(t *testing.T) {
	g := NewControlFlowGraph()
	other := singleBlockGraph(t, 1)

	if err := g.AppendWithEdge(other, nil); err != nil {
		t.Fatalf("AppendWithEdge: %v", err)
	}
	if len(g.Edges()) != 0 {
		t.Errorf("AppendWithEdge on an empty receiver should add no edge, got %v", g.Edges())
	}
	entry, ok := g.Entry()
	if !ok {
		t.Fatal("g should have adopted other's entry")
	}
	exit, ok := g.Exit()
	if !ok {
		t.Fatal("g should have adopted other's exit")
	}
	if entry != exit {
		t.Errorf("entry %d != exit %d, want equal for a single-block graph", entry, exit)
	}
}

func TestAppendWithEdgeOnNonEmptyGraphRequiresExit(t *testing.T) {
	g := NewControlFlowGraph()
	g.NewBlock() // g is non-empty: it has a block and, below, an entry, but no exit
	if err := g.SetEntry(0); err != nil {
		t.Fatalf("SetEntry: %v", err)
	}
	other := singleBlockGraph(t, 1)

	if err := g.AppendWithEdge(other, nil); err == nil || !errors.Is(err, ErrGraphMissingTerminal) {
		t.Errorf("expected ErrGraphMissingTerminal when g has no exit, got %v", err)
	}
}

func TestAppendWithEdgeConnectsExitToEntry(t *testing.T) {
	g := singleBlockGraph(t, 1)
	other := singleBlockGraph(t, 2)

	prevExit, _ := g.Exit()
	if err := g.AppendWithEdge(other, nil); err != nil {
		t.Fatalf("AppendWithEdge: %v", err)
	}

	newExit, ok := g.Exit()
	if !ok {
		t.Fatal("g should still have an exit")
	}
	if newExit == prevExit {
		t.Error("exit should have moved to the appended graph's exit image")
	}

	succ := g.Successors(prevExit)
	if len(succ) != 1 || succ[0] != newExit {
		t.Errorf("Successors(prevExit) = %v, want [%d]", succ, newExit)
	}
}

func TestAppendWithEdgeRejectsMissingTerminalsOnOther(t *testing.T) {
	g := singleBlockGraph(t, 1)
	other := NewControlFlowGraph()
	other.NewBlock() // no entry/exit set

	if err := g.AppendWithEdge(other, nil); err == nil || !errors.Is(err, ErrGraphMissingTerminal) {
		t.Errorf("expected ErrGraphMissingTerminal, got %v", err)
	}
}

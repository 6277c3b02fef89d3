package il

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestBlockFactoryMethodsAllocateSequentialIndices(t *testing.T) {
	b := NewBlock(0)
	i0, err := b.Assign(NewScalar("a", 32), Const(1, 32))
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	i1, err := b.Assign(NewScalar("b", 32), Const(2, 32))
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if i0.Index() != 0 || i1.Index() != 1 {
		t.Errorf("indices = %d, %d, want 0, 1", i0.Index(), i1.Index())
	}
	if b.Len() != 2 {
		t.Errorf("Len() = %d, want 2", b.Len())
	}
}

func TestBlockInstructionByIndex(t *testing.T) {
	b := NewBlock(0)
	if _, err := b.Assign(NewScalar("a", 32), Const(1, 32)); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	instr, ok := b.InstructionByIndex(0)
	if !ok {
		t.Fatal("InstructionByIndex(0) not found")
	}
	dst, _, _ := instr.Operation().Assign()
	if dst.VarName() != "a" {
		t.Errorf("dst name = %q, want %q", dst.VarName(), "a")
	}
	if _, ok := b.InstructionByIndex(99); ok {
		t.Error("InstructionByIndex(99) should not be found")
	}
}

func TestBlockInstructionMutRewritesInPlace(t *testing.T) {
	b := NewBlock(0)
	if _, err := b.Assign(NewScalar("a", 32), Const(1, 32)); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	instr, ok := b.InstructionMut(0)
	if !ok {
		t.Fatal("InstructionMut(0) not found")
	}
	comment := "rewritten"
	instr.SetComment(&comment)

	got, _ := b.InstructionByIndex(0)
	if c, ok := got.Comment(); !ok || c != "rewritten" {
		t.Errorf("Comment() = (%q, %v), want (%q, true)", c, ok, "rewritten")
	}
}

func TestBlockInsertInstructionRejectsCollision(t *testing.T) {
	b := NewBlock(0)
	op, err := NewAssign(NewScalar("a", 32), Const(1, 32))
	if err != nil {
		t.Fatalf("NewAssign: %v", err)
	}
	instr := NewInstruction(0, op)
	if err := b.InsertInstruction(instr); err != nil {
		t.Fatalf("InsertInstruction: %v", err)
	}
	if err := b.InsertInstruction(instr); err == nil || !errors.Is(err, ErrInstructionIndexCollision) {
		t.Errorf("expected ErrInstructionIndexCollision, got %v", err)
	}
}

func TestBlockJSONRoundTrip(t *testing.T) {
	b := NewBlock(4)
	if _, err := b.Assign(NewScalar("a", 32), Const(1, 32)); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	b.Raise(Const(0, 32))

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Block
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Index() != b.Index() || got.Len() != b.Len() {
		t.Errorf("round trip mismatch: got index=%d len=%d, want index=%d len=%d",
			got.Index(), got.Len(), b.Index(), b.Len())
	}
}

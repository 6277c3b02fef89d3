package il

import (
	"encoding/json"
	"errors"
	"testing"
)

func functionAt(t *testing.T, address uint64) *Function {
	t.Helper()
	g := singleBlockGraph(t, address)
	fn, err := NewFunction(address, g)
	if err != nil {
		t.Fatalf("NewFunction: %v", err)
	}
	return fn
}

func TestAddFunctionRejectsAddressCollision(t *testing.T) {
	p := NewProgram()
	if err := p.AddFunction(functionAt(t, 0x1000)); err != nil {
		t.Fatalf("AddFunction: %v", err)
	}
	if err := p.AddFunction(functionAt(t, 0x1000)); err == nil || !errors.Is(err, ErrAddressCollision) {
		t.Errorf("expected ErrAddressCollision, got %v", err)
	}
}

func TestFunctionsOrderedByAddressAscending(t *testing.T) {
	p := NewProgram()
	for _, addr := range []uint64{0x3000, 0x1000, 0x2000} {
		if err := p.AddFunction(functionAt(t, addr)); err != nil {
			t.Fatalf("AddFunction(%#x): %v", addr, err)
		}
	}
	funcs := p.Functions()
	want := []uint64{0x1000, 0x2000, 0x3000}
	for i, fn := range funcs {
		if fn.Address() != want[i] {
			t.Errorf("Functions()[%d].Address() = %#x, want %#x", i, fn.Address(), want[i])
		}
		idx, ok := fn.Index()
		if !ok || idx != uint64(i) {
			t.Errorf("Functions()[%d].Index() = (%d, %v), want (%d, true)", i, idx, ok, i)
		}
	}
}

func TestAddFunctionReindexesExistingFunctions(t *testing.T) {
	p := NewProgram()
	if err := p.AddFunction(functionAt(t, 0x3000)); err != nil {
		t.Fatalf("AddFunction: %v", err)
	}
	if err := p.AddFunction(functionAt(t, 0x1000)); err != nil {
		t.Fatalf("AddFunction: %v", err)
	}
	first, _ := p.FunctionByAddress(0x3000)
	idx, ok := first.Index()
	if !ok || idx != 1 {
		t.Errorf("after inserting an earlier address, Index() = (%d, %v), want (1, true)", idx, ok)
	}
}

func TestProgramJSONRoundTrip(t *testing.T) {
	p := NewProgram()
	if err := p.AddFunction(functionAt(t, 0x1000)); err != nil {
		t.Fatalf("AddFunction: %v", err)
	}
	if err := p.AddFunction(functionAt(t, 0x2000)); err != nil {
		t.Fatalf("AddFunction: %v", err)
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Program
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Len() != p.Len() {
		t.Errorf("Len() = %d, want %d", got.Len(), p.Len())
	}
	if _, ok := got.FunctionByAddress(0x2000); !ok {
		t.Error("round-tripped program missing function at 0x2000")
	}
}

package il

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestBinaryWidthMismatchIsSortError(t *testing.T) {
	_, err := Add(Var("a", 32), Var("b", 16))
	if err == nil {
		t.Fatal("expected a sort error for mismatched widths")
	}
	if !errors.Is(err, ErrSort) {
		t.Errorf("error %v does not wrap ErrSort", err)
	}
}

func TestBinaryResultWidthMatchesOperands(t *testing.T) {
	sum, err := Add(Var("a", 32), Var("b", 32))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if sum.Bits() != 32 {
		t.Errorf("Bits() = %d, want 32", sum.Bits())
	}
}

func TestCompareResultIsAlways1Bit(t *testing.T) {
	eq, err := CmpEq(Var("a", 64), Var("b", 64))
	if err != nil {
		t.Fatalf("CmpEq: %v", err)
	}
	if eq.Bits() != 1 {
		t.Errorf("Bits() = %d, want 1", eq.Bits())
	}
}

func TestExtensionCanonicalizesToSameWidth(t *testing.T) {
	e := Var("a", 32)
	out, err := ZExt(32, e)
	if err != nil {
		t.Fatalf("ZExt: %v", err)
	}
	if out.String() != e.String() {
		t.Errorf("ZExt(n, e) with n == e.Bits() should be e unchanged, got %s", out)
	}
}

func TestZExtRejectsNarrowing(t *testing.T) {
	_, err := ZExt(8, Var("a", 32))
	if err == nil || !errors.Is(err, ErrSort) {
		t.Errorf("expected a sort error narrowing via zext, got %v", err)
	}
}

func TestTrunRejectsWidening(t *testing.T) {
	_, err := Trun(64, Var("a", 32))
	if err == nil || !errors.Is(err, ErrSort) {
		t.Errorf("expected a sort error widening via trun, got %v", err)
	}
}

func TestScalarsAndConstantsTraversal(t *testing.T) {
	a := Var("a", 32)
	b := Const(7, 32)
	sum, err := Add(a, b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	eq, err := CmpEq(sum, Var("c", 32))
	if err != nil {
		t.Fatalf("CmpEq: %v", err)
	}

	scalars := eq.Scalars()
	if len(scalars) != 2 {
		t.Fatalf("Scalars() = %v, want 2 entries", scalars)
	}
	if scalars[0].VarName() != "a" || scalars[1].VarName() != "c" {
		t.Errorf("Scalars() order = %v, want [a, c]", scalars)
	}

	constants := eq.Constants()
	if len(constants) != 1 || constants[0].Value() != 7 {
		t.Errorf("Constants() = %v, want [7]", constants)
	}
}

func TestScalarsMutRenamesInPlace(t *testing.T) {
	a := Var("a", 32)
	sum, err := Add(a, Var("b", 32))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	for _, s := range sum.ScalarsMut() {
		*s = s.WithSSAIndex(1)
	}
	scalars := sum.Scalars()
	for _, s := range scalars {
		if _, ok := s.VarSSAIndex(); !ok {
			t.Errorf("scalar %s was not renamed in place", s)
		}
	}
}

func TestExpressionJSONRoundTrip(t *testing.T) {
	sum, err := Add(Var("a", 32), Const(1, 32))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	cmp, err := CmpLtU(sum, Var("b", 32))
	if err != nil {
		t.Fatalf("CmpLtU: %v", err)
	}
	widened, err := ZExt(8, cmp)
	if err != nil {
		t.Fatalf("ZExt: %v", err)
	}

	data, err := json.Marshal(widened)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Expression
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.String() != widened.String() {
		t.Errorf("round trip mismatch: got %s, want %s", got, widened)
	}
}

func TestExpressionString(t *testing.T) {
	sum, err := Add(Var("a", 32), Const(1, 32))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got, want := sum.String(), "(a:32 + 0x1:32)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

package il

import (
	"path/filepath"
	"testing"
)

func TestSaveLoadProgramRoundTrip(t *testing.T) {
	p := NewProgram()
	if err := p.AddFunction(functionAt(t, 0x1000)); err != nil {
		t.Fatalf("AddFunction: %v", err)
	}
	if err := p.AddFunction(functionAt(t, 0x2000)); err != nil {
		t.Fatalf("AddFunction: %v", err)
	}

	path := filepath.Join(t.TempDir(), "program.gob")
	if err := SaveProgram(path, p); err != nil {
		t.Fatalf("SaveProgram: %v", err)
	}

	loaded, err := LoadProgram(path)
	if err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}
	if loaded.Len() != p.Len() {
		t.Errorf("Len() = %d, want %d", loaded.Len(), p.Len())
	}
	fn, ok := loaded.FunctionByAddress(0x1000)
	if !ok {
		t.Fatal("loaded program missing function at 0x1000")
	}
	if fn.Address() != 0x1000 {
		t.Errorf("Address() = %#x, want 0x1000", fn.Address())
	}
}

func TestLoadProgramMissingFile(t *testing.T) {
	if _, err := LoadProgram(filepath.Join(t.TempDir(), "does-not-exist.gob")); err == nil {
		t.Error("expected an error loading a nonexistent file")
	}
}

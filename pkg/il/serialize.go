package il

import (
	"encoding/gob"
	"os"

	"github.com/pkg/errors"
)

// SaveProgram writes prog to path using gob encoding. Program implements
// GobEncode/GobDecode by delegating to its JSON tagged encoding, so the
// on-disk format is the same validating representation used by the JSON
// Marshal/Unmarshal path.
func SaveProgram(path string, prog *Program) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "save program %s", path)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(prog); err != nil {
		return errors.Wrapf(err, "encode program %s", path)
	}
	return nil
}

// LoadProgram reads a Program previously written by SaveProgram.
func LoadProgram(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load program %s", path)
	}
	defer f.Close()
	prog := NewProgram()
	if err := gob.NewDecoder(f).Decode(prog); err != nil {
		return nil, errors.Wrapf(err, "decode program %s", path)
	}
	return prog, nil
}

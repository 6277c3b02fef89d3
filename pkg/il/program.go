package il

import (
	"encoding/json"
	"sort"

	"github.com/pkg/errors"
)

// Program is an address-keyed mapping of Functions. Addresses are unique;
// a Function's Index, once it's been added here, matches its position in
// the program's own address-ascending ordering.
type Program struct {
	functions map[uint64]*Function
}

// NewProgram builds an empty program.
func NewProgram() *Program {
	return &Program{functions: make(map[uint64]*Function)}
}

// AddFunction inserts fn, failing with ErrAddressCollision if another
// function already occupies fn.Address(). On success, every function's
// Index is recomputed to match the program's address-ascending order.
func (p *Program) AddFunction(fn *Function) error {
	if _, exists := p.functions[fn.Address()]; exists {
		return errors.Wrapf(ErrAddressCollision, "program: address %#x", fn.Address())
	}
	p.functions[fn.Address()] = fn
	p.reindex()
	return nil
}

func (p *Program) reindex() {
	for i, fn := range p.Functions() {
		idx := uint64(i)
		fn.index = &idx
	}
}

// FunctionByAddress looks up a function by its entry address.
func (p *Program) FunctionByAddress(address uint64) (*Function, bool) {
	fn, ok := p.functions[address]
	return fn, ok
}

// Functions returns every function, ordered by address ascending. This is
// also the ordering Function.Index is computed against.
func (p *Program) Functions() []*Function {
	addrs := make([]uint64, 0, len(p.functions))
	for a := range p.functions {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	out := make([]*Function, len(addrs))
	for i, a := range addrs {
		out[i] = p.functions[a]
	}
	return out
}

// Len returns the number of functions in the program.
func (p *Program) Len() int { return len(p.functions) }

type programJSON struct {
	Functions []*Function `json:"functions"`
}

func (p *Program) MarshalJSON() ([]byte, error) {
	return json.Marshal(programJSON{Functions: p.Functions()})
}

func (p *Program) UnmarshalJSON(data []byte) error {
	var shadow programJSON
	if err := json.Unmarshal(data, &shadow); err != nil {
		return err
	}
	np := NewProgram()
	for _, fn := range shadow.Functions {
		if _, exists := np.functions[fn.Address()]; exists {
			return errors.Wrapf(ErrAddressCollision, "program: address %#x", fn.Address())
		}
		np.functions[fn.Address()] = fn
	}
	np.reindex()
	*p = *np
	return nil
}

// GobEncode and GobDecode route through the JSON tagged encoding rather than
// gob's own reflection, since Program's fields are unexported and the sum
// types in pkg/il already carry a validating JSON representation. This is
// what SaveProgram/LoadProgram use for on-disk checkpoints.
func (p *Program) GobEncode() ([]byte, error) {
	return p.MarshalJSON()
}

func (p *Program) GobDecode(data []byte) error {
	return p.UnmarshalJSON(data)
}

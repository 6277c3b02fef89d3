package il

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// Function gives location to a ControlFlowGraph: the machine address of its
// first instruction, an optional symbolic Name (filled in by a loader when
// a symbol is available), and an optional Index for when the function
// belongs to a Program.
type Function struct {
	address uint64
	cfg     *ControlFlowGraph
	name    *string
	index   *uint64
}

// NewFunction builds a Function. cfg must already have its entry set;
// callers that haven't set one yet should finish building the graph first.
func NewFunction(address uint64, cfg *ControlFlowGraph) (*Function, error) {
	if _, ok := cfg.Entry(); !ok {
		return nil, errors.Wrapf(ErrGraphMissingTerminal, "function at %#x", address)
	}
	return &Function{address: address, cfg: cfg}, nil
}

// Address returns the function's entry address.
func (f *Function) Address() uint64 { return f.address }

// ControlFlowGraph returns the function's graph.
func (f *Function) ControlFlowGraph() *ControlFlowGraph { return f.cfg }

// Name returns the function's optional symbolic name.
func (f *Function) Name() (string, bool) {
	if f.name == nil {
		return "", false
	}
	return *f.name, true
}

// SetName sets or clears (name == nil) the function's symbolic name.
func (f *Function) SetName(name *string) { f.name = name }

// Index returns the function's optional position within its owning
// Program.
func (f *Function) Index() (uint64, bool) {
	if f.index == nil {
		return 0, false
	}
	return *f.index, true
}

type functionJSON struct {
	Address uint64            `json:"address"`
	CFG     *ControlFlowGraph `json:"cfg"`
	Name    *string           `json:"name,omitempty"`
	Index   *uint64           `json:"index,omitempty"`
}

func (f *Function) MarshalJSON() ([]byte, error) {
	return json.Marshal(functionJSON{Address: f.address, CFG: f.cfg, Name: f.name, Index: f.index})
}

func (f *Function) UnmarshalJSON(data []byte) error {
	var shadow functionJSON
	if err := json.Unmarshal(data, &shadow); err != nil {
		return err
	}
	fn, err := NewFunction(shadow.Address, shadow.CFG)
	if err != nil {
		return err
	}
	fn.name = shadow.Name
	fn.index = shadow.Index
	*f = *fn
	return nil
}

func (f *Function) String() string {
	if name, ok := f.Name(); ok {
		return fmt.Sprintf("%s @ %#x", name, f.address)
	}
	return fmt.Sprintf("sub_%x", f.address)
}

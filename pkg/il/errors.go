package il

import "github.com/pkg/errors"

// Sentinel errors for every fallible construction in the IL. Callers branch
// on these with errors.Is; call sites wrap them with errors.Wrapf to attach
// construction-specific context before returning them up the stack.
var (
	// ErrSort is returned when an expression constructor receives operands
	// of mismatched bit-width, or an extension/truncation names an
	// inadmissible target width.
	ErrSort = errors.New("sort error")

	// ErrGraphMissingTerminal is returned when a composition operation
	// (AppendWithEdge or similar) is attempted on a graph with no entry or
	// no exit block set.
	ErrGraphMissingTerminal = errors.New("graph missing entry or exit")

	// ErrEdgeTargetMissing is returned when an edge is inserted naming a
	// block index that does not exist in the graph.
	ErrEdgeTargetMissing = errors.New("edge target block missing")

	// ErrBlockIndexCollision is returned when a block is inserted with an
	// already-used index.
	ErrBlockIndexCollision = errors.New("block index collision")

	// ErrInstructionIndexCollision is returned when a manually constructed
	// instruction collides with an existing index in its block.
	ErrInstructionIndexCollision = errors.New("instruction index collision")

	// ErrAddressCollision is returned when a Program receives two
	// functions at the same address.
	ErrAddressCollision = errors.New("function address collision")
)

// sortErrorf wraps ErrSort with a formatted message, the common case for
// expression and operation constructors.
func sortErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrSort, format, args...)
}

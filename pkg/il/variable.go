package il

// Identity is the comparable key that distinguishes one Variable from
// another: a name plus an optional SSA index. It is a valid map key, for
// example in SSA-renaming style walks.
type Identity struct {
	Name     string
	SSAIndex uint32
	HasSSA   bool
}

// Variable is the capability shared by Scalar and Array: something with a
// name, an optional SSA index, and a bit-width-or-size. It is implemented by
// both without either sharing a base struct — there is no inheritance
// machinery in this IL, just two concrete types that happen to expose the
// same small surface.
type Variable interface {
	// VarName returns the variable's name.
	VarName() string
	// VarSSAIndex returns the optional SSA index.
	VarSSAIndex() (index uint32, ok bool)
	// VarIdentity returns the (name, ssa_index) identity used for equality
	// and as a map key.
	VarIdentity() Identity
	// String renders the variable's human-readable form.
	String() string
}

var (
	_ Variable = Scalar{}
	_ Variable = Array{}
)

// Package callconv classifies the registers and stack slots a function's
// calling convention uses, so analyses can tell an argument from a scratch
// register without hardcoding platform knowledge inline.
package callconv

import (
	"fmt"

	"github.com/oisee/bil/pkg/il"
	"github.com/oisee/bil/pkg/types"
)

// Type selects one of the known calling conventions.
type Type int

const (
	MipsSystemV Type = iota
	MipselSystemV
	Cdecl
)

func (t Type) String() string {
	switch t {
	case MipsSystemV:
		return "mips-system-v"
	case MipselSystemV:
		return "mipsel-system-v"
	case Cdecl:
		return "cdecl"
	default:
		return fmt.Sprintf("callconv.Type(%d)", int(t))
	}
}

// ReturnAddressType describes where a function finds its return address.
type ReturnAddressType interface {
	isReturnAddressType()
}

// ReturnAddressRegister says the return address is loaded from a register.
//
// Note: Cdecl's return address is architecturally on the stack, not in a
// register; this package preserves that naming verbatim from the reference
// it was classified against rather than silently correcting it — see
// DESIGN.md.
type ReturnAddressRegister struct {
	Register il.Scalar
}

func (ReturnAddressRegister) isReturnAddressType() {}

// ReturnAddressStack says the return address is found at a stack offset
// (in bytes) at function call/entry.
type ReturnAddressStack struct {
	Offset uint64
}

func (ReturnAddressStack) isReturnAddressType() {}

// ArgumentType describes where a single argument is passed.
type ArgumentType interface {
	isArgumentType()
}

// ArgumentRegister says the argument is held in a register.
type ArgumentRegister struct {
	Register il.Scalar
}

func (ArgumentRegister) isArgumentType() {}

// ArgumentStack says the argument is found at a stack offset (in bytes) at
// function call/entry.
type ArgumentStack struct {
	Offset uint64
}

func (ArgumentStack) isArgumentType() {}

// CallingConvention fixes how a function on a given platform receives its
// arguments, which registers survive a call, and where the return value and
// return address live.
type CallingConvention struct {
	argumentRegisters   []il.Scalar
	preservedRegisters  map[il.Scalar]struct{}
	trashedRegisters    map[il.Scalar]struct{}
	stackArgumentOffset uint64
	stackArgumentLength uint64
	returnAddressType   ReturnAddressType
	returnRegister      il.Scalar
}

func mustScalar(name string, bits uint) il.Scalar {
	return il.NewScalar(name, bits)
}

func set(scalars ...il.Scalar) map[il.Scalar]struct{} {
	out := make(map[il.Scalar]struct{}, len(scalars))
	for _, s := range scalars {
		out[s] = struct{}{}
	}
	return out
}

// New builds the CallingConvention for typ.
//
// Mips System V: $16-$23 and $29-$31 ($s0-$s8, $sp, $ra) are preserved,
// result is returned in $v0; $at, $v0-$v1, $a0-$a3 and $t0-$t9 are
// trashed, and any other register (such as $gp) is classified Unknown.
func New(typ Type) *CallingConvention {
	switch typ {
	case MipsSystemV, MipselSystemV:
		return &CallingConvention{
			argumentRegisters: []il.Scalar{
				mustScalar("$a0", 32), mustScalar("$a1", 32),
				mustScalar("$a2", 32), mustScalar("$a3", 32),
			},
			preservedRegisters: set(
				mustScalar("$s0", 32), mustScalar("$s1", 32), mustScalar("$s2", 32),
				mustScalar("$s3", 32), mustScalar("$s4", 32), mustScalar("$s5", 32),
				mustScalar("$s6", 32), mustScalar("$s7", 32), mustScalar("$s8", 32),
				mustScalar("$sp", 32), mustScalar("$ra", 32),
			),
			trashedRegisters: set(
				mustScalar("$at", 32), mustScalar("$v0", 32), mustScalar("$v1", 32),
				mustScalar("$a0", 32), mustScalar("$a1", 32), mustScalar("$a2", 32),
				mustScalar("$a3", 32), mustScalar("$t0", 32), mustScalar("$t1", 32),
				mustScalar("$t2", 32), mustScalar("$t3", 32), mustScalar("$t4", 32),
				mustScalar("$t5", 32), mustScalar("$t6", 32), mustScalar("$t7", 32),
				mustScalar("$t8", 32), mustScalar("$t9", 32),
			),
			stackArgumentOffset: 0,
			stackArgumentLength: 4,
			returnAddressType:   ReturnAddressRegister{Register: mustScalar("$ra", 32)},
			returnRegister:      mustScalar("$v0", 32),
		}
	case Cdecl:
		return &CallingConvention{
			argumentRegisters: nil,
			preservedRegisters: set(
				mustScalar("ebx", 32), mustScalar("edi", 32), mustScalar("esi", 32),
				mustScalar("ebp", 32), mustScalar("esp", 32),
			),
			trashedRegisters: set(
				mustScalar("eax", 32), mustScalar("ecx", 32), mustScalar("edx", 32),
			),
			stackArgumentOffset: 4,
			stackArgumentLength: 4,
			returnAddressType:   ReturnAddressRegister{Register: mustScalar("esp", 32)},
			returnRegister:      mustScalar("eax", 32),
		}
	default:
		panic(fmt.Sprintf("callconv: unknown type %v", typ))
	}
}

// ArgumentRegisters returns the registers the first N arguments are passed
// in, where N is the slice length. Arguments beyond this are on the stack.
func (c *CallingConvention) ArgumentRegisters() []il.Scalar {
	out := make([]il.Scalar, len(c.argumentRegisters))
	copy(out, c.argumentRegisters)
	return out
}

// PreservedRegisters returns the registers preserved across function calls.
func (c *CallingConvention) PreservedRegisters() []il.Scalar {
	return keys(c.preservedRegisters)
}

// TrashedRegisters returns the registers not preserved across function
// calls.
func (c *CallingConvention) TrashedRegisters() []il.Scalar {
	return keys(c.trashedRegisters)
}

func keys(m map[il.Scalar]struct{}) []il.Scalar {
	out := make([]il.Scalar, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	return out
}

// StackArgumentOffset returns the offset, in bytes, from function
// call/entry to the first stack-passed argument — normally immediately
// above the return address, if the return address itself is on the stack.
func (c *CallingConvention) StackArgumentOffset() uint64 { return c.stackArgumentOffset }

// StackArgumentLength returns the length, in bytes, of a single stack
// argument slot — normally the architecture's natural register width.
func (c *CallingConvention) StackArgumentLength() uint64 { return c.stackArgumentLength }

// ReturnAddressType reports how the return address is specified for calls
// under this convention.
func (c *CallingConvention) ReturnAddressType() ReturnAddressType { return c.returnAddressType }

// ReturnRegister returns the register a returned value is given in.
func (c *CallingConvention) ReturnRegister() il.Scalar { return c.returnRegister }

// ArgumentType classifies where the argumentNumber'th argument (0-indexed)
// is passed.
func (c *CallingConvention) ArgumentType(argumentNumber int) ArgumentType {
	if argumentNumber >= len(c.argumentRegisters) {
		n := uint64(argumentNumber - len(c.argumentRegisters))
		offset := c.stackArgumentOffset + c.stackArgumentLength*n
		return ArgumentStack{Offset: offset}
	}
	return ArgumentRegister{Register: c.argumentRegisters[argumentNumber]}
}

// IsPreserved reports whether scalar is known preserved, known trashed, or
// unclassified by this convention.
func (c *CallingConvention) IsPreserved(scalar il.Scalar) types.PartialBoolean {
	if _, ok := c.preservedRegisters[scalar]; ok {
		return types.True
	}
	if _, ok := c.trashedRegisters[scalar]; ok {
		return types.False
	}
	return types.Unknown
}

// IsTrashed reports whether scalar is known trashed, known preserved, or
// unclassified by this convention.
func (c *CallingConvention) IsTrashed(scalar il.Scalar) types.PartialBoolean {
	if _, ok := c.trashedRegisters[scalar]; ok {
		return types.True
	}
	if _, ok := c.preservedRegisters[scalar]; ok {
		return types.False
	}
	return types.Unknown
}

package il

import (
	"encoding/json"
	"fmt"
)

// exprTag identifies one of the 21 closed expression forms. The set is
// closed by design (spec: "extensions require a new variant") — adding a
// form means touching this tag list, the constructor, String, and the JSON
// serializer that switch over it.
type exprTag int

const (
	tagConstant exprTag = iota
	tagScalar
	tagAdd
	tagSub
	tagMul
	tagDivU
	tagModU
	tagDivS
	tagModS
	tagAnd
	tagOr
	tagXor
	tagShl
	tagShr
	tagCmpEq
	tagCmpNeq
	tagCmpLtS
	tagCmpLtU
	tagZExt
	tagSExt
	tagTrun
)

// Expression is the IL's expression tree. Every expression carries (or can
// recompute in O(1)) its bit-width; construction validates the sort rule
// eagerly, so a malformed tree can never exist.
//
// Non-terminal nodes hold their operands as pointers so that a mutable
// traversal (ScalarsMut) can return addressable locations into the tree
// without reconstructing it.
type Expression struct {
	tag      exprTag
	bits     uint
	constant Constant
	scalar   Scalar
	operands []*Expression
}

// Bits returns the expression's bit-width.
func (e Expression) Bits() uint { return e.bits }

// IsConstant reports whether e is a constant terminal, returning its value.
func (e Expression) IsConstant() (Constant, bool) {
	if e.tag == tagConstant {
		return e.constant, true
	}
	return Constant{}, false
}

// IsScalar reports whether e is a scalar terminal, returning it.
func (e Expression) IsScalar() (Scalar, bool) {
	if e.tag == tagScalar {
		return e.scalar, true
	}
	return Scalar{}, false
}

func binaryOperand(e Expression) *Expression {
	cp := e
	return &cp
}

// binary builds a same-width arithmetic/logical operator node. Both operands
// must already agree on bit-width; the result takes that width.
func binary(tag exprTag, a, b Expression) (Expression, error) {
	if a.bits != b.bits {
		return Expression{}, sortErrorf("%s: operand widths differ (%d vs %d)", tag, a.bits, b.bits)
	}
	return Expression{tag: tag, bits: a.bits, operands: []*Expression{binaryOperand(a), binaryOperand(b)}}, nil
}

// compare builds a comparison operator node. Operands must agree on
// bit-width; the result is always 1 bit wide.
func compare(tag exprTag, a, b Expression) (Expression, error) {
	if a.bits != b.bits {
		return Expression{}, sortErrorf("%s: operand widths differ (%d vs %d)", tag, a.bits, b.bits)
	}
	return Expression{tag: tag, bits: 1, operands: []*Expression{binaryOperand(a), binaryOperand(b)}}, nil
}

func Add(a, b Expression) (Expression, error)    { return binary(tagAdd, a, b) }
func Sub(a, b Expression) (Expression, error)    { return binary(tagSub, a, b) }
func Mul(a, b Expression) (Expression, error)    { return binary(tagMul, a, b) }
func DivU(a, b Expression) (Expression, error)   { return binary(tagDivU, a, b) }
func ModU(a, b Expression) (Expression, error)   { return binary(tagModU, a, b) }
func DivS(a, b Expression) (Expression, error)   { return binary(tagDivS, a, b) }
func ModS(a, b Expression) (Expression, error)   { return binary(tagModS, a, b) }
func And(a, b Expression) (Expression, error)    { return binary(tagAnd, a, b) }
func Or(a, b Expression) (Expression, error)     { return binary(tagOr, a, b) }
func Xor(a, b Expression) (Expression, error)    { return binary(tagXor, a, b) }
func Shl(a, b Expression) (Expression, error)    { return binary(tagShl, a, b) }
func Shr(a, b Expression) (Expression, error)    { return binary(tagShr, a, b) }

func CmpEq(a, b Expression) (Expression, error)  { return compare(tagCmpEq, a, b) }
func CmpNeq(a, b Expression) (Expression, error) { return compare(tagCmpNeq, a, b) }
func CmpLtS(a, b Expression) (Expression, error) { return compare(tagCmpLtS, a, b) }
func CmpLtU(a, b Expression) (Expression, error) { return compare(tagCmpLtU, a, b) }

// ZExt zero-extends e to n bits. n == e.Bits() is not an error: it
// normalizes to e unchanged so the tree stays canonical without adding a
// new case callers must special-case.
func ZExt(n uint, e Expression) (Expression, error) {
	if n == e.bits {
		return e, nil
	}
	if n < e.bits {
		return Expression{}, sortErrorf("zext: target width %d smaller than operand width %d", n, e.bits)
	}
	return Expression{tag: tagZExt, bits: n, operands: []*Expression{binaryOperand(e)}}, nil
}

// SExt sign-extends e to n bits. Same canonicalization as ZExt.
func SExt(n uint, e Expression) (Expression, error) {
	if n == e.bits {
		return e, nil
	}
	if n < e.bits {
		return Expression{}, sortErrorf("sext: target width %d smaller than operand width %d", n, e.bits)
	}
	return Expression{tag: tagSExt, bits: n, operands: []*Expression{binaryOperand(e)}}, nil
}

// Trun truncates e to its low n bits. Same canonicalization as ZExt.
func Trun(n uint, e Expression) (Expression, error) {
	if n == e.bits {
		return e, nil
	}
	if n == 0 || n > e.bits {
		return Expression{}, sortErrorf("trun: target width %d not in 1..=%d", n, e.bits)
	}
	return Expression{tag: tagTrun, bits: n, operands: []*Expression{binaryOperand(e)}}, nil
}

// Scalars returns every scalar appearing anywhere in the tree, read-only,
// in left-to-right depth-first order.
func (e Expression) Scalars() []Scalar {
	var out []Scalar
	(&e).walk(func(n *Expression) {
		if n.tag == tagScalar {
			out = append(out, n.scalar)
		}
	})
	return out
}

// Constants returns every constant appearing anywhere in the tree,
// read-only, in left-to-right depth-first order.
func (e Expression) Constants() []Constant {
	var out []Constant
	(&e).walk(func(n *Expression) {
		if n.tag == tagConstant {
			out = append(out, n.constant)
		}
	})
	return out
}

func (e *Expression) walk(visit func(*Expression)) {
	visit(e)
	for _, op := range e.operands {
		op.walk(visit)
	}
}

// ScalarsMut returns a pointer to every scalar in the tree, in left-to-right
// depth-first order, letting an analysis rename or SSA-index them in place
// without reconstructing the tree. The receiver must be addressable (e.g. a
// field reached through a pointer), matching Go's usual rule for in-place
// mutation.
func (e *Expression) ScalarsMut() []*Scalar {
	var out []*Scalar
	e.walk(func(n *Expression) {
		if n.tag == tagScalar {
			out = append(out, &n.scalar)
		}
	})
	return out
}

func (tag exprTag) String() string {
	switch tag {
	case tagConstant:
		return "constant"
	case tagScalar:
		return "scalar"
	case tagAdd:
		return "add"
	case tagSub:
		return "sub"
	case tagMul:
		return "mul"
	case tagDivU:
		return "divu"
	case tagModU:
		return "modu"
	case tagDivS:
		return "divs"
	case tagModS:
		return "mods"
	case tagAnd:
		return "and"
	case tagOr:
		return "or"
	case tagXor:
		return "xor"
	case tagShl:
		return "shl"
	case tagShr:
		return "shr"
	case tagCmpEq:
		return "cmpeq"
	case tagCmpNeq:
		return "cmpneq"
	case tagCmpLtS:
		return "cmplts"
	case tagCmpLtU:
		return "cmpltu"
	case tagZExt:
		return "zext"
	case tagSExt:
		return "sext"
	case tagTrun:
		return "trun"
	default:
		return "unknown"
	}
}

var binOpSymbol = map[exprTag]string{
	tagAdd: "+", tagSub: "-", tagMul: "*",
	tagDivU: "/u", tagModU: "%u", tagDivS: "/s", tagModS: "%s",
	tagAnd: "&", tagOr: "|", tagXor: "^", tagShl: "<<", tagShr: ">>",
	tagCmpEq: "==", tagCmpNeq: "!=", tagCmpLtS: "s<", tagCmpLtU: "u<",
}

// expressionJSON is the tagged-encoding shadow for Expression: a tag string
// plus whichever of constant/scalar/operands/bits that tag uses. Spec §6
// asks for "a straightforward tagged encoding of the sum types" — this is
// that encoding, reconstructed through the same validating constructors
// used by lifters so a deserialized tree can never be malformed either.
type expressionJSON struct {
	Tag      string       `json:"tag"`
	Bits     uint         `json:"bits,omitempty"`
	Constant *Constant    `json:"constant,omitempty"`
	Scalar   *Scalar      `json:"scalar,omitempty"`
	Operands []Expression `json:"operands,omitempty"`
}

var binaryConstructorByTag = map[exprTag]func(a, b Expression) (Expression, error){
	tagAdd: Add, tagSub: Sub, tagMul: Mul,
	tagDivU: DivU, tagModU: ModU, tagDivS: DivS, tagModS: ModS,
	tagAnd: And, tagOr: Or, tagXor: Xor, tagShl: Shl, tagShr: Shr,
	tagCmpEq: CmpEq, tagCmpNeq: CmpNeq, tagCmpLtS: CmpLtS, tagCmpLtU: CmpLtU,
}

var tagByName = map[string]exprTag{
	"constant": tagConstant, "scalar": tagScalar,
	"add": tagAdd, "sub": tagSub, "mul": tagMul,
	"divu": tagDivU, "modu": tagModU, "divs": tagDivS, "mods": tagModS,
	"and": tagAnd, "or": tagOr, "xor": tagXor, "shl": tagShl, "shr": tagShr,
	"cmpeq": tagCmpEq, "cmpneq": tagCmpNeq, "cmplts": tagCmpLtS, "cmpltu": tagCmpLtU,
	"zext": tagZExt, "sext": tagSExt, "trun": tagTrun,
}

func (e Expression) MarshalJSON() ([]byte, error) {
	shadow := expressionJSON{Tag: e.tag.String(), Bits: e.bits}
	switch e.tag {
	case tagConstant:
		c := e.constant
		shadow.Constant = &c
	case tagScalar:
		s := e.scalar
		shadow.Scalar = &s
	case tagZExt, tagSExt, tagTrun:
		shadow.Operands = []Expression{*e.operands[0]}
	default:
		shadow.Operands = []Expression{*e.operands[0], *e.operands[1]}
	}
	return json.Marshal(shadow)
}

func (e *Expression) UnmarshalJSON(data []byte) error {
	var shadow expressionJSON
	if err := json.Unmarshal(data, &shadow); err != nil {
		return err
	}
	tag, ok := tagByName[shadow.Tag]
	if !ok {
		return fmt.Errorf("expression: unknown tag %q", shadow.Tag)
	}

	var result Expression
	var err error
	switch tag {
	case tagConstant:
		if shadow.Constant == nil {
			return fmt.Errorf("expression: constant tag missing constant field")
		}
		result = Expression{tag: tagConstant, bits: shadow.Constant.Bits(), constant: *shadow.Constant}
	case tagScalar:
		if shadow.Scalar == nil {
			return fmt.Errorf("expression: scalar tag missing scalar field")
		}
		result = Expression{tag: tagScalar, bits: shadow.Scalar.Bits(), scalar: *shadow.Scalar}
	case tagZExt:
		result, err = ZExt(shadow.Bits, shadow.Operands[0])
	case tagSExt:
		result, err = SExt(shadow.Bits, shadow.Operands[0])
	case tagTrun:
		result, err = Trun(shadow.Bits, shadow.Operands[0])
	default:
		ctor, ok := binaryConstructorByTag[tag]
		if !ok {
			return fmt.Errorf("expression: unhandled tag %q", shadow.Tag)
		}
		result, err = ctor(shadow.Operands[0], shadow.Operands[1])
	}
	if err != nil {
		return err
	}
	*e = result
	return nil
}

func (e Expression) String() string {
	switch e.tag {
	case tagConstant:
		return e.constant.String()
	case tagScalar:
		return e.scalar.String()
	case tagZExt, tagSExt, tagTrun:
		return fmt.Sprintf("%s.%d(%s)", e.tag, e.bits, e.operands[0])
	default:
		sym, ok := binOpSymbol[e.tag]
		if !ok {
			sym = e.tag.String()
		}
		return fmt.Sprintf("(%s %s %s)", e.operands[0], sym, e.operands[1])
	}
}

package il

import (
	"encoding/json"
	"fmt"
)

// Constant is a fixed bit-vector value of width Bits (1..=64). The stored
// Value is already reduced modulo 2^Bits at construction, so what the
// renderer and serializer see is the masked value.
type Constant struct {
	value uint64
	bits  uint
}

// NewConstant builds a Constant, masking value down to the low bits bits.
// bits must be in 1..=64; neither NewConstant nor Const checks this, so a
// width outside that range is stored as given.
func NewConstant(value uint64, bits uint) Constant {
	return Constant{value: maskTo(value, bits), bits: bits}
}

// Const is the preferred way to build a Constant expression, mirroring the
// original IL's `const_`/`expr_const` convenience functions.
func Const(value uint64, bits uint) Expression {
	return Expression{tag: tagConstant, bits: bits, constant: NewConstant(value, bits)}
}

// Value returns the constant's value, already masked to Bits.
func (c Constant) Value() uint64 { return c.value }

// Bits returns the constant's bit-width.
func (c Constant) Bits() uint { return c.bits }

// SignedValue reinterprets Value as a two's-complement signed integer of
// width Bits.
func (c Constant) SignedValue() int64 {
	return signExtendTo64(c.value, c.bits)
}

func (c Constant) String() string {
	return fmt.Sprintf("0x%x:%d", c.value, c.bits)
}

// constantJSON is the tagged-encoding shadow for Constant.
type constantJSON struct {
	Value uint64 `json:"value"`
	Bits  uint   `json:"bits"`
}

func (c Constant) MarshalJSON() ([]byte, error) {
	return json.Marshal(constantJSON{Value: c.value, Bits: c.bits})
}

func (c *Constant) UnmarshalJSON(data []byte) error {
	var shadow constantJSON
	if err := json.Unmarshal(data, &shadow); err != nil {
		return err
	}
	*c = NewConstant(shadow.Value, shadow.Bits)
	return nil
}

func maskTo(v uint64, bits uint) uint64 {
	if bits >= 64 {
		return v
	}
	return v & ((uint64(1) << bits) - 1)
}

// signExtendTo64 sign-extends the low `bits` bits of v to a full int64.
func signExtendTo64(v uint64, bits uint) int64 {
	if bits == 0 || bits >= 64 {
		return int64(v)
	}
	signBit := uint64(1) << (bits - 1)
	masked := maskTo(v, bits)
	if masked&signBit != 0 {
		return int64(masked | ^((uint64(1) << bits) - 1))
	}
	return int64(masked)
}

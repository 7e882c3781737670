package stream

import "math"

// Fixed is a signed 16.16 fixed-point number: 16 integer bits, 16 fraction
// bits, two's complement.
type Fixed int32

// FixedOne is 1.0 in 16.16.
const FixedOne Fixed = 1 << 16

// FromFloat rounds f to the nearest 16.16 value. Values outside the
// representable range saturate.
func FromFloat(f float64) Fixed {
	v := math.Round(f * float64(FixedOne))
	switch {
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	}
	return Fixed(v)
}

// Float converts back to floating point.
func (f Fixed) Float() float64 {
	return float64(f) / float64(FixedOne)
}

// Bits returns the raw 32-bit pattern as it travels on the wire.
func (f Fixed) Bits() uint32 {
	return uint32(f)
}

// FixedFromBits reinterprets a wire word as 16.16.
func FixedFromBits(b uint32) Fixed {
	return Fixed(int32(b))
}

package kschedule

import "fmt"

// fixed is a signed p.q fixed-point number, p=17 integer bits, q=14
// fractional bits, represented as an int32 scaled by 1<<fixedFracBits. It
// backs recent_cpu and load_avg.
type fixed int32

const (
	fixedFracBits = 14
	fixedScale    = 1 << fixedFracBits
)

// intToFixed converts an integer to fixed-point, exactly (no rounding
// needed: the conversion is a left shift).
func intToFixed(n int) fixed {
	return fixed(n * fixedScale)
}

// toInt converts fixed-point to an integer, truncating toward zero (used
// where truncation rather than round-to-nearest is called for).
func (f fixed) toInt() int {
	return int(f) / fixedScale
}

// round converts fixed-point to the nearest integer: add half the scale
// (with the sign of the operand) before truncating.
func (f fixed) round() int {
	if f >= 0 {
		return int(f+fixedScale/2) / fixedScale
	}
	return int(f-fixedScale/2) / fixedScale
}

// addInt adds an integer to a fixed-point value.
func (f fixed) addInt(n int) fixed { return f + intToFixed(n) }

// subInt subtracts an integer from a fixed-point value.
func (f fixed) subInt(n int) fixed { return f - intToFixed(n) }

// add adds two fixed-point values.
func (f fixed) add(g fixed) fixed { return f + g }

// sub subtracts two fixed-point values.
func (f fixed) sub(g fixed) fixed { return f - g }

// mulInt multiplies a fixed-point value by an integer.
func (f fixed) mulInt(n int) fixed { return f * fixed(n) }

// divInt divides a fixed-point value by an integer, truncating toward zero.
func (f fixed) divInt(n int) fixed { return fixed(int64(f) / int64(n)) }

// mul multiplies two fixed-point values. The intermediate product is
// computed in 64 bits to avoid overflow before rescaling.
func (f fixed) mul(g fixed) fixed {
	return fixed((int64(f) * int64(g)) / fixedScale)
}

// div divides one fixed-point value by another, truncating toward zero.
// The dividend is widened before rescaling for the same reason as mul.
func (f fixed) div(g fixed) fixed {
	return fixed((int64(f) * fixedScale) / int64(g))
}

// String implements fmt.Stringer for logging/debugging.
func (f fixed) String() string {
	whole := f.toInt()
	frac := f - intToFixed(whole)
	if frac < 0 {
		frac = -frac
	}
	return fmt.Sprintf("%d.%04d", whole, (int64(frac)*10000)/fixedScale)
}

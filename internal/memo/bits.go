package memo

import "fmt"

type Bits uint32

const (
	RegexBit Bits = (1 << iota)
	SamplesBit
	HitsBit
	CountBit
	FoldBit
)

const NumBits = 5

const AllBits = Bits(1<<NumBits) - 1

var bitNames = [NumBits]string{
	"regex",
	"samples",
	"hits",
	"count",
	"fold",
}

func (bits Bits) Has(x Bits) bool {
	return (bits & x) != 0
}

func (bits Bits) HasAll(x Bits) bool {
	return (bits & x) == x
}

func (bits Bits) Append(out []byte) []byte {
	if bits == 0 {
		return append(out, '0')
	}

	needSep := false
	for i := uint(0); i < NumBits; i++ {
		bit := Bits(1) << i
		if !bits.Has(bit) {
			continue
		}
		if needSep {
			out = append(out, '|')
		}
		out = append(out, bitNames[i]...)
		needSep = true
	}
	if bits.Has(^AllBits) {
		if needSep {
			out = append(out, '|')
		}
		out = fmt.Appendf(out, "%#x", uint32(bits & ^AllBits))
	}
	return out
}

func (bits Bits) String() string {
	var scratch [64]byte
	return string(bits.Append(scratch[:0]))
}

var _ fmt.Stringer = Bits(0)

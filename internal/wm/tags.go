package wm

import "math/bits"

// TagMask is a set of tag indices, bit i for tag i.
type TagMask uint32

// TagBit is the mask holding only tag i.
func TagBit(i int) TagMask {
	if i < 0 || i >= 32 {
		return 0
	}
	return 1 << uint(i)
}

// AllTags is the mask of the first n tags.
func AllTags(n int) TagMask {
	if n >= 32 {
		return ^TagMask(0)
	}
	if n <= 0 {
		return 0
	}
	return TagBit(n) - 1
}

func (m TagMask) Has(i int) bool {
	return m&TagBit(i) != 0
}

func (m TagMask) Intersects(o TagMask) bool {
	return m&o != 0
}

// Lowest returns the index of the lowest set tag, or -1 for an empty mask.
func (m TagMask) Lowest() int {
	if m == 0 {
		return -1
	}
	return bits.TrailingZeros32(uint32(m))
}

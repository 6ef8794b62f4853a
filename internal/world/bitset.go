package world

// Bitset is a fixed-width presence set packed into 32-bit words.
// Bit i lives in word i>>5 at position i&31.
type Bitset struct {
	words []uint32
	size  int
}

// NewBitset allocates a zeroed bitset holding n bits.
func NewBitset(n int) Bitset {
	if n < 0 {
		n = 0
	}
	return Bitset{
		words: make([]uint32, (n+31)/32),
		size:  n,
	}
}

// Len returns the number of addressable bits
func (b *Bitset) Len() int {
	return b.size
}

// Words returns the number of backing words
func (b *Bitset) Words() int {
	return len(b.words)
}

// Get reports whether bit i is set. Out of range reads return false.
func (b *Bitset) Get(i int) bool {
	if i < 0 || i >= b.size {
		return false
	}
	return b.words[i>>5]&(1<<(uint(i)&31)) != 0
}

// Set sets or clears bit i. Out of range writes are ignored.
func (b *Bitset) Set(i int, v bool) {
	if i < 0 || i >= b.size {
		return
	}
	mask := uint32(1) << (uint(i) & 31)
	if v {
		b.words[i>>5] |= mask
	} else {
		b.words[i>>5] &^= mask
	}
}

// Count returns the number of set bits
func (b *Bitset) Count() int {
	n := 0
	for _, w := range b.words {
		for w != 0 {
			w &= w - 1
			n++
		}
	}
	return n
}

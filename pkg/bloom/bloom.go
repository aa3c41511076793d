/*
Package bloom provides a fixed-size Bloom filter used to reject tokens that are
certainly not vocabulary words before the BK-tree is touched.

The filter is sized once from the expected item count n and the target false
positive probability p:

	size      = ceil(-(n * ln p) / (ln 2)^2)   bits
	hashCount = ceil((size / n) * ln 2)         hashes per item

Hash i digests the item with xxhash seeded with i. Inserting more than n items
raises the realized false positive rate, it never produces false negatives.
*/
package bloom

import (
	"errors"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
)

// DefaultFPProb is the false positive target used when building from a vocabulary.
const DefaultFPProb = 0.01

// ErrInvalidParameters is returned by New for a zero item count or a
// probability outside (0, 1).
var ErrInvalidParameters = errors.New("invalid bloom filter parameters")

// Filter is a Bloom filter over strings. Size and HashCount never change after New.
type Filter struct {
	FPProb    float64
	Size      uint64
	HashCount uint32
	Bits      []byte
}

// OptimalSize returns the number of bits for n items at false positive rate p.
func OptimalSize(n uint32, p float64) uint64 {
	return uint64(math.Ceil(-(float64(n) * math.Log(p)) / (math.Ln2 * math.Ln2)))
}

// OptimalHashCount returns the number of hashes per item for a filter of size bits holding n items.
func OptimalHashCount(size uint64, n uint32) uint32 {
	return uint32(math.Ceil(float64(size) / float64(n) * math.Ln2))
}

// New allocates an empty filter for expectedItems items at false positive rate fpProb.
func New(expectedItems uint32, fpProb float64) (*Filter, error) {
	if expectedItems == 0 {
		return nil, fmt.Errorf("%w: expected item count must be positive", ErrInvalidParameters)
	}
	if !(fpProb > 0 && fpProb < 1) {
		return nil, fmt.Errorf("%w: false positive probability %v not in (0, 1)", ErrInvalidParameters, fpProb)
	}

	size := OptimalSize(expectedItems, fpProb)
	return &Filter{
		FPProb:    fpProb,
		Size:      size,
		HashCount: OptimalHashCount(size, expectedItems),
		Bits:      make([]byte, byteLen(size)),
	}, nil
}

// FromWords builds a filter sized to words and inserts all of them.
func FromWords(words []string, fpProb float64) (*Filter, error) {
	if uint64(len(words)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d words", ErrInvalidParameters, len(words))
	}
	f, err := New(uint32(len(words)), fpProb)
	if err != nil {
		return nil, err
	}
	for _, w := range words {
		f.Insert(w)
	}
	return f, nil
}

func byteLen(bits uint64) uint64 {
	return (bits + 7) / 8
}

// bitIndex returns the bit index for hash i.
func (f *Filter) bitIndex(d *xxhash.Digest, item string, i uint32) uint64 {
	d.ResetWithSeed(uint64(i))
	d.WriteString(item)
	return d.Sum64() % f.Size
}

// Insert sets the hashCount bits of item.
func (f *Filter) Insert(item string) {
	d := xxhash.New()
	for i := uint32(0); i < f.HashCount; i++ {
		h := f.bitIndex(d, item, i)
		f.Bits[h/8] |= 1 << (h % 8)
	}
}

// Lookup reports false if item was certainly never inserted, true if it may have been.
func (f *Filter) Lookup(item string) bool {
	d := xxhash.New()
	for i := uint32(0); i < f.HashCount; i++ {
		h := f.bitIndex(d, item, i)
		if f.Bits[h/8]&(1<<(h%8)) == 0 {
			return false
		}
	}
	return true
}

// SetBits counts the bits currently set.
func (f *Filter) SetBits() uint64 {
	var n uint64
	for _, b := range f.Bits {
		for ; b != 0; b &= b - 1 {
			n++
		}
	}
	return n
}

// EstimatedFPRate is the expected false positive rate after n insertions:
// (1 - e^(-k*n/m))^k.
func (f *Filter) EstimatedFPRate(n uint64) float64 {
	k := float64(f.HashCount)
	return math.Pow(1-math.Exp(-k*float64(n)/float64(f.Size)), k)
}

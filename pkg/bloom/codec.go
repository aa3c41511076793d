package bloom

import (
	"fmt"

	"github.com/bastiangx/wordcheck/pkg/persist"
)

// Magic identifies a serialized filter.
const Magic = "wordcheck/bloom"

const (
	formatVersion = 1
	kind          = "filter"
)

type blob struct {
	persist.Header
	FPProb    float64 `msgpack:"fp_prob"`
	Size      uint64  `msgpack:"size"`
	HashCount uint32  `msgpack:"hash_count"`
	Bits      []byte  `msgpack:"bits"`
}

// MarshalBinary encodes the filter parameters and bit array.
func (f *Filter) MarshalBinary() ([]byte, error) {
	return persist.Encode(blob{
		Header:    persist.Header{Magic: Magic, Version: formatVersion},
		FPProb:    f.FPProb,
		Size:      f.Size,
		HashCount: f.HashCount,
		Bits:      f.Bits,
	})
}

// UnmarshalBinary decodes a blob produced by MarshalBinary. On failure f is
// left untouched and the error is a *persist.DecodeError.
func (f *Filter) UnmarshalBinary(data []byte) error {
	var b blob
	if err := persist.Decode(kind, data, &b); err != nil {
		return err
	}
	if err := b.Check(kind, Magic, formatVersion); err != nil {
		return err
	}
	if !(b.FPProb > 0 && b.FPProb < 1) {
		return persist.Invalid(kind, "false positive probability %v", b.FPProb)
	}
	if b.Size == 0 {
		return persist.Invalid(kind, "zero size")
	}
	if b.HashCount == 0 {
		return persist.Invalid(kind, "zero hash count")
	}
	if uint64(len(b.Bits)) != byteLen(b.Size) {
		return persist.Invalid(kind, "%d bytes for %d bits", len(b.Bits), b.Size)
	}

	f.FPProb = b.FPProb
	f.Size = b.Size
	f.HashCount = b.HashCount
	f.Bits = b.Bits
	return nil
}

// Save writes the filter to path.
func (f *Filter) Save(path string) error {
	data, err := f.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode filter: %w", err)
	}
	return persist.WriteFile(path, data)
}

// Load reads a filter written by Save. Any failure is a *persist.DecodeError.
func Load(path string) (*Filter, error) {
	data, err := persist.ReadFile(kind, path)
	if err != nil {
		return nil, err
	}
	f := &Filter{}
	if err := f.UnmarshalBinary(data); err != nil {
		return nil, persist.WithPath(err, path)
	}
	return f, nil
}

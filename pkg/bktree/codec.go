package bktree

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/wordcheck/pkg/distance"
	"github.com/bastiangx/wordcheck/pkg/persist"
)

// Magic identifies a serialized tree.
const Magic = "wordcheck/bktree"

const (
	formatVersion = 1
	kind          = "tree"
)

// blob mirrors Tree field by field, unused slots included.
type blob struct {
	persist.Header
	MaxWordLength  int    `msgpack:"max_word_length"`
	AlphabetLength int    `msgpack:"alphabet_length"`
	Nodes          nodeList `msgpack:"nodes"`
	Size           int    `msgpack:"size"`
}

// nodeList decodes the arena with every length header checked against the
// input left, so a corrupt count fails instead of allocating.
type nodeList []Node

func (l *nodeList) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := persist.ArrayLen(kind, dec)
	if err != nil {
		return err
	}
	if n == -1 {
		*l = nil
		return nil
	}
	nodes := make([]Node, 0, min(n, 4096))
	for i := 0; i < n; i++ {
		var node Node
		if err := node.DecodeMsgpack(dec); err != nil {
			return err
		}
		nodes = append(nodes, node)
	}
	*l = nodes
	return nil
}

// DecodeMsgpack reads the map written for a Node by the default encoder.
func (n *Node) DecodeMsgpack(dec *msgpack.Decoder) error {
	fields, err := dec.DecodeMapLen()
	if err != nil {
		return err
	}
	for i := 0; i < fields; i++ {
		key, err := dec.DecodeString()
		if err != nil {
			return err
		}
		switch key {
		case "w":
			n.Word, err = dec.DecodeString()
		case "p":
			n.Present, err = dec.DecodeBool()
		case "n":
			n.Next, err = decodeChildren(dec)
		default:
			err = dec.Skip()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func decodeChildren(dec *msgpack.Decoder) ([]int32, error) {
	n, err := persist.ArrayLen(kind, dec)
	if err != nil || n == -1 {
		return nil, err
	}
	next := make([]int32, n)
	for i := range next {
		if next[i], err = dec.DecodeInt32(); err != nil {
			return nil, err
		}
	}
	return next, nil
}

// MarshalBinary encodes the whole arena.
func (t *Tree) MarshalBinary() ([]byte, error) {
	return persist.Encode(blob{
		Header:         persist.Header{Magic: Magic, Version: formatVersion},
		MaxWordLength:  t.MaxWordLength,
		AlphabetLength: t.AlphabetLength,
		Nodes:          t.Nodes,
		Size:           t.Size,
	})
}

// UnmarshalBinary decodes a blob produced by MarshalBinary. On failure t is
// left untouched and the error is a *persist.DecodeError.
func (t *Tree) UnmarshalBinary(data []byte) error {
	var b blob
	if err := persist.Decode(kind, data, &b); err != nil {
		return err
	}
	if err := b.Check(kind, Magic, formatVersion); err != nil {
		return err
	}
	if err := b.validate(); err != nil {
		return err
	}

	t.MaxWordLength = b.MaxWordLength
	t.AlphabetLength = b.AlphabetLength
	t.Nodes = b.Nodes
	t.Size = b.Size
	t.dist = distance.New(b.AlphabetLength)
	return nil
}

// validate rejects anything Insert could never have produced, so a decoded
// tree can be walked without bounds surprises.
func (b *blob) validate() error {
	if b.MaxWordLength < 0 {
		return persist.Invalid(kind, "negative max word length %d", b.MaxWordLength)
	}
	if b.AlphabetLength <= 0 {
		return persist.Invalid(kind, "alphabet length %d", b.AlphabetLength)
	}
	if b.Size < 0 || b.Size > len(b.Nodes) {
		return persist.Invalid(kind, "size %d outside of %d slots", b.Size, len(b.Nodes))
	}
	if b.Size > 0 && !b.Nodes[0].Present {
		return persist.Invalid(kind, "size %d with an absent root", b.Size)
	}

	width := distance.MaxDistance(b.MaxWordLength) + 1
	for i, n := range b.Nodes {
		if len(n.Next) != width {
			return persist.Invalid(kind, "node %d has %d child slots, want %d", i, len(n.Next), width)
		}
		if n.Present != (i < b.Size) {
			return persist.Invalid(kind, "node %d present=%t with size %d", i, n.Present, b.Size)
		}
		for key, child := range n.Next {
			if child == NoChild {
				continue
			}
			if !n.Present {
				return persist.Invalid(kind, "unused node %d has a child", i)
			}
			if key == 0 {
				return persist.Invalid(kind, "node %d has a child under key 0", i)
			}
			if child <= 0 || int(child) >= b.Size {
				return persist.Invalid(kind, "node %d child %d out of range", i, child)
			}
			if int(child) <= i {
				return persist.Invalid(kind, "node %d links back to %d", i, child)
			}
		}
	}
	return nil
}

// Save writes the tree to path.
func (t *Tree) Save(path string) error {
	data, err := t.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode tree: %w", err)
	}
	return persist.WriteFile(path, data)
}

// Load reads a tree written by Save. Any failure is a *persist.DecodeError.
func Load(path string) (*Tree, error) {
	data, err := persist.ReadFile(kind, path)
	if err != nil {
		return nil, err
	}
	t := &Tree{}
	if err := t.UnmarshalBinary(data); err != nil {
		return nil, persist.WithPath(err, path)
	}
	return t, nil
}

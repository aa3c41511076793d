/*
Package bktree implements a BK-tree over Damerau-Levenshtein distance for
finding vocabulary words within a small edit distance of a token.

The tree lives in a preallocated arena: Nodes is sized to the vocabulary once,
children are int32 slot indices into it and the root is slot 0. Each node keeps
a fixed child array of width 2*MaxWordLength+1, which bounds every distance two
words of at most MaxWordLength runes can have. The key a child hangs under is
the distance to its parent computed at insertion time and never changes.

	tree, err := bktree.New(maxLen, distance.DefaultAlphabetLength, len(words))
	for _, w := range words {
		if err := tree.Insert(w); err != nil {
			return err
		}
	}
	candidates := tree.QueryRange("helo", 1)

The tree is not rebalanced, so its shape depends on insertion order. Inserts
must not run concurrently; once built, Contains and QueryRange only read and
can be called from multiple goroutines.
*/
package bktree

import (
	"errors"
	"fmt"
	"unicode/utf8"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/bastiangx/wordcheck/pkg/distance"
)

// NoChild marks an empty child slot.
const NoChild int32 = -1

var (
	// ErrWordTooLong is returned when a word is longer than the tree was provisioned for.
	ErrWordTooLong = errors.New("word exceeds max word length")
	// ErrCapacity is returned when a computed distance has no slot in the child array.
	ErrCapacity = errors.New("distance exceeds child array width")
	// ErrTreeFull is returned when every preallocated node is taken.
	ErrTreeFull = errors.New("tree is full")
	// ErrInvalidConfig is returned by New for unusable parameters.
	ErrInvalidConfig = errors.New("invalid tree configuration")
)

// Node is one arena slot. Present is false only for slots that hold no word yet.
type Node struct {
	Word    string  `msgpack:"w"`
	Present bool    `msgpack:"p"`
	Next    []int32 `msgpack:"n"`
}

// Tree is a BK-tree stored as a dense array of nodes.
type Tree struct {
	MaxWordLength  int
	AlphabetLength int
	Nodes          []Node
	Size           int

	dist *distance.Calculator
}

// New preallocates a tree for capacity words of at most maxWordLength runes.
func New(maxWordLength, alphabetLength, capacity int) (*Tree, error) {
	if maxWordLength < 0 {
		return nil, fmt.Errorf("%w: max word length %d", ErrInvalidConfig, maxWordLength)
	}
	if alphabetLength <= 0 {
		return nil, fmt.Errorf("%w: alphabet length %d", ErrInvalidConfig, alphabetLength)
	}
	if capacity < 0 {
		return nil, fmt.Errorf("%w: capacity %d", ErrInvalidConfig, capacity)
	}

	t := &Tree{
		MaxWordLength:  maxWordLength,
		AlphabetLength: alphabetLength,
		Nodes:          make([]Node, capacity),
		Size:           0,
		dist:           distance.New(alphabetLength),
	}
	width := t.Width()
	for i := range t.Nodes {
		t.Nodes[i].Next = newChildren(width)
	}
	return t, nil
}

// Build creates a tree sized to words and inserts them in order.
func Build(words []string, maxWordLength, alphabetLength int) (*Tree, error) {
	t, err := New(maxWordLength, alphabetLength, len(words))
	if err != nil {
		return nil, err
	}
	for _, w := range words {
		if err := t.Insert(w); err != nil {
			return nil, fmt.Errorf("failed to insert %q: %w", w, err)
		}
	}
	return t, nil
}

func newChildren(width int) []int32 {
	next := make([]int32, width)
	for i := range next {
		next[i] = NoChild
	}
	return next
}

// Width is the number of child slots per node.
func (t *Tree) Width() int {
	return distance.MaxDistance(t.MaxWordLength) + 1
}

// Len returns the number of words stored.
func (t *Tree) Len() int {
	return t.Size
}

// Capacity returns the number of preallocated slots.
func (t *Tree) Capacity() int {
	return len(t.Nodes)
}

func (t *Tree) calculator() *distance.Calculator {
	if t.dist == nil {
		return distance.New(t.AlphabetLength)
	}
	return t.dist
}

// distanceTo compares a node against a word. An absent node compares as the
// empty string.
func (t *Tree) distanceTo(n *Node, word string) int {
	if !n.Present {
		return utf8.RuneCountInString(word)
	}
	return t.calculator().Distance(n.Word, word)
}

// Insert adds word to the tree. Inserting a word that is already stored is a no-op.
func (t *Tree) Insert(word string) error {
	if n := utf8.RuneCountInString(word); n > t.MaxWordLength {
		return fmt.Errorf("%w: %q has %d runes, limit %d", ErrWordTooLong, word, n, t.MaxWordLength)
	}
	if len(t.Nodes) == 0 {
		return ErrTreeFull
	}
	if !t.Nodes[0].Present {
		t.insertRoot(word)
		return nil
	}

	current := 0
	for {
		d := t.distanceTo(&t.Nodes[current], word)
		if d == 0 {
			return nil
		}
		if d >= t.Width() {
			return fmt.Errorf("%w: distance %d between %q and %q, width %d",
				ErrCapacity, d, t.Nodes[current].Word, word, t.Width())
		}

		child := t.Nodes[current].Next[d]
		if child != NoChild {
			current = int(child)
			continue
		}

		if t.Size >= len(t.Nodes) {
			return fmt.Errorf("%w: %d slots", ErrTreeFull, len(t.Nodes))
		}
		slot := t.Size
		t.Nodes[slot].Word = word
		t.Nodes[slot].Present = true
		t.Nodes[current].Next[d] = int32(slot)
		t.Size++
		return nil
	}
}

// insertRoot stores the very first word directly in slot 0, without an edge.
func (t *Tree) insertRoot(word string) {
	t.Nodes[0].Word = word
	t.Nodes[0].Present = true
	t.Size = 1
}

// Contains reports whether word is stored in the tree.
func (t *Tree) Contains(word string) bool {
	if len(t.Nodes) == 0 || !t.Nodes[0].Present {
		return false
	}

	current := 0
	for {
		d := t.distanceTo(&t.Nodes[current], word)
		if d == 0 {
			return true
		}
		if d >= t.Width() {
			return false
		}
		child := t.Nodes[current].Next[d]
		if child == NoChild {
			return false
		}
		current = int(child)
	}
}

// QueryRange returns every stored word within tolerance of word.
func (t *Tree) QueryRange(word string, tolerance int) mapset.Set[string] {
	result := mapset.NewThreadUnsafeSet[string]()
	if len(t.Nodes) == 0 || !t.Nodes[0].Present || tolerance < 0 {
		return result
	}

	width := t.Width()
	stack := []int32{0}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &t.Nodes[current]
		d := t.distanceTo(node, word)
		if d <= tolerance {
			result.Add(node.Word)
		}

		// distance 0 is node identity, never an edge key
		lo := max(d-tolerance, 1)
		hi := min(d+tolerance, width-1)
		for i := lo; i <= hi; i++ {
			if child := node.Next[i]; child != NoChild {
				stack = append(stack, child)
			}
		}
	}
	return result
}

// Words returns the stored words in slot order.
func (t *Tree) Words() []string {
	words := make([]string, 0, t.Size)
	for i := 0; i < t.Size && i < len(t.Nodes); i++ {
		if t.Nodes[i].Present {
			words = append(words, t.Nodes[i].Word)
		}
	}
	return words
}

// Depth returns the length of the longest root-to-leaf path, 0 for an empty tree.
func (t *Tree) Depth() int {
	if len(t.Nodes) == 0 || !t.Nodes[0].Present {
		return 0
	}
	type frame struct {
		slot  int32
		depth int
	}
	deepest := 0
	stack := []frame{{0, 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		deepest = max(deepest, f.depth)
		for _, child := range t.Nodes[f.slot].Next {
			if child != NoChild {
				stack = append(stack, frame{child, f.depth + 1})
			}
		}
	}
	return deepest
}

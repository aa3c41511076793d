/*
Package persist stores the spell-check indexes as msgpack blobs on disk.

Every blob starts with a magic string and a format version so that a tree file
can not be read back as a filter and vice versa. Anything that goes wrong while
reading a blob back (missing file, truncated data, wrong magic, structurally
invalid content) is reported as a *DecodeError, which matches ErrDecode:

	tree, err := bktree.Load(path)
	if errors.Is(err, persist.ErrDecode) {
		// rebuild from the vocabulary
	}

Callers decide whether to rebuild; a decode failure is never turned into an
empty index here.
*/
package persist

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrDecode is matched by every *DecodeError.
var ErrDecode = errors.New("decode failed")

// DecodeError describes why a persisted blob could not be turned back into an index.
type DecodeError struct {
	Kind   string // "tree", "filter", ...
	Path   string // empty for in-memory blobs
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := "decode " + e.Kind
	if e.Path != "" {
		msg += " from " + e.Path
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the cause, so errors.Is(err, fs.ErrNotExist) keeps working.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is reports ErrDecode as a match for any DecodeError.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// Invalid builds a DecodeError for a structural violation found after unmarshal.
func Invalid(kind, format string, args ...any) *DecodeError {
	return &DecodeError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Header is embedded first in every persisted struct.
type Header struct {
	Magic   string `msgpack:"magic"`
	Version int    `msgpack:"version"`
}

// Check verifies the header against the expected magic and version.
func (h Header) Check(kind, magic string, version int) error {
	if h.Magic != magic {
		return Invalid(kind, "unexpected magic %q", h.Magic)
	}
	if h.Version != version {
		return Invalid(kind, "unsupported format version %d", h.Version)
	}
	return nil
}

// Encode marshals v with msgpack. Struct fields are written in declaration
// order, so equal values always produce identical blobs.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.UseCompactInts(true)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode unmarshals a blob into v. Trailing bytes are rejected.
func Decode(kind string, data []byte, v any) error {
	if len(data) == 0 {
		return &DecodeError{Kind: kind, Reason: "empty blob"}
	}
	r := bytes.NewReader(data)
	dec := msgpack.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			return de
		}
		return &DecodeError{Kind: kind, Err: err}
	}
	if r.Len() != 0 {
		return &DecodeError{Kind: kind, Reason: fmt.Sprintf("%d trailing bytes", r.Len())}
	}
	return nil
}

// ArrayLen reads an array header and rejects a length the remaining input
// can not hold, since every element takes at least one byte. A nil array
// yields -1.
func ArrayLen(kind string, dec *msgpack.Decoder) (int, error) {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return 0, err
	}
	if r, ok := dec.Buffered().(interface{ Len() int }); ok && n > r.Len() {
		return 0, Invalid(kind, "array of %d items with %d bytes left", n, r.Len())
	}
	return n, nil
}

// WriteFile writes data atomically: a temp file in the same directory is
// renamed over path once fully written.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move index into %s: %w", path, err)
	}
	return nil
}

// ReadFile reads a whole index file. A missing or unreadable file is a
// DecodeError so callers handle it the same way as a corrupt one.
func ReadFile(kind, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DecodeError{Kind: kind, Path: path, Err: err}
	}
	return data, nil
}

// WithPath attaches the file path to a DecodeError returned by an unmarshal step.
func WithPath(err error, path string) error {
	var de *DecodeError
	if errors.As(err, &de) && de.Path == "" {
		de.Path = path
	}
	return err
}

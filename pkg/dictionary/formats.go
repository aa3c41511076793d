package dictionary

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/wordcheck/pkg/bktree"
	"github.com/bastiangx/wordcheck/pkg/bloom"
)

// FileFormat represents the files wordcheck reads and writes
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatText               // Plain text vocabulary, one word per line
	FormatTree               // Serialized BK-tree
	FormatFilter             // Serialized Bloom filter
)

// FormatInfo contains metadata about a file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64
	Magic       string
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatText: {
		Format:      FormatText,
		Description: "Plain Text Vocabulary",
		Extensions:  []string{".txt", ".lst", ".dic", ""},
		MinSize:     1,
	},
	FormatTree: {
		Format:      FormatTree,
		Description: "BK-Tree Index",
		Extensions:  []string{".bin"},
		MinSize:     int64(len(bktree.Magic)),
		Magic:       bktree.Magic,
	},
	FormatFilter: {
		Format:      FormatFilter,
		Description: "Bloom Filter Index",
		Extensions:  []string{".bin"},
		MinSize:     int64(len(bloom.Magic)),
		Magic:       bloom.Magic,
	},
}

// sniffLen covers the msgpack map header, the "magic" key and its value.
const sniffLen = 64

func (f FileFormat) String() string {
	if info, ok := GetFormatInfo(f); ok {
		return info.Description
	}
	return "Unknown"
}

// ValidateFileFormat checks if a file matches the expected format
func ValidateFileFormat(filename string, expectedFormat FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}
	if fileInfo.IsDir() {
		return fmt.Errorf("%s is a directory", filename)
	}

	formatInfo, exists := supportedFormats[expectedFormat]
	if !exists {
		return fmt.Errorf("unknown format: %v", expectedFormat)
	}

	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	validExt := false
	for _, validExtension := range formatInfo.Extensions {
		if ext == validExtension {
			validExt = true
			break
		}
	}
	if !validExt {
		return fmt.Errorf("file %s has invalid extension %s for format %s (expected: %v)",
			filename, ext, formatInfo.Description, formatInfo.Extensions)
	}

	head, err := readHead(filename)
	if err != nil {
		return err
	}

	switch expectedFormat {
	case FormatTree, FormatFilter:
		if !bytes.Contains(head, []byte(formatInfo.Magic)) {
			return fmt.Errorf("file %s is not a %s", filename, formatInfo.Description)
		}
	case FormatText:
		if !utf8.Valid(trimPartialRune(head)) {
			return fmt.Errorf("file %s is not UTF-8 text", filename)
		}
	}

	log.Debugf("File %s validated as %s", filename, formatInfo.Description)
	return nil
}

// DetectFileFormat sniffs the first bytes of a file.
func DetectFileFormat(filename string) (FileFormat, error) {
	head, err := readHead(filename)
	if err != nil {
		return FormatUnknown, err
	}

	switch {
	case bytes.Contains(head, []byte(bktree.Magic)):
		return FormatTree, nil
	case bytes.Contains(head, []byte(bloom.Magic)):
		return FormatFilter, nil
	case len(head) > 0 && utf8.Valid(trimPartialRune(head)):
		return FormatText, nil
	}
	return FormatUnknown, fmt.Errorf("unable to detect format for file %s", filename)
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format FileFormat) (FormatInfo, bool) {
	info, exists := supportedFormats[format]
	return info, exists
}

func readHead(filename string) ([]byte, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("failed to read from %s: %w", filename, err)
	}
	return head[:n], nil
}

// trimPartialRune drops a rune cut in half by the sniff window.
func trimPartialRune(b []byte) []byte {
	if len(b) < sniffLen {
		return b
	}
	for i := 0; i < utf8.UTFMax-1 && len(b) > 0; i++ {
		r, size := utf8.DecodeLastRune(b)
		if r != utf8.RuneError || size != 1 {
			return b
		}
		b = b[:len(b)-1]
	}
	return b
}

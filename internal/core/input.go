package core

// input.go turns an uploaded byte stream into the text the importer consumes.
//
// Broker exports arrive with whatever encoding the platform's Windows or Excel
// path produced:
//   - UTF-8 with a byte order mark
//   - UTF-16 (LE or BE) with a byte order mark
//   - Invalid UTF-8 sequences, replaced with U+FFFD
//
// The byte limit is enforced on the raw stream before decoding.

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrInputTooLarge is returned by ReadInput when the stream exceeds the limit.
var ErrInputTooLarge = errors.New("input too large")

// DefaultMaxInputBytes is the limit applied when ReadInput is given maxBytes <= 0.
const DefaultMaxInputBytes int64 = 10 << 20

// ReadInput reads at most maxBytes from r and decodes it into text.
// A leading BOM selects UTF-8 or UTF-16; without one the input is read as UTF-8.
func ReadInput(r io.Reader, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxInputBytes
	}

	raw, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	if int64(len(raw)) > maxBytes {
		return "", fmt.Errorf("%w: exceeds %d bytes", ErrInputTooLarge, maxBytes)
	}

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	text, err := io.ReadAll(transform.NewReader(bytes.NewReader(raw), decoder))
	if err != nil {
		return "", fmt.Errorf("encoding error: %w", err)
	}
	return string(text), nil
}

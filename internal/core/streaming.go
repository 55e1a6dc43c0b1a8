package core

// streaming.go provides the readers applied to raw CSV bytes before parsing:
//
//   - BOMSkippingReader: drops a leading UTF-8 BOM (0xEF 0xBB 0xBF)
//   - UTF8Sanitizer: replaces invalid UTF-8 bytes with U+FFFD
//   - CountingReader: counts bytes and enforces an optional size cap
//
// Use WrapForParsing to apply them in the right order.

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// ErrSourceTooLarge is returned when a source yields more bytes than allowed.
var ErrSourceTooLarge = errors.New("source too large")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader removes a UTF-8 BOM at the start of the stream.
// Windows tools (Excel in particular) prepend one to exported CSVs, which
// would otherwise end up in the first header name.
type BOMSkippingReader struct {
	br      *bufio.Reader
	checked bool
}

// NewBOMSkippingReader wraps r.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{br: bufio.NewReader(r)}
}

// Read implements io.Reader.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		head, err := r.br.Peek(len(utf8BOM))
		if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
			return 0, err
		}
		if len(head) == len(utf8BOM) && head[0] == utf8BOM[0] && head[1] == utf8BOM[1] && head[2] == utf8BOM[2] {
			if _, err := r.br.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}
	return r.br.Read(p)
}

// UTF8Sanitizer replaces each invalid UTF-8 byte with U+FFFD.
// Multi-byte sequences split across reads are handled by decoding runes from
// a buffered reader rather than from raw chunks.
type UTF8Sanitizer struct {
	br *bufio.Reader
}

// NewUTF8Sanitizer wraps r.
func NewUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	return &UTF8Sanitizer{br: bufio.NewReader(r)}
}

// Read implements io.Reader.
func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	if len(p) < utf8.UTFMax {
		return 0, io.ErrShortBuffer
	}

	n := 0
	for n+utf8.UTFMax <= len(p) {
		// Return what is ready instead of blocking for more input.
		if n > 0 && s.br.Buffered() == 0 {
			break
		}

		// Fast path: copy buffered ASCII without per-rune decoding.
		if buffered := s.br.Buffered(); buffered > 0 {
			chunk, _ := s.br.Peek(min(buffered, len(p)-n))
			ascii := 0
			for ascii < len(chunk) && chunk[ascii] < utf8.RuneSelf {
				ascii++
			}
			if ascii > 0 {
				copy(p[n:], chunk[:ascii])
				s.br.Discard(ascii)
				n += ascii
				continue
			}
		}

		// An invalid byte decodes as (RuneError, 1) and is written as U+FFFD.
		r, _, err := s.br.ReadRune()
		if err != nil {
			if n > 0 && err == io.EOF {
				return n, nil
			}
			return n, err
		}
		n += utf8.EncodeRune(p[n:], r)
	}
	return n, nil
}

// CountingReader counts bytes read from the underlying reader. When Limit is
// positive, reading past it fails with ErrSourceTooLarge instead of silently
// truncating the CSV.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
	Limit     int64
}

// NewCountingReader wraps r with an optional byte limit (0 means unlimited).
func NewCountingReader(r io.Reader, limit int64) *CountingReader {
	return &CountingReader{reader: r, Limit: limit}
}

// Read implements io.Reader.
func (c *CountingReader) Read(p []byte) (int, error) {
	if c.Limit > 0 {
		remaining := c.Limit + 1 - c.BytesRead
		if remaining <= 0 {
			return 0, fmt.Errorf("%w: exceeds %d bytes", ErrSourceTooLarge, c.Limit)
		}
		if int64(len(p)) > remaining {
			p = p[:remaining]
		}
	}
	n, err := c.reader.Read(p)
	c.BytesRead += int64(n)
	if c.Limit > 0 && c.BytesRead > c.Limit {
		return 0, fmt.Errorf("%w: exceeds %d bytes", ErrSourceTooLarge, c.Limit)
	}
	return n, err
}

// WrapForParsing applies byte counting, BOM stripping and UTF-8 sanitization.
//
// Counting wraps the raw stream so BytesRead reflects what the source sent.
func WrapForParsing(r io.Reader, limit int64) (io.Reader, *CountingReader) {
	counter := NewCountingReader(r, limit)
	return NewUTF8Sanitizer(NewBOMSkippingReader(counter)), counter
}

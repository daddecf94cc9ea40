// Package bencode implements a positional scanner for bencoded data.
//
// Unlike reflection-based decoders, the scanner walks a byte buffer in
// place and exposes two operations over the same grammar: extracting a
// value at the cursor, and skipping a value by computing its span without
// interpreting it. Callers that only need a handful of fields from a large
// document (for example the "info" dictionary of a .torrent file) never
// materialize the rest.
package bencode

import (
	"fmt"
)

// MaxStringLen caps the declared length of a bencoded byte string before
// any allocation or jump is attempted. Declared lengths are attacker
// controlled; anything above this is rejected as malformed.
const MaxStringLen = 100_000_000

// ParseError reports structurally invalid, truncated, or out-of-bounds
// input. The scanner never panics on malformed data.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bencode: %s at offset %d", e.Msg, e.Offset)
}

// Scanner is a bounds-checked cursor over a bencoded buffer. It holds no
// state besides the buffer and position, so independent buffers can be
// scanned concurrently from multiple goroutines.
type Scanner struct {
	buf []byte
	pos int
}

// NewScanner returns a scanner positioned at the start of buf. The scanner
// aliases buf; it never copies out of it.
func NewScanner(buf []byte) *Scanner {
	return &Scanner{buf: buf}
}

// Pos returns the current cursor offset into the buffer.
func (s *Scanner) Pos() int { return s.pos }

// Range returns the sub-slice of the underlying buffer between start and
// end. It shares storage with the scanned buffer.
func (s *Scanner) Range(start, end int) []byte { return s.buf[start:end] }

func (s *Scanner) errorf(format string, args ...interface{}) error {
	return &ParseError{Offset: s.pos, Msg: fmt.Sprintf(format, args...)}
}

// Peek returns the byte at the cursor without consuming it.
func (s *Scanner) Peek() (byte, error) {
	if s.pos >= len(s.buf) {
		return 0, s.errorf("unexpected end of input")
	}
	return s.buf[s.pos], nil
}

// EnterDict consumes a dictionary start marker 'd'.
func (s *Scanner) EnterDict() error {
	return s.consume('d', "dictionary")
}

// EnterList consumes a list start marker 'l'.
func (s *Scanner) EnterList() error {
	return s.consume('l', "list")
}

func (s *Scanner) consume(marker byte, what string) error {
	ch, err := s.Peek()
	if err != nil {
		return err
	}
	if ch != marker {
		return s.errorf("expected %s, got %q", what, ch)
	}
	s.pos++
	return nil
}

// EndReached reports whether the cursor sits on an 'e' terminator and
// consumes it if so. Callers iterate dictionary or list members until it
// returns true.
func (s *Scanner) EndReached() (bool, error) {
	ch, err := s.Peek()
	if err != nil {
		return false, err
	}
	if ch == 'e' {
		s.pos++
		return true, nil
	}
	return false, nil
}

const maxInt64 = int64(^uint64(0) >> 1)

// ReadInteger decodes an integer value i<digits>e at the cursor. The
// accumulation is overflow checked; a literal that does not fit in an
// int64 is a parse failure, not a wrapped value.
func (s *Scanner) ReadInteger() (int64, error) {
	if err := s.consume('i', "integer"); err != nil {
		return 0, err
	}
	neg := false
	if s.pos < len(s.buf) && s.buf[s.pos] == '-' {
		neg = true
		s.pos++
	}
	var n int64
	digits := 0
	for ; s.pos < len(s.buf); s.pos++ {
		ch := s.buf[s.pos]
		if ch == 'e' {
			if digits == 0 {
				return 0, s.errorf("integer with no digits")
			}
			s.pos++
			if neg {
				return -n, nil
			}
			return n, nil
		}
		if ch < '0' || ch > '9' {
			return 0, s.errorf("invalid integer digit %q", ch)
		}
		d := int64(ch - '0')
		if n > (maxInt64-d)/10 {
			return 0, s.errorf("integer overflows 64 bits")
		}
		n = n*10 + d
		digits++
	}
	return 0, s.errorf("unterminated integer")
}

// ReadString decodes a byte string <len>:<bytes> at the cursor and
// returns the bytes as a sub-slice of the scanned buffer. The declared
// length is validated against MaxStringLen and the remaining buffer
// before the slice is taken.
func (s *Scanner) ReadString() ([]byte, error) {
	n, err := s.readStringLength()
	if err != nil {
		return nil, err
	}
	start := s.pos
	s.pos += n
	return s.buf[start:s.pos], nil
}

// readStringLength parses the <len>: prefix and validates that len bytes
// of payload actually exist. On return the cursor sits on the first
// payload byte.
func (s *Scanner) readStringLength() (int, error) {
	var n int64
	digits := 0
	for ; s.pos < len(s.buf); s.pos++ {
		ch := s.buf[s.pos]
		if ch == ':' {
			if digits == 0 {
				return 0, s.errorf("string with no length")
			}
			s.pos++
			if int64(s.pos)+n > int64(len(s.buf)) {
				return 0, s.errorf("string length %d exceeds buffer", n)
			}
			return int(n), nil
		}
		if ch < '0' || ch > '9' {
			return 0, s.errorf("invalid string length digit %q", ch)
		}
		n = n*10 + int64(ch-'0')
		if n > MaxStringLen {
			return 0, s.errorf("string length exceeds %d", MaxStringLen)
		}
		digits++
	}
	return 0, s.errorf("unterminated string length")
}

// Skip advances the cursor past one complete value of any type without
// interpreting it. Integers inside skipped values are not range checked;
// only the structure and declared lengths are validated, so a document
// carrying an oversized integer in an ignored field still skips cleanly.
func (s *Scanner) Skip() error {
	ch, err := s.Peek()
	if err != nil {
		return err
	}
	switch {
	case ch == 'i':
		return s.skipInteger()
	case ch >= '0' && ch <= '9':
		n, err := s.readStringLength()
		if err != nil {
			return err
		}
		s.pos += n
		return nil
	case ch == 'l', ch == 'd':
		s.pos++
		return s.skipUntilEnd()
	default:
		return s.errorf("invalid value marker %q", ch)
	}
}

// skipInteger scans past i<digits>e without parsing the magnitude.
func (s *Scanner) skipInteger() error {
	s.pos++ // 'i'
	if s.pos < len(s.buf) && s.buf[s.pos] == '-' {
		s.pos++
	}
	digits := 0
	for ; s.pos < len(s.buf); s.pos++ {
		ch := s.buf[s.pos]
		if ch == 'e' {
			if digits == 0 {
				return s.errorf("integer with no digits")
			}
			s.pos++
			return nil
		}
		if ch < '0' || ch > '9' {
			return s.errorf("invalid integer digit %q", ch)
		}
		digits++
	}
	return s.errorf("unterminated integer")
}

// skipUntilEnd skips members until the matching 'e'. Dictionary keys are
// byte strings and therefore skip the same way as list members, so both
// container types share this loop.
func (s *Scanner) skipUntilEnd() error {
	for {
		done, err := s.EndReached()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if err := s.Skip(); err != nil {
			return err
		}
	}
}

package stream

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// Splitter turns an arbitrary sequence of byte chunks into complete lines.
//
// CR and LF are both line boundaries; a CRLF pair is a single boundary even
// when the CR ends one chunk and the LF starts the next. Bytes are split
// before they are decoded, so a multi-byte character cut across two chunks is
// reassembled in the fragment before decoding. Invalid UTF-8 is replaced with
// U+FFFD instead of failing.
type Splitter struct {
	frag   []byte
	skipLF bool
	dec    *encoding.Decoder
}

// NewSplitter creates an empty splitter.
func NewSplitter() *Splitter {
	return &Splitter{dec: unicode.UTF8.NewDecoder()}
}

// Feed appends chunk to the pending fragment and returns every line it completes.
// The trailing incomplete fragment is kept for the next call.
func (s *Splitter) Feed(chunk []byte) []string {
	var lines []string
	for len(chunk) > 0 {
		if s.skipLF {
			s.skipLF = false
			if chunk[0] == '\n' {
				chunk = chunk[1:]
				continue
			}
		}

		i := bytes.IndexAny(chunk, "\r\n")
		if i < 0 {
			s.frag = append(s.frag, chunk...)
			break
		}

		s.frag = append(s.frag, chunk[:i]...)
		lines = append(lines, s.decode(s.frag))
		s.frag = s.frag[:0]

		if chunk[i] == '\r' {
			s.skipLF = true
		}
		chunk = chunk[i+1:]
	}
	return lines
}

// Flush returns the pending fragment as a final line, if it is not empty.
func (s *Splitter) Flush() (string, bool) {
	s.skipLF = false
	if len(s.frag) == 0 {
		return "", false
	}
	line := s.decode(s.frag)
	s.frag = s.frag[:0]
	return line, true
}

// Pending reports how many bytes are buffered without a terminator.
func (s *Splitter) Pending() int {
	return len(s.frag)
}

func (s *Splitter) decode(b []byte) string {
	out, err := s.dec.Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(out)
}

// SplitAll splits a complete buffer in one pass, flushing the trailing fragment.
func SplitAll(b []byte) []string {
	s := NewSplitter()
	lines := s.Feed(b)
	if last, ok := s.Flush(); ok {
		lines = append(lines, last)
	}
	return lines
}

package stream

import (
	"errors"
	"io"
)

// DefaultChunkSize bounds every read from a child stream.
const DefaultChunkSize = 4096

// Name identifies which child stream produced a line.
type Name string

const (
	Stdout Name = "stdout"
	Stderr Name = "stderr"
)

// Line is one complete line read from a child stream.
type Line struct {
	Stream Name
	Text   string
}

// Drain reads r in chunks of at most chunkSize bytes and calls emit for every
// complete line, in order. At end of input, or on a read error, the pending
// fragment is flushed as a final line. End of input returns nil; any other
// read error is returned after the flush so the caller can log it. The stream
// is considered finished either way.
func Drain(r io.Reader, name Name, chunkSize int, emit func(Line)) error {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	buf := make([]byte, chunkSize)
	sp := NewSplitter()

	for {
		n, err := r.Read(buf)
		if n > 0 {
			for _, text := range sp.Feed(buf[:n]) {
				emit(Line{Stream: name, Text: text})
			}
		}
		if err != nil {
			if last, ok := sp.Flush(); ok {
				emit(Line{Stream: name, Text: last})
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// Package extract mines structured results from the captured output of a finished run.
//
// Extraction never fails: when the expected markers are missing the result is
// nil and the raw output stays visible in the status buffer.
package extract

import (
	"strings"

	"github.com/aretw0/pipedeck/pkg/domain"
)

// DefaultLinkHost is the product hostname used by the fallback link search.
const DefaultLinkHost = "pipenetwork.com"

// Func extracts a result from combined output. It returns nil when nothing was found.
type Func func(output string) *domain.ExtractedResult

// Extractor dispatches to the parser registered for each action kind.
type Extractor struct {
	linkHost string
	parsers  map[domain.ActionKind]Func
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLinkHost overrides the hostname used by the fallback link search.
func WithLinkHost(host string) Option {
	return func(e *Extractor) {
		if host != "" {
			e.linkHost = host
		}
	}
}

// WithParser registers or replaces the parser for kind.
func WithParser(kind domain.ActionKind, fn Func) Option {
	return func(e *Extractor) {
		e.parsers[kind] = fn
	}
}

// New creates an Extractor with the built-in parsers.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		linkHost: DefaultLinkHost,
		parsers: map[domain.ActionKind]Func{
			domain.ActionCheckSOL:    Balance,
			domain.ActionCheckToken:  TokenBalance,
			domain.ActionTokenUsage:  Usage,
			domain.ActionListUploads: Listing,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	if _, ok := e.parsers[domain.ActionCreateLink]; !ok {
		host := e.linkHost
		e.parsers[domain.ActionCreateLink] = func(output string) *domain.ExtractedResult {
			return PublicLink(output, host)
		}
	}
	return e
}

// Extract runs the parser for kind over stdout followed by stderr.
func (e *Extractor) Extract(kind domain.ActionKind, stdout, stderr string) *domain.ExtractedResult {
	fn, ok := e.parsers[kind]
	if !ok {
		return nil
	}
	return fn(Combine(stdout, stderr))
}

// Combine concatenates captured stdout and stderr the way extraction sees them.
func Combine(stdout, stderr string) string {
	switch {
	case stderr == "":
		return stdout
	case stdout == "":
		return stderr
	}
	return strings.TrimRight(stdout, "\n") + "\n" + stderr
}

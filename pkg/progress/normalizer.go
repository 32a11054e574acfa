package progress

import (
	"regexp"
	"strconv"
	"strings"
)

// Marker prefixes the single progress line kept in a status buffer.
const Marker = "[PROGRESS]"

// markerPrefixes are the prefixes the tool uses for explicit progress lines.
// With --gui-style the tool prints "PROGRESS: ..."; Marker itself is accepted
// so already-normalized lines round-trip.
var markerPrefixes = []string{Marker, "PROGRESS:"}

var (
	transferPattern = regexp.MustCompile(
		`\d+(?:\.\d+)?\s*(?:KiB|MiB|GiB|B)\s*/\s*\d+(?:\.\d+)?\s*(?:KiB|MiB|GiB|B)\s*\(\s*\d+(?:\.\d+)?%?\s*,?\s*[0-9][0-9hms:.]*\s*\)`)
	percentPattern = regexp.MustCompile(`(\d+)%`)
)

// Normalizer classifies complete lines as transient progress or plain log lines.
type Normalizer struct {
	// Detect enables pattern detection (byte ratio, bare percentage). When it
	// is false only explicitly marked lines are treated as progress.
	Detect bool
}

// New returns a normalizer; detect is normally true for transfer actions only.
func New(detect bool) Normalizer {
	return Normalizer{Detect: detect}
}

// Classify reports whether line is a progress event and returns the extracted value.
// Checks run in priority order: byte ratio with percentage and ETA, bare
// percentage, then an explicit marker prefix whose remainder is kept verbatim.
func (n Normalizer) Classify(line string) (string, bool) {
	text, marked := stripMarker(strings.TrimSpace(line))

	if n.Detect {
		if m := transferPattern.FindString(text); m != "" {
			return strings.TrimSpace(m), true
		}
		if v, ok := findPercent(text); ok {
			return v, true
		}
	}

	if marked {
		return text, true
	}
	return "", false
}

// Format renders a progress value as a marker-prefixed status line.
func Format(value string) string {
	if value == "" {
		return Marker
	}
	return Marker + " " + value
}

// IsProgress reports whether a status line is a progress line.
func IsProgress(line string) bool {
	return strings.HasPrefix(line, Marker)
}

// Value returns the progress value held by a status line.
func Value(line string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, Marker))
}

func stripMarker(text string) (string, bool) {
	for _, p := range markerPrefixes {
		if strings.HasPrefix(text, p) {
			return strings.TrimSpace(text[len(p):]), true
		}
	}
	return text, false
}

func findPercent(text string) (string, bool) {
	for _, m := range percentPattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n > 100 {
			continue
		}
		return m[0], true
	}
	return "", false
}

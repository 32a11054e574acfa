package runner

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxLineSize caps a single status line, in bytes.
	DefaultMaxLineSize = 16 * 1024
	// EnvMaxLineSize is the environment variable to override the default
	EnvMaxLineSize = "PIPEDECK_MAX_LINE_SIZE"
)

// Truncated marks a line cut at the size limit.
const Truncated = "…"

// CSI, OSC and two-byte escape sequences emitted by terminal progress bars.
var escapePattern = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)|\x1b[@-Z\\-_]`)

// SanitizeLine cleans one line of tool output before it reaches the status
// buffer: terminal escape sequences are removed, remaining control
// characters except tab are stripped, and overlong lines are truncated on a
// rune boundary.
func SanitizeLine(line string) string {
	if strings.IndexByte(line, 0x1b) >= 0 {
		line = escapePattern.ReplaceAllString(line, "")
	}

	// Fast path: if no control chars, only the size limit applies.
	clean := true
	for _, r := range line {
		if unicode.IsControl(r) && r != '\t' {
			clean = false
			break
		}
	}
	if !clean {
		var b strings.Builder
		b.Grow(len(line))
		for _, r := range line {
			if !unicode.IsControl(r) || r == '\t' {
				b.WriteRune(r)
			}
		}
		line = b.String()
	}

	return truncate(line, getMaxLineSize())
}

func truncate(line string, limit int) string {
	if len(line) <= limit {
		return line
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(line[cut]) {
		cut--
	}
	return line[:cut] + Truncated
}

func getMaxLineSize() int {
	if val := os.Getenv(EnvMaxLineSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxLineSize
}

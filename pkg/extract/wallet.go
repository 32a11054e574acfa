package extract

import (
	"strings"

	"github.com/aretw0/pipedeck/pkg/domain"
)

// PipeMint is the token mint assumed when check-token does not print one.
const PipeMint = "35mhJor7qTD212YXdLkB8sRzTbaYRXmTzHTCFSDP5voJ"

// Field keys set by the wallet parsers.
const (
	FieldPubkey = "pubkey"
	FieldSOL    = "sol"
	FieldUI     = "ui"
	FieldMint   = "mint"
)

// Balance parses check-sol output ("Pubkey: ..." and "SOL: ..." lines).
func Balance(output string) *domain.ExtractedResult {
	fields := prefixedFields(output, map[string]string{
		"Pubkey:": FieldPubkey,
		"SOL:":    FieldSOL,
	})
	if len(fields) == 0 {
		return nil
	}
	return &domain.ExtractedResult{Fields: fields}
}

// TokenBalance parses check-token output ("UI: ..." and "Mint: ..." lines).
func TokenBalance(output string) *domain.ExtractedResult {
	fields := prefixedFields(output, map[string]string{
		"UI:":   FieldUI,
		"Mint:": FieldMint,
	})
	if _, ok := fields[FieldMint]; !ok {
		fields[FieldMint] = PipeMint
	}
	return &domain.ExtractedResult{Fields: fields}
}

func prefixedFields(output string, keys map[string]string) map[string]string {
	fields := make(map[string]string)
	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)
		for prefix, key := range keys {
			if v, ok := strings.CutPrefix(line, prefix); ok {
				fields[key] = strings.TrimSpace(v)
			}
		}
	}
	return fields
}

// Usage section titles, in the order token-usage prints them.
const (
	SectionStorage   = "Storage (Uploads)"
	SectionBandwidth = "Bandwidth (Downloads)"
	SectionTotal     = "Total"
)

var usageNoise = []string{
	"Token expired",
	"Credentials saved",
	"Token refreshed",
	"Token Usage Report",
}

// Usage parses token-usage output into the filtered report and its sections.
// Lines before the first section header form an untitled section.
func Usage(output string) *domain.ExtractedResult {
	var report []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || isUsageNoise(line) {
			continue
		}
		report = append(report, line)
	}
	if len(report) == 0 {
		return nil
	}

	var (
		sections []domain.UsageSection
		current  domain.UsageSection
	)
	flush := func() {
		if len(current.Lines) > 0 {
			sections = append(sections, current)
		}
	}
	for _, line := range report {
		title, rest, ok := usageHeader(line)
		if !ok {
			current.Lines = append(current.Lines, line)
			continue
		}
		flush()
		current = domain.UsageSection{Title: title}
		if rest != "" {
			current.Lines = append(current.Lines, rest)
		}
	}
	flush()

	return &domain.ExtractedResult{Report: report, Sections: sections}
}

func isUsageNoise(line string) bool {
	for _, n := range usageNoise {
		if strings.Contains(line, n) {
			return true
		}
	}
	return false
}

// usageHeader recognizes a section header and returns any value printed after it.
func usageHeader(line string) (title, rest string, ok bool) {
	for _, t := range []string{SectionStorage, SectionBandwidth, SectionTotal} {
		if _, after, found := strings.Cut(line, t+":"); found {
			return t, strings.TrimSpace(after), true
		}
	}
	return "", "", false
}

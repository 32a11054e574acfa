package extract

import (
	"strings"

	"github.com/aretw0/pipedeck/pkg/domain"
)

// Listing parses list-uploads output. Each record line carries comma separated
// local=, remote=, status= and msg= fields after its first colon, values
// optionally single-quoted. Lines without any field are ignored.
func Listing(output string) *domain.ExtractedResult {
	var entries []domain.ListingEntry
	for _, raw := range strings.Split(output, "\n") {
		line := raw
		if _, after, ok := strings.Cut(line, ":"); ok {
			line = after
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var e domain.ListingEntry
		for _, part := range strings.Split(line, ",") {
			part = strings.TrimSpace(part)
			key, value, ok := strings.Cut(part, "=")
			if !ok {
				continue
			}
			value = strings.Trim(value, "'")
			switch key {
			case "local":
				e.Local = value
			case "remote":
				e.Remote = value
			case "status":
				e.Status = value
			case "msg":
				e.Message = value
			}
		}
		if e == (domain.ListingEntry{}) {
			continue
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil
	}
	return &domain.ExtractedResult{Listing: entries}
}

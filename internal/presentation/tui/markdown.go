package tui

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/pipedeck/pkg/domain"
	"github.com/aretw0/pipedeck/pkg/uploads"
)

// UploadsTable renders upload records as a markdown table.
func UploadsTable(records []domain.UploadRecord) string {
	if len(records) == 0 {
		return "_No uploads recorded._\n"
	}

	var b strings.Builder
	b.WriteString("| Time | Local | Remote | Size | Status | Hash |\n")
	b.WriteString("|---|---|---|---:|---|---|\n")
	for _, r := range records {
		ts := ""
		if !r.Timestamp.IsZero() {
			ts = r.Timestamp.Local().Format(time.DateTime)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			ts,
			cell(r.LocalPath),
			cell(r.RemotePath),
			uploads.FormatSize(r.FileSize),
			cell(r.Status),
			code(r.Blake3Hash),
		)
	}
	return b.String()
}

// Result renders the details extracted from a finished run. It returns "" when
// there is nothing beyond the status lines to show.
func Result(r *domain.ExtractedResult) string {
	if r == nil {
		return ""
	}

	var b strings.Builder
	if r.DirectLink != "" {
		fmt.Fprintf(&b, "**Direct link:** %s\n\n", r.DirectLink)
	}
	if r.SocialMediaLink != "" && r.SocialMediaLink != r.DirectLink {
		fmt.Fprintf(&b, "**Social link:** %s\n\n", r.SocialMediaLink)
	}
	if r.DownloadHash != "" {
		fmt.Fprintf(&b, "**Hash:** %s\n\n", code(r.DownloadHash))
	}

	if len(r.Fields) > 0 {
		b.WriteString("| Field | Value |\n|---|---|\n")
		for _, k := range slices.Sorted(maps.Keys(r.Fields)) {
			fmt.Fprintf(&b, "| %s | %s |\n", cell(k), cell(r.Fields[k]))
		}
		b.WriteString("\n")
	}

	for _, s := range r.Sections {
		fmt.Fprintf(&b, "## %s\n\n", s.Title)
		for _, l := range s.Lines {
			fmt.Fprintf(&b, "- %s\n", l)
		}
		b.WriteString("\n")
	}

	if len(r.Listing) > 0 {
		b.WriteString("| Local | Remote | Status | Message |\n|---|---|---|---|\n")
		for _, e := range r.Listing {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", cell(e.Local), cell(e.Remote), cell(e.Status), cell(e.Message))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func code(s string) string {
	if s == "" {
		return ""
	}
	return "`" + s + "`"
}

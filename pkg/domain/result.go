package domain

import (
	"maps"
	"slices"
	"time"
)

// ExtractedResult holds the structured artifacts mined from the final output of a run.
// Every field is optional; which ones are set depends on the action kind.
type ExtractedResult struct {
	DirectLink      string `json:"direct_link,omitempty"`
	SocialMediaLink string `json:"social_media_link,omitempty"`
	DownloadHash    string `json:"download_hash,omitempty"`
	// Generic is set when the link came from the hostname fallback rather than
	// the publicDownload markers.
	Generic bool `json:"generic,omitempty"`

	Fields   map[string]string `json:"fields,omitempty"`
	Report   []string          `json:"report,omitempty"`
	Sections []UsageSection    `json:"sections,omitempty"`
	Listing  []ListingEntry    `json:"listing,omitempty"`
}

// HasLinks reports whether a public link was found.
func (r *ExtractedResult) HasLinks() bool {
	return r != nil && r.DirectLink != "" && r.SocialMediaLink != ""
}

// UsageSection is one titled block of a token usage report.
type UsageSection struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

// ListingEntry is one row printed by the list-uploads subcommand.
type ListingEntry struct {
	Local   string `json:"local"`
	Remote  string `json:"remote"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Outcome is the persisted record of a finished run.
type Outcome struct {
	RunID      string           `json:"run_id"`
	Slot       string           `json:"slot"`
	Kind       ActionKind       `json:"kind"`
	Phase      Phase            `json:"phase"`
	ExitCode   int              `json:"exit_code"`
	Command    []string         `json:"command"`
	Lines      []string         `json:"lines"`
	Result     *ExtractedResult `json:"result,omitempty"`
	Error      string           `json:"error,omitempty"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	// Sealed holds the encrypted outcome when the store encrypts at rest.
	Sealed string `json:"sealed,omitempty"`
}

// Duration returns how long the run took.
func (o *Outcome) Duration() time.Duration {
	return o.FinishedAt.Sub(o.StartedAt)
}

// Clone returns a deep copy of the outcome.
func (o *Outcome) Clone() *Outcome {
	if o == nil {
		return nil
	}
	c := *o
	c.Command = slices.Clone(o.Command)
	c.Lines = slices.Clone(o.Lines)
	c.Result = o.Result.Clone()
	return &c
}

// Clone returns a deep copy of the result.
func (r *ExtractedResult) Clone() *ExtractedResult {
	if r == nil {
		return nil
	}
	c := *r
	c.Fields = maps.Clone(r.Fields)
	c.Report = slices.Clone(r.Report)
	c.Listing = slices.Clone(r.Listing)
	if r.Sections != nil {
		c.Sections = make([]UsageSection, len(r.Sections))
		for i, s := range r.Sections {
			c.Sections[i] = UsageSection{Title: s.Title, Lines: slices.Clone(s.Lines)}
		}
	}
	return &c
}

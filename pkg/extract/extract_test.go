package extract_test

import (
	"testing"

	"github.com/aretw0/pipedeck/pkg/domain"
	"github.com/aretw0/pipedeck/pkg/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicLink_DirectAndSocial(t *testing.T) {
	out := "Creating link...\n" +
		"https://x/publicDownload?hash=abc123\n" +
		"https://x/publicDownload?hash=abc123&preview=true\n"

	res := extract.PublicLink(out, extract.DefaultLinkHost)
	require.NotNil(t, res)
	assert.Equal(t, "https://x/publicDownload?hash=abc123", res.DirectLink)
	assert.NotContains(t, res.DirectLink, "preview=true")
	assert.Contains(t, res.SocialMediaLink, "preview=true")
	assert.Equal(t, "abc123", res.DownloadHash)
	assert.False(t, res.Generic)
	assert.True(t, res.HasLinks())
}

func TestPublicLink_HashPunctuation(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"quote and paren", `Link: https://x/publicDownload?hash=abc123")`, "abc123"},
		{"backtick", "`https://x/publicDownload?hash=f00d`", "f00d"},
		{"bracket", "[https://x/publicDownload?hash=beef]", "beef"},
		{"whitespace", "https://x/publicDownload?hash=cafe  (copy)", "cafe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The last hash-bearing line wins, so the case under test goes last.
			out := "https://x/publicDownload?hash=zzz&preview=true\nhttps://x/publicDownload?hash=zzz\n" + tt.line
			res := extract.PublicLink(out, extract.DefaultLinkHost)
			require.NotNil(t, res)
			assert.Equal(t, tt.want, res.DownloadHash)
		})
	}
}

func TestPublicLink_HostnameFallback(t *testing.T) {
	out := "Your file is available at https://share.pipenetwork.com/f/xyz now\n" +
		"also https://other.pipenetwork.com/ignored\n"

	res := extract.PublicLink(out, extract.DefaultLinkHost)
	require.NotNil(t, res)
	assert.True(t, res.Generic)
	assert.Equal(t, "https://share.pipenetwork.com/f/xyz", res.DirectLink)
	assert.Equal(t, res.DirectLink, res.SocialMediaLink)
}

func TestPublicLink_FallbackAtEndOfLine(t *testing.T) {
	assert.Nil(t, extract.PublicLink("see https://pipenetwork.com/p/1", extract.DefaultLinkHost))
	assert.Nil(t, extract.PublicLink("see https://pipenetwork.com/p/1\r\n", extract.DefaultLinkHost))
}

func TestPublicLink_FallbackSkipsLineEndingInLink(t *testing.T) {
	out := "Link ready: https://pipenetwork.com/a\n" +
		"See https://pipenetwork.com/b now\n"

	res := extract.PublicLink(out, extract.DefaultLinkHost)
	require.NotNil(t, res)
	assert.True(t, res.Generic)
	assert.Equal(t, "https://pipenetwork.com/b", res.DirectLink)
}

func TestPublicLink_NoMatchIsNil(t *testing.T) {
	assert.Nil(t, extract.PublicLink("Link created\nhttps://example.com/nope", extract.DefaultLinkHost))
	assert.Nil(t, extract.PublicLink("", extract.DefaultLinkHost))
}

func TestExtractor_CustomHost(t *testing.T) {
	e := extract.New(extract.WithLinkHost("files.example.org"))
	res := e.Extract(domain.ActionCreateLink, "ok https://files.example.org/a1 done", "")
	require.NotNil(t, res)
	assert.Equal(t, "https://files.example.org/a1", res.DirectLink)

	assert.Nil(t, e.Extract(domain.ActionUpload, "anything", ""))
}

func TestExtractor_CombinesStreams(t *testing.T) {
	e := extract.New()
	res := e.Extract(domain.ActionCreateLink,
		"https://x/publicDownload?hash=h1\n",
		"https://x/publicDownload?hash=h1&preview=true")
	require.NotNil(t, res)
	assert.True(t, res.HasLinks())

	assert.Equal(t, "a\nb", extract.Combine("a\n", "b"))
	assert.Equal(t, "a", extract.Combine("a", ""))
	assert.Equal(t, "b", extract.Combine("", "b"))
}

func TestBalance(t *testing.T) {
	res := extract.Balance("  Pubkey: 9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin\nSOL: 1.25\n")
	require.NotNil(t, res)
	assert.Equal(t, map[string]string{
		extract.FieldPubkey: "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
		extract.FieldSOL:    "1.25",
	}, res.Fields)

	assert.Nil(t, extract.Balance("error: not logged in"))
}

func TestTokenBalance_DefaultMint(t *testing.T) {
	res := extract.TokenBalance("UI: 42.5\n")
	require.NotNil(t, res)
	assert.Equal(t, "42.5", res.Fields[extract.FieldUI])
	assert.Equal(t, extract.PipeMint, res.Fields[extract.FieldMint])

	res = extract.TokenBalance("UI: 1\nMint: abc\n")
	assert.Equal(t, "abc", res.Fields[extract.FieldMint])
}

func TestUsage(t *testing.T) {
	out := "Token expired, refreshing\n" +
		"Token refreshed\n" +
		"Token Usage Report (30d)\n" +
		"\n" +
		"Period: 30d\n" +
		"Storage (Uploads):\n" +
		"  Files: 3\n" +
		"  Cost: 1.5 PIPE\n" +
		"Bandwidth (Downloads):\n" +
		"  Bytes: 10 MiB\n" +
		"Total: 2.0 PIPE\n"

	res := extract.Usage(out)
	require.NotNil(t, res)
	assert.Equal(t, []string{
		"Period: 30d",
		"Storage (Uploads):",
		"  Files: 3",
		"  Cost: 1.5 PIPE",
		"Bandwidth (Downloads):",
		"  Bytes: 10 MiB",
		"Total: 2.0 PIPE",
	}, res.Report)

	assert.Equal(t, []domain.UsageSection{
		{Title: "", Lines: []string{"Period: 30d"}},
		{Title: extract.SectionStorage, Lines: []string{"  Files: 3", "  Cost: 1.5 PIPE"}},
		{Title: extract.SectionBandwidth, Lines: []string{"  Bytes: 10 MiB"}},
		{Title: extract.SectionTotal, Lines: []string{"2.0 PIPE"}},
	}, res.Sections)

	assert.Nil(t, extract.Usage("Token refreshed\n\n"))
}

func TestListing(t *testing.T) {
	out := "Found 2 uploads:\n" +
		"1: local='/tmp/a.txt', remote='a.txt', status='SUCCESS', msg='ok'\n" +
		"2: local='/tmp/b.bin', remote='b.bin', status='FAILED', msg='timeout'\n"

	res := extract.Listing(out)
	require.NotNil(t, res)
	assert.Equal(t, []domain.ListingEntry{
		{Local: "/tmp/a.txt", Remote: "a.txt", Status: "SUCCESS", Message: "ok"},
		{Local: "/tmp/b.bin", Remote: "b.bin", Status: "FAILED", Message: "timeout"},
	}, res.Listing)

	assert.Nil(t, extract.Listing("No uploads found"))
}

package extract

import (
	"strings"
	"unicode"

	"github.com/aretw0/pipedeck/pkg/domain"
)

const (
	scheme       = "https://"
	linkMarker   = "publicDownload"
	hashMarker   = "publicDownload?hash="
	previewParam = "preview=true"
)

// PublicLink extracts the links printed by create-public-link.
//
// The direct link is a trimmed line starting with the scheme that contains the
// publicDownload path without the preview parameter; the social link is the
// same with it. When both are present the result is structured. Otherwise
// the first line mentioning host with whitespace after its link provides a
// generic link, and nil is returned when neither search matches.
func PublicLink(output, host string) *domain.ExtractedResult {
	var direct, social, hash string

	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)

		if strings.HasPrefix(line, scheme) && strings.Contains(line, linkMarker) {
			if strings.Contains(line, previewParam) {
				social = line
			} else {
				direct = line
			}
		}
		if strings.Contains(line, hashMarker) {
			if h := hashFrom(line); h != "" {
				hash = h
			}
		}
	}

	if direct != "" && social != "" {
		return &domain.ExtractedResult{
			DirectLink:      direct,
			SocialMediaLink: social,
			DownloadHash:    hash,
		}
	}

	if link := fallbackLink(output, host); link != "" {
		return &domain.ExtractedResult{
			DirectLink:      link,
			SocialMediaLink: link,
			DownloadHash:    hash,
			Generic:         true,
		}
	}
	return nil
}

// hashFrom reads the value of the first hash= parameter on line.
func hashFrom(line string) string {
	i := strings.Index(line, "hash=")
	if i < 0 {
		return ""
	}
	v := line[i+len("hash="):]
	if end := strings.IndexFunc(v, isHashTerminator); end >= 0 {
		v = v[:end]
	}
	return strings.TrimRight(v, "`\"')]\r\n")
}

func isHashTerminator(r rune) bool {
	switch r {
	case '&', '`', '"', '\'', ')', ']':
		return true
	}
	return unicode.IsSpace(r)
}

// fallbackLink returns the scheme-prefixed token of the first line that
// mentions both the scheme and host and has whitespace after the token.
// The search is unanchored. A token that ends its line is not a link, and
// the scan moves on to the next line.
func fallbackLink(output, host string) string {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if !strings.Contains(line, scheme) || !strings.Contains(line, host) {
			continue
		}
		url := line[strings.Index(line, scheme):]
		end := strings.IndexFunc(url, unicode.IsSpace)
		if end < 0 {
			continue
		}
		return url[:end]
	}
	return ""
}

package domain

import (
	"net/url"
	"strings"
)

// DefaultPlaceholderDomains lists synthetic hosts that mark a citation as
// missing real data.
var DefaultPlaceholderDomains = []string{
	"example.com",
	"placeholder.com",
	"dummy.com",
	"fake.com",
	"test.com",
}

// PlaceholderClassifier decides, without any network access, whether a
// URL points at a synthetic domain.
type PlaceholderClassifier struct {
	domains []string
}

// NewPlaceholderClassifier builds a classifier over the given denylist.
// An empty list falls back to DefaultPlaceholderDomains.
func NewPlaceholderClassifier(domains []string) PlaceholderClassifier {
	if len(domains) == 0 {
		domains = DefaultPlaceholderDomains
	}
	lowered := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			lowered = append(lowered, d)
		}
	}
	return PlaceholderClassifier{domains: lowered}
}

// IsPlaceholder reports true for empty URLs, unparsable URLs, and URLs
// whose host contains any denylisted domain (case-insensitive substring).
func (c PlaceholderClassifier) IsPlaceholder(rawURL string) bool {
	if strings.TrimSpace(rawURL) == "" {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	return c.hostMatches(u.Host)
}

// MatchesDomain reports whether a non-empty, parsable URL sits on a
// denylisted domain. Empty or broken URLs are placeholders but are not
// repair candidates, since there is no domain to match.
func (c PlaceholderClassifier) MatchesDomain(rawURL string) bool {
	if strings.TrimSpace(rawURL) == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return c.hostMatches(u.Host)
}

func (c PlaceholderClassifier) hostMatches(host string) bool {
	host = strings.ToLower(host)
	for _, d := range c.domains {
		if strings.Contains(host, d) {
			return true
		}
	}
	return false
}

// IsPlaceholder classifies against DefaultPlaceholderDomains.
func IsPlaceholder(rawURL string) bool {
	return NewPlaceholderClassifier(nil).IsPlaceholder(rawURL)
}

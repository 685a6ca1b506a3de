// Package share holds the share-link rules common to the extractor and the
// fetch proxy: what counts as a valid ChatGPT share URL, and the alternate
// host the same snapshot is served from.
package share

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	// Host is the canonical share-page host.
	Host = "chatgpt.com"
	// AltHost serves the same share snapshots and sometimes succeeds when
	// the canonical host answers 403.
	AltHost = "chat.openai.com"
)

var linkRe = regexp.MustCompile(`^https://chatgpt\.com/share/[A-Za-z0-9\-]+/?(?:\?.*)?$`)

// Link is a validated share-page URL paired with an optional display name
// supplied by the caller (e.g. a roster entry).
type Link struct {
	URL  string
	Name string
}

// Valid reports whether raw matches the canonical share-link pattern.
func Valid(raw string) bool {
	return linkRe.MatchString(raw)
}

// Allowed reports whether raw is a share URL the proxy may fetch. It is
// looser than Valid: any https chatgpt.com/share/ path without credentials
// passes, matching what the proxy boundary accepts.
func Allowed(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "https" || u.Hostname() != Host {
		return false
	}
	if !strings.HasPrefix(u.Path, "/share/") {
		return false
	}
	if u.User != nil {
		return false
	}
	return true
}

// AltURL rewrites a chatgpt.com share URL to the alternate host. It returns
// "" when the URL is not a share link.
func AltURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() != Host || !strings.HasPrefix(u.Path, "/share/") {
		return ""
	}
	u.Host = AltHost
	return u.String()
}

// ID returns the share id, the last non-empty path segment of the link.
// It returns "" when no segment is present.
func ID(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

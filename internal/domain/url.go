package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

var schemeRe = regexp.MustCompile(`(?i)^https?://`)

// NormalizeURL trims raw, defaults the scheme to https and checks that the
// result is an absolute URL with a host.
func NormalizeURL(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", fmt.Errorf("%w: please enter a URL", ErrInvalidURL)
	}
	if !schemeRe.MatchString(v) {
		v = "https://" + v
	}
	u, err := url.Parse(v)
	if err != nil || u.Hostname() == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return u.String(), nil
}

// Hostname returns the lowercased host of rawurl.
func Hostname(rawurl string) (string, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return "", err
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidURL, rawurl)
	}
	return strings.ToLower(u.Hostname()), nil
}

// Registrable returns the eTLD+1 for host, or host itself when it has none
// (IP addresses, localhost).
func Registrable(host string) string {
	host = strings.ToLower(host)
	r, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return r
}

// ResultString renders the persisted result for a scan.
func ResultString(s Status, details string) string {
	if details == "" {
		return string(s)
	}
	return string(s) + " | " + details
}

// StatusFromResult recovers the status prefix of a persisted result string.
func StatusFromResult(result string) (Status, bool) {
	head, _, _ := strings.Cut(result, "|")
	switch s := Status(strings.TrimSpace(head)); s {
	case StatusSafe, StatusSuspicious, StatusMalicious:
		return s, true
	}
	return "", false
}

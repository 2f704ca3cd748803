package domain

import (
	"regexp"
	"strings"
)

// ValidateLink reports whether url is an acceptable link for platform. Only
// the shape of the URL is checked.
func ValidateLink(platform Platform, url string) bool {
	re := platform.pattern()
	if re == nil {
		return false
	}
	return re.MatchString(url)
}

var (
	schemePattern    = regexp.MustCompile(`(?i)^https?://`)
	wwwSchemePattern = regexp.MustCompile(`(?i)^https?://www\.`)
	domainPattern    = regexp.MustCompile(`(?i)^https?://(?:www\.)?(.+?)/`)
)

// FormatURL normalizes a link before it is persisted: a missing scheme
// becomes https://, and github.com links are canonicalized to
// https://www.github.com. Other hosts are left as they are.
func FormatURL(url string) string {
	if !schemePattern.MatchString(url) {
		url = "https://" + url
	}

	var host string
	if m := domainPattern.FindStringSubmatch(url); m != nil {
		host = m[1]
	}
	if !strings.EqualFold(host, "github.com") {
		return url
	}

	if !wwwSchemePattern.MatchString(url) {
		url = schemePattern.ReplaceAllString(url, "https://www.")
	}
	return url
}

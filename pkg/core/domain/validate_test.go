package domain

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestValidateLink(t *testing.T) {
	tests := []struct {
		name     string
		platform Platform
		url      string
		want     bool
	}{
		{"github bare", PlatformGitHub, "github.com/alice", true},
		{"github full", PlatformGitHub, "https://www.github.com/alice-dev_1/", true},
		{"github case insensitive", PlatformGitHub, "HTTPS://GitHub.com/Alice", true},
		{"github nested path", PlatformGitHub, "github.com/alice/repo", false},
		{"github dot in name", PlatformGitHub, "github.com/alice.x", false},
		{"instagram dots", PlatformInstagram, "instagram.com/some.user_", true},
		{"instagram dash", PlatformInstagram, "instagram.com/some-user", false},
		{"twitter", PlatformTwitter, "http://twitter.com/bob_1", true},
		{"twitter dot", PlatformTwitter, "twitter.com/bob.1", false},
		{"youtube handle", PlatformYouTube, "youtube.com/@chan-nel", true},
		{"youtube plain", PlatformYouTube, "www.youtube.com/channel_1/", true},
		{"facebook", PlatformFacebook, "facebook.com/first.last", true},
		{"facebook underscore", PlatformFacebook, "facebook.com/first_last", false},
		{"trailing garbage", PlatformGitHub, "github.com/alice?tab=repos", false},
		{"leading garbage", PlatformGitHub, "xgithub.com/alice", false},
		{"ftp scheme", PlatformGitHub, "ftp://github.com/alice", false},
		{"no user", PlatformGitHub, "github.com/", false},
		{"unknown platform", Platform("linkedin"), "linkedin.com/in/alice", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateLink(tt.platform, tt.url))
		})
	}
}

func TestValidateLinkRejectsOtherPlatformShapes(t *testing.T) {
	samples := map[Platform]string{
		PlatformFacebook:  "https://facebook.com/alice",
		PlatformInstagram: "https://instagram.com/alice",
		PlatformTwitter:   "https://twitter.com/alice",
		PlatformYouTube:   "https://youtube.com/alice",
		PlatformGitHub:    "https://github.com/alice",
	}

	for p, url := range samples {
		assert.True(t, ValidateLink(p, url), "%s should accept %s", p, url)
		for other, otherURL := range samples {
			if other == p {
				continue
			}
			assert.False(t, ValidateLink(p, otherURL), "%s should reject %s", p, otherURL)
		}
	}
}

func TestValidateLinkEmptyPlatform(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("unselected platform never validates", prop.ForAll(
		func(url string) bool {
			return !ValidateLink(PlatformNone, url)
		},
		gen.AnyString(),
	))
	properties.Property("unselected platform rejects well-formed links", prop.ForAll(
		func(user string) bool {
			return !ValidateLink(PlatformNone, "https://github.com/"+user)
		},
		gen.Identifier(),
	))

	properties.TestingRun(t)
}

func TestFormatURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"github.com/alice", "https://www.github.com/alice"},
		{"http://github.com/alice", "https://www.github.com/alice"},
		{"https://www.github.com/alice", "https://www.github.com/alice"},
		{"GitHub.com/alice/", "https://www.GitHub.com/alice/"},
		{"https://twitter.com/bob", "https://twitter.com/bob"},
		{"twitter.com/bob", "https://twitter.com/bob"},
		{"http://instagram.com/x", "http://instagram.com/x"},
		{"youtube.com/@chan", "https://youtube.com/@chan"},
		// No path after the host: the domain cannot be extracted and the
		// GitHub rewrite does not apply.
		{"github.com", "https://github.com"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatURL(tt.in))
		})
	}
}

func TestFormatURLIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	hosts := gen.OneConstOf("twitter.com", "instagram.com", "www.youtube.com", "facebook.com", "example.org")
	schemes := gen.OneConstOf("", "http://", "https://", "HTTPS://")

	properties.Property("format(format(url)) == format(url) for non-GitHub links", prop.ForAll(
		func(scheme, host, user string) bool {
			url := scheme + host + "/" + user
			once := FormatURL(url)
			return FormatURL(once) == once
		},
		schemes, hosts, gen.Identifier(),
	))
	properties.Property("format is idempotent for arbitrary strings", prop.ForAll(
		func(s string) bool {
			if strings.Contains(strings.ToLower(s), "github.com") {
				return true
			}
			once := FormatURL(s)
			return FormatURL(once) == once
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

package domain

import (
	"regexp"
	"strings"
)

// Platform is a supported social network. The zero value is the unselected platform.
type Platform string

const (
	PlatformNone      Platform = ""
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformYouTube   Platform = "youtube"
	PlatformGitHub    Platform = "github"
)

// Platforms lists every selectable platform in display order.
func Platforms() []Platform {
	return []Platform{
		PlatformFacebook,
		PlatformInstagram,
		PlatformTwitter,
		PlatformYouTube,
		PlatformGitHub,
	}
}

// ParsePlatform maps a stored platform string to a Platform.
func ParsePlatform(s string) (Platform, bool) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if p == PlatformNone {
		return PlatformNone, true
	}
	return p, p.Known()
}

// Known reports whether p is one of the five supported platforms.
func (p Platform) Known() bool {
	switch p {
	case PlatformFacebook, PlatformInstagram, PlatformTwitter, PlatformYouTube, PlatformGitHub:
		return true
	}
	return false
}

// Label is the display name shown on links.
func (p Platform) Label() string {
	switch p {
	case PlatformFacebook:
		return "Facebook"
	case PlatformInstagram:
		return "Instagram"
	case PlatformTwitter:
		return "Twitter"
	case PlatformYouTube:
		return "YouTube"
	case PlatformGitHub:
		return "GitHub"
	}
	return ""
}

// Icon is the asset path of the platform icon.
func (p Platform) Icon() string {
	if !p.Known() {
		return ""
	}
	return "/images/icons/icon-" + string(p) + ".svg"
}

var (
	githubPattern    = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?github\.com/[a-zA-Z0-9_-]+/?$`)
	instagramPattern = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?instagram\.com/[a-zA-Z0-9_.]+/?$`)
	twitterPattern   = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?twitter\.com/[a-zA-Z0-9_]+/?$`)
	youtubePattern   = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?youtube\.com/@?[a-zA-Z0-9_-]+/?$`)
	facebookPattern  = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?facebook\.com/[a-zA-Z0-9.]+/?$`)
)

func (p Platform) pattern() *regexp.Regexp {
	switch p {
	case PlatformFacebook:
		return facebookPattern
	case PlatformInstagram:
		return instagramPattern
	case PlatformTwitter:
		return twitterPattern
	case PlatformYouTube:
		return youtubePattern
	case PlatformGitHub:
		return githubPattern
	}
	return nil
}

// PlatformInfo is the catalogue entry served to clients.
type PlatformInfo struct {
	ID    Platform `json:"id"`
	Label string   `json:"label"`
	Icon  string   `json:"icon"`
}

func Catalogue() []PlatformInfo {
	platforms := Platforms()
	out := make([]PlatformInfo, 0, len(platforms))
	for _, p := range platforms {
		out = append(out, PlatformInfo{ID: p, Label: p.Label(), Icon: p.Icon()})
	}
	return out
}

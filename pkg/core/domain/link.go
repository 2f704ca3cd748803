package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxLinks bounds the number of links a profile can carry.
const MaxLinks = 5

// LinkEntry is one (platform, url) pair of a draft or of the remote collection.
type LinkEntry struct {
	Platform Platform `json:"platform"`
	URL      string   `json:"url"`
}

// LinkField names an editable field of a LinkEntry.
type LinkField string

const (
	FieldPlatform LinkField = "platform"
	FieldURL      LinkField = "url"
)

// Valid reports whether the entry may be published.
func (e LinkEntry) Valid() bool {
	return ValidateLink(e.Platform, e.URL)
}

const linkKeyPrefix = "link-"

// LinkKey returns the remote document key for a 0-based position.
func LinkKey(position int) string {
	return fmt.Sprintf("%s%d", linkKeyPrefix, position+1)
}

// ParseLinkKey returns the 0-based position encoded in a remote document key.
func ParseLinkKey(key string) (int, bool) {
	if !strings.HasPrefix(key, linkKeyPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(key, linkKeyPrefix))
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}

// LinksCollection is the remote collection path holding a user's links.
func LinksCollection(uid string) string {
	return "profiles/" + uid + "/links"
}

// PublicLink is a link decorated for rendering.
type PublicLink struct {
	Platform Platform `json:"platform"`
	Label    string   `json:"label"`
	Icon     string   `json:"icon"`
	URL      string   `json:"url"`
}

// PreviewLink is a draft entry decorated for the editor mockup. Href is only
// set when the entry validates.
type PreviewLink struct {
	Position int      `json:"position"`
	Platform Platform `json:"platform"`
	Label    string   `json:"label,omitempty"`
	Icon     string   `json:"icon,omitempty"`
	URL      string   `json:"url"`
	Href     string   `json:"href,omitempty"`
	Valid    bool     `json:"valid"`
}

func NewPublicLink(e LinkEntry) PublicLink {
	return PublicLink{
		Platform: e.Platform,
		Label:    e.Platform.Label(),
		Icon:     e.Platform.Icon(),
		URL:      e.URL,
	}
}

func NewPreviewLink(position int, e LinkEntry) PreviewLink {
	p := PreviewLink{
		Position: position,
		Platform: e.Platform,
		Label:    e.Platform.Label(),
		Icon:     e.Platform.Icon(),
		URL:      e.URL,
		Valid:    e.Valid(),
	}
	if p.Valid {
		p.Href = e.URL
	}
	return p
}

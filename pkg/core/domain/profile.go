package domain

import "time"

// Auth providers a profile can be created from.
const (
	ProviderGoogle = "google"
	ProviderEmail  = "email"
)

// Profile is the editable identity shown above a user's links. ID is the
// sequential public id used in shareable URLs; UserID is the auth subject.
type Profile struct {
	ID             int64     `json:"id"`
	UserID         string    `json:"user_id"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	ProfilePicture string    `json:"profile_picture"`
	Provider       string    `json:"provider"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Identity is what the auth provider knows about a signed-in user.
type Identity struct {
	UserID   string
	Email    string
	Name     string
	Picture  string
	Provider string
}

// PublicProfile is the shareable page payload.
type PublicProfile struct {
	ID             int64        `json:"id"`
	FullName       string       `json:"full_name"`
	Email          string       `json:"email"`
	ProfilePicture string       `json:"profile_picture"`
	Links          []PublicLink `json:"links"`
}

// Preview is the editor mockup payload: saved profile details plus the
// current draft.
type Preview struct {
	Profile *Profile      `json:"profile"`
	Links   []PreviewLink `json:"links"`
}

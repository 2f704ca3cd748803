package domain

// SessionState is the sync state of a user's editor session.
type SessionState string

const (
	// StateUnloaded: no remote snapshot has been received yet.
	StateUnloaded SessionState = "unloaded"
	// StateLoaded: the draft reflects the last remote snapshot, possibly with local edits.
	StateLoaded SessionState = "loaded"
	// StateSynced: the draft was saved and no edit happened since.
	StateSynced SessionState = "synced"
)

// SessionStatus is a read-only view of an editor session.
type SessionStatus struct {
	State SessionState `json:"state"`
	// Dirty is set by any local edit and cleared by a save or a remote reload.
	Dirty bool `json:"dirty"`
	// NoLinks distinguishes an empty remote collection from one not yet loaded.
	NoLinks bool `json:"no_links"`
	// PendingRemote is set when a remote snapshot was held back to protect unsaved edits.
	PendingRemote bool `json:"pending_remote"`
}

// SaveResult reports what a save wrote to the remote collection.
type SaveResult struct {
	Written []string `json:"written"`
	// Dropped holds the positions of entries that failed validation.
	Dropped []int `json:"dropped"`
}

package ports

import (
	"context"

	"github.com/wadjakorntonsri/go-devlinks/pkg/core/domain"
)

// ScratchStorage is disposable per-user key/value space holding editor drafts.
type ScratchStorage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Document is one stored document addressed by a hierarchical path
// (e.g. profiles/{uid}/links/link-1). ID is the last path segment.
type Document struct {
	Path string
	ID   string
	Data []byte
}

// SnapshotFunc receives the full contents of a collection after every change.
type SnapshotFunc func(docs []Document)

// DocumentStore is the remote source of truth for link collections.
type DocumentStore interface {
	Get(ctx context.Context, path string) (*Document, error)
	Set(ctx context.Context, path string, data []byte) error
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, collection string) ([]Document, error)
	// Subscribe delivers the current snapshot immediately and again after
	// every committed change to the collection. The returned func stops delivery.
	Subscribe(ctx context.Context, collection string, fn SnapshotFunc) (func(), error)
	// Refresh redelivers the collection to subscribers that missed a change,
	// such as one committed by another process.
	Refresh(ctx context.Context, collection string) error
	Batch() Batch
}

// Batch groups deletes and sets that commit atomically.
type Batch interface {
	Delete(path string)
	Set(path string, data []byte)
	Commit(ctx context.Context) error
}

// ProfileRepository defines storage operations for profiles
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByUserID(ctx context.Context, uid string) (*domain.Profile, error)
	GetByID(ctx context.Context, id int64) (*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
}

// ProfileService defines profile business logic
type ProfileService interface {
	EnsureProfile(ctx context.Context, identity domain.Identity) (*domain.Profile, error)
	GetProfile(ctx context.Context, uid string) (*domain.Profile, error)
	UpdateDetails(ctx context.Context, uid, fullName, email string) (*domain.Profile, error)
	GetPublicProfile(ctx context.Context, id int64) (*domain.PublicProfile, error)
	Preview(ctx context.Context, uid string, draft []domain.LinkEntry) (*domain.Preview, error)
}

// EditorService drives a user's link draft and its sync with the remote collection
type EditorService interface {
	Open(ctx context.Context, uid string) error
	Close(uid string)
	Session(uid string) domain.SessionStatus
	Draft(ctx context.Context, uid string) ([]domain.LinkEntry, error)
	AddLink(ctx context.Context, uid string) ([]domain.LinkEntry, bool, error)
	EditLink(ctx context.Context, uid string, position int, field domain.LinkField, value string) ([]domain.LinkEntry, error)
	RemoveLink(ctx context.Context, uid string, position int) ([]domain.LinkEntry, error)
	Save(ctx context.Context, uid string) (*domain.SaveResult, error)
	Reload(ctx context.Context, uid string) ([]domain.LinkEntry, error)
	Discard(ctx context.Context, uid string) error
	SavedLinks(ctx context.Context, uid string) ([]domain.LinkEntry, error)
}

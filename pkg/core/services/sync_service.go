package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/wadjakorntonsri/go-devlinks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-devlinks/pkg/ports"
)

// SyncService reconciles drafts with the remote per-user link collection.
type SyncService struct {
	docs   ports.DocumentStore
	logger *slog.Logger
}

func NewSyncService(docs ports.DocumentStore, logger *slog.Logger) *SyncService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncService{docs: docs, logger: logger.With("component", "sync")}
}

// Save replaces the remote collection of uid with the valid entries of
// draft, formatted and keyed by their draft position. Existing documents are
// deleted in the same batch so the replace commits atomically. Entries that
// fail validation are skipped and reported in the result.
func (s *SyncService) Save(ctx context.Context, uid string, draft []domain.LinkEntry) (*domain.SaveResult, error) {
	collection := domain.LinksCollection(uid)

	existing, err := s.docs.List(ctx, collection)
	if err != nil {
		s.logger.Error("failed listing remote links", "uid", uid, "error", err)
		return nil, fmt.Errorf("list remote links: %w", err)
	}

	batch := s.docs.Batch()
	for _, doc := range existing {
		batch.Delete(doc.Path)
	}

	result := &domain.SaveResult{Written: []string{}, Dropped: []int{}}
	for i, entry := range draft {
		if !domain.ValidateLink(entry.Platform, entry.URL) {
			result.Dropped = append(result.Dropped, i)
			continue
		}
		entry.URL = domain.FormatURL(entry.URL)
		data, err := json.Marshal(entry)
		if err != nil {
			return nil, fmt.Errorf("encode link %d: %w", i, err)
		}
		key := domain.LinkKey(i)
		batch.Set(collection+"/"+key, data)
		result.Written = append(result.Written, key)
	}

	if err := batch.Commit(ctx); err != nil {
		s.logger.Error("failed committing links", "uid", uid, "error", err)
		return nil, fmt.Errorf("replace remote links: %w", err)
	}

	s.logger.Debug("links saved", "uid", uid, "written", len(result.Written), "dropped", result.Dropped)
	return result, nil
}

// Load reads the remote collection once, ordered by position.
func (s *SyncService) Load(ctx context.Context, uid string) ([]domain.LinkEntry, error) {
	docs, err := s.docs.List(ctx, domain.LinksCollection(uid))
	if err != nil {
		return nil, fmt.Errorf("list remote links: %w", err)
	}
	return s.entriesFromDocuments(docs), nil
}

// Watch calls fn with the ordered remote entries now and after every change.
func (s *SyncService) Watch(ctx context.Context, uid string, fn func([]domain.LinkEntry)) (func(), error) {
	return s.docs.Subscribe(ctx, domain.LinksCollection(uid), func(docs []ports.Document) {
		fn(s.entriesFromDocuments(docs))
	})
}

// Refresh brings watchers of uid up to date with changes made elsewhere.
func (s *SyncService) Refresh(ctx context.Context, uid string) error {
	return s.docs.Refresh(ctx, domain.LinksCollection(uid))
}

func (s *SyncService) entriesFromDocuments(docs []ports.Document) []domain.LinkEntry {
	entries, skipped := EntriesFromDocuments(docs)
	for _, id := range skipped {
		s.logger.Warn("skipping unreadable link document", "id", id)
	}
	return entries
}

// EntriesFromDocuments rebuilds the ordered link sequence from remote
// documents using the numeric suffix of each link-{n} key. Documents may
// arrive in any order; gaps left by dropped entries are closed. Ids of
// documents that could not be read are returned separately.
func EntriesFromDocuments(docs []ports.Document) ([]domain.LinkEntry, []string) {
	type positioned struct {
		pos   int
		entry domain.LinkEntry
	}

	var skipped []string
	items := make([]positioned, 0, len(docs))
	for _, doc := range docs {
		pos, ok := domain.ParseLinkKey(doc.ID)
		if !ok {
			skipped = append(skipped, doc.ID)
			continue
		}
		var entry domain.LinkEntry
		if err := json.Unmarshal(doc.Data, &entry); err != nil {
			skipped = append(skipped, doc.ID)
			continue
		}
		items = append(items, positioned{pos: pos, entry: entry})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].pos < items[j].pos })

	entries := make([]domain.LinkEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, it.entry)
	}
	return entries, skipped
}

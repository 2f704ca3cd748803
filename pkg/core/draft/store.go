// Package draft holds the editable working copy of a user's links.
//
// The draft lives in scratch storage as a JSON array under the linkDialogs
// key and is disposable: it can always be rebuilt from the remote collection.
// Store is the only code that reads or writes that key.
package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/wadjakorntonsri/go-devlinks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-devlinks/pkg/ports"
)

const scratchKey = "linkDialogs"

// Store is a bounded, ordered sequence of link entries with positional edits.
type Store struct {
	mu      *sync.Mutex
	scratch ports.ScratchStorage
	key     string
}

// NewStore returns a store persisting under namespace's linkDialogs key. An
// empty namespace uses the bare key.
func NewStore(scratch ports.ScratchStorage, namespace string) *Store {
	key := scratchKey
	if namespace != "" {
		key = namespace + ":" + scratchKey
	}
	return &Store{mu: &sync.Mutex{}, scratch: scratch, key: key}
}

// Entries returns a copy of the current sequence.
func (s *Store) Entries(ctx context.Context) ([]domain.LinkEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx)
}

// Add appends an empty entry. It reports false without changing anything
// when the draft already holds domain.MaxLinks entries.
func (s *Store) Add(ctx context.Context) ([]domain.LinkEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read(ctx)
	if err != nil {
		return nil, false, err
	}
	if len(entries) >= domain.MaxLinks {
		return entries, false, nil
	}
	entries = append(entries, domain.LinkEntry{})
	if err := s.write(ctx, entries); err != nil {
		return nil, false, err
	}
	return entries, true, nil
}

// EditField overwrites one field of the entry at position.
func (s *Store) EditField(ctx context.Context, position int, field domain.LinkField, value string) ([]domain.LinkEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	if position < 0 || position >= len(entries) {
		return nil, fmt.Errorf("edit position %d of %d: %w", position, len(entries), domain.ErrIndexOutOfRange)
	}

	switch field {
	case domain.FieldPlatform:
		p, ok := domain.ParsePlatform(value)
		if !ok {
			return nil, fmt.Errorf("%q: %w", value, domain.ErrUnknownPlatform)
		}
		entries[position].Platform = p
	case domain.FieldURL:
		entries[position].URL = value
	default:
		return nil, fmt.Errorf("%q: %w", field, domain.ErrUnknownField)
	}

	if err := s.write(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Remove deletes the entry at position; later entries shift down by one.
func (s *Store) Remove(ctx context.Context, position int) ([]domain.LinkEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	if position < 0 || position >= len(entries) {
		return nil, fmt.Errorf("remove position %d of %d: %w", position, len(entries), domain.ErrIndexOutOfRange)
	}
	entries = append(entries[:position], entries[position+1:]...)

	if err := s.write(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Load replaces the whole sequence. Entries past domain.MaxLinks are dropped.
func (s *Store) Load(ctx context.Context, entries []domain.LinkEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(entries) > domain.MaxLinks {
		entries = entries[:domain.MaxLinks]
	}
	next := make([]domain.LinkEntry, len(entries))
	copy(next, entries)
	return s.write(ctx, next)
}

// Clear empties the draft and drops it from scratch storage.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.scratch.Remove(ctx, s.key); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}

// read treats a missing or unreadable scratch value as an empty draft.
func (s *Store) read(ctx context.Context) ([]domain.LinkEntry, error) {
	raw, found, err := s.scratch.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read draft: %w", err)
	}
	entries := []domain.LinkEntry{}
	if !found || raw == "" {
		return entries, nil
	}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return []domain.LinkEntry{}, nil
	}
	if len(entries) > domain.MaxLinks {
		entries = entries[:domain.MaxLinks]
	}
	return entries, nil
}

func (s *Store) write(ctx context.Context, entries []domain.LinkEntry) error {
	if entries == nil {
		entries = []domain.LinkEntry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.scratch.Set(ctx, s.key, string(raw)); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	return nil
}

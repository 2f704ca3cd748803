package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/wadjakorntonsri/go-devlinks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-devlinks/pkg/ports"
)

type ProfileService struct {
	repo   ports.ProfileRepository
	sync   *SyncService
	logger *slog.Logger
}

func NewProfileService(repo ports.ProfileRepository, syncService *SyncService, logger *slog.Logger) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{repo: repo, sync: syncService, logger: logger.With("component", "profile")}
}

// EnsureProfile returns the profile of the signed-in identity, creating it on
// first sign-in. A Google sign-in over an email-created profile takes over
// its name and picture.
func (s *ProfileService) EnsureProfile(ctx context.Context, identity domain.Identity) (*domain.Profile, error) {
	if identity.UserID == "" {
		return nil, fmt.Errorf("identity has no user id")
	}

	profile, err := s.repo.GetByUserID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}

	if profile == nil {
		now := time.Now().UTC()
		profile = &domain.Profile{
			UserID:         identity.UserID,
			FullName:       identity.Name,
			Email:          identity.Email,
			ProfilePicture: identity.Picture,
			Provider:       identity.Provider,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if profile.Provider == "" {
			profile.Provider = domain.ProviderEmail
		}
		if err := s.repo.Create(ctx, profile); err != nil {
			return nil, err
		}
		s.logger.Info("profile created", "uid", profile.UserID, "id", profile.ID, "provider", profile.Provider)
		return profile, nil
	}

	if identity.Provider == domain.ProviderGoogle && profile.Provider == domain.ProviderEmail {
		if identity.Name != "" {
			profile.FullName = identity.Name
		}
		if identity.Picture != "" {
			profile.ProfilePicture = identity.Picture
		}
		profile.Provider = domain.ProviderGoogle
		profile.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, profile); err != nil {
			return nil, err
		}
		s.logger.Info("profile linked to google", "uid", profile.UserID, "id", profile.ID)
	}

	return profile, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, uid string) (*domain.Profile, error) {
	profile, err := s.repo.GetByUserID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrProfileNotFound
	}
	return profile, nil
}

// UpdateDetails sets the display name and contact email. An empty email
// clears it; anything else must be a bare address.
func (s *ProfileService) UpdateDetails(ctx context.Context, uid, fullName, email string) (*domain.Profile, error) {
	profile, err := s.GetProfile(ctx, uid)
	if err != nil {
		return nil, err
	}

	email = strings.TrimSpace(email)
	if email != "" {
		addr, err := mail.ParseAddress(email)
		if err != nil || addr.Address != email {
			return nil, domain.ErrInvalidEmail
		}
	}

	profile.FullName = strings.TrimSpace(fullName)
	profile.Email = email
	profile.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// GetPublicProfile returns the shareable page of the profile with the given
// public id: its details plus the saved links.
func (s *ProfileService) GetPublicProfile(ctx context.Context, id int64) (*domain.PublicProfile, error) {
	profile, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrProfileNotFound
	}

	entries, err := s.sync.Load(ctx, profile.UserID)
	if err != nil {
		return nil, err
	}

	links := make([]domain.PublicLink, 0, len(entries))
	for _, e := range entries {
		links = append(links, domain.NewPublicLink(e))
	}

	return &domain.PublicProfile{
		ID:             profile.ID,
		FullName:       profile.FullName,
		Email:          profile.Email,
		ProfilePicture: profile.ProfilePicture,
		Links:          links,
	}, nil
}

// Preview combines the saved profile of uid with its current draft.
func (s *ProfileService) Preview(ctx context.Context, uid string, draft []domain.LinkEntry) (*domain.Preview, error) {
	profile, err := s.GetProfile(ctx, uid)
	if err != nil {
		return nil, err
	}

	links := make([]domain.PreviewLink, 0, len(draft))
	for i, e := range draft {
		links = append(links, domain.NewPreviewLink(i, e))
	}
	return &domain.Preview{Profile: profile, Links: links}, nil
}

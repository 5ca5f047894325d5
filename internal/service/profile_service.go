package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/models"
	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/repository"
)

const profileListCacheKey = "profiles:all"
const profileListCacheTTL = 5 * time.Minute

// ProfileService manages stored recipient profiles. The redis client is
// optional; without it the list cache is skipped.
type ProfileService struct {
	repo *repository.ProfileRepository
	rdb  *redis.Client
}

func NewProfileService(repo *repository.ProfileRepository, rdb *redis.Client) *ProfileService {
	return &ProfileService{repo: repo, rdb: rdb}
}

// Save creates or replaces a profile under the given label.
func (s *ProfileService) Save(ctx context.Context, label string, profile models.RecipientProfile) (*models.StoredProfile, error) {
	stored, err := s.repo.Save(label, profile)
	if err != nil {
		return nil, err
	}
	s.invalidateListCache(ctx)
	return stored, nil
}

// Update replaces an existing stored profile.
func (s *ProfileService) Update(ctx context.Context, id int, label string, profile models.RecipientProfile) (*models.StoredProfile, error) {
	stored, err := s.repo.Update(id, label, profile)
	if err != nil {
		return nil, err
	}
	s.invalidateListCache(ctx)
	return stored, nil
}

// Get retrieves one stored profile.
func (s *ProfileService) Get(_ context.Context, id int) (*models.StoredProfile, error) {
	return s.repo.GetByID(id)
}

// List returns all stored profiles, cached briefly.
func (s *ProfileService) List(ctx context.Context) ([]models.StoredProfile, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, profileListCacheKey).Result(); err == nil {
			var profiles []models.StoredProfile
			if json.Unmarshal([]byte(cached), &profiles) == nil {
				return profiles, nil
			}
		}
	}

	profiles, err := s.repo.List()
	if err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []models.StoredProfile{}
	}

	if s.rdb != nil {
		if data, err := json.Marshal(profiles); err == nil {
			s.rdb.Set(ctx, profileListCacheKey, data, profileListCacheTTL)
		}
	}
	return profiles, nil
}

// Delete removes a stored profile.
func (s *ProfileService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.invalidateListCache(ctx)
	return nil
}

func (s *ProfileService) invalidateListCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, profileListCacheKey).Err(); err != nil {
		slog.Warn("failed to invalidate profile list cache", "error", err)
	}
}

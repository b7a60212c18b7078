package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/akarpovs/viewtube/internal/cache"
	"github.com/akarpovs/viewtube/internal/logging"
	"github.com/akarpovs/viewtube/internal/server/models"
	"github.com/akarpovs/viewtube/internal/server/repositories/repomanager"
)

// ChannelService serves the derived-graph read model: channel summaries and
// watch-history hydration. It only touches the read path; subscription edges
// and history entries are written elsewhere.
type ChannelService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	cache    *cache.Cache
	cacheTTL time.Duration
	log      logging.Logger
}

// NewChannelService constructs a ChannelService. cache may be nil, which
// disables profile caching.
func NewChannelService(db *sql.DB, repos repomanager.RepositoryManager, c *cache.Cache, cacheTTL time.Duration, log logging.Logger) *ChannelService {
	return &ChannelService{db: db, repos: repos, cache: c, cacheTTL: cacheTTL, log: log}
}

func profileCacheKey(viewerID, handle string) string {
	return fmt.Sprintf("channel-profile:%s:%s", handle, viewerID)
}

// GetChannelProfile returns the channel summary for handle as seen by
// viewerID. Cache errors are logged and fall through to the store; a stale
// entry can outlive an edge change by at most the configured TTL.
func (s *ChannelService) GetChannelProfile(ctx context.Context, viewerID, handle string) (*models.ChannelProfile, error) {
	key := profileCacheKey(viewerID, handle)

	if s.cache != nil {
		profile := &models.ChannelProfile{}
		hit, err := s.cache.Get(ctx, key, profile)
		if err != nil {
			s.log.Warn(ctx, "channel profile cache read failed", "error", err.Error())
		} else if hit {
			return profile, nil
		}
	}

	profile, err := s.repos.Channels(s.db).GetChannelProfile(ctx, viewerID, handle)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, profile, s.cacheTTL); err != nil {
			s.log.Warn(ctx, "channel profile cache write failed", "error", err.Error())
		}
	}
	return profile, nil
}

// GetWatchHistory returns the viewer's hydrated watch history in stored
// order.
func (s *ChannelService) GetWatchHistory(ctx context.Context, viewerID string) ([]*models.VideoView, error) {
	history, err := s.repos.Channels(s.db).GetWatchHistory(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("error loading watch history: %w", err)
	}
	return history, nil
}

// Package channels declares the read-side repository for the derived graph:
// channel summaries over subscription edges and watch-history hydration.
// Edges and history entries are written by collaborators outside this
// service; this package only reads them.
package channels

import (
	"context"

	"github.com/akarpovs/viewtube/internal/server/models"
)

// Repository defines the aggregation read path.
type Repository interface {
	// GetChannelProfile returns the aggregated view of the account matching
	// handle: subscriber count (incoming edges), subscribed-to count
	// (outgoing edges) and whether viewerID is among the channel's
	// subscribers. Returns common.ErrNotFound if no account matches.
	GetChannelProfile(ctx context.Context, viewerID, handle string) (*models.ChannelProfile, error)

	// GetWatchHistory returns the viewer's watch history in stored order,
	// each entry hydrated with its video record and a single minimal owner
	// projection.
	GetWatchHistory(ctx context.Context, viewerID string) ([]*models.VideoView, error)
}

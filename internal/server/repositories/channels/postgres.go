package channels

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akarpovs/viewtube/internal/common"
	"github.com/akarpovs/viewtube/internal/dbx"
	"github.com/akarpovs/viewtube/internal/server/models"
)

// PostgresRepository implements Repository over dbx.Querier.
type PostgresRepository struct {
	db dbx.Querier
}

func NewPostgresRepository(db dbx.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetChannelProfile(ctx context.Context, viewerID, handle string) (*models.ChannelProfile, error) {
	query := `
		SELECT a.id, a.handle, a.email, a.display_name, a.avatar_url, a.cover_image_url,
			(SELECT count(*) FROM subscriptions s WHERE s.channel_id = a.id) AS subscribers,
			(SELECT count(*) FROM subscriptions s WHERE s.subscriber_id = a.id) AS subscribed_to,
			EXISTS (
				SELECT 1 FROM subscriptions s
				WHERE s.channel_id = a.id AND s.subscriber_id = $2
			) AS is_subscribed
		FROM accounts a
		WHERE a.handle = lower(trim($1))`

	p := &models.ChannelProfile{}
	err := r.db.QueryRowContext(ctx, query, handle, viewerID).Scan(
		&p.ID, &p.Handle, &p.Email, &p.DisplayName, &p.AvatarURL, &p.CoverImageURL,
		&p.SubscribersCount, &p.SubscribedToCount, &p.IsSubscribed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) GetWatchHistory(ctx context.Context, viewerID string) ([]*models.VideoView, error) {
	query := `
		SELECT v.id, v.title, v.description, v.thumbnail_url, v.video_file_url,
			v.duration, v.views, v.created_at,
			o.handle, o.display_name, o.avatar_url
		FROM watch_history h
		JOIN videos v ON v.id = h.video_id
		JOIN accounts o ON o.id = v.owner_id
		WHERE h.account_id = $1
		ORDER BY h.position`

	rows, err := r.db.QueryContext(ctx, query, viewerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var history []*models.VideoView
	for rows.Next() {
		view := &models.VideoView{}
		err := rows.Scan(&view.ID, &view.Title, &view.Description, &view.ThumbnailURL,
			&view.VideoFileURL, &view.Duration, &view.Views, &view.CreatedAt,
			&view.Owner.Handle, &view.Owner.DisplayName, &view.Owner.AvatarURL)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		history = append(history, view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return history, nil
}

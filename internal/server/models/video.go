package models

import "time"

// Video is a video record as read by the watch-history hydration. Videos are
// written by collaborators outside this service.
type Video struct {
	ID           string
	OwnerID      string
	Title        string
	Description  string
	ThumbnailURL string
	VideoFileURL string
	Duration     float64
	Views        int64
	CreatedAt    time.Time
}

// VideoOwner is the minimal owner projection attached to a watch-history
// entry. Exactly one per video.
type VideoOwner struct {
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatar"`
}

// VideoView is one hydrated watch-history entry.
type VideoView struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	ThumbnailURL string     `json:"thumbnail"`
	VideoFileURL string     `json:"videoFile"`
	Duration     float64    `json:"duration"`
	Views        int64      `json:"views"`
	CreatedAt    time.Time  `json:"createdAt"`
	Owner        VideoOwner `json:"owner"`
}

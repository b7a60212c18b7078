// Package models holds the domain types shared by repositories, services and
// the HTTP layer.
package models

import "time"

// Account is the stored account record. Handle and Email are persisted
// normalized (lowercased, trimmed) and are globally unique. PasswordHash never
// holds plaintext past the mutation boundary; RefreshToken holds the single
// currently-valid refresh token, or "" when the account has no session.
type Account struct {
	ID            string
	Handle        string
	Email         string
	DisplayName   string
	PasswordHash  string
	AvatarURL     string
	CoverImageURL string
	RefreshToken  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Profile is the public projection of an Account. It is what leaves the
// service: no password hash, no refresh token.
type Profile struct {
	ID            string    `json:"id"`
	Handle        string    `json:"handle"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"displayName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// PublicProfile converts an Account to its public projection.
func (a *Account) PublicProfile() *Profile {
	return &Profile{
		ID:            a.ID,
		Handle:        a.Handle,
		Email:         a.Email,
		DisplayName:   a.DisplayName,
		AvatarURL:     a.AvatarURL,
		CoverImageURL: a.CoverImageURL,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// ChannelProfile is the aggregated view of an account seen as a channel.
type ChannelProfile struct {
	ID                string `json:"id"`
	Handle            string `json:"handle"`
	Email             string `json:"email"`
	DisplayName       string `json:"displayName"`
	AvatarURL         string `json:"avatar"`
	CoverImageURL     string `json:"coverImage,omitempty"`
	SubscribersCount  int64  `json:"subscribersCount"`
	SubscribedToCount int64  `json:"channelsSubscribedToCount"`
	IsSubscribed      bool   `json:"isSubscribed"`
}

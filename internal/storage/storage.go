// Package storage keeps users and content drafts in memory. Nothing
// survives a restart; the interface exists so a persistent backend can
// replace the maps without touching the handlers.
package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

type User struct {
	ID                   string    `json:"id"`
	WalletAddress        string    `json:"walletAddress"`
	FarcasterFID         string    `json:"farcasterFid,omitempty"`
	FarcasterUsername    string    `json:"farcasterUsername,omitempty"`
	FarcasterDisplayName string    `json:"farcasterDisplayName,omitempty"`
	FarcasterAvatar      string    `json:"farcasterAvatar,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
}

type SelectedImage struct {
	URL          string `json:"url"`
	Alt          string `json:"alt"`
	Photographer string `json:"photographer"`
	Source       string `json:"source"`
}

type Draft struct {
	ID                string         `json:"id"`
	UserID            string         `json:"userId"`
	Topic             string         `json:"topic"`
	ContentType       string         `json:"contentType"`
	Tone              string         `json:"tone"`
	GeneratedContent  string         `json:"generatedContent,omitempty"`
	SelectedImage     *SelectedImage `json:"selectedImage,omitempty"`
	IsPublished       bool           `json:"isPublished"`
	FarcasterCastHash string         `json:"farcasterCastHash,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// NewUser carries the caller-supplied fields of a user to be created.
type NewUser struct {
	WalletAddress        string
	FarcasterFID         string
	FarcasterUsername    string
	FarcasterDisplayName string
	FarcasterAvatar      string
}

type NewDraft struct {
	UserID           string
	Topic            string
	ContentType      string
	Tone             string
	GeneratedContent string
	SelectedImage    *SelectedImage
}

// Update structs use pointers so absent fields stay untouched while empty
// strings can still clear a value.
type UserUpdate struct {
	FarcasterFID         *string
	FarcasterUsername    *string
	FarcasterDisplayName *string
	FarcasterAvatar      *string
}

type DraftUpdate struct {
	Topic             *string
	ContentType       *string
	Tone              *string
	GeneratedContent  *string
	SelectedImage     *SelectedImage
	IsPublished       *bool
	FarcasterCastHash *string
}

type Store interface {
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByWallet(ctx context.Context, walletAddress string) (User, error)
	CreateUser(ctx context.Context, u NewUser) (User, error)
	GetOrCreateUser(ctx context.Context, u NewUser) (User, error)
	UpdateUser(ctx context.Context, id string, upd UserUpdate) (User, error)

	GetDraft(ctx context.Context, id string) (Draft, error)
	DraftsByUser(ctx context.Context, userID string) ([]Draft, error)
	CreateDraft(ctx context.Context, d NewDraft) (Draft, error)
	UpdateDraft(ctx context.Context, id string, upd DraftUpdate) (Draft, error)
	DeleteDraft(ctx context.Context, id string) error
}

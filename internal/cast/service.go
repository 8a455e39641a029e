// Package cast prepares drafts for manual hand-off to Warpcast's compose
// flow. Nothing is auto-posted: the service builds the compose URL and the
// user submits it themselves.
package cast

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"

	"castforge/internal/storage"
	"castforge/internal/upstream/farcaster"
)

const (
	composeBaseURL = "https://warpcast.com/~/compose"

	// demoFID stands in when the user has not linked a Farcaster account,
	// so the compose flow can still be exercised.
	demoFID = "123456"
)

var (
	ErrDraftNotFound = errors.New("draft not found")
	ErrUserNotFound  = errors.New("user not found")
)

type IdentityClient interface {
	ProfileByFID(ctx context.Context, fid string) (json.RawMessage, error)
	UserByWallet(ctx context.Context, walletAddress string) (*farcaster.User, error)
}

type Preparation struct {
	CastContent  string
	FarcasterURL string
	Ready        bool
}

type Service struct {
	store  storage.Store
	client IdentityClient
	logger *slog.Logger
}

func New(store storage.Store, client IdentityClient, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, client: client, logger: logger}
}

// PrepareCast builds the Warpcast compose URL for a draft and resets its
// publish state; the cast hash is filled in later when the user reports it.
func (s *Service) PrepareCast(ctx context.Context, draftID, imageURL string) (Preparation, error) {
	draft, err := s.store.GetDraft(ctx, draftID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Preparation{}, ErrDraftNotFound
		}
		return Preparation{}, err
	}

	user, err := s.store.GetUser(ctx, draft.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Preparation{}, ErrUserNotFound
		}
		return Preparation{}, err
	}

	fid := user.FarcasterFID
	if fid == "" {
		fid = demoFID
		s.logger.Info("demo mode: using placeholder FID for casting", "draft_id", draftID)
	}
	s.logger.Info("preparing cast", "fid", fid, "draft_id", draftID)

	composeURL := composeBaseURL + "?text=" + url.QueryEscape(draft.GeneratedContent)
	if imageURL != "" {
		composeURL += "&embeds[]=" + url.QueryEscape(imageURL)
	}

	published := false
	emptyHash := ""
	if _, err := s.store.UpdateDraft(ctx, draftID, storage.DraftUpdate{
		IsPublished:       &published,
		FarcasterCastHash: &emptyHash,
	}); err != nil {
		return Preparation{}, err
	}

	return Preparation{
		CastContent:  draft.GeneratedContent,
		FarcasterURL: composeURL,
		Ready:        true,
	}, nil
}

func (s *Service) Profile(ctx context.Context, fid string) (json.RawMessage, error) {
	return s.client.ProfileByFID(ctx, fid)
}

// UserByWallet returns (nil, nil) when the wallet has no verified Farcaster
// account.
func (s *Service) UserByWallet(ctx context.Context, walletAddress string) (*farcaster.User, error) {
	return s.client.UserByWallet(ctx, walletAddress)
}

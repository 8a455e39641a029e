package farcaster

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type ObserverFunc func(endpoint string, status int, duration time.Duration)

type Option func(*Client)

// Client talks to two hosts: a Farcaster hub for profile data and the
// Warpcast API for wallet-to-identity verification lookups.
type Client struct {
	hubURL      string
	warpcastURL string
	httpClient  *http.Client
	observer    ObserverFunc
}

type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("farcaster request failed with status %d", e.StatusCode)
}

// User is the subset of the Warpcast verification response the app keeps.
type User struct {
	FID         int64  `json:"fid"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	PfpURL      string `json:"pfpUrl"`
}

func WithObserver(observer ObserverFunc) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

func New(hubURL, warpcastURL string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		hubURL:      strings.TrimRight(hubURL, "/"),
		warpcastURL: strings.TrimRight(warpcastURL, "/"),
		httpClient:  httpClient,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// ProfileByFID returns the hub's userDataByFid payload untouched; the app
// passes it straight through to the UI.
func (c *Client) ProfileByFID(ctx context.Context, fid string) (json.RawMessage, error) {
	started := time.Now()
	statusCode := 0
	defer func() { c.observe("user_data_by_fid", statusCode, time.Since(started)) }()

	u := c.hubURL + "/v1/userDataByFid?fid=" + url.QueryEscape(fid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{StatusCode: resp.StatusCode, Body: truncateBody(string(body))}
	}
	return json.RawMessage(body), nil
}

// UserByWallet resolves a wallet address to a Farcaster identity. A Warpcast
// 404 means the wallet has no verified account and is reported as (nil, nil)
// so callers can proceed without an identity.
func (c *Client) UserByWallet(ctx context.Context, walletAddress string) (*User, error) {
	started := time.Now()
	statusCode := 0
	defer func() { c.observe("user_by_verification", statusCode, time.Since(started)) }()

	u := c.warpcastURL + "/v2/user-by-verification?address=" + url.QueryEscape(walletAddress)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{StatusCode: resp.StatusCode, Body: truncateBody(string(body))}
	}

	var parsed struct {
		Result struct {
			User struct {
				FID         int64  `json:"fid"`
				Username    string `json:"username"`
				DisplayName string `json:"displayName"`
				Pfp         struct {
					URL string `json:"url"`
				} `json:"pfp"`
			} `json:"user"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("invalid warpcast response: %w", err)
	}

	return &User{
		FID:         parsed.Result.User.FID,
		Username:    parsed.Result.User.Username,
		DisplayName: parsed.Result.User.DisplayName,
		PfpURL:      parsed.Result.User.Pfp.URL,
	}, nil
}

func (c *Client) observe(endpoint string, status int, duration time.Duration) {
	if c.observer != nil {
		c.observer(endpoint, status, duration)
	}
}

func truncateBody(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 400 {
		return s
	}
	return s[:400] + "..."
}

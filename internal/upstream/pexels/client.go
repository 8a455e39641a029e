package pexels

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type ObserverFunc func(endpoint string, status int, duration time.Duration)

type Option func(*Client)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	observer   ObserverFunc
}

type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("pexels request failed with status %d", e.StatusCode)
}

type Photo struct {
	ID              int      `json:"id"`
	Width           int      `json:"width"`
	Height          int      `json:"height"`
	URL             string   `json:"url"`
	Photographer    string   `json:"photographer"`
	PhotographerURL string   `json:"photographer_url"`
	AvgColor        string   `json:"avg_color"`
	Src             PhotoSrc `json:"src"`
	Alt             string   `json:"alt"`
}

type PhotoSrc struct {
	Original  string `json:"original"`
	Large2x   string `json:"large2x"`
	Large     string `json:"large"`
	Medium    string `json:"medium"`
	Small     string `json:"small"`
	Portrait  string `json:"portrait"`
	Landscape string `json:"landscape"`
	Tiny      string `json:"tiny"`
}

// BestURL prefers the flavors the UI renders directly.
func (p Photo) BestURL() string {
	switch {
	case p.Src.Medium != "":
		return p.Src.Medium
	case p.Src.Landscape != "":
		return p.Src.Landscape
	default:
		return p.Src.Original
	}
}

// FeaturedURL prefers the landscape crop, which the curated grid renders in
// wide tiles.
func (p Photo) FeaturedURL() string {
	switch {
	case p.Src.Landscape != "":
		return p.Src.Landscape
	case p.Src.Medium != "":
		return p.Src.Medium
	default:
		return p.Src.Original
	}
}

type SearchParams struct {
	Query       string
	PerPage     int
	Page        int
	Orientation string
	Size        string
	Color       string
}

type SearchResult struct {
	Page         int     `json:"page"`
	PerPage      int     `json:"per_page"`
	Photos       []Photo `json:"photos"`
	TotalResults int     `json:"total_results"`
}

func WithObserver(observer ObserverFunc) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

func New(baseURL, apiKey string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: httpClient,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *Client) Search(ctx context.Context, params SearchParams) (SearchResult, error) {
	started := time.Now()
	statusCode := 0
	defer func() { c.observe("search", statusCode, time.Since(started)) }()

	values := url.Values{}
	values.Set("query", params.Query)
	values.Set("per_page", strconv.Itoa(params.PerPage))
	values.Set("page", strconv.Itoa(params.Page))
	if params.Orientation != "" {
		values.Set("orientation", params.Orientation)
	}
	if params.Size != "" {
		values.Set("size", params.Size)
	}
	if params.Color != "" {
		values.Set("color", params.Color)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+values.Encode(), nil)
	if err != nil {
		return SearchResult{}, err
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SearchResult{}, err
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return SearchResult{}, err
	}

	if resp.StatusCode != http.StatusOK {
		return SearchResult{}, &Error{StatusCode: resp.StatusCode, Body: truncateBody(string(body))}
	}

	var result SearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return SearchResult{}, fmt.Errorf("invalid pexels response: %w", err)
	}
	return result, nil
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

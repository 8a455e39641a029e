package images

import (
	"context"
	"time"

	"castforge/internal/imagecache"
	"castforge/internal/upstream/pexels"
)

const (
	defaultPerPage = 6
	maxPerPage     = 30

	// featuredPoolSize leaves enough photos per category to filter for
	// landscape orientation.
	featuredPoolSize = 14
	featuredTake     = 2
)

var featuredCategories = []string{
	"landscape scenery nature",
	"cryptocurrency bitcoin blockchain",
	"nft gaming metaverse",
}

var featuredLabels = []string{"landscape", "crypto", "nft/gaming"}

// CategoryLabels returns the display names of the featured categories.
func CategoryLabels() []string {
	labels := make([]string, len(featuredLabels))
	copy(labels, featuredLabels)
	return labels
}

type Searcher interface {
	Search(ctx context.Context, params pexels.SearchParams) (pexels.SearchResult, error)
}

type CacheObserverFunc func(hit bool)

type Option func(*Service)

type Image struct {
	ID           int
	URL          string
	Alt          string
	Photographer string
	Color        string
}

type SearchInput struct {
	Query       string
	PerPage     int
	Page        int
	Orientation string
	Size        string
	Color       string
}

type SearchResult struct {
	Images       []Image
	Photos       []pexels.Photo
	Page         int
	PerPage      int
	TotalResults int
}

type FeaturedResult struct {
	Images []Image
	TS     int64
}

// Service wraps the Pexels client with the app's two read paths: free-form
// search and the hourly curated featured set.
type Service struct {
	client        Searcher
	cache         *imagecache.Cache
	cacheObserver CacheObserverFunc
	now           func() time.Time
}

func WithCacheObserver(observer CacheObserverFunc) Option {
	return func(s *Service) {
		s.cacheObserver = observer
	}
}

func New(client Searcher, cache *imagecache.Cache, opts ...Option) *Service {
	s := &Service{
		client: client,
		cache:  cache,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) Search(ctx context.Context, in SearchInput) (SearchResult, error) {
	perPage := in.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	page := in.Page
	if page < 1 {
		page = 1
	}

	result, err := s.client.Search(ctx, pexels.SearchParams{
		Query:       in.Query,
		PerPage:     perPage,
		Page:        page,
		Orientation: in.Orientation,
		Size:        in.Size,
		Color:       in.Color,
	})
	if err != nil {
		return SearchResult{}, err
	}

	return SearchResult{
		Images:       flatten(result.Photos, len(result.Photos), pexels.Photo.BestURL),
		Photos:       result.Photos,
		Page:         result.Page,
		PerPage:      result.PerPage,
		TotalResults: result.TotalResults,
	}, nil
}

// Featured assembles two photos per fixed category, landscape preferred,
// each category cached per hour bucket.
func (s *Service) Featured(ctx context.Context) (FeaturedResult, error) {
	now := s.now()
	bucket := imagecache.HourBucket(now)

	images := make([]Image, 0, len(featuredCategories)*featuredTake)
	for _, category := range featuredCategories {
		picked, err := s.featuredCategory(ctx, category, bucket)
		if err != nil {
			return FeaturedResult{}, err
		}
		images = append(images, picked...)
	}

	return FeaturedResult{Images: images, TS: now.UnixMilli()}, nil
}

func (s *Service) featuredCategory(ctx context.Context, category string, bucket int64) ([]Image, error) {
	key := imagecache.Key(category, bucket)
	if cached, ok := s.cache.Get(key); ok {
		if picked, ok := cached.([]Image); ok {
			s.observeCache(true)
			return picked, nil
		}
	}
	s.observeCache(false)

	result, err := s.client.Search(ctx, pexels.SearchParams{
		Query:   category,
		PerPage: featuredPoolSize,
		Page:    1,
	})
	if err != nil {
		return nil, err
	}

	landscape := make([]pexels.Photo, 0, len(result.Photos))
	for _, p := range result.Photos {
		if p.Width >= p.Height {
			landscape = append(landscape, p)
		}
	}
	pool := result.Photos
	if len(landscape) >= featuredTake {
		pool = landscape
	}

	picked := flatten(pool, featuredTake, pexels.Photo.FeaturedURL)
	s.cache.Put(key, picked)
	return picked, nil
}

func (s *Service) observeCache(hit bool) {
	if s.cacheObserver != nil {
		s.cacheObserver(hit)
	}
}

// flatten normalizes photos for direct UI rendering, dropping any without a
// usable URL. pick chooses the src flavor per call site: search and featured
// prefer different crops.
func flatten(photos []pexels.Photo, limit int, pick func(pexels.Photo) string) []Image {
	images := make([]Image, 0, limit)
	for _, p := range photos {
		if len(images) == limit {
			break
		}
		url := pick(p)
		if url == "" {
			continue
		}
		images = append(images, Image{
			ID:           p.ID,
			URL:          url,
			Alt:          p.Alt,
			Photographer: p.Photographer,
			Color:        p.AvgColor,
		})
	}
	return images
}

package config

import (
	"errors"
	"strings"
	"time"

	cenv "github.com/caarlos0/env/v11"
)

type Config struct {
	ListenAddr      string
	GeminiBaseURL   string
	GeminiAPIKey    string
	GeminiModel     string
	PexelsBaseURL   string
	PexelsAPIKey    string
	FarcasterHubURL string
	WarpcastAPIURL  string
	RequestTimeout  time.Duration
	GenerateTimeout time.Duration
	ImageCacheTTL   time.Duration
	ImageCacheSize  int
	GenerateRate    string
	LogLevel        string
}

type envConfig struct {
	ListenAddr             string `env:"LISTEN_ADDR" envDefault:":8080"`
	GeminiBaseURL          string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	GeminiAPIKey           string `env:"GEMINI_API_KEY"`
	GeminiModel            string `env:"GEMINI_MODEL" envDefault:"models/gemini-1.5-flash"`
	PexelsBaseURL          string `env:"PEXELS_BASE_URL" envDefault:"https://api.pexels.com/v1"`
	PexelsAPIKey           string `env:"PEXELS_API_KEY"`
	FarcasterHubURL        string `env:"FARCASTER_HUB_URL" envDefault:"https://hub.farcaster.xyz"`
	WarpcastAPIURL         string `env:"WARPCAST_API_URL" envDefault:"https://api.warpcast.com"`
	RequestTimeoutSeconds  int    `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"25"`
	GenerateTimeoutSeconds int    `env:"GENERATE_TIMEOUT_SECONDS" envDefault:"20"`
	ImageCacheTTLSeconds   int    `env:"IMAGE_CACHE_TTL_SECONDS" envDefault:"3600"`
	ImageCacheCapacity     int    `env:"IMAGE_CACHE_CAPACITY" envDefault:"64"`
	GenerateRate           string `env:"GENERATE_RATE_LIMIT" envDefault:"30-M"`
	LogLevel               string `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() (Config, error) {
	var raw envConfig
	if err := cenv.Parse(&raw); err != nil {
		return Config{}, err
	}

	cfg := Config{
		ListenAddr:      strings.TrimSpace(raw.ListenAddr),
		GeminiBaseURL:   strings.TrimRight(strings.TrimSpace(raw.GeminiBaseURL), "/"),
		GeminiAPIKey:    strings.TrimSpace(raw.GeminiAPIKey),
		GeminiModel:     strings.TrimSpace(raw.GeminiModel),
		PexelsBaseURL:   strings.TrimRight(strings.TrimSpace(raw.PexelsBaseURL), "/"),
		PexelsAPIKey:    strings.TrimSpace(raw.PexelsAPIKey),
		FarcasterHubURL: strings.TrimRight(strings.TrimSpace(raw.FarcasterHubURL), "/"),
		WarpcastAPIURL:  strings.TrimRight(strings.TrimSpace(raw.WarpcastAPIURL), "/"),
		RequestTimeout:  time.Duration(raw.RequestTimeoutSeconds) * time.Second,
		GenerateTimeout: time.Duration(raw.GenerateTimeoutSeconds) * time.Second,
		ImageCacheTTL:   time.Duration(raw.ImageCacheTTLSeconds) * time.Second,
		ImageCacheSize:  raw.ImageCacheCapacity,
		GenerateRate:    strings.TrimSpace(raw.GenerateRate),
		LogLevel:        strings.ToLower(strings.TrimSpace(raw.LogLevel)),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate does not require the upstream API keys: a missing key is reported
// per request as 503 rather than preventing startup.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("LISTEN_ADDR must not be empty")
	}
	if c.GeminiBaseURL == "" {
		return errors.New("GEMINI_BASE_URL must not be empty")
	}
	if c.GeminiModel == "" {
		return errors.New("GEMINI_MODEL must not be empty")
	}
	if c.PexelsBaseURL == "" {
		return errors.New("PEXELS_BASE_URL must not be empty")
	}
	if c.FarcasterHubURL == "" {
		return errors.New("FARCASTER_HUB_URL must not be empty")
	}
	if c.WarpcastAPIURL == "" {
		return errors.New("WARPCAST_API_URL must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT_SECONDS must be > 0")
	}
	if c.GenerateTimeout <= 0 {
		return errors.New("GENERATE_TIMEOUT_SECONDS must be > 0")
	}
	if c.ImageCacheTTL <= 0 {
		return errors.New("IMAGE_CACHE_TTL_SECONDS must be > 0")
	}
	if c.ImageCacheSize <= 0 {
		return errors.New("IMAGE_CACHE_CAPACITY must be > 0")
	}
	if c.GenerateRate == "" {
		return errors.New("GENERATE_RATE_LIMIT must not be empty")
	}
	return nil
}

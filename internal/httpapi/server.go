package httpapi

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"castforge/internal/cast"
	"castforge/internal/config"
	"castforge/internal/generate"
	"castforge/internal/images"
	"castforge/internal/model"
	"castforge/internal/storage"
	"castforge/internal/upstream/farcaster"
	"castforge/internal/upstream/gemini"
	"castforge/internal/upstream/pexels"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	limiter "github.com/ulule/limiter/v3"
	limitermw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	limitermem "github.com/ulule/limiter/v3/drivers/store/memory"
)

type GenerateService interface {
	Generate(ctx context.Context, req generate.Request) (generate.Result, error)
}

type ImageService interface {
	Search(ctx context.Context, in images.SearchInput) (images.SearchResult, error)
	Featured(ctx context.Context) (images.FeaturedResult, error)
}

type ContentService interface {
	GenerateDraftContent(ctx context.Context, req generate.ContentRequest) (string, error)
}

type CastService interface {
	PrepareCast(ctx context.Context, draftID, imageURL string) (cast.Preparation, error)
	Profile(ctx context.Context, fid string) (json.RawMessage, error)
	UserByWallet(ctx context.Context, walletAddress string) (*farcaster.User, error)
}

type MetricsObserver interface {
	ObserveHTTP(route, method string, status int, duration time.Duration)
}

type Dependencies struct {
	Generate       GenerateService
	Content        ContentService
	Images         ImageService
	Cast           CastService
	Store          storage.Store
	Metrics        MetricsObserver
	MetricsHandler http.Handler
}

type server struct {
	cfg          config.Config
	logger       *slog.Logger
	generate     GenerateService
	content      ContentService
	images       ImageService
	cast         CastService
	store        storage.Store
	metrics      MetricsObserver
	metricsRoute http.Handler
}

type ctxKey string

const (
	requestIDHeader  = "X-Request-Id"
	requestIDContext = ctxKey("request_id")
	maxJSONBodyBytes = 1 << 20
)

func NewServer(cfg config.Config, logger *slog.Logger, deps Dependencies) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Generate == nil || deps.Content == nil || deps.Images == nil || deps.Cast == nil || deps.Store == nil {
		panic("httpapi: all dependencies are required")
	}

	s := &server{
		cfg:          cfg,
		logger:       logger,
		generate:     deps.Generate,
		content:      deps.Content,
		images:       deps.Images,
		cast:         deps.Cast,
		store:        deps.Store,
		metrics:      deps.Metrics,
		metricsRoute: deps.MetricsHandler,
	}

	rate, err := limiter.NewRateFromFormatted(cfg.GenerateRate)
	if err != nil {
		panic(fmt.Sprintf("httpapi: invalid GENERATE_RATE_LIMIT %q: %v", cfg.GenerateRate, err))
	}
	generateLimiter := limitermw.NewMiddleware(
		limiter.New(limitermem.NewStore(), rate),
		limitermw.WithLimitReachedHandler(s.handleRateLimited),
	)

	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeMessage(w, r, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeMessage(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)

	r.Get("/healthz", s.handleHealthz)
	if s.metricsRoute != nil {
		r.Handle("/metrics", s.metricsRoute)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(s.corsMiddleware)

		r.Get("/health", s.handleHealth)

		// The handler dispatches on method itself so anything but GET/POST
		// gets the endpoint's own 405 message.
		r.With(generateLimiter.Handler).HandleFunc("/generate", s.handleGenerate)

		r.Route("/content", func(r chi.Router) {
			r.Post("/generate", s.handleContentGenerate)
		})

		r.Route("/images", func(r chi.Router) {
			r.Get("/search", s.handleImageSearch)
			r.Get("/featured", s.handleImagesFeatured)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", s.handleCreateUser)
			r.Get("/{walletAddress}", s.handleGetUserByWallet)
			r.Patch("/{id}", s.handleUpdateUser)
		})

		r.Route("/drafts", func(r chi.Router) {
			r.Post("/", s.handleCreateDraft)
			r.Get("/user/{userID}", s.handleDraftsByUser)
			r.Patch("/{id}", s.handleUpdateDraft)
			r.Delete("/{id}", s.handleDeleteDraft)
		})

		r.Route("/farcaster", func(r chi.Router) {
			r.Post("/cast", s.handlePublishCast)
			r.Get("/profile/{fid}", s.handleFarcasterProfile)
			r.Get("/user-by-wallet/{walletAddress}", s.handleFarcasterUserByWallet)
		})

		r.Post("/webhook", s.handleWebhook)
	})

	return r
}

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.HealthResponse{OK: true})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.HealthResponse{OK: true, TS: time.Now().UnixMilli()})
}

func (s *server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		if st := r.URL.Query().Get("selftest"); st == "1" || st == "true" {
			writeJSON(w, http.StatusOK, model.SelftestResponse{
				OK:       true,
				Selftest: true,
				Runtime:  "go",
				TS:       time.Now().UnixMilli(),
			})
			return
		}
	}

	var body []byte
	if r.Method == http.MethodPost {
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
		defer func() { _ = r.Body.Close() }()

		var err error
		body, err = io.ReadAll(r.Body)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				s.writeMessage(w, r, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			s.writeMessage(w, r, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	req, err := generate.ParseRequest(r.Method, r.Header.Get("Content-Type"), r.URL.Query(), body)
	if err != nil {
		s.writeNormalizeError(w, r, err)
		return
	}

	if s.cfg.GeminiAPIKey == "" {
		s.writeMessage(w, r, http.StatusServiceUnavailable, "GEMINI_API_KEY missing in environment")
		return
	}

	result, err := s.generate.Generate(r.Context(), req)
	if err != nil {
		s.writeGenerateError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.GenerateResponse{
		OK:       true,
		Provider: "gemini",
		Model:    result.Model,
		Via:      r.Method,
		Lang:     string(result.Lang),
		Text:     result.Text,
		Content:  result.Text,
		Result:   result.Text,
		Message:  result.Text,
	})
}

func (s *server) handleContentGenerate(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateDraftContentRequest
	if !s.readJSON(w, r, &req, true) {
		return
	}
	for field, value := range map[string]string{
		"topic":       req.Topic,
		"contentType": req.ContentType,
		"tone":        req.Tone,
	} {
		if strings.TrimSpace(value) == "" {
			s.writeMessage(w, r, http.StatusBadRequest, field+" is required")
			return
		}
	}

	if s.cfg.GeminiAPIKey == "" {
		s.writeMessage(w, r, http.StatusServiceUnavailable, "GEMINI_API_KEY missing in environment")
		return
	}

	content, err := s.content.GenerateDraftContent(r.Context(), generate.ContentRequest{
		Topic:       req.Topic,
		ContentType: req.ContentType,
		Tone:        req.Tone,
	})
	if err != nil {
		s.writeGenerateError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.DraftContentResponse{Content: content})
}

func (s *server) handleImageSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		q = strings.TrimSpace(r.URL.Query().Get("query"))
	}
	if q == "" {
		s.writeMessage(w, r, http.StatusBadRequest, "q (query) required")
		return
	}
	if s.cfg.PexelsAPIKey == "" {
		s.writeMessage(w, r, http.StatusServiceUnavailable, "PEXELS_API_KEY missing in environment")
		return
	}

	result, err := s.images.Search(r.Context(), images.SearchInput{
		Query:       q,
		PerPage:     queryInt(r, "per_page"),
		Page:        queryInt(r, "page"),
		Orientation: r.URL.Query().Get("orientation"),
		Size:        r.URL.Query().Get("size"),
		Color:       r.URL.Query().Get("color"),
	})
	if err != nil {
		s.writeImagesError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.ImageSearchResponse{
		OK:           true,
		Count:        len(result.Images),
		Images:       toModelImages(result.Images),
		Photos:       result.Photos,
		Page:         result.Page,
		PerPage:      result.PerPage,
		TotalResults: result.TotalResults,
	})
}

func (s *server) handleImagesFeatured(w http.ResponseWriter, r *http.Request) {
	if s.cfg.PexelsAPIKey == "" {
		s.writeMessage(w, r, http.StatusServiceUnavailable, "PEXELS_API_KEY missing in environment")
		return
	}

	result, err := s.images.Featured(r.Context())
	if err != nil {
		s.writeImagesError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600, s-maxage=3600, stale-while-revalidate=59")
	writeJSON(w, http.StatusOK, model.FeaturedImagesResponse{
		OK:          true,
		Count:       len(result.Images),
		Images:      toModelImages(result.Images),
		Page:        1,
		PerCategory: 2,
		Categories:  images.CategoryLabels(),
		TS:          result.TS,
	})
}

func (s *server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if !s.readJSON(w, r, &req, true) {
		return
	}
	if strings.TrimSpace(req.WalletAddress) == "" {
		s.writeMessage(w, r, http.StatusBadRequest, "walletAddress is required")
		return
	}

	// Creation is idempotent per wallet: a repeat connect returns the
	// existing user. Lookup and create happen under one store lock.
	user, err := s.store.GetOrCreateUser(r.Context(), storage.NewUser{
		WalletAddress:        req.WalletAddress,
		FarcasterFID:         req.FarcasterFID,
		FarcasterUsername:    req.FarcasterUsername,
		FarcasterDisplayName: req.FarcasterDisplayName,
		FarcasterAvatar:      req.FarcasterAvatar,
	})
	if err != nil {
		s.writeMessage(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *server) handleGetUserByWallet(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUserByWallet(r.Context(), chi.URLParam(r, "walletAddress"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.writeMessage(w, r, http.StatusNotFound, "User not found")
			return
		}
		s.writeMessage(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateUserRequest
	if !s.readJSON(w, r, &req, false) {
		return
	}

	user, err := s.store.UpdateUser(r.Context(), chi.URLParam(r, "id"), storage.UserUpdate{
		FarcasterFID:         req.FarcasterFID,
		FarcasterUsername:    req.FarcasterUsername,
		FarcasterDisplayName: req.FarcasterDisplayName,
		FarcasterAvatar:      req.FarcasterAvatar,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.writeMessage(w, r, http.StatusNotFound, "User not found")
			return
		}
		s.writeMessage(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *server) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	var req model.CreateDraftRequest
	if !s.readJSON(w, r, &req, true) {
		return
	}
	for field, value := range map[string]string{
		"userId":      req.UserID,
		"topic":       req.Topic,
		"contentType": req.ContentType,
		"tone":        req.Tone,
	} {
		if strings.TrimSpace(value) == "" {
			s.writeMessage(w, r, http.StatusBadRequest, field+" is required")
			return
		}
	}

	draft, err := s.store.CreateDraft(r.Context(), storage.NewDraft{
		UserID:           req.UserID,
		Topic:            req.Topic,
		ContentType:      req.ContentType,
		Tone:             req.Tone,
		GeneratedContent: req.GeneratedContent,
		SelectedImage:    toStorageImage(req.SelectedImage),
	})
	if err != nil {
		s.writeMessage(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *server) handleDraftsByUser(w http.ResponseWriter, r *http.Request) {
	drafts, err := s.store.DraftsByUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeMessage(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, drafts)
}

func (s *server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateDraftRequest
	if !s.readJSON(w, r, &req, false) {
		return
	}

	draft, err := s.store.UpdateDraft(r.Context(), chi.URLParam(r, "id"), storage.DraftUpdate{
		Topic:             req.Topic,
		ContentType:       req.ContentType,
		Tone:              req.Tone,
		GeneratedContent:  req.GeneratedContent,
		SelectedImage:     toStorageImage(req.SelectedImage),
		IsPublished:       req.IsPublished,
		FarcasterCastHash: req.FarcasterCastHash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.writeMessage(w, r, http.StatusNotFound, "Draft not found")
			return
		}
		s.writeMessage(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *server) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteDraft(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.writeMessage(w, r, http.StatusNotFound, "Draft not found")
			return
		}
		s.writeMessage(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, model.DeleteResponse{Success: true})
}

func (s *server) handlePublishCast(w http.ResponseWriter, r *http.Request) {
	var req model.PublishCastRequest
	if !s.readJSON(w, r, &req, true) {
		return
	}
	if strings.TrimSpace(req.DraftID) == "" {
		s.writeMessage(w, r, http.StatusBadRequest, "draftId is required")
		return
	}

	prep, err := s.cast.PrepareCast(r.Context(), req.DraftID, req.ImageURL)
	if err != nil {
		switch {
		case errors.Is(err, cast.ErrDraftNotFound):
			s.writeMessage(w, r, http.StatusNotFound, "Draft not found")
		case errors.Is(err, cast.ErrUserNotFound):
			s.writeMessage(w, r, http.StatusBadRequest, "User not found")
		default:
			s.writeMessage(w, r, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, model.CastPreparationResponse{
		CastContent:  prep.CastContent,
		FarcasterURL: prep.FarcasterURL,
		Ready:        prep.Ready,
		Message:      "Cast prepared for manual posting to Farcaster",
	})
}

func (s *server) handleFarcasterProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.cast.Profile(r.Context(), chi.URLParam(r, "fid"))
	if err != nil {
		s.writeMessage(w, r, http.StatusInternalServerError, "Failed to fetch user profile from Farcaster")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(profile)
}

func (s *server) handleFarcasterUserByWallet(w http.ResponseWriter, r *http.Request) {
	user, err := s.cast.UserByWallet(r.Context(), chi.URLParam(r, "walletAddress"))
	if err != nil {
		// Identity lookup failures degrade to "not found" so wallet connect
		// can proceed without a Farcaster account.
		s.logger.Warn("farcaster user-by-wallet lookup failed",
			"request_id", requestIDFromContext(r.Context()), "error", err)
		user = nil
	}
	if user == nil {
		s.writeMessage(w, r, http.StatusNotFound, "User not found on Farcaster")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	body, _ := io.ReadAll(r.Body)
	s.logger.Info("farcaster webhook received",
		"request_id", requestIDFromContext(r.Context()),
		"bytes", len(body),
	)
	writeJSON(w, http.StatusOK, model.WebhookAckResponse{Success: true})
}

func (s *server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.writeMessage(w, r, http.StatusTooManyRequests, "rate limit exceeded, slow down")
}

func (s *server) writeNormalizeError(w http.ResponseWriter, r *http.Request, err error) {
	var unsupported *generate.UnsupportedContentTypeError
	switch {
	case errors.Is(err, generate.ErrMissingPrompt):
		s.writeError(w, r, http.StatusBadRequest, model.ErrorResponse{
			Message: "Missing prompt/topic",
			Examples: []string{
				"/api/generate?prompt=Merhaba",
				"/api/generate?topic=Bitcoin%20nedir",
				`POST JSON: {"prompt":"Merhaba"} or {"topic":"Bitcoin nedir"}`,
			},
		})
	case errors.As(err, &unsupported):
		s.writeError(w, r, http.StatusUnsupportedMediaType, model.ErrorResponse{
			Message: "multipart/form-data is not supported. Use JSON or a GET querystring.",
			Hint:    `GET /api/generate?prompt=... or POST application/json {"prompt":"..."}`,
		})
	case errors.Is(err, generate.ErrMethodNotAllowed):
		s.writeMessage(w, r, http.StatusMethodNotAllowed, "Only GET or POST")
	default:
		s.writeMessage(w, r, http.StatusBadRequest, err.Error())
	}
}

func (s *server) writeGenerateError(w http.ResponseWriter, r *http.Request, err error) {
	var upstreamErr *gemini.Error
	switch {
	case errors.As(err, &upstreamErr):
		status := upstreamErr.ForwardStatus()
		s.writeError(w, r, status, model.ErrorResponse{
			Message:    upstreamErr.Message,
			Provider:   "gemini",
			Status:     status,
			RetryAfter: upstreamErr.RetryAfter,
			Body:       upstreamErr.Body,
		})
	case errors.Is(err, context.DeadlineExceeded):
		s.writeMessage(w, r, http.StatusGatewayTimeout, "generation request timed out")
	case errors.Is(err, context.Canceled):
		s.writeMessage(w, r, 499, "request canceled")
	case errors.Is(err, generate.ErrEmptyCompletion):
		s.writeMessage(w, r, http.StatusBadGateway, "No content generated")
	default:
		// Transport errors carry the full upstream URL; never echo them.
		s.logger.Error("generate request failed",
			"request_id", requestIDFromContext(r.Context()), "error", err)
		s.writeMessage(w, r, http.StatusInternalServerError, "generation request failed")
	}
}

func (s *server) writeImagesError(w http.ResponseWriter, r *http.Request, err error) {
	var upstreamErr *pexels.Error
	switch {
	case errors.As(err, &upstreamErr):
		s.writeError(w, r, upstreamErr.StatusCode, model.ErrorResponse{
			Message:  fmt.Sprintf("Pexels error %d", upstreamErr.StatusCode),
			Provider: "pexels",
			Status:   upstreamErr.StatusCode,
			Body:     upstreamErr.Body,
		})
	case errors.Is(err, context.DeadlineExceeded):
		s.writeMessage(w, r, http.StatusGatewayTimeout, "image request timed out")
	default:
		s.writeMessage(w, r, http.StatusInternalServerError, err.Error())
	}
}

// readJSON decodes a JSON body into dst, handling size and syntax errors.
// strict rejects unknown fields; PATCH bodies stay lenient.
func (s *server) readJSON(w http.ResponseWriter, r *http.Request, dst any, strict bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	defer func() { _ = r.Body.Close() }()

	decoder := json.NewDecoder(r.Body)
	if strict {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeMessage(w, r, http.StatusRequestEntityTooLarge, "JSON body too large")
			return false
		}
		s.writeMessage(w, r, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := ensureBodyFullyConsumed(decoder); err != nil {
		s.writeMessage(w, r, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (s *server) writeMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.writeError(w, r, status, model.ErrorResponse{Message: message})
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, status int, resp model.ErrorResponse) {
	resp.OK = false
	if rid := requestIDFromContext(r.Context()); rid != "" {
		w.Header().Set(requestIDHeader, rid)
	}
	writeJSON(w, status, resp)
}

// corsMiddleware reflects the request origin, allows credentials, and
// answers preflight with an empty 204.
func (s *server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		h.Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = newRequestID()
		}
		w.Header().Set(requestIDHeader, requestID)
		ctx := context.WithValue(r.Context(), requestIDContext, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		duration := time.Since(started)
		if s.metrics != nil {
			s.metrics.ObserveHTTP(route, r.Method, status, duration)
		}

		s.logger.Info("http_request",
			"request_id", requestIDFromContext(r.Context()),
			"method", r.Method,
			"route", route,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", duration.Milliseconds(),
		)
	})
}

func (s *server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "request_id", requestIDFromContext(r.Context()), "panic", rec)
				s.writeMessage(w, r, http.StatusInternalServerError, "Internal Server Error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func ensureBodyFullyConsumed(decoder *json.Decoder) error {
	var extra any
	if err := decoder.Decode(&extra); err != io.EOF {
		if err == nil {
			return fmt.Errorf("multiple JSON values")
		}
		return err
	}
	return nil
}

func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(key)))
	if err != nil {
		return 0
	}
	return v
}

func toModelImages(in []images.Image) []model.Image {
	out := make([]model.Image, 0, len(in))
	for _, img := range in {
		out = append(out, model.Image{
			ID:           img.ID,
			URL:          img.URL,
			Alt:          img.Alt,
			Photographer: img.Photographer,
			Color:        img.Color,
		})
	}
	return out
}

func toStorageImage(in *model.SelectedImage) *storage.SelectedImage {
	if in == nil {
		return nil
	}
	return &storage.SelectedImage{
		URL:          in.URL,
		Alt:          in.Alt,
		Photographer: in.Photographer,
		Source:       in.Source,
	}
}

func requestIDFromContext(ctx context.Context) string {
	value, _ := ctx.Value(requestIDContext).(string)
	return value
}

func newRequestID() string {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("req-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

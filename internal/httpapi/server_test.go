package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"castforge/internal/cast"
	"castforge/internal/config"
	"castforge/internal/generate"
	"castforge/internal/images"
	"castforge/internal/model"
	"castforge/internal/storage"
	"castforge/internal/upstream/farcaster"
	"castforge/internal/upstream/gemini"
)

type stubGenerate struct {
	result generate.Result
	err    error
	last   generate.Request
}

func (s *stubGenerate) Generate(_ context.Context, req generate.Request) (generate.Result, error) {
	s.last = req
	if s.err != nil {
		return generate.Result{}, s.err
	}
	return s.result, nil
}

type stubContent struct {
	text string
	err  error
	last generate.ContentRequest
}

func (s *stubContent) GenerateDraftContent(_ context.Context, req generate.ContentRequest) (string, error) {
	s.last = req
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

type stubImages struct {
	search   images.SearchResult
	featured images.FeaturedResult
	err      error
}

func (s *stubImages) Search(context.Context, images.SearchInput) (images.SearchResult, error) {
	if s.err != nil {
		return images.SearchResult{}, s.err
	}
	return s.search, nil
}

func (s *stubImages) Featured(context.Context) (images.FeaturedResult, error) {
	if s.err != nil {
		return images.FeaturedResult{}, s.err
	}
	return s.featured, nil
}

type stubCast struct {
	prep    cast.Preparation
	prepErr error
	profile json.RawMessage
	user    *farcaster.User
	userErr error
}

func (s *stubCast) PrepareCast(context.Context, string, string) (cast.Preparation, error) {
	return s.prep, s.prepErr
}

func (s *stubCast) Profile(context.Context, string) (json.RawMessage, error) {
	return s.profile, nil
}

func (s *stubCast) UserByWallet(context.Context, string) (*farcaster.User, error) {
	return s.user, s.userErr
}

func testConfig() config.Config {
	return config.Config{
		ListenAddr:      ":0",
		GeminiBaseURL:   "http://gemini.test",
		GeminiAPIKey:    "gem-key",
		GeminiModel:     "models/gemini-1.5-flash",
		PexelsBaseURL:   "http://pexels.test",
		PexelsAPIKey:    "pex-key",
		FarcasterHubURL: "http://hub.test",
		WarpcastAPIURL:  "http://warpcast.test",
		RequestTimeout:  25 * time.Second,
		GenerateTimeout: 20 * time.Second,
		ImageCacheTTL:   time.Hour,
		ImageCacheSize:  8,
		GenerateRate:    "100-S",
		LogLevel:        "info",
	}
}

type testDeps struct {
	generate *stubGenerate
	content  *stubContent
	images   *stubImages
	cast     *stubCast
	store    *storage.MemStore
}

func newTestServer(t *testing.T, cfg config.Config) (http.Handler, *testDeps) {
	t.Helper()
	deps := &testDeps{
		generate: &stubGenerate{result: generate.Result{
			Text:  "Bitcoin is scarce money #FarcastAI",
			Lang:  generate.LangEN,
			Model: cfg.GeminiModel,
		}},
		content: &stubContent{text: "Bitcoin fixes this 🔥"},
		images:  &stubImages{},
		cast:    &stubCast{},
		store:   storage.NewMemStore(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewServer(cfg, logger, Dependencies{
		Generate: deps.generate,
		Content:  deps.content,
		Images:   deps.images,
		Cast:     deps.cast,
		Store:    deps.store,
	})
	return handler, deps
}

func doJSON(t *testing.T, handler http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealthEndpoints(t *testing.T) {
	handler, _ := newTestServer(t, testConfig())

	rec := doJSON(t, handler, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("/healthz status = %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("/api/health status = %d", rec.Code)
	}
	resp := decode[model.HealthResponse](t, rec)
	if !resp.OK || resp.TS == 0 {
		t.Fatalf("unexpected health response: %+v", resp)
	}
}

func TestGenerateViaGetQuery(t *testing.T) {
	handler, deps := newTestServer(t, testConfig())

	rec := doJSON(t, handler, http.MethodGet, "/api/generate?topic=Bitcoin&lang=en", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	resp := decode[model.GenerateResponse](t, rec)
	if !resp.OK || resp.Provider != "gemini" || resp.Via != http.MethodGet || resp.Lang != "en" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	if resp.Text == "" || resp.Text != resp.Content || resp.Text != resp.Result || resp.Text != resp.Message {
		t.Fatalf("aliases must carry the same text: %+v", resp)
	}
	if deps.generate.last.Prompt != "Bitcoin" || deps.generate.last.Lang != "en" {
		t.Fatalf("unexpected parsed request: %+v", deps.generate.last)
	}
}

func TestGenerateViaPostJSON(t *testing.T) {
	handler, deps := newTestServer(t, testConfig())

	rec := doJSON(t, handler, http.MethodPost, "/api/generate", map[string]string{"prompt": "Merhaba"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	resp := decode[model.GenerateResponse](t, rec)
	if resp.Via != http.MethodPost {
		t.Fatalf("via = %q", resp.Via)
	}
	if deps.generate.last.Prompt != "Merhaba" {
		t.Fatalf("unexpected parsed request: %+v", deps.generate.last)
	}
}

func TestGenerateMissingPrompt(t *testing.T) {
	handler, _ := newTestServer(t, testConfig())

	rec := doJSON(t, handler, http.MethodGet, "/api/generate", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[model.ErrorResponse](t, rec)
	if resp.OK || !strings.Contains(resp.Message, "Missing prompt") {
		t.Fatalf("unexpected error: %+v", resp)
	}
	if len(resp.Examples) == 0 {
		t.Fatal("expected usage examples")
	}
}

func TestGenerateRejectsMultipart(t *testing.T) {
	handler, _ := newTestServer(t, testConfig())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("prompt", "hi")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/generate", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[model.ErrorResponse](t, rec)
	if resp.Hint == "" {
		t.Fatal("expected a hint")
	}
}

func TestGenerateMethodNotAllowed(t *testing.T) {
	handler, _ := newTestServer(t, testConfig())

	rec := doJSON(t, handler, http.MethodPut, "/api/generate?prompt=x", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[model.ErrorResponse](t, rec)
	if resp.Message != "Only GET or POST" {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
}

func TestGenerateSelftest(t *testing.T) {
	handler, _ := newTestServer(t, testConfig())

	rec := doJSON(t, handler, http.MethodGet, "/api/generate?selftest=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[model.SelftestResponse](t, rec)
	if !resp.OK || !resp.Selftest || resp.Runtime != "go" || resp.TS == 0 {
		t.Fatalf("unexpected selftest response: %+v", resp)
	}
}

func TestGenerateMissingAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.GeminiAPIKey = ""
	handler, _ := newTestServer(t, cfg)

	rec := doJSON(t, handler, http.MethodGet, "/api/generate?prompt=hi", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[model.ErrorResponse](t, rec)
	if !strings.Contains(resp.Message, "GEMINI_API_KEY") {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
}

func TestGenerateForwardsUpstreamError(t *testing.T) {
	handler, deps := newTestServer(t, testConfig())
	deps.generate.err = &gemini.Error{
		StatusCode: http.StatusTooManyRequests,
		Code:       429,
		Message:    "quota exceeded",
		RetryAfter: "30",
		Body:       `{"error":{"code":429}}`,
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/generate?prompt=hi", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[model.ErrorResponse](t, rec)
	if resp.Provider != "gemini" || resp.Status != http.StatusTooManyRequests {
		t.Fatalf("unexpected error envelope: %+v", resp)
	}
	if resp.RetryAfter != "30" {
		t.Fatalf("retryAfter = %q", resp.RetryAfter)
	}
	if resp.Message != "quota exceeded" {
		t.Fatalf("message = %q", resp.Message)
	}
}

func TestGenerateTransportErrorHidesUpstreamDetail(t *testing.T) {
	handler, deps := newTestServer(t, testConfig())
	deps.generate.err = fmt.Errorf(
		`Post "http://gemini.internal/models/x:generateContent?key=SUPER-SECRET-KEY": dial tcp: connection refused`)

	rec := doJSON(t, handler, http.MethodGet, "/api/generate?prompt=hi", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "SUPER-SECRET-KEY") {
		t.Fatalf("response leaks upstream detail: %s", rec.Body.String())
	}
	resp := decode[model.ErrorResponse](t, rec)
	if resp.Message != "generation request failed" {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
}

func TestContentGenerate(t *testing.T) {
	handler, deps := newTestServer(t, testConfig())

	rec := doJSON(t, handler, http.MethodPost, "/api/content/generate", model.GenerateDraftContentRequest{
		Topic:       "Bitcoin",
		ContentType: "educational",
		Tone:        "casual",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	resp := decode[model.DraftContentResponse](t, rec)
	if resp.Content != "Bitcoin fixes this 🔥" {
		t.Fatalf("unexpected content: %q", resp.Content)
	}
	if deps.content.last.Topic != "Bitcoin" || deps.content.last.ContentType != "educational" || deps.content.last.Tone != "casual" {
		t.Fatalf("unexpected request: %+v", deps.content.last)
	}
}

func TestContentGenerateValidation(t *testing.T) {
	handler, _ := newTestServer(t, testConfig())

	rec := doJSON(t, handler, http.MethodPost, "/api/content/generate", model.GenerateDraftContentRequest{
		Topic: "Bitcoin",
		Tone:  "casual",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[model.ErrorResponse](t, rec)
	if resp.Message != "contentType is required" {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
}

func TestContentGenerateMissingAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.GeminiAPIKey = ""
	handler, _ := newTestServer(t, cfg)

	rec := doJSON(t, handler, http.MethodPost, "/api/content/generate", model.GenerateDraftContentRequest{
		Topic:       "x",
		ContentType: "news",
		Tone:        "casual",
	})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestContentGenerateEmptyCompletion(t *testing.T) {
	handler, deps := newTestServer(t, testConfig())
	deps.content.err = generate.ErrEmptyCompletion

	rec := doJSON(t, handler, http.MethodPost, "/api/content/generate", model.GenerateDraftContentRequest{
		Topic:       "x",
		ContentType: "news",
		Tone:        "casual",
	})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[model.ErrorResponse](t, rec)
	if resp.Message != "No content generated" {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
}

func TestGenerateTimeout(t *testing.T) {
	handler, deps := newTestServer(t, testConfig())
	deps.generate.err = context.DeadlineExceeded

	rec := doJSON(t, handler, http.MethodGet, "/api/generate?prompt=hi", nil)
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler, _ := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/generate", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Fatalf("allow-origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("allow-credentials = %q", got)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("preflight body should be empty, got %q", rec.Body.String())
	}
}

func TestImageSearchRequiresQuery(t *testing.T) {
	handler, _ := newTestServer(t, testConfig())

	rec := doJSON(t, handler, http.MethodGet, "/api/images/search", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[model.ErrorResponse](t, rec)
	if !strings.Contains(resp.Message, "q (query) required") {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
}

func TestImageSearchSuccess(t *testing.T) {
	handler, deps := newTestServer(t, testConfig())
	deps.images.search = images.SearchResult{
		Images:       []images.Image{{ID: 1, URL: "https://img.example/1.jpg"}},
		Page:         1,
		PerPage:      6,
		TotalResults: 10,
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/images/search?query=cats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	resp := decode[model.ImageSearchResponse](t, rec)
	if !resp.OK || resp.Count != 1 || len(resp.Images) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestImagesFeaturedSetsCacheControl(t *testing.T) {
	handler, deps := newTestServer(t, testConfig())
	deps.images.featured = images.FeaturedResult{
		Images: []images.Image{{ID: 1, URL: "u1"}, {ID: 2, URL: "u2"}},
		TS:     1700000000000,
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/images/featured", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "max-age=3600") {
		t.Fatalf("cache-control = %q", cc)
	}
	resp := decode[model.FeaturedImagesResponse](t, rec)
	if resp.PerCategory != 2 || len(resp.Categories) != 3 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestImagesMissingAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.PexelsAPIKey = ""
	handler, _ := newTestServer(t, cfg)

	rec := doJSON(t, handler, http.MethodGet, "/api/images/search?q=cats", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("search status = %d", rec.Code)
	}
	rec = doJSON(t, handler, http.MethodGet, "/api/images/featured", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("featured status = %d", rec.Code)
	}
}

func TestCreateUserIdempotentPerWallet(t *testing.T) {
	handler, _ := newTestServer(t, testConfig())

	rec := doJSON(t, handler, http.MethodPost, "/api/users", model.CreateUserRequest{WalletAddress: "0xabc"})
	if rec.Code != http.StatusOK {
		t.Fatalf("first create status = %d body = %s", rec.Code, rec.Body.String())
	}
	first := decode[storage.User](t, rec)
	if first.ID == "" {
		t.Fatal("expected an id")
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/users", model.CreateUserRequest{WalletAddress: "0xabc"})
	if rec.Code != http.StatusOK {
		t.Fatalf("second create status = %d", rec.Code)
	}
	second := decode[storage.User](t, rec)
	if second.ID != first.ID {
		t.Fatalf("repeat create returned a new user: %q vs %q", second.ID, first.ID)
	}
}

func TestCreateUserRequiresWallet(t *testing.T) {
	handler, _ := newTestServer(t, testConfig())

	rec := doJSON(t, handler, http.MethodPost, "/api/users", map[string]string{"walletAddress": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGetUserByWallet(t *testing.T) {
	handler, deps := newTestServer(t, testConfig())
	user, err := deps.store.CreateUser(context.Background(), storage.NewUser{WalletAddress: "0xabc"})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/users/0xabc", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode[storage.User](t, rec)
	if got.ID != user.ID {
		t.Fatalf("unexpected user: %+v", got)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/users/0xmissing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing wallet status = %d", rec.Code)
	}
}

func TestUpdateUserPatch(t *testing.T) {
	handler, deps := newTestServer(t, testConfig())
	user, err := deps.store.CreateUser(context.Background(), storage.NewUser{WalletAddress: "0xabc"})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	rec := doJSON(t, handler, http.MethodPatch, "/api/users/"+user.ID, map[string]string{"farcasterFid": "456"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	got := decode[storage.User](t, rec)
	if got.FarcasterFID != "456" || got.WalletAddress != "0xabc" {
		t.Fatalf("unexpected user: %+v", got)
	}

	rec = doJSON(t, handler, http.MethodPatch, "/api/users/unknown", map[string]string{"farcasterFid": "1"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown user status = %d", rec.Code)
	}
}

func TestDraftLifecycleOverHTTP(t *testing.T) {
	handler, deps := newTestServer(t, testConfig())
	user, err := deps.store.CreateUser(context.Background(), storage.NewUser{WalletAddress: "0xabc"})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	rec := doJSON(t, handler, http.MethodPost, "/api/drafts", model.CreateDraftRequest{
		UserID:      user.ID,
		Topic:       "bitcoin",
		ContentType: "post",
		Tone:        "casual",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d body = %s", rec.Code, rec.Body.String())
	}
	draft := decode[storage.Draft](t, rec)

	rec = doJSON(t, handler, http.MethodGet, "/api/drafts/user/"+user.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	drafts := decode[[]storage.Draft](t, rec)
	if len(drafts) != 1 || drafts[0].ID != draft.ID {
		t.Fatalf("unexpected drafts: %+v", drafts)
	}

	rec = doJSON(t, handler, http.MethodPatch, "/api/drafts/"+draft.ID, map[string]string{
		"generatedContent": "shaped #FarcastAI",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d", rec.Code)
	}
	updated := decode[storage.Draft](t, rec)
	if updated.GeneratedContent != "shaped #FarcastAI" {
		t.Fatalf("patch not applied: %+v", updated)
	}

	rec = doJSON(t, handler, http.MethodDelete, "/api/drafts/"+draft.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	del := decode[model.DeleteResponse](t, rec)
	if !del.Success {
		t.Fatalf("unexpected delete response: %+v", del)
	}

	rec = doJSON(t, handler, http.MethodDelete, "/api/drafts/"+draft.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", rec.Code)
	}
}

func TestCreateDraftValidation(t *testing.T) {
	handler, _ := newTestServer(t, testConfig())

	rec := doJSON(t, handler, http.MethodPost, "/api/drafts", model.CreateDraftRequest{
		UserID: "u1",
		Topic:  "bitcoin",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[model.ErrorResponse](t, rec)
	if !strings.HasSuffix(resp.Message, "is required") {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
}

func TestPublishCast(t *testing.T) {
	handler, deps := newTestServer(t, testConfig())
	deps.cast.prep = cast.Preparation{
		CastContent:  "text #FarcastAI",
		FarcasterURL: "https://warpcast.com/~/compose?text=text+%23FarcastAI",
		Ready:        true,
	}

	rec := doJSON(t, handler, http.MethodPost, "/api/farcaster/cast", model.PublishCastRequest{DraftID: "d1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	resp := decode[model.CastPreparationResponse](t, rec)
	if !resp.Ready || resp.FarcasterURL == "" || resp.Message == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestPublishCastErrors(t *testing.T) {
	handler, deps := newTestServer(t, testConfig())

	rec := doJSON(t, handler, http.MethodPost, "/api/farcaster/cast", model.PublishCastRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing draftId status = %d", rec.Code)
	}

	deps.cast.prepErr = cast.ErrDraftNotFound
	rec = doJSON(t, handler, http.MethodPost, "/api/farcaster/cast", model.PublishCastRequest{DraftID: "d1"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown draft status = %d", rec.Code)
	}

	deps.cast.prepErr = cast.ErrUserNotFound
	rec = doJSON(t, handler, http.MethodPost, "/api/farcaster/cast", model.PublishCastRequest{DraftID: "d1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown user status = %d", rec.Code)
	}
}

func TestFarcasterProfilePassthrough(t *testing.T) {
	handler, deps := newTestServer(t, testConfig())
	deps.cast.profile = json.RawMessage(`{"messages":[]}`)

	rec := doJSON(t, handler, http.MethodGet, "/api/farcaster/profile/123", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"messages":[]}` {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}

func TestFarcasterUserByWalletDegradesToNotFound(t *testing.T) {
	handler, deps := newTestServer(t, testConfig())

	// No verified account.
	rec := doJSON(t, handler, http.MethodGet, "/api/farcaster/user-by-wallet/0xabc", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("nil user status = %d", rec.Code)
	}

	// Lookup failure is reported the same way.
	deps.cast.userErr = io.ErrUnexpectedEOF
	rec = doJSON(t, handler, http.MethodGet, "/api/farcaster/user-by-wallet/0xabc", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("lookup failure status = %d", rec.Code)
	}

	deps.cast.userErr = nil
	deps.cast.user = &farcaster.User{FID: 42, Username: "alice"}
	rec = doJSON(t, handler, http.MethodGet, "/api/farcaster/user-by-wallet/0xabc", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("found user status = %d", rec.Code)
	}
	got := decode[farcaster.User](t, rec)
	if got.FID != 42 || got.Username != "alice" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestWebhookAck(t *testing.T) {
	handler, _ := newTestServer(t, testConfig())

	rec := doJSON(t, handler, http.MethodPost, "/api/webhook", map[string]any{"type": "cast.created"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[model.WebhookAckResponse](t, rec)
	if !resp.Success {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestUnknownRoute(t *testing.T) {
	handler, _ := newTestServer(t, testConfig())

	rec := doJSON(t, handler, http.MethodGet, "/api/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[model.ErrorResponse](t, rec)
	if resp.OK {
		t.Fatal("error envelope must report ok=false")
	}
}

func TestGenerateRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.GenerateRate = "2-H"
	handler, _ := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		rec := doJSON(t, handler, http.MethodGet, "/api/generate?prompt=hi", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, rec.Code)
		}
	}
	rec := doJSON(t, handler, http.MethodGet, "/api/generate?prompt=hi", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("limited request status = %d", rec.Code)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	handler, _ := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-Id", "test-rid")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "test-rid" {
		t.Fatalf("request id = %q", got)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/health", nil)
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected a generated request id")
	}
}

package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
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

// Error carries everything the caller needs to forward an upstream failure:
// the raw HTTP status, the provider's embedded error code and message when
// the body parsed, the Retry-After header verbatim, and a truncated body.
type Error struct {
	StatusCode int
	Code       int
	Message    string
	RetryAfter string
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gemini request failed with status %d", e.StatusCode)
}

// ForwardStatus is the status to relay to the client: the embedded error
// code when it is a writable HTTP status, the raw status otherwise.
func (e *Error) ForwardStatus() int {
	if e.Code >= 100 && e.Code <= 599 {
		return e.Code
	}
	if e.StatusCode >= 100 && e.StatusCode <= 599 {
		return e.StatusCode
	}
	return http.StatusBadGateway
}

type generateContentRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
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

// GenerateContent sends one generateContent call and returns the newline
// joined text of the first candidate's parts. Exactly one attempt; retry
// policy is the caller's business.
func (c *Client) GenerateContent(ctx context.Context, model, prompt string, temperature float64) (string, error) {
	return c.generate(ctx, model, "", prompt, temperature)
}

// GenerateWithInstruction is GenerateContent with a system instruction
// attached to the call.
func (c *Client) GenerateWithInstruction(ctx context.Context, model, instruction, prompt string, temperature float64) (string, error) {
	return c.generate(ctx, model, instruction, prompt, temperature)
}

func (c *Client) generate(ctx context.Context, model, instruction, prompt string, temperature float64) (string, error) {
	started := time.Now()
	statusCode := 0
	defer func() { c.observe("generate_content", statusCode, time.Since(started)) }()

	genReq := generateContentRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{Temperature: temperature},
	}
	if instruction != "" {
		genReq.SystemInstruction = &content{Parts: []part{{Text: instruction}}}
	}
	payload, err := json.Marshal(genReq)
	if err != nil {
		return "", err
	}

	// The key travels in a header, never in the URL, so it cannot leak
	// through URL-bearing transport error messages.
	url := c.baseURL + "/" + strings.TrimPrefix(model, "/") + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", upstreamError(resp, respBody)
	}

	return parseCandidateText(respBody), nil
}

func (c *Client) observe(endpoint string, status int, duration time.Duration) {
	if c.observer != nil {
		c.observer(endpoint, status, duration)
	}
}

func upstreamError(resp *http.Response, body []byte) *Error {
	// Body may be anything; a parse failure leaves the embedded fields zero.
	var parsed struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.Unmarshal(body, &parsed)

	message := parsed.Error.Message
	if message == "" {
		message = "Gemini error"
	}

	return &Error{
		StatusCode: resp.StatusCode,
		Code:       parsed.Error.Code,
		Message:    message,
		RetryAfter: resp.Header.Get("Retry-After"),
		Body:       truncateBody(string(body)),
	}
}

// parseCandidateText joins the first candidate's non-empty part texts with
// newlines. Malformed or empty responses resolve to "", never an error.
func parseCandidateText(data []byte) string {
	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return ""
	}
	if len(parsed.Candidates) == 0 {
		return ""
	}

	texts := make([]string, 0, len(parsed.Candidates[0].Content.Parts))
	for _, p := range parsed.Candidates[0].Content.Parts {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.TrimSpace(strings.Join(texts, "\n"))
}

func truncateBody(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 4000 {
		return s
	}
	return s[:4000] + "..."
}

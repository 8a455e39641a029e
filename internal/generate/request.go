package generate

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Request is the normalized generation request. Lang is the raw explicit
// hint ("tr", "en" or empty); values outside the supported set fall through
// to the heuristic detector.
type Request struct {
	Prompt string
	Lang   string
}

var (
	ErrMissingPrompt    = errors.New("missing prompt")
	ErrMethodNotAllowed = errors.New("only GET or POST")
)

// UnsupportedContentTypeError reports a POST body encoding the normalizer
// refuses to parse.
type UnsupportedContentTypeError struct {
	ContentType string
}

func (e *UnsupportedContentTypeError) Error() string {
	return fmt.Sprintf("unsupported content type %q", e.ContentType)
}

// promptAliases is the field priority order shared by every input shape.
var promptAliases = []string{"prompt", "topic", "q", "text", "title", "query"}

var langAliases = []string{"lang", "language"}

// ParseRequest normalizes a GET query or POST body of unknown shape into a
// Request. Malformed JSON bodies degrade to an empty object; the only hard
// failures are an unsupported method, an unsupported content type, and a
// prompt that is empty after trimming.
func ParseRequest(method, contentType string, query url.Values, body []byte) (Request, error) {
	switch strings.ToUpper(method) {
	case http.MethodGet:
		return fromValues(query)
	case http.MethodPost:
		ct := strings.ToLower(strings.TrimSpace(contentType))
		switch {
		case strings.Contains(ct, "application/json"):
			return fromJSON(body)
		case strings.Contains(ct, "application/x-www-form-urlencoded"):
			form, err := url.ParseQuery(string(body))
			if err != nil {
				form = url.Values{}
			}
			return fromValues(form)
		case strings.HasPrefix(ct, "multipart/form-data"):
			return Request{}, &UnsupportedContentTypeError{ContentType: "multipart/form-data"}
		default:
			// text/plain and friends: try JSON, tolerate garbage.
			return fromJSON(body)
		}
	default:
		return Request{}, ErrMethodNotAllowed
	}
}

func fromValues(values url.Values) (Request, error) {
	req := Request{Lang: pickLang(func(key string) string { return values.Get(key) })}
	for _, alias := range promptAliases {
		if v := strings.TrimSpace(values.Get(alias)); v != "" {
			req.Prompt = v
			return req, nil
		}
	}
	return req, ErrMissingPrompt
}

func fromJSON(body []byte) (Request, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		raw = map[string]any{}
	}
	stringField := func(key string) string {
		v, _ := raw[key].(string)
		return v
	}

	req := Request{Lang: pickLang(stringField)}
	for _, alias := range promptAliases {
		if v := strings.TrimSpace(stringField(alias)); v != "" {
			req.Prompt = v
			return req, nil
		}
	}
	return req, ErrMissingPrompt
}

func pickLang(get func(string) string) string {
	for _, alias := range langAliases {
		if v := strings.ToLower(strings.TrimSpace(get(alias))); v != "" {
			return v
		}
	}
	return ""
}

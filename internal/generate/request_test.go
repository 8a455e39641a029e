package generate

import (
	"errors"
	"net/url"
	"testing"
)

func TestParseRequestEquivalentShapes(t *testing.T) {
	want := Request{Prompt: "Bitcoin nedir", Lang: "tr"}

	cases := map[string]func() (Request, error){
		"get_query": func() (Request, error) {
			q := url.Values{"topic": {"Bitcoin nedir"}, "lang": {"tr"}}
			return ParseRequest("GET", "", q, nil)
		},
		"post_json": func() (Request, error) {
			body := []byte(`{"topic":"Bitcoin nedir","lang":"tr"}`)
			return ParseRequest("POST", "application/json", nil, body)
		},
		"post_form": func() (Request, error) {
			body := []byte("topic=Bitcoin+nedir&lang=tr")
			return ParseRequest("POST", "application/x-www-form-urlencoded", nil, body)
		},
	}

	for name, parse := range cases {
		got, err := parse()
		if err != nil {
			t.Fatalf("%s: ParseRequest() error = %v", name, err)
		}
		if got != want {
			t.Fatalf("%s: got %+v want %+v", name, got, want)
		}
	}
}

func TestParseRequestAliasPriority(t *testing.T) {
	q := url.Values{
		"query": {"last"},
		"topic": {"second"},
		"prompt": {"first"},
	}
	got, err := ParseRequest("GET", "", q, nil)
	if err != nil {
		t.Fatalf("ParseRequest() error = %v", err)
	}
	if got.Prompt != "first" {
		t.Fatalf("unexpected prompt: %q", got.Prompt)
	}
}

func TestParseRequestLanguageAlias(t *testing.T) {
	got, err := ParseRequest("POST", "application/json", nil, []byte(`{"prompt":"hi","language":"EN"}`))
	if err != nil {
		t.Fatalf("ParseRequest() error = %v", err)
	}
	if got.Lang != "en" {
		t.Fatalf("unexpected lang: %q", got.Lang)
	}
}

func TestParseRequestMissingPrompt(t *testing.T) {
	cases := map[string]func() (Request, error){
		"empty_query": func() (Request, error) {
			return ParseRequest("GET", "", url.Values{}, nil)
		},
		"whitespace_prompt": func() (Request, error) {
			return ParseRequest("GET", "", url.Values{"prompt": {"   "}}, nil)
		},
		"malformed_json": func() (Request, error) {
			return ParseRequest("POST", "application/json", nil, []byte("{not json"))
		},
		"json_non_string_prompt": func() (Request, error) {
			return ParseRequest("POST", "application/json", nil, []byte(`{"prompt":42}`))
		},
	}

	for name, parse := range cases {
		if _, err := parse(); !errors.Is(err, ErrMissingPrompt) {
			t.Fatalf("%s: expected ErrMissingPrompt, got %v", name, err)
		}
	}
}

func TestParseRequestMultipartRejected(t *testing.T) {
	_, err := ParseRequest("POST", "multipart/form-data; boundary=x", nil, []byte("whatever"))
	var unsupported *UnsupportedContentTypeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedContentTypeError, got %v", err)
	}
}

func TestParseRequestPlainTextFallsBackToJSON(t *testing.T) {
	got, err := ParseRequest("POST", "text/plain", nil, []byte(`{"prompt":"hello"}`))
	if err != nil {
		t.Fatalf("ParseRequest() error = %v", err)
	}
	if got.Prompt != "hello" {
		t.Fatalf("unexpected prompt: %q", got.Prompt)
	}
}

func TestParseRequestMethodNotAllowed(t *testing.T) {
	for _, method := range []string{"PUT", "DELETE", "PATCH"} {
		if _, err := ParseRequest(method, "", nil, nil); !errors.Is(err, ErrMethodNotAllowed) {
			t.Fatalf("%s: expected ErrMethodNotAllowed, got %v", method, err)
		}
	}
}

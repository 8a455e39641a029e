package generate

import (
	"strings"
	"unicode"
)

// Lang is the closed set of supported response languages.
type Lang string

const (
	LangTR Lang = "tr"
	LangEN Lang = "en"
)

var englishOverrides = []string{
	"write in english",
	"write it in english",
	"write the answer in english",
	"english only",
}

var turkishOverrides = []string{
	"türkçe yaz",
	"türkçe cevapla",
	"cevabı türkçe yaz",
}

const turkishDiacritics = "çğıöşü"

var turkishWords = wordSet("ve", "bir", "nedir", "nasıl", "için", "hakkında", "olarak", "çok", "daha", "ama", "fiyat", "kadar")

var englishWords = wordSet("the", "and", "what", "how", "why", "is", "are", "with", "about")

// Select returns the explicit language when it names a supported value and
// falls back to the heuristic detector otherwise. The explicit hint always
// wins, even when the prompt reads like the other language.
func Select(prompt, explicit string) Lang {
	switch strings.ToLower(strings.TrimSpace(explicit)) {
	case "tr":
		return LangTR
	case "en":
		return LangEN
	}
	return Detect(prompt)
}

// Detect guesses the prompt language. Best effort, but deterministic and
// total. Rule order: explicit phrase overrides, Turkish diacritics or
// function words, English function words, Latin-only default.
func Detect(prompt string) Lang {
	txt := strings.ToLower(prompt)

	for _, phrase := range englishOverrides {
		if strings.Contains(txt, phrase) {
			return LangEN
		}
	}
	for _, phrase := range turkishOverrides {
		if strings.Contains(txt, phrase) {
			return LangTR
		}
	}

	if strings.ContainsAny(txt, turkishDiacritics) || containsWordFrom(txt, turkishWords) {
		return LangTR
	}
	if containsWordFrom(txt, englishWords) {
		return LangEN
	}

	if latinOnly(txt) {
		return LangEN
	}
	return LangTR
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func containsWordFrom(txt string, set map[string]struct{}) bool {
	fields := strings.FieldsFunc(txt, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, field := range fields {
		if _, ok := set[field]; ok {
			return true
		}
	}
	return false
}

func latinOnly(txt string) bool {
	for _, r := range txt {
		if r <= unicode.MaxASCII {
			continue
		}
		if unicode.IsSpace(r) || unicode.IsPunct(r) {
			continue
		}
		return false
	}
	return true
}

package generate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// Hashtag must close every shaped text exactly once.
	Hashtag = "#FarcastAI"

	maxRunes      = 700
	truncateRunes = 680
)

var (
	bulletRe   = regexp.MustCompile(`(?m)^\s*[-*]\s+`)
	numberedRe = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	headingRe  = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	paraSplit  = regexp.MustCompile(`\n{2,}`)
	partialRe  = regexp.MustCompile(`\s+\S*$`)
	hashtagRe  = regexp.MustCompile(Hashtag + `\b`)
)

// Shape turns raw generated text into the final displayable string: list and
// heading markers stripped, at most two paragraphs, at most 700 runes, the
// mandatory hashtag present exactly once. Idempotent: Shape(Shape(s)) ==
// Shape(s).
func Shape(raw string) string {
	if raw == "" {
		return ""
	}

	t := bulletRe.ReplaceAllString(raw, "")
	t = numberedRe.ReplaceAllString(t, "")
	t = headingRe.ReplaceAllString(t, "")
	t = capParagraphs(t, 2)
	t = truncate(t)
	t = ensureHashtag(t)
	if utf8.RuneCountInString(t) > maxRunes {
		// The appended hashtag pushed the text over the cap; shorten the
		// body and restore the tag.
		t = ensureHashtag(truncate(t))
	}
	return t
}

func capParagraphs(t string, limit int) string {
	paras := paraSplit.Split(t, -1)
	kept := make([]string, 0, limit)
	for _, p := range paras {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		kept = append(kept, p)
		if len(kept) == limit {
			break
		}
	}
	return strings.Join(kept, "\n\n")
}

func truncate(t string) string {
	runes := []rune(t)
	if len(runes) <= maxRunes {
		return t
	}
	cut := string(runes[:truncateRunes])
	// Drop the trailing partial word so the cut lands on whitespace.
	cut = partialRe.ReplaceAllString(cut, "")
	return cut + "…"
}

func ensureHashtag(t string) string {
	if hashtagRe.MatchString(t) {
		return t
	}
	return strings.TrimRight(t, " \t\n\r") + " " + Hashtag
}

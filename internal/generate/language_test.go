package generate

import "testing"

func TestDetect(t *testing.T) {
	cases := []struct {
		prompt string
		want   Lang
	}{
		// Explicit phrase overrides beat every other signal.
		{"lütfen write in english about çay", LangEN},
		{"english only: ve bir hakkında", LangEN},
		{"please türkçe yaz about the weather", LangTR},

		// Turkish diacritics or function words.
		{"Bitcoin nedir", LangTR},
		{"güzel bir gün", LangTR},
		{"kahve fiyat analizi", LangTR},

		// English function words.
		{"what is bitcoin", LangEN},
		{"tell me about staking", LangEN},

		// No signal: Latin-only defaults to English, otherwise Turkish.
		{"blockchain halving", LangEN},
		{"криптовалюта", LangTR},
	}

	for _, tc := range cases {
		if got := Detect(tc.prompt); got != tc.want {
			t.Fatalf("Detect(%q) = %q, want %q", tc.prompt, got, tc.want)
		}
	}
}

func TestDetectDeterministic(t *testing.T) {
	prompt := "Bitcoin nedir ve nasıl çalışır"
	first := Detect(prompt)
	for i := 0; i < 5; i++ {
		if got := Detect(prompt); got != first {
			t.Fatalf("Detect is not deterministic: %q then %q", first, got)
		}
	}
}

func TestSelectExplicitOverrideWins(t *testing.T) {
	// A prompt made entirely of Turkish function words still comes back
	// English when the caller says so.
	if got := Select("ve bir nedir için hakkında", "en"); got != LangEN {
		t.Fatalf("explicit en override ignored, got %q", got)
	}
	if got := Select("what is the point", "tr"); got != LangTR {
		t.Fatalf("explicit tr override ignored, got %q", got)
	}
}

func TestSelectUnsupportedHintFallsBack(t *testing.T) {
	if got := Select("Bitcoin nedir", "de"); got != LangTR {
		t.Fatalf("unsupported hint should fall back to heuristic, got %q", got)
	}
	if got := Select("Bitcoin nedir", ""); got != LangTR {
		t.Fatalf("empty hint should fall back to heuristic, got %q", got)
	}
}

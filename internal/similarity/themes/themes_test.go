package themes

import (
	"strings"
	"testing"
)

func TestExtract_CapitalizedPhrasesFirst(t *testing.T) {
	text := "The study was led by researchers at the Large Hadron Collider facility. " +
		"Results from the Large Hadron Collider confirmed earlier particle measurements. " +
		"Particle physics continues to evolve."

	themes := Extract(text, 3)
	if len(themes) == 0 {
		t.Fatal("no themes extracted")
	}
	if themes[0] != "Large Hadron Collider" {
		t.Errorf("first theme is %q, want the proper-noun phrase", themes[0])
	}
}

func TestExtract_FrequentWordsFillRemainder(t *testing.T) {
	text := strings.Repeat("photosynthesis converts sunlight into chemical energy. ", 4)
	themes := Extract(text, 5)

	found := false
	for _, th := range themes {
		if th == "photosynthesis" {
			found = true
		}
	}
	if !found {
		t.Errorf("repeated domain word missing from themes: %v", themes)
	}
}

func TestExtract_FallbackForDegenerateInput(t *testing.T) {
	for _, text := range []string{"", "   ", "a b c d"} {
		themes := Extract(text, 3)
		if len(themes) != 1 || themes[0] != FallbackTheme {
			t.Errorf("Extract(%q) = %v, want [%s]", text, themes, FallbackTheme)
		}
	}
}

func TestExtract_RespectsLimit(t *testing.T) {
	text := "Quantum Computing Lab and Machine Learning Group and Data Science Institute " +
		"collaborate with the European Space Agency on satellite telemetry problems."
	themes := Extract(text, 2)
	if len(themes) > 2 {
		t.Errorf("got %d themes, limit was 2", len(themes))
	}
}

func TestExtract_NoDuplicates(t *testing.T) {
	text := "The Royal Society praised the work. The Royal Society then funded it."
	themes := Extract(text, 5)

	seen := make(map[string]bool)
	for _, th := range themes {
		key := strings.ToLower(th)
		if seen[key] {
			t.Errorf("duplicate theme %q", th)
		}
		seen[key] = true
	}
}

func TestSearchPhrases_PrefersDistinctiveSentences(t *testing.T) {
	text := "It is ok. " +
		"Mitochondrial biogenesis accelerates dramatically under sustained aerobic exercise regimens. " +
		"The thing did the thing with the thing."

	phrases := SearchPhrases(text, 1)
	if len(phrases) != 1 {
		t.Fatalf("expected 1 phrase, got %d", len(phrases))
	}
	if !strings.Contains(phrases[0], "Mitochondrial") {
		t.Errorf("picked %q over the vocabulary-rich sentence", phrases[0])
	}
}

func TestSearchPhrases_SkipsShortSentences(t *testing.T) {
	phrases := SearchPhrases("Too short. Also tiny. No.", 5)
	if len(phrases) != 0 {
		t.Errorf("short sentences should be skipped, got %v", phrases)
	}
}

func TestSearchPhrases_LimitAndEmptyInput(t *testing.T) {
	if phrases := SearchPhrases("", 3); len(phrases) != 0 {
		t.Errorf("empty input produced %v", phrases)
	}

	text := strings.Repeat("Thermodynamic equilibrium governs entropy production in closed systems. ", 10)
	if phrases := SearchPhrases(text, 2); len(phrases) > 2 {
		t.Errorf("got %d phrases, limit was 2", len(phrases))
	}
}

package youtube

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/Arsalank7862/caffeine-chronicles/internal/rotation"
	"github.com/Arsalank7862/caffeine-chronicles/internal/testsupport"
)

func factEpisode(text string) rotation.Episode {
	return rotation.Episode{
		Number: 9,
		Kind:   rotation.KindFactOnly,
		Fact:   rotation.ContentItem{Index: 0, Text: text},
	}
}

func TestBuildTitleUsesFirstClause(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	meta := BuildMetadata(factEpisode("Espresso means pressed out, in Italian. It dates to 1901."), cfg)

	if !strings.HasSuffix(meta.Title, "#shorts") {
		t.Errorf("title missing #shorts suffix: %q", meta.Title)
	}
	if !strings.Contains(meta.Title, "Espresso means pressed out") {
		t.Errorf("title missing fact clause: %q", meta.Title)
	}
	if strings.Contains(meta.Title, "in Italian") {
		t.Errorf("title should stop at first clause: %q", meta.Title)
	}
}

func TestBuildTitleTruncatesLongSnippet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	long := strings.Repeat("coffee beans travel far across the world ", 4)
	meta := BuildMetadata(factEpisode(long), cfg)

	if len(meta.Title) > maxTitleLength {
		t.Errorf("title exceeds %d chars: %d %q", maxTitleLength, len(meta.Title), meta.Title)
	}
	if !strings.Contains(meta.Title, "...") {
		t.Errorf("expected ellipsis in truncated snippet: %q", meta.Title)
	}
}

func TestBuildTitleTruncationIsRuneSafe(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	// 6-byte "café " repetitions put a byte-based cut mid-rune.
	long := strings.Repeat("café ", 12)
	meta := BuildMetadata(factEpisode(long), cfg)

	if !utf8.ValidString(meta.Title) {
		t.Fatalf("truncated title is not valid UTF-8: %q", meta.Title)
	}
	if utf8.RuneCountInString(meta.Title) > maxTitleLength {
		t.Errorf("title exceeds %d runes: %q", maxTitleLength, meta.Title)
	}
	if !strings.Contains(meta.Title, "...") {
		t.Errorf("expected ellipsis in truncated snippet: %q", meta.Title)
	}
}

func TestBuildTitleFallbackForShortSnippet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	meta := BuildMetadata(factEpisode("Hm."), cfg)

	if !strings.Contains(meta.Title, fallbackSnippet) {
		t.Errorf("expected fallback snippet, got %q", meta.Title)
	}
}

func TestBuildTitleStripsAngleBrackets(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	meta := BuildMetadata(factEpisode("<b>Decaf</b> still has some caffeine in every cup"), cfg)

	if strings.ContainsAny(meta.Title, "<>") {
		t.Errorf("angle brackets not stripped: %q", meta.Title)
	}
}

func TestBuildDescriptionListsAllTexts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	shop := rotation.ContentItem{Index: 1, Text: "Ritual Roasters, San Francisco"}
	episode := rotation.Episode{
		Number: 14,
		Kind:   rotation.KindFactWithShop,
		Fact:   rotation.ContentItem{Index: 2, Text: "Cold brew is less acidic than hot coffee."},
		Shop:   &shop,
	}
	meta := BuildMetadata(episode, cfg)

	if !strings.Contains(meta.Description, "☕ Cold brew is less acidic") {
		t.Errorf("description missing fact line: %q", meta.Description)
	}
	if !strings.Contains(meta.Description, "☕ Ritual Roasters") {
		t.Errorf("description missing shop line: %q", meta.Description)
	}
	if strings.Contains(meta.Description, descriptionMarker) {
		t.Errorf("template marker not substituted: %q", meta.Description)
	}
}

func TestBuildMetadataCopiesConfigFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.YouTube.CategoryID = "24"
	cfg.YouTube.Privacy = "unlisted"
	meta := BuildMetadata(factEpisode("Coffee was first brewed in Yemen centuries ago."), cfg)

	if meta.CategoryID != "24" || meta.Privacy != "unlisted" {
		t.Errorf("config fields not carried: %+v", meta)
	}
	if len(meta.Tags) == 0 {
		t.Error("expected default tags to be carried")
	}

	// Tags must be a copy, not an alias of the config slice.
	meta.Tags[0] = "mutated"
	if cfg.YouTube.Tags[0] == "mutated" {
		t.Error("metadata tags alias the config slice")
	}
}

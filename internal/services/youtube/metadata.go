package youtube

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Arsalank7862/caffeine-chronicles/internal/config"
	"github.com/Arsalank7862/caffeine-chronicles/internal/rotation"
)

const (
	maxTitleLength    = 100
	maxSnippetLength  = 55
	minSnippetLength  = 5
	fallbackSnippet   = "You Won't Believe This"
	fallbackTitle     = "Caffeine Chronicles #shorts"
	descriptionMarker = "{fact}"
)

var titleCaser = cases.Title(language.English, cases.NoLower)

// Metadata describes a video for upload.
type Metadata struct {
	Title       string
	Description string
	Tags        []string
	CategoryID  string
	Privacy     string
}

// BuildMetadata derives upload metadata from an episode and the youtube
// config section.
func BuildMetadata(episode rotation.Episode, cfg *config.Config) Metadata {
	return Metadata{
		Title:       buildTitle(episode, cfg.YouTube.TitlePrefix),
		Description: buildDescription(episode, cfg.YouTube.DescriptionTemplate),
		Tags:        append([]string(nil), cfg.YouTube.Tags...),
		CategoryID:  cfg.YouTube.CategoryID,
		Privacy:     cfg.YouTube.Privacy,
	}
}

// buildTitle produces "<prefix>: <snippet> #shorts", where the snippet is
// the first clause of the fact, truncated to fit. Shorts titles must stay
// under 100 characters and must not be empty.
func buildTitle(episode rotation.Episode, prefix string) string {
	snippet := factSnippet(episode.Fact.Text)

	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "Coffee Fact"
	}
	prefix = titleCaser.String(prefix)

	title := prefix + ": " + snippet + " #shorts"
	title = truncateRunes(title, maxTitleLength)
	title = strings.TrimSpace(title)
	if title == "" {
		return fallbackTitle
	}
	return title
}

func factSnippet(text string) string {
	clean := strings.NewReplacer("<", "", ">", "").Replace(text)
	snippet, _, _ := strings.Cut(clean, ".")
	snippet, _, _ = strings.Cut(snippet, ",")
	snippet = strings.TrimSpace(snippet)
	if utf8.RuneCountInString(snippet) > maxSnippetLength {
		snippet = truncateRunes(snippet, maxSnippetLength-3) + "..."
	}
	if utf8.RuneCountInString(snippet) < minSnippetLength {
		return fallbackSnippet
	}
	return snippet
}

// truncateRunes cuts s to at most limit runes. Catalog text is
// user-extendable, so truncation must never split a multibyte character.
func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}

// buildDescription substitutes the episode texts into the template's {fact}
// marker, one coffee-cup bullet per line.
func buildDescription(episode rotation.Episode, template string) string {
	var lines []string
	for _, text := range episode.Texts() {
		if text = strings.TrimSpace(text); text != "" {
			lines = append(lines, "☕ "+text)
		}
	}
	body := strings.Join(lines, "\n")
	if !strings.Contains(template, descriptionMarker) {
		return strings.TrimSpace(template + "\n\n" + body)
	}
	return strings.ReplaceAll(template, descriptionMarker, body)
}

package rotation

import "fmt"

// Kind distinguishes a plain fact episode from one that also carries a
// coffee shop recommendation.
type Kind string

const (
	KindFactOnly     Kind = "fact"
	KindFactWithShop Kind = "coffee_shop"
)

// ContentItem pairs a catalog index with its text. Identity is the index
// within its catalog.
type ContentItem struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Episode is one unit of generated content, consumed read-only by the
// renderer and publisher. Immutable once constructed.
type Episode struct {
	Number int          `json:"episode"`
	Kind   Kind         `json:"type"`
	Fact   ContentItem  `json:"fact"`
	Shop   *ContentItem `json:"shop,omitempty"`
}

// Header returns the on-screen header line for the episode.
func (e Episode) Header() string {
	if e.Kind == KindFactWithShop {
		return "COFFEE SHOP SPOTLIGHT"
	}
	return "DID YOU KNOW THAT..."
}

// ArtifactName returns the base name for files derived from this episode.
func (e Episode) ArtifactName() string {
	return fmt.Sprintf("episode_%04d", e.Number)
}

// Texts returns the fact text followed by the shop text when present.
func (e Episode) Texts() []string {
	texts := []string{e.Fact.Text}
	if e.Shop != nil {
		texts = append(texts, e.Shop.Text)
	}
	return texts
}

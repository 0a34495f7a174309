package bank

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/Arsalank7862/caffeine-chronicles/internal/config"
)

//go:embed facts.toml
var embeddedFacts []byte

//go:embed shops.toml
var embeddedShops []byte

// Catalog is an immutable ordered list of content items. Item identity is
// its index; rotation state records indices, so the embedded portion of a
// catalog must never be reordered.
type Catalog struct {
	name  string
	items []string
}

// NewCatalog builds a catalog from the given items.
func NewCatalog(name string, items []string) Catalog {
	copied := make([]string, len(items))
	copy(copied, items)
	return Catalog{name: name, items: copied}
}

// Name returns the catalog's label for logs and errors.
func (c Catalog) Name() string { return c.name }

// Len returns the number of items in the catalog.
func (c Catalog) Len() int { return len(c.items) }

// Item returns the item at the given index.
func (c Catalog) Item(i int) (string, error) {
	if i < 0 || i >= len(c.items) {
		return "", fmt.Errorf("catalog %s: index %d out of range [0,%d)", c.name, i, len(c.items))
	}
	return c.items[i], nil
}

// Items returns a copy of the catalog contents.
func (c Catalog) Items() []string {
	copied := make([]string, len(c.items))
	copy(copied, c.items)
	return copied
}

// Bank bundles the fact and shop catalogs consumed by the selector.
type Bank struct {
	Facts Catalog
	Shops Catalog
}

type catalogFile struct {
	Items []string `toml:"items"`
}

// Load assembles the content bank: the embedded catalogs, with any
// configured extra files appended after them so embedded indices stay
// stable across releases.
func Load(cfg *config.Config) (*Bank, error) {
	facts, err := parseCatalog("facts", embeddedFacts)
	if err != nil {
		return nil, err
	}
	shops, err := parseCatalog("shops", embeddedShops)
	if err != nil {
		return nil, err
	}

	if cfg != nil {
		facts, err = appendExtra(facts, "facts", cfg.Content.ExtraFactsFile)
		if err != nil {
			return nil, err
		}
		shops, err = appendExtra(shops, "shops", cfg.Content.ExtraShopsFile)
		if err != nil {
			return nil, err
		}
	}

	return &Bank{
		Facts: NewCatalog("facts", facts),
		Shops: NewCatalog("shops", shops),
	}, nil
}

func parseCatalog(name string, data []byte) ([]string, error) {
	var file catalogFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s catalog: %w", name, err)
	}
	items := make([]string, 0, len(file.Items))
	for _, item := range file.Items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items, nil
}

func appendExtra(items []string, name, path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return items, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read extra %s file: %w", name, err)
	}
	extra, err := parseCatalog(name, data)
	if err != nil {
		return nil, err
	}
	return append(items, extra...), nil
}

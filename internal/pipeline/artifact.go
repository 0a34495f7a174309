package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/Arsalank7862/caffeine-chronicles/internal/fileutil"
	"github.com/Arsalank7862/caffeine-chronicles/internal/rotation"
	"github.com/Arsalank7862/caffeine-chronicles/internal/services"
)

// episodeArtifact is the JSON document written alongside each run. It is
// the generation-stage output other tooling can consume without touching
// the state file or the ledger.
type episodeArtifact struct {
	Episode int                   `json:"episode"`
	Type    rotation.Kind         `json:"type"`
	Header  string                `json:"header"`
	Texts   []string              `json:"texts"`
	Fact    rotation.ContentItem  `json:"fact"`
	Shop    *rotation.ContentItem `json:"shop,omitempty"`
}

// writeArtifact persists the episode JSON into the output directory and
// returns its path.
func (p *Pipeline) writeArtifact(episode rotation.Episode) (string, error) {
	if err := os.MkdirAll(p.cfg.Paths.OutputDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "select", "artifact", "create output directory", err)
	}

	doc := episodeArtifact{
		Episode: episode.Number,
		Type:    episode.Kind,
		Header:  episode.Header(),
		Texts:   episode.Texts(),
		Fact:    episode.Fact,
		Shop:    episode.Shop,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "select", "artifact", "encode episode", err)
	}
	data = append(data, '\n')

	path := filepath.Join(p.cfg.Paths.OutputDir, episode.ArtifactName()+".json")
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "select", "artifact", "write episode file", err)
	}
	return path, nil
}

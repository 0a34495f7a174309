package rotation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Arsalank7862/caffeine-chronicles/internal/fileutil"
)

// State is the durable rotation record: the episode counter plus the
// catalog indices already used in the current cycle. Used indices are kept
// in selection order. The JSON shape is additive-only so older state files
// stay readable across releases.
type State struct {
	Episode   int   `json:"episode"`
	UsedFacts []int `json:"used_facts"`
	UsedShops []int `json:"used_shops"`
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := State{Episode: s.Episode}
	if s.UsedFacts != nil {
		out.UsedFacts = append([]int{}, s.UsedFacts...)
	}
	if s.UsedShops != nil {
		out.UsedShops = append([]int{}, s.UsedShops...)
	}
	return out
}

// LoadState reads the rotation state from path. A missing file is not an
// error: the zero state is returned so the first invocation starts a fresh
// rotation.
func LoadState(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("read state file: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("parse state file %s: %w", path, err)
	}
	return state, nil
}

// SaveState persists the rotation state to path via an atomic
// write-then-rename, so an interrupted save leaves the previously committed
// state intact.
func SaveState(path string, state State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("save state file: %w", err)
	}
	return nil
}

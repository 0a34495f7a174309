package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Arsalank7862/caffeine-chronicles/internal/config"
	"github.com/Arsalank7862/caffeine-chronicles/internal/rotation"
	"github.com/Arsalank7862/caffeine-chronicles/internal/services"
)

var commandContext = exec.CommandContext

// Client defines video rendering behaviour.
type Client interface {
	Render(ctx context.Context, episode rotation.Episode, outputDir string) (string, error)
}

// Settings holds the render parameters for a vertical short.
type Settings struct {
	Width           int
	Height          int
	FPS             int
	DurationSeconds int
	TextAnimate     float64
	BackgroundMusic string
}

// SettingsFromConfig derives render settings from the video config section.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Width:           cfg.Video.Width,
		Height:          cfg.Video.Height,
		FPS:             cfg.Video.FPS,
		DurationSeconds: cfg.Video.DurationSeconds,
		TextAnimate:     cfg.Video.TextAnimateSeconds,
		BackgroundMusic: cfg.Video.BackgroundMusicFile,
	}
}

// Option configures the CLI renderer.
type Option func(*CLI)

// WithBinary overrides the default ffmpeg binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI renders episodes by shelling out to ffmpeg.
type CLI struct {
	binary   string
	settings Settings
}

// NewCLI constructs a renderer with the given settings.
func NewCLI(settings Settings, opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg", settings: settings}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Render produces the episode video under outputDir and returns its path.
// The video is a solid-background vertical clip with the episode header and
// text drawn on, backed by the configured music track or silence.
func (c *CLI) Render(ctx context.Context, episode rotation.Episode, outputDir string) (string, error) {
	if strings.TrimSpace(outputDir) == "" {
		return "", services.Wrap(services.ErrRender, "render", "prepare", "output directory required", nil)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrRender, "render", "prepare", "create output directory", err)
	}

	outputPath := filepath.Join(outputDir, episode.ArtifactName()+".mp4")
	args, err := c.buildArgs(episode, outputPath)
	if err != nil {
		return "", err
	}

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := tailLines(stderr.String(), 6)
		if detail != "" {
			err = fmt.Errorf("%w: %s", err, detail)
		}
		return "", services.Wrap(services.ErrRender, "render", "encode", "ffmpeg failed", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return "", services.Wrap(services.ErrRender, "render", "verify", "output file missing", err)
	}
	if info.Size() == 0 {
		return "", services.Wrap(services.ErrRender, "render", "verify", "output file empty", nil)
	}
	return outputPath, nil
}

func (c *CLI) buildArgs(episode rotation.Episode, outputPath string) ([]string, error) {
	s := c.settings
	if s.Width <= 0 || s.Height <= 0 || s.FPS <= 0 || s.DurationSeconds <= 0 {
		return nil, services.Wrap(services.ErrRender, "render", "prepare", "invalid video settings", nil)
	}

	args := []string{
		"-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=0x2B1B0E:s=%dx%d:r=%d:d=%d", s.Width, s.Height, s.FPS, s.DurationSeconds),
	}

	music := strings.TrimSpace(s.BackgroundMusic)
	if music != "" {
		if _, err := os.Stat(music); err != nil {
			return nil, services.Wrap(services.ErrRender, "render", "prepare", "background music file unreadable", err)
		}
		args = append(args, "-stream_loop", "-1", "-i", music)
	} else {
		args = append(args, "-f", "lavfi", "-i", "anullsrc=channel_layout=stereo:sample_rate=44100")
	}

	args = append(args,
		"-filter_complex", c.textFilter(episode),
		"-map", "[v]",
		"-map", "1:a",
		"-c:v", "libx264",
		"-preset", "medium",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "128k",
		"-t", fmt.Sprintf("%d", s.DurationSeconds),
		"-shortest",
		"-movflags", "+faststart",
		outputPath,
	)
	return args, nil
}

// textFilter builds the drawtext chain: the header near the top, the fact
// body centred, and the shop spotlight below it when present. Text fades in
// over the configured animation window.
func (c *CLI) textFilter(episode rotation.Episode) string {
	s := c.settings
	fade := s.TextAnimate
	if fade <= 0 {
		fade = 1
	}
	alpha := fmt.Sprintf("min(t/%.2f\\,1)", fade)

	var filters []string
	filters = append(filters, drawText(escapeText(episode.Header()), 64, "(h/6)", "0xD4A574", alpha))

	bodyY := "(h/2-text_h/2)"
	filters = append(filters, drawText(escapeText(wrapText(episode.Fact.Text, 26)), 56, bodyY, "white", alpha))

	if episode.Shop != nil {
		filters = append(filters, drawText(escapeText(wrapText("Try: "+episode.Shop.Text, 30)), 40, "(h*3/4)", "0xD4A574", alpha))
	}
	filters = append(filters, sparkleFilters(episode.Number, s.Width, s.Height)...)

	chain := "[0:v]" + strings.Join(filters, ",") + "[v]"
	return chain
}

const sparkleCount = 6

// sparkleFilters adds gold glint glyphs at positions derived from the
// episode number, so re-rendering an episode reproduces the same frame
// decoration. Each glyph pulses on its own phase and speed.
func sparkleFilters(episodeNumber, width, height int) []string {
	rng := rand.New(rand.NewPCG(uint64(episodeNumber), 0))
	filters := make([]string, 0, sparkleCount)
	for i := 0; i < sparkleCount; i++ {
		x := rng.IntN(width)
		y := rng.IntN(height)
		size := 18 + rng.IntN(18)
		speed := 1.5 + rng.Float64()*2.5
		phase := rng.Float64() * 2 * math.Pi
		pulse := fmt.Sprintf("0.5+0.5*sin(%.2f*t+%.2f)", speed, phase)
		filters = append(filters, fmt.Sprintf(
			"drawtext=text='✦':fontsize=%d:fontcolor=0xFFD700:alpha='%s':x=%d:y=%d",
			size, pulse, x, y,
		))
	}
	return filters
}

func drawText(text string, size int, y, color, alpha string) string {
	return fmt.Sprintf(
		"drawtext=text='%s':fontsize=%d:fontcolor=%s:alpha='%s':x=(w-text_w)/2:y=%s:line_spacing=18",
		text, size, color, alpha, y,
	)
}

// wrapText folds text onto lines no wider than limit runes, breaking on
// spaces only.
func wrapText(text string, limit int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > limit {
			lines = append(lines, current)
			current = word
			continue
		}
		current += " " + word
	}
	lines = append(lines, current)
	return strings.Join(lines, "\n")
}

// escapeText escapes characters with meaning inside a drawtext expression.
func escapeText(text string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\\\'`,
		`:`, `\:`,
		`%`, `\%`,
	)
	return replacer.Replace(text)
}

func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

var _ Client = (*CLI)(nil)

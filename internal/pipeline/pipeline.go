package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/Arsalank7862/caffeine-chronicles/internal/bank"
	"github.com/Arsalank7862/caffeine-chronicles/internal/config"
	"github.com/Arsalank7862/caffeine-chronicles/internal/ledger"
	"github.com/Arsalank7862/caffeine-chronicles/internal/logging"
	"github.com/Arsalank7862/caffeine-chronicles/internal/notifications"
	"github.com/Arsalank7862/caffeine-chronicles/internal/rotation"
	"github.com/Arsalank7862/caffeine-chronicles/internal/services"
	"github.com/Arsalank7862/caffeine-chronicles/internal/services/ffmpeg"
	"github.com/Arsalank7862/caffeine-chronicles/internal/services/youtube"
)

// Mode selects how far a run goes after content selection.
type Mode string

const (
	// ModeFull selects, renders, and publishes.
	ModeFull Mode = "full"
	// ModeSkipUpload selects and renders but never contacts YouTube.
	ModeSkipUpload Mode = "skip-upload"
	// ModeContentOnly stops after the episode artifact is written.
	ModeContentOnly Mode = "content-only"
)

// Result summarizes a completed run.
type Result struct {
	RunID        string
	Episode      rotation.Episode
	Mode         Mode
	ArtifactPath string
	VideoPath    string
	VideoID      string
	VideoURL     string
}

// Pipeline drives one select-render-publish invocation. Construct with New
// and call Run once per scheduler tick.
type Pipeline struct {
	cfg       *config.Config
	logger    *slog.Logger
	bank      *bank.Bank
	store     *ledger.Store
	renderer  ffmpeg.Client
	publisher youtube.Client
	notifier  notifications.Service
	selectOpt rotation.Options
}

// Option customizes pipeline construction, mainly for tests.
type Option func(*Pipeline)

// WithRenderer overrides the ffmpeg renderer.
func WithRenderer(client ffmpeg.Client) Option {
	return func(p *Pipeline) { p.renderer = client }
}

// WithPublisher overrides the YouTube publisher.
func WithPublisher(client youtube.Client) Option {
	return func(p *Pipeline) { p.publisher = client }
}

// WithNotifier overrides the notification service.
func WithNotifier(svc notifications.Service) Option {
	return func(p *Pipeline) { p.notifier = svc }
}

// WithSelection overrides the rotation options, letting tests inject a
// deterministic random source.
func WithSelection(opts rotation.Options) Option {
	return func(p *Pipeline) { p.selectOpt = opts }
}

// New assembles a pipeline from config. The publisher may be nil when the
// mode will never reach the publish stage; Run validates this lazily so
// --skip-upload works without credentials.
func New(cfg *config.Config, logger *slog.Logger, store *ledger.Store, opts ...Option) (*Pipeline, error) {
	contentBank, err := bank.Load(cfg)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:       cfg,
		logger:    logger,
		bank:      contentBank,
		store:     store,
		renderer:  ffmpeg.NewCLI(ffmpeg.SettingsFromConfig(cfg), ffmpeg.WithBinary(cfg.FFmpegBinary())),
		notifier:  notifications.NewService(cfg),
		selectOpt: rotation.Options{ShopInterval: cfg.Content.ShopInterval},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logging.NewNop()
	}
	return p, nil
}

// Run executes one pipeline invocation in the given mode. The rotation
// state is committed as soon as an episode is selected, so a later render
// or publish failure never causes content reuse; retries move on to fresh
// content and the failed episode is traced through the ledger.
func (p *Pipeline) Run(ctx context.Context, mode Mode) (*Result, error) {
	lock := flock.New(filepath.Join(p.cfg.Paths.StateDir, "chronicle.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "select", "lock", "acquire run lock", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "select", "lock", "another chronicle run is already in progress", nil)
	}
	defer func() { _ = lock.Unlock() }()

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("pipeline run starting",
		logging.String(logging.FieldEventType, "run_started"),
		logging.String("mode", string(mode)))

	result, err := p.run(ctx, runID, mode)
	if err != nil {
		logger.Error("pipeline run failed",
			logging.String(logging.FieldEventType, "run_failed"),
			logging.String("category", services.FailureCategory(err)),
			logging.Error(err))
		return nil, err
	}

	logger.Info("pipeline run complete",
		logging.String(logging.FieldEventType, "run_completed"),
		logging.Int(logging.FieldEpisode, result.Episode.Number),
		logging.String("mode", string(mode)))
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, runID string, mode Mode) (*Result, error) {
	episode, record, err := p.selectEpisode(ctx, runID)
	if err != nil {
		return nil, err
	}

	ctx = services.WithEpisode(ctx, episode.Number)
	result := &Result{RunID: runID, Episode: episode, Mode: mode}

	artifactPath, err := p.writeArtifact(episode)
	if err != nil {
		p.recordFailure(ctx, record, err)
		return nil, err
	}
	result.ArtifactPath = artifactPath
	record.ArtifactPath = artifactPath
	if err := p.store.Update(ctx, record); err != nil {
		return nil, err
	}
	p.notify(ctx, func() error { return p.notifier.NotifyEpisodeSelected(ctx, episode) })

	if mode == ModeContentOnly {
		return result, nil
	}

	videoPath, err := p.render(ctx, episode, record)
	if err != nil {
		p.recordFailure(ctx, record, err)
		return nil, err
	}
	result.VideoPath = videoPath

	if mode == ModeSkipUpload {
		return result, nil
	}

	videoID, err := p.publish(ctx, episode, videoPath, record)
	if err != nil {
		p.recordFailure(ctx, record, err)
		return nil, err
	}
	result.VideoID = videoID
	result.VideoURL = youtube.WatchURL(videoID)
	return result, nil
}

// selectEpisode picks the next episode and commits the claim to the state
// file before anything else runs. The ledger record is created only after
// the claim is durable.
func (p *Pipeline) selectEpisode(ctx context.Context, runID string) (rotation.Episode, *ledger.Record, error) {
	statePath := p.cfg.StatePath()
	state, err := rotation.LoadState(statePath)
	if err != nil {
		return rotation.Episode{}, nil, services.Wrap(services.ErrConfiguration, "select", "state", "load rotation state", err)
	}

	episode, nextState, err := rotation.Select(p.bank, state, p.selectOpt)
	if err != nil {
		return rotation.Episode{}, nil, err
	}

	if err := rotation.SaveState(statePath, nextState); err != nil {
		return rotation.Episode{}, nil, services.Wrap(services.ErrConfiguration, "select", "state", "commit rotation state", err)
	}

	record, err := p.store.NewRun(ctx, runID, episode)
	if err != nil {
		return rotation.Episode{}, nil, err
	}

	stageLogger := logging.WithContext(services.WithStage(ctx, "select"), p.logger)
	stageLogger.Info("episode selected",
		logging.String(logging.FieldEventType, "episode_selected"),
		logging.Int(logging.FieldEpisode, episode.Number),
		logging.String("kind", string(episode.Kind)),
		logging.Int("fact_index", episode.Fact.Index))
	return episode, record, nil
}

func (p *Pipeline) render(ctx context.Context, episode rotation.Episode, record *ledger.Record) (string, error) {
	stageCtx := services.WithStage(ctx, "render")
	logger := logging.WithContext(stageCtx, p.logger)
	logger.Info("render starting", logging.String(logging.FieldEventType, "render_started"))

	record.Status = ledger.StatusRendering
	if err := p.store.Update(ctx, record); err != nil {
		return "", err
	}

	videoPath, err := p.renderer.Render(stageCtx, episode, p.cfg.Paths.OutputDir)
	if err != nil {
		return "", err
	}

	record.Status = ledger.StatusRendered
	record.ArtifactPath = videoPath
	if err := p.store.Update(ctx, record); err != nil {
		return "", err
	}

	logger.Info("render complete",
		logging.String(logging.FieldEventType, "render_completed"),
		logging.String("video", videoPath))
	p.notify(ctx, func() error { return p.notifier.NotifyRenderCompleted(ctx, episode, videoPath) })
	return videoPath, nil
}

func (p *Pipeline) publish(ctx context.Context, episode rotation.Episode, videoPath string, record *ledger.Record) (string, error) {
	if p.publisher == nil {
		creds, err := youtube.LoadCredentials(p.cfg.YouTube.TokenFile)
		if err != nil {
			return "", err
		}
		p.publisher = youtube.NewService(creds)
	}

	stageCtx := services.WithStage(ctx, "publish")
	logger := logging.WithContext(stageCtx, p.logger)
	logger.Info("publish starting", logging.String(logging.FieldEventType, "publish_started"))

	record.Status = ledger.StatusPublishing
	if err := p.store.Update(ctx, record); err != nil {
		return "", err
	}

	meta := youtube.BuildMetadata(episode, p.cfg)
	videoID, err := p.publisher.Upload(stageCtx, videoPath, meta)
	if err != nil {
		return "", err
	}

	record.Status = ledger.StatusPublished
	record.VideoID = videoID
	if err := p.store.Update(ctx, record); err != nil {
		return "", err
	}

	logger.Info("publish complete",
		logging.String(logging.FieldEventType, "publish_completed"),
		logging.String("video_id", videoID),
		logging.String("url", youtube.WatchURL(videoID)))
	p.notify(ctx, func() error { return p.notifier.NotifyPublishCompleted(ctx, episode, videoID) })
	return videoID, nil
}

// recordFailure marks the ledger record failed and fires the error
// notification. Both are best-effort; the original error is what callers
// act on.
func (p *Pipeline) recordFailure(ctx context.Context, record *ledger.Record, cause error) {
	if record != nil {
		record.SetFailed(services.FailureCategory(cause), cause.Error())
		if err := p.store.Update(ctx, record); err != nil {
			p.logger.Warn("failed to record run failure", logging.Error(err))
		}
	}
	label := "pipeline run"
	if record != nil {
		label = fmt.Sprintf("episode %d", record.Episode)
	}
	p.notify(ctx, func() error { return p.notifier.NotifyError(ctx, cause, label) })
}

func (p *Pipeline) notify(ctx context.Context, fn func() error) {
	if err := fn(); err != nil {
		logging.WithContext(ctx, p.logger).Warn("notification delivery failed", logging.Error(err))
	}
}

// ExitCode maps a Run error onto the scheduler exit-code contract.
func ExitCode(err error) int {
	return services.ExitCode(err)
}

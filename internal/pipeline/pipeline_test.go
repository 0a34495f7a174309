package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"github.com/Arsalank7862/caffeine-chronicles/internal/config"
	"github.com/Arsalank7862/caffeine-chronicles/internal/ledger"
	"github.com/Arsalank7862/caffeine-chronicles/internal/logging"
	"github.com/Arsalank7862/caffeine-chronicles/internal/rotation"
	"github.com/Arsalank7862/caffeine-chronicles/internal/services"
	"github.com/Arsalank7862/caffeine-chronicles/internal/services/youtube"
	"github.com/Arsalank7862/caffeine-chronicles/internal/testsupport"
)

type fakeRenderer struct {
	calls    int
	err      error
	rendered []rotation.Episode
}

func (f *fakeRenderer) Render(_ context.Context, episode rotation.Episode, outputDir string) (string, error) {
	f.calls++
	f.rendered = append(f.rendered, episode)
	if f.err != nil {
		return "", f.err
	}
	path := filepath.Join(outputDir, episode.ArtifactName()+".mp4")
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type fakePublisher struct {
	calls   int
	err     error
	lastRef youtube.Metadata
	videoID string
}

func (f *fakePublisher) Upload(_ context.Context, _ string, meta youtube.Metadata) (string, error) {
	f.calls++
	f.lastRef = meta
	if f.err != nil {
		return "", f.err
	}
	if f.videoID == "" {
		return "video123", nil
	}
	return f.videoID, nil
}

type pipelineFixture struct {
	cfg       *config.Config
	store     *ledger.Store
	pipe      *Pipeline
	renderer  *fakeRenderer
	publisher *fakePublisher
}

func newFixture(t *testing.T, opts ...Option) *pipelineFixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)

	renderer := &fakeRenderer{}
	publisher := &fakePublisher{}
	seeded := rotation.Options{
		ShopInterval: cfg.Content.ShopInterval,
		Rand:         rand.New(rand.NewPCG(1, 2)),
	}
	allOpts := append([]Option{
		WithRenderer(renderer),
		WithPublisher(publisher),
		WithSelection(seeded),
	}, opts...)

	pipe, err := New(cfg, logging.NewNop(), store, allOpts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &pipelineFixture{cfg: cfg, store: store, pipe: pipe, renderer: renderer, publisher: publisher}
}

func (f *pipelineFixture) loadState(t *testing.T) rotation.State {
	t.Helper()
	state, err := rotation.LoadState(f.cfg.StatePath())
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	return state
}

func TestRunFullPipeline(t *testing.T) {
	f := newFixture(t)

	result, err := f.pipe.Run(context.Background(), ModeFull)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Episode.Number != 1 {
		t.Errorf("expected episode 1, got %d", result.Episode.Number)
	}
	if result.VideoID != "video123" {
		t.Errorf("expected video id, got %q", result.VideoID)
	}
	if f.renderer.calls != 1 || f.publisher.calls != 1 {
		t.Errorf("expected 1 render and 1 publish, got %d/%d", f.renderer.calls, f.publisher.calls)
	}

	record, err := f.store.Last(context.Background())
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if record.Status != ledger.StatusPublished {
		t.Errorf("expected published status, got %s", record.Status)
	}
	if record.VideoID != "video123" {
		t.Errorf("ledger missing video id: %+v", record)
	}

	state := f.loadState(t)
	if state.Episode != 1 || len(state.UsedFacts) != 1 {
		t.Errorf("state not advanced: %+v", state)
	}
}

func TestRunWritesEpisodeArtifact(t *testing.T) {
	f := newFixture(t)

	result, err := f.pipe.Run(context.Background(), ModeContentOnly)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(result.ArtifactPath)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	var doc struct {
		Episode int      `json:"episode"`
		Type    string   `json:"type"`
		Header  string   `json:"header"`
		Texts   []string `json:"texts"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode artifact: %v", err)
	}
	if doc.Episode != 1 || doc.Type != "fact" {
		t.Errorf("unexpected artifact content: %+v", doc)
	}
	if doc.Header != "DID YOU KNOW THAT..." {
		t.Errorf("unexpected header: %q", doc.Header)
	}
	if len(doc.Texts) != 1 || doc.Texts[0] == "" {
		t.Errorf("expected one non-empty text, got %v", doc.Texts)
	}
}

func TestContentOnlySkipsRenderAndPublish(t *testing.T) {
	f := newFixture(t)

	if _, err := f.pipe.Run(context.Background(), ModeContentOnly); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if f.renderer.calls != 0 || f.publisher.calls != 0 {
		t.Errorf("expected no render/publish, got %d/%d", f.renderer.calls, f.publisher.calls)
	}

	state := f.loadState(t)
	if state.Episode != 1 {
		t.Errorf("content-only run must still claim content: %+v", state)
	}
}

func TestSkipUploadStopsAfterRender(t *testing.T) {
	f := newFixture(t)

	result, err := f.pipe.Run(context.Background(), ModeSkipUpload)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if f.renderer.calls != 1 {
		t.Errorf("expected render, got %d calls", f.renderer.calls)
	}
	if f.publisher.calls != 0 {
		t.Errorf("expected no publish, got %d calls", f.publisher.calls)
	}
	if result.VideoPath == "" || result.VideoID != "" {
		t.Errorf("unexpected result: %+v", result)
	}

	record, err := f.store.Last(context.Background())
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if record.Status != ledger.StatusRendered {
		t.Errorf("expected rendered status, got %s", record.Status)
	}
}

// A publish failure must not roll back the rotation claim: the episode
// stays consumed and the next run picks fresh content.
func TestPublishFailureLeavesStateAdvanced(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = services.Wrap(services.ErrPublishQuota, "publish", "insert video", "quota exhausted", nil)

	_, err := f.pipe.Run(context.Background(), ModeFull)
	if !errors.Is(err, services.ErrPublishQuota) {
		t.Fatalf("expected quota error, got %v", err)
	}
	if code := ExitCode(err); code != services.ExitPublish {
		t.Errorf("expected exit code %d, got %d", services.ExitPublish, code)
	}

	state := f.loadState(t)
	if state.Episode != 1 || len(state.UsedFacts) != 1 {
		t.Errorf("claim must survive publish failure: %+v", state)
	}

	record, err := f.store.Last(context.Background())
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if record.Status != ledger.StatusFailed {
		t.Errorf("expected failed status, got %s", record.Status)
	}
	if record.ErrorCategory != "publish_quota" {
		t.Errorf("unexpected error category %q", record.ErrorCategory)
	}

	firstFact := state.UsedFacts[0]
	f.publisher.err = nil
	result, err := f.pipe.Run(context.Background(), ModeFull)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if result.Episode.Number != 2 {
		t.Errorf("expected episode 2 on retry, got %d", result.Episode.Number)
	}
	if result.Episode.Fact.Index == firstFact {
		t.Errorf("retry reused fact %d", firstFact)
	}
}

// Credentials missing at the publish stage are an auth failure, not a
// configuration one: the episode is already claimed and rendered, so the
// run must exit with the publish code and the ledger must say publish_auth.
func TestMissingCredentialsFailAsPublishAuth(t *testing.T) {
	t.Setenv("YOUTUBE_CLIENT_ID", "")
	t.Setenv("YOUTUBE_CLIENT_SECRET", "")
	t.Setenv("YOUTUBE_REFRESH_TOKEN", "")

	f := newFixture(t, WithPublisher(nil))

	_, err := f.pipe.Run(context.Background(), ModeFull)
	if !errors.Is(err, services.ErrPublishAuth) {
		t.Fatalf("expected publish auth error, got %v", err)
	}
	if errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("credential failure must not carry the configuration marker: %v", err)
	}
	if code := ExitCode(err); code != services.ExitPublish {
		t.Errorf("expected exit code %d, got %d", services.ExitPublish, code)
	}

	state := f.loadState(t)
	if state.Episode != 1 || len(state.UsedFacts) != 1 {
		t.Errorf("claim must survive credential failure: %+v", state)
	}

	record, err := f.store.Last(context.Background())
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if record.Status != ledger.StatusFailed || record.ErrorCategory != "publish_auth" {
		t.Errorf("unexpected failure record: status=%s category=%s", record.Status, record.ErrorCategory)
	}
}

func TestRenderFailureRecordsCategory(t *testing.T) {
	f := newFixture(t)
	f.renderer.err = services.Wrap(services.ErrRender, "render", "encode", "ffmpeg failed", nil)

	_, err := f.pipe.Run(context.Background(), ModeFull)
	if !errors.Is(err, services.ErrRender) {
		t.Fatalf("expected render error, got %v", err)
	}
	if code := ExitCode(err); code != services.ExitRender {
		t.Errorf("expected exit code %d, got %d", services.ExitRender, code)
	}

	record, err := f.store.Last(context.Background())
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if record.Status != ledger.StatusFailed || record.ErrorCategory != "render" {
		t.Errorf("unexpected failure record: %+v", record)
	}
}

func TestShopEpisodeCarriesBothTexts(t *testing.T) {
	f := newFixture(t, WithSelection(rotation.Options{
		ShopInterval: 1,
		Rand:         rand.New(rand.NewPCG(3, 4)),
	}))

	result, err := f.pipe.Run(context.Background(), ModeContentOnly)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Episode.Kind != rotation.KindFactWithShop {
		t.Fatalf("expected shop episode with interval 1, got %s", result.Episode.Kind)
	}
	if result.Episode.Shop == nil {
		t.Fatal("shop episode missing shop item")
	}
	if len(result.Episode.Texts()) != 2 {
		t.Errorf("expected fact and shop texts, got %v", result.Episode.Texts())
	}
}

func TestConcurrentRunBlockedByLock(t *testing.T) {
	f := newFixture(t)

	// Hold the lock the way a concurrent invocation would.
	held := mustHoldLock(t, filepath.Join(f.cfg.Paths.StateDir, "chronicle.lock"))
	defer held()

	_, err := f.pipe.Run(context.Background(), ModeContentOnly)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected lock failure, got %v", err)
	}

	state := f.loadState(t)
	if state.Episode != 0 {
		t.Errorf("blocked run must not claim content: %+v", state)
	}
}

func mustHoldLock(t *testing.T, path string) func() {
	t.Helper()
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil || !ok {
		t.Fatalf("could not pre-acquire lock: ok=%v err=%v", ok, err)
	}
	return func() { _ = lock.Unlock() }
}

func TestMetadataReachesPublisher(t *testing.T) {
	f := newFixture(t)

	if _, err := f.pipe.Run(context.Background(), ModeFull); err != nil {
		t.Fatalf("Run: %v", err)
	}
	meta := f.publisher.lastRef
	if meta.Title == "" || meta.Description == "" {
		t.Errorf("publisher received empty metadata: %+v", meta)
	}
	if meta.Privacy != f.cfg.YouTube.Privacy {
		t.Errorf("privacy not carried: %q", meta.Privacy)
	}
}

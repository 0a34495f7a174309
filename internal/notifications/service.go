package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Arsalank7862/caffeine-chronicles/internal/config"
	"github.com/Arsalank7862/caffeine-chronicles/internal/rotation"
)

const userAgent = "CaffeineChronicles/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyEpisodeSelected(ctx context.Context, episode rotation.Episode) error
	NotifyRenderCompleted(ctx context.Context, episode rotation.Episode, artifactPath string) error
	NotifyPublishCompleted(ctx context.Context, episode rotation.Episode, videoID string) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		enabled: eventToggles{
			selection: cfg.Notifications.Selection,
			render:    cfg.Notifications.Render,
			publish:   cfg.Notifications.Publish,
			errors:    cfg.Notifications.Errors,
		},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type eventToggles struct {
	selection bool
	render    bool
	publish   bool
	errors    bool
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	enabled  eventToggles
}

func (n *ntfyService) NotifyEpisodeSelected(ctx context.Context, episode rotation.Episode) error {
	if !n.enabled.selection {
		return nil
	}
	kind := "fact"
	if episode.Kind == rotation.KindFactWithShop {
		kind = "fact + shop spotlight"
	}
	data := payload{
		title:   "Chronicle - Episode Selected",
		message: fmt.Sprintf("☕ Episode #%d selected (%s)", episode.Number, kind),
		tags:    []string{"chronicle", "select", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRenderCompleted(ctx context.Context, episode rotation.Episode, artifactPath string) error {
	if !n.enabled.render {
		return nil
	}
	message := fmt.Sprintf("🎞️ Render complete: episode #%d", episode.Number)
	if artifactPath = strings.TrimSpace(artifactPath); artifactPath != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, artifactPath)
	}
	data := payload{
		title:   "Chronicle - Render Complete",
		message: message,
		tags:    []string{"chronicle", "render", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPublishCompleted(ctx context.Context, episode rotation.Episode, videoID string) error {
	if !n.enabled.publish {
		return nil
	}
	message := fmt.Sprintf("✅ Episode #%d is live", episode.Number)
	if videoID = strings.TrimSpace(videoID); videoID != "" {
		message = fmt.Sprintf("%s\nhttps://youtube.com/shorts/%s", message, videoID)
	}
	data := payload{
		title:    "Chronicle - Published",
		message:  message,
		tags:     []string{"chronicle", "publish", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.enabled.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("❌ Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Chronicle - Error",
		message:  builder.String(),
		tags:     []string{"chronicle", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Chronicle - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"chronicle", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyEpisodeSelected(context.Context, rotation.Episode) error { return nil }
func (noopService) NotifyRenderCompleted(context.Context, rotation.Episode, string) error {
	return nil
}
func (noopService) NotifyPublishCompleted(context.Context, rotation.Episode, string) error {
	return nil
}
func (noopService) NotifyError(context.Context, error, string) error { return nil }
func (noopService) TestNotification(context.Context) error           { return nil }

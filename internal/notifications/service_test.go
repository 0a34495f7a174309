package notifications

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Arsalank7862/caffeine-chronicles/internal/config"
	"github.com/Arsalank7862/caffeine-chronicles/internal/rotation"
	"github.com/Arsalank7862/caffeine-chronicles/internal/testsupport"
)

type capturedRequest struct {
	body     string
	title    string
	tags     string
	priority string
}

func newCaptureServer(t *testing.T) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read request body: %v", err)
		}
		captured = append(captured, capturedRequest{
			body:     string(body),
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
		})
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server, &captured
}

func newTestService(t *testing.T, topic string) (Service, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = topic
	return NewService(cfg), cfg
}

func TestNotifyEpisodeSelected(t *testing.T) {
	server, captured := newCaptureServer(t)
	svc, _ := newTestService(t, server.URL)

	episode := rotation.Episode{
		Number: 12,
		Kind:   rotation.KindFactOnly,
		Fact:   rotation.ContentItem{Index: 3, Text: "Espresso means pressed out."},
	}
	if err := svc.NotifyEpisodeSelected(context.Background(), episode); err != nil {
		t.Fatalf("NotifyEpisodeSelected: %v", err)
	}
	if len(*captured) != 1 {
		t.Fatalf("expected 1 request, got %d", len(*captured))
	}
	got := (*captured)[0]
	if got.title != "Chronicle - Episode Selected" {
		t.Errorf("unexpected title %q", got.title)
	}
	if !strings.Contains(got.body, "#12") {
		t.Errorf("body missing episode number: %q", got.body)
	}
	if !strings.Contains(got.tags, "select") {
		t.Errorf("unexpected tags %q", got.tags)
	}
}

func TestNotifyPublishCompletedIncludesVideoLink(t *testing.T) {
	server, captured := newCaptureServer(t)
	svc, _ := newTestService(t, server.URL)

	episode := rotation.Episode{Number: 3, Kind: rotation.KindFactWithShop}
	if err := svc.NotifyPublishCompleted(context.Background(), episode, "abc123"); err != nil {
		t.Fatalf("NotifyPublishCompleted: %v", err)
	}
	got := (*captured)[0]
	if !strings.Contains(got.body, "https://youtube.com/shorts/abc123") {
		t.Errorf("body missing video link: %q", got.body)
	}
	if got.priority != "high" {
		t.Errorf("expected high priority, got %q", got.priority)
	}
}

func TestNotifyErrorIncludesContext(t *testing.T) {
	server, captured := newCaptureServer(t)
	svc, _ := newTestService(t, server.URL)

	err := svc.NotifyError(context.Background(), errors.New("upload quota exceeded"), "episode 7")
	if err != nil {
		t.Fatalf("NotifyError: %v", err)
	}
	got := (*captured)[0]
	if !strings.Contains(got.body, "episode 7") {
		t.Errorf("body missing context label: %q", got.body)
	}
	if !strings.Contains(got.body, "upload quota exceeded") {
		t.Errorf("body missing error text: %q", got.body)
	}
	if got.priority != "high" {
		t.Errorf("expected high priority, got %q", got.priority)
	}
}

func TestDisabledEventsSkipped(t *testing.T) {
	server, captured := newCaptureServer(t)
	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Selection = false
	svc := NewService(cfg)

	episode := rotation.Episode{Number: 1, Kind: rotation.KindFactOnly}
	if err := svc.NotifyEpisodeSelected(context.Background(), episode); err != nil {
		t.Fatalf("NotifyEpisodeSelected: %v", err)
	}
	if len(*captured) != 0 {
		t.Fatalf("expected no requests for disabled event, got %d", len(*captured))
	}
}

func TestNoopServiceWithoutTopic(t *testing.T) {
	svc, _ := newTestService(t, "")
	if _, ok := svc.(noopService); !ok {
		t.Fatalf("expected noop service when topic unset, got %T", svc)
	}
	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("noop TestNotification: %v", err)
	}
}

func TestSendReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic rejected", http.StatusForbidden)
	}))
	t.Cleanup(server.Close)
	svc, _ := newTestService(t, server.URL)

	err := svc.TestNotification(context.Background())
	if err == nil {
		t.Fatal("expected error on 403 response")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("expected status code in error, got %v", err)
	}
}

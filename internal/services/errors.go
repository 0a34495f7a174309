package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used to classify stage failures. Wrap tags an error with
// one of these markers so the pipeline can map it to an exit code and the
// ledger can record a failure category.
var (
	ErrConfiguration    = errors.New("configuration error")
	ErrRender           = errors.New("render error")
	ErrPublishAuth      = errors.New("publish auth error")
	ErrPublishQuota     = errors.New("publish quota error")
	ErrPublishTransient = errors.New("publish transient error")
	ErrPublishUnknown   = errors.New("publish error")
)

// Exit codes surfaced to the invoking scheduler. Each stage fails with a
// distinct non-zero value so cron/systemd can tell where the run stopped.
const (
	ExitOK      = 0
	ExitSelect  = 1
	ExitRender  = 2
	ExitPublish = 3
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrPublishUnknown
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps a pipeline error to the process exit code contract:
// selection/configuration failures exit 1, render failures 2, publish
// failures 3.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrRender):
		return ExitRender
	case IsPublishError(err):
		return ExitPublish
	default:
		return ExitSelect
	}
}

// IsPublishError reports whether err carries any publish failure marker.
func IsPublishError(err error) bool {
	return errors.Is(err, ErrPublishAuth) ||
		errors.Is(err, ErrPublishQuota) ||
		errors.Is(err, ErrPublishTransient) ||
		errors.Is(err, ErrPublishUnknown)
}

// FailureCategory returns a short label for ledger records and notifications.
func FailureCategory(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrRender):
		return "render"
	case errors.Is(err, ErrPublishAuth):
		return "publish_auth"
	case errors.Is(err, ErrPublishQuota):
		return "publish_quota"
	case errors.Is(err, ErrPublishTransient):
		return "publish_transient"
	case errors.Is(err, ErrPublishUnknown):
		return "publish"
	default:
		return "unknown"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

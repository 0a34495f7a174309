package youtube

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"

	"github.com/Arsalank7862/caffeine-chronicles/internal/services"
)

const uploadChunkSize = 8 * 1024 * 1024

// Client defines video publishing behaviour.
type Client interface {
	Upload(ctx context.Context, videoPath string, meta Metadata) (string, error)
}

// Service uploads videos through the YouTube Data API v3.
type Service struct {
	creds Credentials
}

// NewService constructs a publisher from resolved credentials.
func NewService(creds Credentials) *Service {
	return &Service{creds: creds}
}

// Upload sends the video as a resumable upload and returns the video ID.
func (s *Service) Upload(ctx context.Context, videoPath string, meta Metadata) (string, error) {
	file, err := os.Open(videoPath)
	if err != nil {
		return "", services.Wrap(services.ErrPublishUnknown, "publish", "upload", "open video file", err)
	}
	defer file.Close()

	api, err := youtubeapi.NewService(ctx, option.WithTokenSource(s.creds.TokenSource(ctx)))
	if err != nil {
		return "", classify("build youtube service", err)
	}

	video := &youtubeapi.Video{
		Snippet: &youtubeapi.VideoSnippet{
			Title:       meta.Title,
			Description: meta.Description,
			Tags:        meta.Tags,
			CategoryId:  meta.CategoryID,
		},
		Status: &youtubeapi.VideoStatus{
			PrivacyStatus:           meta.Privacy,
			SelfDeclaredMadeForKids: false,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}

	call := api.Videos.Insert([]string{"snippet", "status"}, video).
		Media(file, googleapi.ChunkSize(uploadChunkSize)).
		Context(ctx)

	response, err := call.Do()
	if err != nil {
		return "", classify("insert video", err)
	}
	if response == nil || response.Id == "" {
		return "", services.Wrap(services.ErrPublishUnknown, "publish", "upload", "response missing video id", nil)
	}
	return response.Id, nil
}

// WatchURL returns the public Shorts URL for a video ID.
func WatchURL(videoID string) string {
	return fmt.Sprintf("https://youtube.com/shorts/%s", videoID)
}

// classify maps an API failure onto the publish error taxonomy: auth
// problems, quota exhaustion, transient server/network trouble, or unknown.
func classify(operation string, err error) error {
	marker := services.ErrPublishUnknown

	var apiErr *googleapi.Error
	var netErr net.Error
	switch {
	case errors.As(err, &apiErr):
		marker = classifyAPIError(apiErr)
	case errors.As(err, &netErr), errors.Is(err, context.DeadlineExceeded):
		marker = services.ErrPublishTransient
	case strings.Contains(err.Error(), "oauth2"):
		marker = services.ErrPublishAuth
	}

	return services.Wrap(marker, "publish", operation, "youtube api request failed", err)
}

func classifyAPIError(apiErr *googleapi.Error) error {
	if isQuotaError(apiErr) {
		return services.ErrPublishQuota
	}
	switch {
	case apiErr.Code == 401 || apiErr.Code == 403:
		return services.ErrPublishAuth
	case apiErr.Code == 429:
		return services.ErrPublishQuota
	case apiErr.Code >= 500:
		return services.ErrPublishTransient
	default:
		return services.ErrPublishUnknown
	}
}

func isQuotaError(apiErr *googleapi.Error) bool {
	for _, item := range apiErr.Errors {
		switch item.Reason {
		case "quotaExceeded", "dailyLimitExceeded", "rateLimitExceeded", "uploadLimitExceeded", "userRateLimitExceeded":
			return true
		}
	}
	return false
}

var _ Client = (*Service)(nil)

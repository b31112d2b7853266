package internal

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
)

const (
	playerPath = "/youtubei/v1/player"

	playabilityOK    = "OK"
	playabilityError = "ERROR"

	generatedKind = "asr"
)

// Client lists and fetches YouTube caption tracks
type Client struct {
	http   *http.Client
	logger *slog.Logger
}

type clientSettings struct {
	httpClient *http.Client
	timeout    time.Duration
	rps        float64
	retry      RetryConfig
	userAgent  string
	logger     *slog.Logger
}

// ClientOption customizes Client creation
type ClientOption func(*clientSettings)

// WithHTTPClient sets the HTTP client requests are sent through. The client
// is copied, never modified.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(s *clientSettings) {
		s.httpClient = c
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(s *clientSettings) {
		s.timeout = timeout
	}
}

// WithRateLimit caps requests per second; zero or less disables pacing
func WithRateLimit(rps float64) ClientOption {
	return func(s *clientSettings) {
		s.rps = rps
	}
}

// WithRetries sets how often transient failures are retried
func WithRetries(n int) ClientOption {
	return func(s *clientSettings) {
		s.retry.MaxRetries = n
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) ClientOption {
	return func(s *clientSettings) {
		s.userAgent = ua
	}
}

// WithLogger sets the logger used for debug output
func WithLogger(logger *slog.Logger) ClientOption {
	return func(s *clientSettings) {
		s.logger = logger
	}
}

// NewClient creates a captions client
func NewClient(options ...ClientOption) *Client {
	s := &clientSettings{
		retry:  DefaultRetryConfig,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, option := range options {
		option(s)
	}

	hc := newHTTPClient(s.httpClient, s.rps, s.retry, s.userAgent, s.logger)
	if s.timeout > 0 {
		hc.Timeout = s.timeout
	}
	hc.Transport = playabilityTransport{next: hc.Transport}

	return &Client{
		http:   hc,
		logger: s.logger,
	}
}

// List returns the transcripts available for videoID. A video without
// caption tracks yields an empty list.
func (c *Client) List(ctx context.Context, videoID string) (*TranscriptList, error) {
	c.logger.Debug("listing transcripts", slog.String("video_id", videoID))

	// a fresh library client per video; it switches player clients on age gates
	yt := &youtube.Client{HTTPClient: c.http}
	video, err := yt.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, captionsError(videoID, err)
	}

	list := &TranscriptList{VideoID: videoID}
	for _, track := range video.CaptionTracks {
		list.addTranscript(&Transcript{
			VideoID:        videoID,
			Language:       cmp.Or(track.Name.SimpleText, track.LanguageCode),
			LanguageCode:   track.LanguageCode,
			IsGenerated:    track.Kind == generatedKind,
			IsTranslatable: track.IsTranslatable,
			url:            strings.Replace(track.BaseURL, "&fmt=srv3", "", 1),
			client:         c,
			yt:             yt,
			video:          video,
		})
	}

	c.logger.Debug("transcripts listed",
		slog.String("video_id", videoID),
		slog.Int("manual", len(list.manual)),
		slog.Int("generated", len(list.generated)))

	return list, nil
}

// captionsError maps library and transport failures onto TranscriptError.
// Anything unrecognized, cancellation included, is wrapped as is.
func captionsError(videoID string, err error) error {
	var (
		playability *youtube.ErrPlayabiltyStatus
		status      youtube.ErrUnexpectedStatusCode
		gateway     *httpStatusError
		syntax      *json.SyntaxError
	)

	switch {
	case errors.Is(err, youtube.ErrInvalidCharactersInVideoID), errors.Is(err, youtube.ErrVideoIDMinLength):
		return newTranscriptError(videoID, ErrInvalidVideoID, "")
	case errors.Is(err, youtube.ErrVideoPrivate):
		return newTranscriptError(videoID, ErrVideoUnavailable, "private video")
	case errors.Is(err, youtube.ErrLoginRequired):
		return newTranscriptError(videoID, ErrAgeRestricted, "")
	case errors.Is(err, youtube.ErrTranscriptDisabled):
		return newTranscriptError(videoID, ErrTranscriptsDisabled, "")
	case errors.As(err, &playability):
		if playability.Status == playabilityError {
			return newTranscriptError(videoID, ErrVideoUnavailable, playability.Reason)
		}
		return newTranscriptError(videoID, ErrVideoUnplayable, playability.Reason)
	case errors.As(err, &status):
		return checkStatus(videoID, int(status))
	case errors.As(err, &gateway):
		return newTranscriptError(videoID, ErrYouTubeRequestFailed, gateway.Error())
	case errors.As(err, &syntax):
		return newTranscriptError(videoID, ErrDataUnparsable, err.Error())
	}

	return fmt.Errorf("requesting %s: %w", watchURL(videoID), err)
}

// checkStatus maps unsuccessful status codes onto transcript errors
func checkStatus(videoID string, code int) error {
	if code == http.StatusTooManyRequests {
		return newTranscriptError(videoID, ErrIPBlocked, "")
	}
	if code < 200 || code > 299 {
		return newTranscriptError(videoID, ErrYouTubeRequestFailed, fmt.Sprintf("%d %s", code, http.StatusText(code)))
	}
	return nil
}

// playabilityTransport treats player responses without a playability status
// as playable, so their caption tracks are still listed.
type playabilityTransport struct {
	next http.RoundTripper
}

func (t playabilityTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil || req.URL.Path != playerPath || resp.StatusCode != http.StatusOK {
		return resp, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading player response: %w", err)
	}

	body = withPlayabilityStatus(body)
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	resp.Header.Del("Content-Length")
	return resp, nil
}

// withPlayabilityStatus sets playabilityStatus.status to OK when it is
// missing or empty. Bodies it cannot decode are returned unchanged.
func withPlayabilityStatus(body []byte) []byte {
	var player map[string]json.RawMessage
	if err := json.Unmarshal(body, &player); err != nil || player == nil {
		return body
	}

	var status map[string]json.RawMessage
	if raw, ok := player["playabilityStatus"]; ok {
		if err := json.Unmarshal(raw, &status); err != nil {
			return body
		}
	}
	var current string
	if raw, ok := status["status"]; ok && json.Unmarshal(raw, &current) == nil && current != "" {
		return body
	}
	if status == nil {
		status = map[string]json.RawMessage{}
	}

	status["status"] = json.RawMessage(`"` + playabilityOK + `"`)
	raw, err := json.Marshal(status)
	if err != nil {
		return body
	}
	player["playabilityStatus"] = raw

	patched, err := json.Marshal(player)
	if err != nil {
		return body
	}
	return patched
}

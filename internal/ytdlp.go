package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/lrstanley/go-ytdlp"
)

// VideoMetadata contains YouTube video information
type VideoMetadata struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Channel     string         `json:"channel"`
	Uploader    string         `json:"uploader"`
	Duration    float64        `json:"duration"`
	Categories  []string       `json:"categories"`
	Tags        []string       `json:"tags"`
	Chapters    []VideoChapter `json:"chapters"`
	HasCaptions bool           `json:"has_captions"`
	// Language codes with manual subtitles and with automatic captions
	SubtitleLanguages    []string `json:"subtitle_languages,omitempty"`
	AutoCaptionLanguages []string `json:"auto_caption_languages,omitempty"`
}

// VideoChapter represents a video chapter marker
type VideoChapter struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Title     string  `json:"title"`
}

// MetadataFetcher reads video details through yt-dlp
type MetadataFetcher struct {
	logger      *slog.Logger
	installOnce sync.Once
}

// NewMetadataFetcher creates a metadata fetcher; yt-dlp is installed on first use
func NewMetadataFetcher(logger *slog.Logger) *MetadataFetcher {
	return &MetadataFetcher{logger: logger}
}

// Metadata fetches video details using go-ytdlp
func (m *MetadataFetcher) Metadata(ctx context.Context, youtubeURL string) (*VideoMetadata, error) {
	m.installOnce.Do(func() {
		ytdlp.MustInstall(ctx, nil)
	})

	m.logger.Debug("extracting video metadata", slog.String("url", youtubeURL))

	dl := ytdlp.New().
		DumpSingleJSON(). // Get all info in JSON format
		NoPlaylist().     // Don't process playlists
		SkipDownload()    // Don't download the actual video

	result, err := dl.Run(ctx, youtubeURL)
	if err != nil {
		if result != nil {
			m.logger.Debug("yt-dlp failed", slog.String("stderr", result.Stderr))
		}
		return nil, fmt.Errorf("extracting video metadata: %w", err)
	}

	return parseMetadata([]byte(result.Stdout))
}

// parseMetadata decodes yt-dlp's info JSON
func parseMetadata(data []byte) (*VideoMetadata, error) {
	var rawData map[string]any
	if err := json.Unmarshal(data, &rawData); err != nil {
		return nil, fmt.Errorf("parsing video metadata: %w", err)
	}

	var metadata VideoMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("parsing video metadata: %w", err)
	}

	metadata.SubtitleLanguages = mapKeys(rawData["subtitles"])
	metadata.AutoCaptionLanguages = mapKeys(rawData["automatic_captions"])
	metadata.HasCaptions = len(metadata.SubtitleLanguages) > 0 || len(metadata.AutoCaptionLanguages) > 0

	return &metadata, nil
}

// mapKeys returns the keys of a decoded JSON object, sorted
func mapKeys(v any) []string {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

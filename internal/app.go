package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
)

// TranscriptLister lists the caption tracks of a video
type TranscriptLister interface {
	List(ctx context.Context, videoID string) (*TranscriptList, error)
}

// App holds the application state and dependencies
type App struct {
	captions TranscriptLister
	metadata *MetadataFetcher
	config   *Config
	ui       UIManager
	logger   *slog.Logger
}

// NewApp initializes the application
func NewApp(config *Config, options ...AppOption) *App {
	app := &App{
		config: config,
		ui:     NewUIManager(config.Verbose, config.Quiet),
		logger: slog.Default(),
	}

	for _, option := range options {
		option(app)
	}

	// collaborators log through the final app logger
	if app.captions == nil {
		app.captions = NewCaptionsClient(config, app.logger)
	}
	app.metadata = NewMetadataFetcher(app.logger)

	return app
}

// AppOption customizes App creation
type AppOption func(*App)

// WithCaptions sets a custom transcript lister
func WithCaptions(captions TranscriptLister) AppOption {
	return func(a *App) {
		a.captions = captions
	}
}

// WithUI sets a custom UI manager
func WithUI(ui UIManager) AppOption {
	return func(a *App) {
		a.ui = ui
	}
}

// WithAppLogger sets the application logger
func WithAppLogger(logger *slog.Logger) AppOption {
	return func(a *App) {
		a.logger = logger
	}
}

// SaveTranscript writes the caption text of videoID to outputPath when the
// video has exactly one transcript. With zero or several transcripts nothing
// is written and no error is returned. Errors from listing or fetching are
// returned as they are.
func (app *App) SaveTranscript(ctx context.Context, videoID, outputPath string) (bool, error) {
	list, err := app.captions.List(ctx, videoID)
	if err != nil {
		return false, err
	}

	transcripts := slices.Collect(list.All())
	// TODO: decide with product whether several tracks should fall back to a language preference
	if len(transcripts) != 1 {
		app.logger.Debug("not saving transcript, video does not have exactly one",
			slog.String("video_id", videoID),
			slog.Int("transcripts", len(transcripts)))
		return false, nil
	}

	fetched, err := transcripts[0].Fetch(ctx, false)
	if err != nil {
		return false, err
	}

	if err := os.WriteFile(outputPath, []byte(fetched.JoinedText()), 0644); err != nil {
		return false, fmt.Errorf("writing transcript: %w", err)
	}

	app.logger.Debug("transcript saved",
		slog.String("video_id", videoID),
		slog.String("language_code", fetched.LanguageCode),
		slog.Int("snippets", fetched.Len()),
		slog.String("path", outputPath))

	return true, nil
}

// ListTranscripts lists the transcripts of a video
func (app *App) ListTranscripts(ctx context.Context, videoID string) (*TranscriptList, error) {
	return app.ListTranscriptsWithStatus(ctx, videoID, false)
}

// ListTranscriptsWithStatus lists transcripts with optional status spinner
func (app *App) ListTranscriptsWithStatus(ctx context.Context, videoID string, showStatus bool) (*TranscriptList, error) {
	if showStatus {
		spinner := app.ui.NewSpinner("Listing transcripts...")
		defer spinner.Finish()
	}

	return app.captions.List(ctx, videoID)
}

// FetchOptions selects which transcript FetchTranscript returns
type FetchOptions struct {
	Languages          []string
	TranslateTo        string
	PreserveFormatting bool
}

// FetchTranscript fetches the best transcript for the language preference
func (app *App) FetchTranscript(ctx context.Context, videoID string, opts FetchOptions) (*FetchedTranscript, error) {
	return app.FetchTranscriptWithStatus(ctx, videoID, opts, false)
}

// FetchTranscriptWithStatus fetches a transcript, counting through the
// list, translate and fetch requests when showStatus is set
func (app *App) FetchTranscriptWithStatus(ctx context.Context, videoID string, opts FetchOptions, showStatus bool) (*FetchedTranscript, error) {
	var progress ProgressBar
	if showStatus {
		steps := 2
		if opts.TranslateTo != "" {
			steps++
		}
		progress = app.ui.NewSteps(steps, "Listing transcripts...")
		defer progress.Finish()
	}

	list, err := app.captions.List(ctx, videoID)
	if err != nil {
		return nil, err
	}

	languages := opts.Languages
	if len(languages) == 0 {
		languages = []string{"en"}
	}

	transcript, err := list.FindTranscript(languages...)
	if err != nil {
		return nil, err
	}

	if opts.TranslateTo != "" {
		if progress != nil {
			progress.Step("Translating transcript...")
		}
		transcript, err = transcript.Translate(opts.TranslateTo)
		if err != nil {
			return nil, err
		}
	}

	if progress != nil {
		progress.Step("Fetching transcript...")
	}
	app.ui.Verbose("Fetching %s transcript for %s\n", transcript.LanguageCode, videoID)

	return transcript.Fetch(ctx, opts.PreserveFormatting)
}

// FormatTranscript renders a fetched transcript in the named format
func (app *App) FormatTranscript(transcript *FetchedTranscript, format string) (string, error) {
	formatter, err := NewFormatter(format)
	if err != nil {
		return "", err
	}
	return formatter.Format(transcript)
}

// Metadata fetches video metadata through yt-dlp
func (app *App) Metadata(ctx context.Context, youtubeURL string) (*VideoMetadata, error) {
	return app.MetadataWithStatus(ctx, youtubeURL, false)
}

// MetadataWithStatus fetches metadata with optional status spinner
func (app *App) MetadataWithStatus(ctx context.Context, youtubeURL string, showStatus bool) (*VideoMetadata, error) {
	if showStatus {
		spinner := app.ui.NewSpinner("Fetching video metadata...")
		defer spinner.Finish()
	}
	return app.metadata.Metadata(ctx, youtubeURL)
}

package internal

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// AddLanguageFlags adds flags selecting which transcript to fetch
func AddLanguageFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("languages", "l", nil, "Language codes in priority order (default from config)")
	cmd.Flags().StringP("translate", "t", "", "Translate the transcript into this language code")
	cmd.Flags().Bool("preserve-formatting", false, "Keep HTML formatting tags such as <b> and <i>")
}

// AddOutputFlags adds flags for writing results to a file
func AddOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
}

// FetchOptionsFromFlags merges language flags with config defaults
func FetchOptionsFromFlags(cmd *cobra.Command, config *Config) (FetchOptions, error) {
	opts := FetchOptions{
		Languages:          config.Languages,
		PreserveFormatting: config.PreserveFormatting,
	}

	languages, err := cmd.Flags().GetStringSlice("languages")
	if err != nil {
		return opts, fmt.Errorf("failed to get languages flag: %w", err)
	}
	if len(languages) > 0 {
		opts.Languages = splitLanguages(languages)
	}

	opts.TranslateTo, err = cmd.Flags().GetString("translate")
	if err != nil {
		return opts, fmt.Errorf("failed to get translate flag: %w", err)
	}

	if flag := cmd.Flags().Lookup("preserve-formatting"); flag != nil && flag.Changed {
		opts.PreserveFormatting, _ = cmd.Flags().GetBool("preserve-formatting")
	}

	return opts, nil
}

// HandleVerboseFlag processes --verbose and --quiet and configures logging
func HandleVerboseFlag(cmd *cobra.Command, config *Config) error {
	if flag := cmd.Flags().Lookup("verbose"); flag != nil && flag.Changed {
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return fmt.Errorf("failed to get verbose flag: %w", err)
		}
		config.Verbose = verbose
	}
	if flag := cmd.Flags().Lookup("quiet"); flag != nil && flag.Changed {
		quiet, err := cmd.Flags().GetBool("quiet")
		if err != nil {
			return fmt.Errorf("failed to get quiet flag: %w", err)
		}
		config.Quiet = quiet
	}

	SetupLogging(config)
	return nil
}

// SetupLogging installs the default slog logger on stderr
func SetupLogging(config *Config) {
	level := slog.LevelInfo
	if config.Verbose {
		level = slog.LevelDebug
	}
	if config.Quiet {
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// ValidateFormat checks the --format flag or configured format
func ValidateFormat(format string) error {
	if _, err := NewFormatter(format); err != nil {
		return err
	}
	return nil
}

// ResolveVideoArg picks the video from args or falls back to the configured one
func ResolveVideoArg(args []string, config *Config) (string, error) {
	arg := config.VideoID
	if len(args) > 0 {
		arg = args[0]
	}
	if strings.TrimSpace(arg) == "" {
		return "", fmt.Errorf("no video given - pass a YouTube URL or ID, or set video_id in config.toml")
	}

	_, videoID := ParseArg(arg)
	return videoID, nil
}

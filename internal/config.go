package internal

import (
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

const (
	// DefaultVideoID is used when neither an argument nor config names a video
	DefaultVideoID = "sa-ASdF1234"
	// DefaultOutput is the file the joined transcript is written to
	DefaultOutput = "video_transcript.txt"
)

// Config holds application settings
type Config struct {
	// User configurable settings
	VideoID            string
	Output             string
	Languages          []string
	Format             string
	PreserveFormatting bool
	HTTPTimeout        time.Duration
	RequestsPerSecond  float64
	MaxRetries         int
	Verbose            bool
	Quiet              bool
	MCPLogEnabled      bool

	// Fixed XDG paths (not configurable)
	ConfigDir string
	CacheDir  string
}

//go:embed config.toml
var defaultFS embed.FS

// ensureDefaultFile checks if a file exists in the specified directory
// and creates it from the embedded default if it doesn't exist
func ensureDefaultFile(configDir, embedFilename, description string) error {
	filePath := filepath.Join(configDir, embedFilename)

	if FileExists(filePath) {
		return nil
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaultContent, err := defaultFS.ReadFile(embedFilename)
	if err != nil {
		return fmt.Errorf("reading embedded default %s: %w", description, err)
	}

	if err := os.WriteFile(filePath, defaultContent, 0644); err != nil {
		return fmt.Errorf("writing default %s: %w", description, err)
	}

	slog.Info("created default "+description, slog.String("path", filePath))
	return nil
}

// EnsureDefaultConfig checks if a config file exists in the XDG config directory
// and creates it from the embedded default if it doesn't exist
func EnsureDefaultConfig(configDir string) error {
	return ensureDefaultFile(configDir, "config.toml", "configuration")
}

// ConfigDirs returns the XDG config and cache directories of ytt
func ConfigDirs() (configDir, cacheDir string) {
	return filepath.Join(xdg.ConfigHome, "ytt"), filepath.Join(xdg.CacheHome, "ytt")
}

// InitConfig loads configuration from configFile, or config.toml in the XDG
// config directory and the working directory when configFile is empty.
// Environment variables prefixed with YTT_ override file values.
func InitConfig(configFile string) *Config {
	configDir, cacheDir := ConfigDirs()

	v := viper.New()

	v.SetDefault("video_id", DefaultVideoID)
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("languages", []string{"en"})
	v.SetDefault("format", "text")
	v.SetDefault("preserve_formatting", false)
	v.SetDefault("http_timeout", 30*time.Second)
	v.SetDefault("requests_per_second", 2.0)
	v.SetDefault("max_retries", 0)
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
	v.SetDefault("mcp_log", false)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("YTT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", slog.Any("error", err))
		}
	}

	config := &Config{
		VideoID:            v.GetString("video_id"),
		Output:             v.GetString("output"),
		Languages:          splitLanguages(v.GetStringSlice("languages")),
		Format:             v.GetString("format"),
		PreserveFormatting: v.GetBool("preserve_formatting"),
		HTTPTimeout:        v.GetDuration("http_timeout"),
		RequestsPerSecond:  v.GetFloat64("requests_per_second"),
		MaxRetries:         v.GetInt("max_retries"),
		Verbose:            v.GetBool("verbose"),
		Quiet:              v.GetBool("quiet"),
		MCPLogEnabled:      v.GetBool("mcp_log"),

		ConfigDir: configDir,
		CacheDir:  cacheDir,
	}

	slog.Debug("config loaded", slog.String("file", v.ConfigFileUsed()))

	return config
}

// splitLanguages flattens comma separated entries, as set through YTT_LANGUAGES=en,de
func splitLanguages(values []string) []string {
	var langs []string
	for _, value := range values {
		for code := range strings.SplitSeq(value, ",") {
			if code = strings.TrimSpace(code); code != "" {
				langs = append(langs, code)
			}
		}
	}
	return langs
}

// NewCaptionsClient builds a captions client from config
func NewCaptionsClient(config *Config, logger *slog.Logger) *Client {
	return NewClient(
		WithTimeout(config.HTTPTimeout),
		WithRateLimit(config.RequestsPerSecond),
		WithRetries(config.MaxRetries),
		WithLogger(logger),
	)
}

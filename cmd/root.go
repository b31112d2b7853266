package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytt/internal"
)

var (
	config     *internal.Config
	configFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ytt [YouTube URL or ID]",
	Short: "Save a YouTube video's transcript to a text file",
	Long: `ytt fetches the captions of a YouTube video and writes their text,
joined by single spaces, to a file.

The transcript is only saved when the video has exactly one caption track.
Videos with no tracks or with several tracks (for example a manual and an
auto-generated one) are skipped without writing anything; use "ytt fetch"
to choose a language explicitly.`,
	Example: `  # Save the transcript of a video to video_transcript.txt
  ytt "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  ytt tAP1eZYEuKA

  # Write to another file
  ytt tAP1eZYEuKA -o talk.txt

  # Use video_id and output from config.toml
  ytt`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return internal.HandleVerboseFlag(cmd, config)
	},
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 && internal.IsLikelyCommand(args[0]) {
			return unknownCommandError(cmd, args[0])
		}

		videoID, err := internal.ResolveVideoArg(args, config)
		if err != nil {
			return err
		}

		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile == "" {
			outputFile = config.Output
		}

		app := internal.NewApp(config)
		written, err := app.SaveTranscript(cmd.Context(), videoID, outputFile)
		if err != nil {
			return err
		}

		if written {
			slog.Info("transcript saved", slog.String("video_id", videoID), slog.String("path", outputFile))
		}
		return nil
	},
}

// unknownCommandError suggests subcommands for arguments that look like typos
func unknownCommandError(cmd *cobra.Command, arg string) error {
	var suggestions []string
	for _, c := range cmd.Commands() {
		name := c.Name()
		if strings.Contains(name, arg) || strings.HasPrefix(arg, name) {
			suggestions = append(suggestions, name)
		}
	}

	if len(suggestions) > 0 {
		return fmt.Errorf("'%s' doesn't look like a YouTube URL or video ID. Did you mean: %s?", arg, strings.Join(suggestions, ", "))
	}
	return fmt.Errorf("'%s' doesn't look like a YouTube URL or video ID. Use --help to see available commands", arg)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nReceived interrupt signal. Shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	rootCmd.SetContext(ctx)

	return rootCmd.Execute()
}

// initConfig loads configuration once flags are parsed
func initConfig() {
	config = internal.InitConfig(configFile)
	internal.SetupLogging(config)

	if err := internal.EnsureDirs(config.ConfigDir, config.CacheDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating XDG directories: %v\n", err)
		os.Exit(1)
	}

	if configFile == "" {
		if err := internal.EnsureDefaultConfig(config.ConfigDir); err != nil {
			slog.Warn("failed to ensure default config", slog.Any("error", err))
		}
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Flags().StringP("output", "o", "", "Output file path (default from config: video_transcript.txt)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only report errors")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default is $XDG_CONFIG_HOME/ytt/config.toml)")
}

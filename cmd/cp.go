package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/rtzll/ytt/internal"
)

// cpCmd copies the transcript to the system clipboard instead of printing to stdout.
var cpCmd = &cobra.Command{
	Use:   "cp [YouTube URL or ID]",
	Short: "Copy a transcript to the clipboard",
	Example: `  # Copy the English transcript
  ytt cp "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  ytt cp tAP1eZYEuKA

  # Prefer the French track, fall back to English
  ytt cp tAP1eZYEuKA -l fr,en`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := internal.NewApp(config)

		transcript, err := fetchTranscript(cmd, app, args)
		if err != nil {
			return err
		}

		if err := clipboard.WriteAll(transcript.JoinedText()); err != nil {
			return fmt.Errorf("copying transcript to clipboard: %w", err)
		}

		if !config.Quiet {
			fmt.Println("Transcript copied to clipboard")
		}

		return nil
	},
}

func init() {
	internal.AddLanguageFlags(cpCmd)
	rootCmd.AddCommand(cpCmd)
}

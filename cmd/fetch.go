package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rtzll/ytt/internal"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch [YouTube URL or ID]",
	Short: "Fetch a transcript in a chosen language and format",
	Example: `  # Print the English transcript as plain text
  ytt fetch tAP1eZYEuKA

  # Prefer German, fall back to English, write SubRip subtitles
  ytt fetch tAP1eZYEuKA -l de,en -f srt -o talk.srt

  # Translate the English track to Spanish
  ytt fetch tAP1eZYEuKA -l en -t es

  # Raw caption records with timings
  ytt fetch tAP1eZYEuKA -f json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if format == "" {
			format = config.Format
		}
		if err := internal.ValidateFormat(format); err != nil {
			return err
		}

		app := internal.NewApp(config)
		transcript, err := fetchTranscript(cmd, app, args)
		if err != nil {
			return err
		}

		out, err := app.FormatTranscript(transcript, format)
		if err != nil {
			return err
		}

		return writeOutput(cmd, out)
	},
}

func init() {
	internal.AddLanguageFlags(fetchCmd)
	internal.AddOutputFlags(fetchCmd)
	fetchCmd.Flags().StringP("format", "f", "", "Output format: text, json, pretty, srt, webvtt (default from config)")
	rootCmd.AddCommand(fetchCmd)
}

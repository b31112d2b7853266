package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytt/internal"
)

// metadataCmd represents the metadata command
var metadataCmd = &cobra.Command{
	Use:   "metadata [YouTube URL or ID]",
	Short: "Get metadata from YouTube video",
	Long: `Print title, channel, duration, chapters and caption languages of a video.

Metadata is read through yt-dlp, which is downloaded on first use.`,
	Example: `  # Get metadata from YouTube video
  ytt metadata "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  ytt metadata tAP1eZYEuKA

  # Save metadata to file
  ytt metadata tAP1eZYEuKA -o metadata.json

  # Format output as pretty JSON
  ytt metadata tAP1eZYEuKA --pretty`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		videoID, err := internal.ResolveVideoArg(args, config)
		if err != nil {
			return err
		}
		youtubeURL, _ := internal.ParseArg(videoID)

		app := internal.NewApp(config)
		metadata, err := app.MetadataWithStatus(cmd.Context(), youtubeURL, !config.Quiet)
		if err != nil {
			return err
		}

		var jsonData []byte
		pretty, _ := cmd.Flags().GetBool("pretty")
		if pretty {
			jsonData, err = json.MarshalIndent(metadata, "", "  ")
		} else {
			jsonData, err = json.Marshal(metadata)
		}
		if err != nil {
			return fmt.Errorf("error converting metadata to JSON: %w", err)
		}

		return writeOutput(cmd, string(jsonData))
	},
}

func init() {
	internal.AddOutputFlags(metadataCmd)
	metadataCmd.Flags().Bool("pretty", false, "Format output as pretty JSON")
	rootCmd.AddCommand(metadataCmd)
}

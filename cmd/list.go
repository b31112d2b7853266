package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytt/internal"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list [YouTube URL or ID]",
	Short: "List the caption tracks available for a video",
	Example: `  # Show available transcripts
  ytt list tAP1eZYEuKA

  # Plain listing including translation languages
  ytt list tAP1eZYEuKA --plain`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		videoID, err := internal.ResolveVideoArg(args, config)
		if err != nil {
			return err
		}

		app := internal.NewApp(config)
		list, err := app.ListTranscriptsWithStatus(cmd.Context(), videoID, !config.Quiet)
		if err != nil {
			return err
		}

		plain, _ := cmd.Flags().GetBool("plain")
		if plain || !internal.IsTerminal() {
			fmt.Print(list.String())
			return nil
		}

		rendered, err := internal.RenderMarkdown(list.Markdown())
		if err != nil {
			return err
		}
		fmt.Print(rendered)
		return nil
	},
}

func init() {
	listCmd.Flags().Bool("plain", false, "Print a plain text listing instead of a rendered table")
	rootCmd.AddCommand(listCmd)
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytt/internal"
)

// fetchTranscript resolves the video argument and fetches a transcript using
// the language flags of cmd.
func fetchTranscript(cmd *cobra.Command, app *internal.App, args []string) (*internal.FetchedTranscript, error) {
	videoID, err := internal.ResolveVideoArg(args, config)
	if err != nil {
		return nil, err
	}

	opts, err := internal.FetchOptionsFromFlags(cmd, config)
	if err != nil {
		return nil, err
	}

	showStatus := !config.Quiet
	return app.FetchTranscriptWithStatus(cmd.Context(), videoID, opts, showStatus)
}

// writeOutput writes content to the --output file, or stdout when unset
func writeOutput(cmd *cobra.Command, content string) error {
	outputFile, _ := cmd.Flags().GetString("output")
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(content), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", outputFile, err)
		}
		return nil
	}

	fmt.Println(content)
	return nil
}

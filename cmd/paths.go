package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytt/internal"
)

// pathsCmd prints where ytt reads config from and writes files to
var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show config, cache and output locations",
	Example: `  # Show all application paths
  ytt paths`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath := configFile
		if configPath == "" {
			configPath = filepath.Join(config.ConfigDir, "config.toml")
		}

		output, err := filepath.Abs(config.Output)
		if err != nil {
			output = config.Output
		}

		fmt.Printf("Config file: %s%s\n", configPath, missingSuffix(configPath))
		fmt.Printf("Cache directory: %s\n", config.CacheDir)
		fmt.Printf("MCP log: %s\n", filepath.Join(config.CacheDir, "mcp.log"))
		fmt.Printf("Transcript output: %s\n", output)
	},
}

func missingSuffix(path string) string {
	if internal.FileExists(path) {
		return ""
	}
	return " (missing)"
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}

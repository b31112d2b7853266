package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/rtzll/ytt/internal"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve transcript tools over the Model Context Protocol",
	Long: `Serve ytt as a Model Context Protocol (MCP) server.

Tools:
  list_youtube_transcripts  caption tracks of a video with language and type
  get_youtube_transcript    captions in a preferred language, optionally
                            translated, as text, json, srt or webvtt

The server speaks stdio by default. With --transport=http it serves the
streamable HTTP transport on --port. Activity is logged to mcp.log in the
cache directory when mcp_log is enabled in config.toml.`,
	Example: `  # Run MCP server with stdio transport (e.g. for Claude Desktop)
  ytt mcp

  # Run MCP server with HTTP transport on port 8080
  ytt mcp --transport=http --port=8080

  # Set up Claude Desktop integration
  ytt mcp setup-claude`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// stdout belongs to the protocol; keep stderr quiet as well
		config.Verbose = false
		config.Quiet = true
		internal.SetupLogging(config)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		logger, closeLog := internal.NewMCPLogger(config)
		defer closeLog()

		app := internal.NewApp(config, internal.WithAppLogger(logger))
		mcpServer := internal.NewMCPServer(app, version, logger)

		return mcpServer.Start(cmd.Context(), transport, port)
	},
}

var setupClaudeCmd = &cobra.Command{
	Use:   "setup-claude",
	Short: "Register ytt as an MCP server in Claude Desktop",
	Long: `Add ytt to the mcpServers section of claude_desktop_config.json.

Other servers and settings in the file are kept. The entry runs this binary
with the current XDG config and cache directories so the server reads the
same config.toml as the CLI.`,
	Example: `  # Register the server
  ytt mcp setup-claude

  # Show the entry without writing it
  ytt mcp setup-claude --print`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		printOnly, _ := cmd.Flags().GetBool("print")

		server, err := claudeServerEntry()
		if err != nil {
			return err
		}

		if printOnly {
			data, err := json.MarshalIndent(map[string]MCPServerConfig{name: server}, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling server config: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		configPath, err := getClaudeDesktopConfigPath()
		if err != nil {
			return fmt.Errorf("getting Claude Desktop config path: %w", err)
		}
		if !internal.FileExists(configPath) {
			return fmt.Errorf("config for Claude Desktop not found at %s (start Claude Desktop once first)", configPath)
		}

		if err := addClaudeMCPServer(configPath, name, server); err != nil {
			return err
		}

		fmt.Printf("Added MCP server %q to %s\n", name, configPath)
		fmt.Println("Restart Claude Desktop to use it")
		return nil
	},
}

// MCPServerConfig is one entry of mcpServers in claude_desktop_config.json
type MCPServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env"`
}

// claudeServerEntry points Claude Desktop at the running binary
func claudeServerEntry() (MCPServerConfig, error) {
	execPath, err := os.Executable()
	if err != nil {
		return MCPServerConfig{}, fmt.Errorf("getting executable path: %w", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return MCPServerConfig{}, fmt.Errorf("resolving executable path: %w", err)
	}

	return MCPServerConfig{
		Command: execPath,
		Args:    []string{"mcp"},
		Env: map[string]string{
			"XDG_CONFIG_HOME": xdg.ConfigHome,
			"XDG_CACHE_HOME":  xdg.CacheHome,
		},
	}, nil
}

// addClaudeMCPServer registers server under name in claude_desktop_config.json,
// leaving every other key of the file untouched
func addClaudeMCPServer(configPath, name string, server MCPServerConfig) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("reading existing config: %w", err)
	}

	desktopConfig := map[string]json.RawMessage{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &desktopConfig); err != nil {
			return fmt.Errorf("parsing existing config: %w", err)
		}
	}

	servers := map[string]json.RawMessage{}
	if raw, ok := desktopConfig["mcpServers"]; ok {
		if err := json.Unmarshal(raw, &servers); err != nil {
			return fmt.Errorf("parsing mcpServers: %w", err)
		}
	}

	entry, err := json.Marshal(server)
	if err != nil {
		return fmt.Errorf("marshaling server config: %w", err)
	}
	servers[name] = entry

	if desktopConfig["mcpServers"], err = json.Marshal(servers); err != nil {
		return fmt.Errorf("marshaling mcpServers: %w", err)
	}

	data, err = json.MarshalIndent(desktopConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// getClaudeDesktopConfigPath returns where Claude Desktop keeps its config
func getClaudeDesktopConfigPath() (string, error) {
	const file = "claude_desktop_config.json"

	switch runtime.GOOS {
	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, "Library", "Application Support", "Claude", file), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		return filepath.Join(appData, "Claude", file), nil
	case "linux":
		return filepath.Join(xdg.ConfigHome, "Claude", file), nil
	}
	return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
}

func init() {
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol (stdio or http)")
	mcpCmd.Flags().Int("port", 8080, "Port for HTTP transport (only used with --transport=http)")
	setupClaudeCmd.Flags().String("name", "ytt", "Key of the server entry in mcpServers")
	setupClaudeCmd.Flags().Bool("print", false, "Print the server entry instead of writing it")
	mcpCmd.AddCommand(setupClaudeCmd)
	rootCmd.AddCommand(mcpCmd)
}

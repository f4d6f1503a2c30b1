// Package main is the entry point for the roi-config-mcp server.
//
// The binary serves the Model Context Protocol over stdio by default; the
// status and backups subcommands inspect the guarded file locally without
// starting a server.
package main

import (
	"fmt"
	"os"

	"github.com/Benggoy/f5-on-DPU-roi-config/internal/backup"
	"github.com/Benggoy/f5-on-DPU-roi-config/internal/config"
	"github.com/Benggoy/f5-on-DPU-roi-config/internal/configstore"
	"github.com/Benggoy/f5-on-DPU-roi-config/internal/logging"
	"github.com/Benggoy/f5-on-DPU-roi-config/internal/mcp"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "roi-config-mcp",
	Short: "MCP server guarding a single ROI calculator config file",
	Long: `roi-config-mcp exposes one JSON configuration file to MCP hosts.

Reads are unrestricted; every write requires explicit user confirmation and
is preceded by a timestamped backup. No other file on the system can be
accessed. The guarded file path comes from the settings file or the
ROI_CONFIG_PATH environment variable.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server (stdio)",
	Long: `Start the MCP server. Communicates over stdin/stdout using JSON-RPC.

Configure in your MCP host, e.g.:
  {
    "mcpServers": {
      "roi-config": {
        "command": "roi-config-mcp",
        "args": ["serve"]
      }
    }
  }`,
	SilenceUsage: true,
	RunE:         runServe,
}

var statusCmd = &cobra.Command{
	Use:          "status",
	Short:        "Print status of the guarded config file",
	SilenceUsage: true,
	RunE:         runStatus,
}

var backupsCmd = &cobra.Command{
	Use:          "backups",
	Short:        "List backups of the guarded config file",
	SilenceUsage: true,
	RunE:         runBackups,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(backupsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := logging.NewAppLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Error loading config", "error", err)
		return err
	}

	server := mcp.NewServer(cfg, logger)
	return server.Start()
}

func runStatus(cmd *cobra.Command, _ []string) error {
	logger := logging.NewAppLogger()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := configstore.NewStore(cfg.ConfigFile, logger)
	if err != nil {
		return err
	}

	info := store.Stat()
	fmt.Printf("File:     %s\n", info.Path)
	fmt.Printf("Exists:   %t\n", info.Exists)
	if info.Exists {
		fmt.Printf("Version:  %s\n", store.Version())
		fmt.Printf("Sections: %d\n", store.SectionCount())
		fmt.Printf("Hash:     %s\n", store.Hash())
		fmt.Printf("Modified: %s\n", info.ModTime)
	}
	return nil
}

func runBackups(cmd *cobra.Command, _ []string) error {
	logger := logging.NewAppLogger()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	manager, err := backup.NewManager(cfg.ConfigFile, cfg.ResolvedBackupDir(), logger)
	if err != nil {
		return err
	}

	records, err := manager.List()
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No backups found.")
		return nil
	}

	for _, r := range records {
		fmt.Printf("%s  %6d bytes  %s\n", r.ModTime.Format("2006-01-02 15:04:05"), r.Size, r.Name)
	}
	return nil
}

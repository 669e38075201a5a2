// Package app provides the entry point for the kdbx-mcp command-line application.
package app

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/kdbx-mcp/pkg/config"
	"github.com/stacklok/kdbx-mcp/pkg/logger"
	"github.com/stacklok/kdbx-mcp/pkg/versions"
)

var rootCmd = &cobra.Command{
	Use:               "kdbx-mcp",
	DisableAutoGenTag: true,
	Short:             "KDB-X MCP Server - Query and search a KDB-X database over MCP",
	Long: `KDB-X MCP Server exposes a KDB-X analytics database through the Model
Context Protocol (MCP), so AI agents and chat clients can:

- Run read-only SQL SELECT queries
- Search tables by dense vector similarity
- Search tables with fused dense+sparse (BM25) hybrid ranking
- Read table schemas, previews, and SQL guidance as resources
- Generate table analysis prompts

The server connects to a single KDB-X instance and serves MCP over stdio or
streamable HTTP.`,
	Run: func(cmd *cobra.Command, _ []string) {
		// If no subcommand is provided, print help
		if err := cmd.Help(); err != nil {
			logger.Errorf("Error displaying help: %v", err)
		}
	},
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.Initialize()
	},
}

// NewRootCmd creates a new root command for the kdbx-mcp CLI.
func NewRootCmd() *cobra.Command {
	// Add persistent flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	if err != nil {
		logger.Errorf("Error binding debug flag: %v", err)
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	err = viper.BindPFlag(config.KeyConfigFile, rootCmd.PersistentFlags().Lookup("config"))
	if err != nil {
		logger.Errorf("Error binding config flag: %v", err)
	}

	// Add subcommands
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())

	// Silence printing the usage on error
	rootCmd.SilenceUsage = true

	return rootCmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Display version information for kdbx-mcp",
		Run: func(_ *cobra.Command, _ []string) {
			info := versions.GetVersionInfo()
			logger.Infof("kdbx-mcp version: %s (commit %s, built %s, %s, %s)",
				info.Version, info.Commit, info.BuildDate, info.GoVersion, info.Platform)
		},
	}
}

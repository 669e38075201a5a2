package app

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/kdbx-mcp/pkg/config"
	"github.com/stacklok/kdbx-mcp/pkg/embedconfig"
	"github.com/stacklok/kdbx-mcp/pkg/embeddings"
	"github.com/stacklok/kdbx-mcp/pkg/format"
	"github.com/stacklok/kdbx-mcp/pkg/kdb"
	"github.com/stacklok/kdbx-mcp/pkg/logger"
	mcpserver "github.com/stacklok/kdbx-mcp/pkg/mcp/server"
	"github.com/stacklok/kdbx-mcp/pkg/networking"
	"github.com/stacklok/kdbx-mcp/pkg/search"
	"github.com/stacklok/kdbx-mcp/pkg/versions"
)

const shutdownTimeout = 10 * time.Second

// newServeCmd creates the serve command for starting the MCP server
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the KDB-X MCP server",
		Long: `Start the KDB-X MCP server and serve until interrupted.

At startup the server verifies that the database is reachable and that its
SQL interface is loaded; both are required. The vector search capability is
optional - when it is absent the search tools are not offered.`,
		RunE: runServe,
	}

	flags := cmd.Flags()
	flags.String("host", kdb.DefaultHost, "Database host")
	flags.Int("port", kdb.DefaultPort, "Database port")
	flags.String("username", "", "Database username")
	flags.String("password", "", "Database password")
	flags.Bool("tls", false, "Connect to the database over TLS")
	flags.Int("connect-timeout", int(kdb.DefaultConnectTimeout/time.Second), "Database connect timeout in seconds")
	flags.Int("retry-count", kdb.DefaultRetryCount, "Additional connect attempts after the first failure")
	flags.String("metric", kdb.DefaultMetric, "Similarity metric for vector search")
	flags.Int("default-k", kdb.DefaultK, "Default number of search results")
	flags.String("embeddings-config", "", "Path to the embedding configuration CSV")
	flags.String("sql-guidance", "", "Path to a markdown file served as SQL guidance")
	flags.String("transport", config.DefaultTransport, "MCP transport (stdio or streamable-http)")
	flags.String("http-host", config.DefaultHTTPHost, "Host to listen on for the HTTP transport")
	flags.Int("http-port", config.DefaultHTTPPort, "Port to listen on for the HTTP transport")

	bindings := map[string]string{
		config.KeyDBHost:             "host",
		config.KeyDBPort:             "port",
		config.KeyDBUsername:         "username",
		config.KeyDBPassword:         "password",
		config.KeyDBTLS:              "tls",
		config.KeyDBConnectTimeout:   "connect-timeout",
		config.KeyDBRetryCount:       "retry-count",
		config.KeyDBMetric:           "metric",
		config.KeyDBDefaultK:         "default-k",
		config.KeyDBEmbeddingsConfig: "embeddings-config",
		config.KeyServerSQLGuidance:  "sql-guidance",
		config.KeyServerTransport:    "transport",
		config.KeyServerHost:         "http-host",
		config.KeyServerPort:         "http-port",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			logger.Fatalf("Failed to bind %s flag: %v", flag, err)
		}
	}

	return cmd
}

// runServe implements the serve command logic
func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	if cfg.Server.Transport == config.TransportStreamableHTTP {
		if err := networking.EnsureAvailable(cfg.Server.Host, cfg.Server.Port); err != nil {
			return err
		}
	}

	logger.Infof("Connecting to KDB-X at %s", cfg.DB.Addr())
	client := kdb.NewClient(&cfg.DB)
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warnf("Failed to close database connection: %v", err)
		}
	}()

	searchEnabled, err := mcpserver.Preflight(ctx, client)
	if err != nil {
		return err
	}

	lookup := embedconfig.NewLookup()
	registry := embeddings.NewRegistry(&cfg.Embeddings)
	defer func() {
		if err := registry.Close(); err != nil {
			logger.Warnf("Failed to close embedding providers: %v", err)
		}
	}()

	formatter := format.NewFormatter(lookup, cfg.DB.EmbeddingsConfigPath)
	orchestrator := search.NewOrchestrator(search.Options{
		Client:     client,
		Resolver:   lookup,
		Providers:  registry,
		Formatter:  formatter,
		ConfigPath: cfg.DB.EmbeddingsConfigPath,
		DefaultK:   cfg.DB.DefaultK,
		Metric:     cfg.DB.Metric,
	})
	handler := mcpserver.NewHandler(client, orchestrator, formatter, cfg.Server.SQLGuidancePath)

	// Warm the embedding models in the background; readiness never waits on it.
	if searchEnabled && cfg.DB.EmbeddingsConfigPath != "" {
		go func() {
			rows, err := lookup.All(cfg.DB.EmbeddingsConfigPath)
			if err != nil {
				logger.Warnf("Skipping model warmup: %v", err)
				return
			}
			embeddings.Warm(ctx, registry, rows)
		}()
	}

	srv := mcpserver.New(ctx, &mcpserver.Config{
		Name:          cfg.Server.Name,
		Version:       versions.GetVersionInfo().Version,
		Transport:     cfg.Server.Transport,
		Host:          cfg.Server.Host,
		Port:          cfg.Server.Port,
		SearchEnabled: searchEnabled,
	}, handler)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/wagmiprojects/shopify-api-js/internal/cliconfig"
	"github.com/wagmiprojects/shopify-api-js/pkg/catalog"
	"github.com/wagmiprojects/shopify-api-js/pkg/fixture"
	"github.com/wagmiprojects/shopify-api-js/pkg/logging"
	"github.com/wagmiprojects/shopify-api-js/pkg/requestlog"
)

// shutdownTimeout bounds graceful shutdown after a signal or endtest.
const shutdownTimeout = 5 * time.Second

type serveFlags struct {
	host          string
	port          int
	logLevel      string
	logFormat     string
	catalogFile   string
	maxLogEntries int
}

func addServeFlags(cmd *cobra.Command, f *serveFlags) {
	fs := cmd.Flags()
	fs.StringVar(&f.host, "host", "", "Interface to bind (env "+cliconfig.EnvHost+")")
	fs.IntVarP(&f.port, "port", "p", cliconfig.DefaultPort, "HTTP port (env "+cliconfig.EnvPort+")")
	fs.StringVar(&f.logLevel, "log-level", cliconfig.DefaultLogLevel, "Log level: debug, info, warn, error (env "+cliconfig.EnvLogLevel+")")
	fs.StringVar(&f.logFormat, "log-format", cliconfig.DefaultLogFormat, "Log format: text or json (env "+cliconfig.EnvLogFormat+")")
	fs.StringVarP(&f.catalogFile, "catalog", "c", "", "JSON or YAML file with extra scenarios (env "+cliconfig.EnvCatalog+")")
	fs.IntVar(&f.maxLogEntries, "max-log-entries", cliconfig.DefaultMaxLogEntries, "Requests kept in the journal (env "+cliconfig.EnvMaxLogEntries+")")
}

func newServeCommand() *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the fixture server (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, f)
		},
	}
	addServeFlags(cmd, f)
	return cmd
}

// resolveConfig layers changed flags over environment and defaults.
func resolveConfig(cmd *cobra.Command, f *serveFlags) (*cliconfig.Config, error) {
	cfg := cliconfig.Load()
	fs := cmd.Flags()

	if fs.Changed("host") {
		cfg.Host = f.host
		cfg.Sources["host"] = cliconfig.SourceFlag
	}
	if fs.Changed("port") {
		if !cliconfig.ValidPort(f.port) {
			return nil, fmt.Errorf("invalid port %d", f.port)
		}
		cfg.Port = f.port
		cfg.Sources["port"] = cliconfig.SourceFlag
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = f.logLevel
		cfg.Sources["logLevel"] = cliconfig.SourceFlag
	}
	if fs.Changed("log-format") {
		cfg.LogFormat = f.logFormat
		cfg.Sources["logFormat"] = cliconfig.SourceFlag
	}
	if fs.Changed("catalog") {
		cfg.CatalogFile = f.catalogFile
		cfg.Sources["catalog"] = cliconfig.SourceFlag
	}
	if fs.Changed("max-log-entries") {
		cfg.MaxLogEntries = f.maxLogEntries
		cfg.Sources["maxLogEntries"] = cliconfig.SourceFlag
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, f *serveFlags) error {
	cfg, err := resolveConfig(cmd, f)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals...)
	defer stop()

	return runServer(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), nil)
}

// loadCatalog returns the built-in catalog, extended by path when set.
func loadCatalog(path string) (*catalog.Catalog, error) {
	cat := catalog.Default()
	if path == "" {
		return cat, nil
	}
	overlay, err := catalog.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return cat.With(overlay), nil
}

// runServer starts the fixture and blocks until ctx is done or an endtest
// request has been answered. Both end in a clean shutdown and a nil error.
// onReady, when set, is called once the listener is bound.
func runServer(ctx context.Context, cfg *cliconfig.Config, stdout, stderr io.Writer, onReady func(*fixture.Server)) error {
	logger := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.ParseFormat(cfg.LogFormat),
		Output: stderr,
	})

	cat, err := loadCatalog(cfg.CatalogFile)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if cfg.CatalogFile != "" {
		logger.Info("catalog loaded", "path", cfg.CatalogFile, "entries", cat.Len())
		for _, k := range shadowedKeys(cat) {
			logger.Warn("catalog entry ignored for stateful scenario", "key", k)
		}
	}

	srv := fixture.New(
		fixture.Config{Host: cfg.Host, Port: cfg.Port},
		fixture.WithLogger(logger),
		fixture.WithCatalog(cat),
		fixture.WithJournal(requestlog.NewMemoryStore(cfg.MaxLogEntries)),
	)
	if err := srv.Start(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Listening on :%d\n", srv.Port())

	if onReady != nil {
		onReady(srv)
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case <-srv.Done():
	}

	return stopServer(srv, logger)
}

func stopServer(srv *fixture.Server, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		logger.Warn("shutdown incomplete", "error", err)
	}
	logger.Info("served requests", "count", srv.Journal().Count())
	return nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/docfed/docfed"
	docfedhttp "github.com/docfed/docfed/http"
	"github.com/docfed/docfed/ingest"
	"github.com/docfed/docfed/normalize"
	"github.com/docfed/docfed/policy"
	"github.com/docfed/docfed/search"
	docslog "github.com/docfed/docfed/slog"
	"github.com/docfed/docfed/sqlite"
	"github.com/docfed/docfed/yaml"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Configuration file path. Set before calling Run().
	ConfigPath string

	// Database path. Overrides the configured path when set.
	DBPath string

	// SQLite database used by the cache store.
	DB *sqlite.DB

	// Services for end-to-end testing.
	Cache      *sqlite.CacheService
	Registry   docfed.Registry
	Aggregator docfed.Aggregator
	Scheduler  *ingest.Scheduler
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		ConfigPath: defaultConfigPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docfed"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docfed --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	if cli.Config != "" {
		m.ConfigPath = cli.Config
	}

	cfg, err := yaml.Load(m.ConfigPath)
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Set DOCFED_CONFIG or pass --config to use a different config path")
		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: logLevel(cli.Verbose),
	}))

	dbPath := m.DBPath
	if dbPath == "" {
		dbPath = docfed.ConfigString(cfg, "cache.path", defaultDBPath())
	}
	m.DB = sqlite.NewDB(dbPath)
	if err := m.DB.Open(); err != nil {
		return fmt.Errorf("failed to open database at %q: %w", dbPath, err)
	}
	defer m.Close()

	m.Cache = sqlite.NewCacheService(m.DB)
	m.Scheduler = ingest.NewScheduler(m.Cache,
		ingest.WithCapacity(docfed.ConfigInt(cfg, "scheduler.capacity", ingest.DefaultCapacity)),
		ingest.WithWorkers(docfed.ConfigInt(cfg, "scheduler.workers", ingest.DefaultWorkers)),
		ingest.WithLogger(logger),
	)

	m.Registry, err = buildRegistry(cfg, logger)
	if err != nil {
		return err
	}

	m.Aggregator = docslog.NewLoggingAggregator(&search.Aggregator{
		Registry:   m.Registry,
		Normalizer: normalize.NewNormalizer(),
		Policy:     policy.NewEngine(cfg),
		Scheduler:  m.Scheduler,
	}, logger)

	deps.Config = cfg
	deps.Logger = logger
	deps.Cache = m.Cache
	deps.Aggregator = m.Aggregator
	deps.Scheduler = m.Scheduler

	return kongCtx.Run(deps)
}

// buildRegistry constructs the provider registry from the configured
// provider list, wrapping each HTTP provider with logging.
func buildRegistry(cfg *yaml.Config, logger *slog.Logger) (docfed.Registry, error) {
	configs, err := cfg.Providers()
	if err != nil {
		return nil, err
	}

	descriptors := make([]docfed.ProviderDescriptor, 0, len(configs))
	providers := make(map[string]docfed.Provider, len(configs))
	for _, pc := range configs {
		descriptors = append(descriptors, pc.ProviderDescriptor)
		if !pc.Enabled {
			continue
		}
		if pc.Endpoint == "" {
			return nil, docfed.Errorf(docfed.ECONFIG, "provider %q has no endpoint", pc.ID)
		}

		opts := []docfedhttp.Option{}
		if pc.APIKey != "" {
			opts = append(opts, docfedhttp.WithAPIKey(pc.APIKey))
		}
		if pc.Timeout > 0 {
			opts = append(opts, docfedhttp.WithTimeout(pc.Timeout))
		}
		if pc.RequestsPerSec > 0 {
			opts = append(opts, docfedhttp.WithRateLimit(pc.RequestsPerSec))
		}
		if pc.MaxConcurrency > 0 {
			opts = append(opts, docfedhttp.WithMaxConcurrency(pc.MaxConcurrency))
		}

		provider := docfedhttp.NewProvider(pc.ID, pc.Endpoint, opts...)
		providers[pc.ID] = docslog.NewLoggingProvider(pc.ID, provider, logger)
	}

	return search.NewRegistry(descriptors, providers)
}

func logLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func defaultConfigPath() string {
	if path := os.Getenv("DOCFED_CONFIG"); path != "" {
		return path
	}
	return "docfed.yml"
}

func defaultDBPath() string {
	if path := os.Getenv("DOCFED_DB"); path != "" {
		return path
	}
	return "docfed.db"
}

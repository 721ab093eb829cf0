package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"label-scanner/internal/cache"
	"label-scanner/internal/carriers"
	cliapi "label-scanner/internal/cli"
	"label-scanner/internal/config"
	"label-scanner/internal/database"
	"label-scanner/internal/scanner"
)

const (
	// Version information
	Version   = "1.0.0"
	BuildDate = "development"
)

var (
	configFile string
	format     string
	quiet      bool
	noColor    bool
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "labelscan",
	Short: "Classify shipping-label PDFs by carrier and extract order ids",
	Long: `labelscan reads multi-page shipping-label PDFs exported from Shopee and
TikTok Shop, decides which carrier printed each page and extracts the order
id, shop name and delivery method.

CONFIGURATION:
    Settings are read from labelscan.yaml (., ./config or $HOME), a .env file
    and LABELSCAN_* environment variables. Flags override both.

        LABELSCAN_LOG_LEVEL      - debug, info, warn, error (default: info)
        LABELSCAN_FORMAT         - table or json (default: table)
        LABELSCAN_WORKERS        - pages scanned concurrently (default: 1)
        LABELSCAN_CARRIERS       - recognizer order (default: tiktok_jt,shopee_spx,shopee_ghn)
        LABELSCAN_CACHE_PATH     - scan cache database (default: ./labelscan-cache.db)
        LABELSCAN_CACHE_TTL      - scan cache lifetime (default: 24h)
        LABELSCAN_CACHE_DISABLED - skip the scan cache (default: false)

EXAMPLES:
    labelscan scan labels.pdf
    labelscan scan labels.pdf --xlsx orders.xlsx
    labelscan compare ./monday ./tuesday -f json`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, rootCmd); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is labelscan.yaml in ., ./config or $HOME)")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (minimal output)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable color output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

// app holds what every subcommand needs once configuration is resolved
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	formatter *cliapi.OutputFormatter
	chain     *carriers.Chain
}

// loadConfiguration loads configuration files and the environment, then
// applies flags the user set explicitly
func loadConfiguration(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = config.LoadWithFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format = format
	}
	if flags.Changed("quiet") {
		cfg.Quiet = quiet
	}
	if flags.Changed("no-color") {
		cfg.NoColor = noColor
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}

	return cfg, nil
}

// initializeApp resolves configuration and builds the logger, formatter and
// recognizer chain
func initializeApp(cmd *cobra.Command, overrides ...func(*config.Config)) (*app, error) {
	cfg, err := loadConfiguration(cmd)
	if err != nil {
		return nil, err
	}
	for _, override := range overrides {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg)

	chain, err := carriers.DefaultRegistry().BuildChain(cfg.Carriers)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	formatter := cliapi.NewOutputFormatter(cfg.Format, cfg.Quiet)
	formatter.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())

	logger.Debug("Configuration loaded",
		"version", Version,
		"chain", chain.Signature(),
		"workers", cfg.Workers,
		"cache_enabled", !cfg.DisableCache)

	return &app{
		cfg:       cfg,
		logger:    logger,
		formatter: formatter,
		chain:     chain,
	}, nil
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
}

func (a *app) newScanner() *scanner.Scanner {
	return scanner.New(a.chain,
		scanner.WithLogger(a.logger),
		scanner.WithWorkers(a.cfg.Workers))
}

// openCache returns the scan cache manager and a function releasing it.
// A disabled cache never touches the database.
func (a *app) openCache() (*cache.Manager, func(), error) {
	if a.cfg.DisableCache {
		manager := cache.NewManager(nil, true, a.cfg.CacheTTL, a.logger)
		return manager, manager.Close, nil
	}

	db, err := database.Open(a.cfg.CachePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open scan cache: %w", err)
	}
	manager := cache.NewManager(db.ScanCache, false, a.cfg.CacheTTL, a.logger)

	release := func() {
		manager.Close()
		if err := db.Close(); err != nil {
			a.logger.Warn("Failed to close scan cache", "path", a.cfg.CachePath, "error", err)
		}
	}
	return manager, release, nil
}

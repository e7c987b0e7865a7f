package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"mcx-exporter/internal/common"
	"mcx-exporter/internal/interfaces"
	"mcx-exporter/internal/services"

	"github.com/ternarybob/arbor"
)

const (
	appName    = "mcx-exporter"
	appVersion = "1.0.0"
)

func main() {
	// Parse command line flags
	var (
		configPath     = flag.String("config", "", "Path to configuration file")
		command        = flag.String("command", "cases", "Command to run: 'inbox', 'cases', or 'serve'")
		format         = flag.String("format", "", "Export format: 'csv', 'json', or 'xlsx' (overrides config)")
		outputDir      = flag.String("output", "", "Output directory for export files (overrides config)")
		mode           = flag.String("mode", "dev", "Environment mode: 'dev', 'development', 'prod', or 'production'")
		quiet          = flag.Bool("quiet", false, "Suppress banner output")
		version        = flag.Bool("version", false, "Show version information")
		help           = flag.Bool("help", false, "Show help message")
		validateConfig = flag.Bool("validate", false, "Validate configuration file and exit")
	)
	flag.Parse()

	// Handle version flag
	if *version {
		fmt.Printf("%s v%s (build: %s)\n", appName, common.GetVersion(), common.GetBuild())
		os.Exit(0)
	}

	// Handle help flag
	if *help {
		showHelp()
		os.Exit(0)
	}

	// Parse environment from mode
	environment := parseMode(*mode)

	// Load configuration with priority: defaults -> TOML -> environment
	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Apply command line overrides
	cfg.Exporter.Environment = environment
	if *format != "" {
		cfg.Exporter.Format = *format
	}
	if *outputDir != "" {
		cfg.Exporter.OutputDir = *outputDir
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Handle validate flag
	if *validateConfig {
		fmt.Println("Configuration is valid")
		os.Exit(0)
	}

	// Initialize logger
	if err := common.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger := common.GetLogger()

	logger.Info().
		Str("version", common.GetVersion()).
		Str("build", common.GetBuild()).
		Str("environment", environment).
		Str("command", *command).
		Msg("Starting MCX Exporter")

	// Display startup banner after initial log messages
	if !*quiet {
		logFilePath := common.GetLogFilePath()
		common.PrintBanner(appName, environment, *command, logFilePath)
	}

	// Create storage
	storage, err := services.NewStorage(&cfg.Storage)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize storage")
		os.Exit(1)
	}
	defer storage.Close()

	switch *command {
	case "inbox":
		if err := runInboxExport(cfg, storage, logger); err != nil {
			logger.Error().Err(err).Msg("Inbox export failed")
			common.PrintError(fmt.Sprintf("Inbox export failed: %v", err))
			os.Exit(1)
		}
	case "cases":
		if err := runCaseExport(cfg, storage, logger); err != nil {
			logger.Error().Err(err).Msg("Case export failed")
			common.PrintError(fmt.Sprintf("Case export failed: %v", err))
			os.Exit(1)
		}
	case "serve":
		runServerMode(cfg, storage, logger)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", *command)
		showHelp()
		os.Exit(1)
	}

	logger.Info().Msg("MCX Exporter shutdown complete")
}

// runInboxExport authenticates, fetches the case inbox, and writes the
// flattened rows to the configured sink.
func runInboxExport(cfg *common.Config, storage interfaces.Storage, logger arbor.ILogger) error {
	collector, err := connect(cfg, storage, logger)
	if err != nil {
		return err
	}

	inbox, err := collector.CollectInbox()
	if err != nil {
		return err
	}

	exporter := services.NewExporter(&cfg.Exporter, logger)
	path, err := exporter.Export("case_inbox", inbox.FieldNames, inbox.Rows)
	if err != nil {
		return err
	}

	common.PrintSuccess(fmt.Sprintf("Exported %d inbox rows to %s", len(inbox.Rows), path))
	return nil
}

// runCaseExport authenticates, fetches every case in the inbox, and writes
// the flattened case rows to the configured sink.
func runCaseExport(cfg *common.Config, storage interfaces.Storage, logger arbor.ILogger) error {
	collector, err := connect(cfg, storage, logger)
	if err != nil {
		return err
	}

	rowSet, err := collector.CollectCases()
	if err != nil {
		return err
	}

	exporter := services.NewExporter(&cfg.Exporter, logger)
	path, err := exporter.Export("cases", rowSet.FieldNames, rowSet.Rows)
	if err != nil {
		return err
	}

	common.PrintSuccess(fmt.Sprintf("Exported %d cases to %s", len(rowSet.Rows), path))
	return nil
}

// connect validates credentials, authenticates against the MCX API, and
// returns a collector ready to fetch.
func connect(cfg *common.Config, storage interfaces.Storage, logger arbor.ILogger) (interfaces.Collector, error) {
	if err := cfg.ValidateCredentials(); err != nil {
		return nil, err
	}

	client := services.NewMcxClient(&cfg.Mcx)
	if err := client.Authenticate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("instance", cfg.Mcx.Instance).
		Str("company", cfg.Mcx.Company).
		Msg("Authenticated with MCX API")

	return services.NewCollector(cfg, client, storage, logger), nil
}

// runServerMode starts the status web server over the local cache and runs
// until interrupted.
func runServerMode(cfg *common.Config, storage interfaces.Storage, logger arbor.ILogger) {
	logger.Info().Msg("Starting in server mode")

	webServer, err := services.NewWebServer(cfg, storage, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create web server")
		return
	}

	ctx := context.Background()
	if err := webServer.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to start web server")
		return
	}

	logger.Info().
		Int("port", cfg.Exporter.Port).
		Msg("Web server started successfully")

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info().Msg("Server running - press Ctrl+C to stop")

	<-sigChan
	logger.Info().Msg("Shutdown signal received")

	if err := webServer.Stop(); err != nil {
		logger.Error().Err(err).Msg("Error stopping web server")
	}

	common.PrintShutdownBanner(appName)
	logger.Info().Msg("Server mode shutdown complete")
}

func parseMode(mode string) string {
	mode = strings.ToLower(mode)
	switch mode {
	case "prod", "production":
		return "production"
	case "dev", "development":
		return "development"
	default:
		return "development"
	}
}

func showHelp() {
	fmt.Printf("%s v%s - MCX Case Management Export Tool\n\n", appName, appVersion)
	fmt.Println("Usage:")
	fmt.Printf("  %s [flags]\n\n", os.Args[0])
	fmt.Println("Flags:")
	fmt.Println("  -command string     Command to run: 'inbox', 'cases', or 'serve' (default \"cases\")")
	fmt.Println("  -config string      Configuration file path")
	fmt.Println("  -format string      Export format: 'csv', 'json', or 'xlsx' (overrides config)")
	fmt.Println("  -output string      Output directory for export files (overrides config)")
	fmt.Println("  -mode string        Environment mode: 'dev', 'development', 'prod', or 'production' (default \"dev\")")
	fmt.Println("  -quiet              Suppress banner output")
	fmt.Println("  -version            Show version information")
	fmt.Println("  -help               Show help message")
	fmt.Println("  -validate           Validate configuration file and exit")
	fmt.Println("\nCredentials:")
	fmt.Println("  Set via config file or MCX_INSTANCE, MCX_COMPANY, MCX_USERNAME, MCX_PASSWORD")
	fmt.Println("\nExamples:")
	fmt.Printf("  %s -command inbox                   # Export the case inbox summary\n", os.Args[0])
	fmt.Printf("  %s -command cases -format xlsx      # Export full case detail as XLSX\n", os.Args[0])
	fmt.Printf("  %s -command serve                   # Serve status endpoints over the cache\n", os.Args[0])
	fmt.Printf("  %s -config /path/to/config.toml     # Use custom config file\n", os.Args[0])
}

package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rohankatakam/devpairs/internal/config"
	"github.com/rohankatakam/devpairs/internal/errors"
	"github.com/rohankatakam/devpairs/internal/logging"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile     string
	verbose     bool
	logFile     string
	metricsFile string

	logger    *logrus.Logger
	logCloser io.Closer
	cfg       *config.Config
)

func main() {
	os.Exit(run(os.Stderr))
}

// run executes the command tree, releases the log file and reports any
// failure to stderr, returning the exit status.
func run(stderr io.Writer) int {
	err := rootCmd.Execute()
	if logCloser != nil {
		logCloser.Close()
		logCloser = nil
	}
	if err == nil {
		return 0
	}

	reportError(stderr, err, verbose)
	return errors.ExitCode(err)
}

func reportError(w io.Writer, err error, detailed bool) {
	fmt.Fprintf(w, "Error: %v\n", err)

	var e *errors.Error
	if detailed && stderrors.As(err, &e) {
		fmt.Fprint(w, e.DetailedString())
	}
}

var rootCmd = &cobra.Command{
	Use:   "devpairs",
	Short: "Find the developers who most often work on the same code",
	Long: `devpairs reads a GitHub repository's commit history and reports, for
each developer, the colleague they most often change the same files (or
directories) with.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration
		var loadErr error
		cfg, loadErr = config.Load(cfgFile)
		if loadErr != nil {
			cfg = config.Default()
		}

		// Initialize logger
		logCfg := logging.DefaultConfig(verbose)
		if !verbose {
			logCfg.Level = logging.ParseLevel(cfg.Logging.Level)
		}
		logCfg.JSONFormat = cfg.Logging.JSON
		logCfg.OutputFile = cfg.Logging.File
		if logFile != "" {
			logCfg.OutputFile = logFile
		}

		if logCloser != nil {
			logCloser.Close()
		}
		var err error
		logger, logCloser, err = logging.New(logCfg)
		if err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}

		if loadErr != nil {
			logger.WithError(loadErr).Warn("Failed to load config, using defaults")
		}
		if metricsFile != "" {
			cfg.Metrics.Textfile = metricsFile
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .devpairs/config.yaml or ~/.devpairs/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write run metrics to this Prometheus textfile")

	// Set custom version template
	rootCmd.SetVersionTemplate(`devpairs {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)

	// Add subcommands
	rootCmd.AddCommand(pairsCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(configCmd)
}

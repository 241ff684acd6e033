package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

// newRootCommand wires the flag surface over the environment-derived
// configuration. Precedence, lowest to highest: built-in defaults, OCR_*
// environment variables, the YAML config file, explicitly set flags.
func newRootCommand() *cobra.Command {
	var (
		configFile string
		input      string
		output     string
		delay      float64
		workers    int
		pattern    string
		verbosity  string
	)

	cmd := &cobra.Command{
		Use:     "ocrmypdf-auto",
		Short:   "Watch a directory tree and OCR documents once they stop changing",
		Version: version,
		Long: `ocrmypdf-auto watches a directory tree for PDF files and runs ocrmypdf on
each one after it has stopped changing for a coalescing delay, writing the
result to a mirrored path under the output directory.

All settings can also be supplied through OCR_* environment variables
(OCR_INPUT_DIR, OCR_OUTPUT_DIR, OCR_PROCESSING_DELAY, OCR_WORKERS,
OCR_LANGUAGES, OCR_GENERATE_SIDECAR, OCR_CPUS_PER_JOB, OCR_ROTATE,
OCR_ROTATE_CONFIDENCE, OCR_DESKEW, OCR_CLEAN, OCR_SKIP_TEXT,
OCR_VERBOSITY, OCR_CONFIG_FILE). Flags override the environment.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromEnv()
			if configFile == "" {
				configFile = os.Getenv("OCR_CONFIG_FILE")
			}
			if configFile != "" {
				if err := cfg.applyFile(configFile); err != nil {
					return fmt.Errorf("loading config file: %w", err)
				}
			}
			flags := cmd.Flags()
			if flags.Changed("input") {
				cfg.InputDir = input
			}
			if flags.Changed("output") {
				cfg.OutputDir = output
			}
			if flags.Changed("delay") {
				cfg.Delay = secondsToDuration(delay)
			}
			if flags.Changed("workers") {
				cfg.Workers = workers
			}
			if flags.Changed("pattern") {
				cfg.Pattern = pattern
			}
			if flags.Changed("verbosity") {
				cfg.Verbosity = verbosity
			}
			if err := cfg.validate(); err != nil {
				return err
			}
			return runDaemon(cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "YAML config file")
	f.StringVar(&input, "input", defaultInputDir, "directory tree to watch")
	f.StringVar(&output, "output", defaultOutputDir, "directory tree to write results under")
	f.Float64Var(&delay, "delay", defaultDelay.Seconds(), "coalescing delay in seconds")
	f.IntVar(&workers, "workers", defaultWorkers, "number of concurrent OCR jobs")
	f.StringVar(&pattern, "pattern", defaultPattern, "file name pattern to process")
	f.StringVar(&verbosity, "verbosity", "", "log level: debug, info, warn or error")
	return cmd
}

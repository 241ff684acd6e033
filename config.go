package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultInputDir  = "/input"
	defaultOutputDir = "/output"
	defaultDelay     = 3 * time.Second
	defaultWorkers   = 3
	defaultPattern   = "*.pdf"
)

// ocrOptions holds the tuning knobs passed through to ocrmypdf. The core
// never inspects these; they only shape the argument list built by args().
type ocrOptions struct {
	Languages        string
	Sidecar          bool
	JobsPerTask      int
	RotatePages      bool
	RotateConfidence float64
	Deskew           bool
	Clean            string
	SkipText         bool
}

// args assembles the ordered ocrmypdf argument list for one invocation.
// Options come first, then the input path, then the output path.
func (o *ocrOptions) args(input, output string) []string {
	var args []string
	if o.Languages != "" {
		args = append(args, "--language", o.Languages)
	}
	if o.Sidecar {
		args = append(args, "--sidecar", sidecarPath(output))
	}
	jobs := o.JobsPerTask
	if jobs <= 0 {
		jobs = 1
	}
	args = append(args, "--jobs", strconv.Itoa(jobs))
	if o.RotatePages {
		args = append(args, "--rotate-pages")
		if o.RotateConfidence > 0 {
			args = append(args, "--rotate-pages-threshold",
				strconv.FormatFloat(o.RotateConfidence, 'f', -1, 64))
		}
	}
	if o.Deskew {
		args = append(args, "--deskew")
	}
	switch {
	case looksLikeYes(o.Clean):
		args = append(args, "--clean")
	case strings.EqualFold(o.Clean, "final"):
		args = append(args, "--clean-final")
	}
	if o.SkipText {
		args = append(args, "--skip-text")
	}
	return append(args, input, output)
}

// sidecarPath swaps the output's extension for .txt.
func sidecarPath(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + ".txt"
}

type config struct {
	InputDir  string
	OutputDir string
	Delay     time.Duration
	Workers   int
	Pattern   string
	Verbosity string
	OCR       ocrOptions
}

// configFromEnv builds the configuration from OCR_* environment variables,
// applying defaults where unset.
func configFromEnv() *config {
	cfg := &config{
		InputDir:  envOr("OCR_INPUT_DIR", defaultInputDir),
		OutputDir: envOr("OCR_OUTPUT_DIR", defaultOutputDir),
		Delay:     secondsToDuration(tryFloat(os.Getenv("OCR_PROCESSING_DELAY"), defaultDelay.Seconds())),
		Workers:   int(tryFloat(os.Getenv("OCR_WORKERS"), defaultWorkers)),
		Pattern:   envOr("OCR_FILE_PATTERN", defaultPattern),
		Verbosity: os.Getenv("OCR_VERBOSITY"),
		OCR: ocrOptions{
			Languages:        os.Getenv("OCR_LANGUAGES"),
			Sidecar:          looksLikeYes(os.Getenv("OCR_GENERATE_SIDECAR")),
			JobsPerTask:      int(tryFloat(os.Getenv("OCR_CPUS_PER_JOB"), 1)),
			RotatePages:      looksLikeYes(os.Getenv("OCR_ROTATE")),
			RotateConfidence: tryFloat(os.Getenv("OCR_ROTATE_CONFIDENCE"), 0),
			Deskew:           looksLikeYes(os.Getenv("OCR_DESKEW")),
			Clean:            os.Getenv("OCR_CLEAN"),
			SkipText:         looksLikeYes(os.Getenv("OCR_SKIP_TEXT")),
		},
	}
	return cfg
}

// fileConfig mirrors config for YAML loading. Pointer fields distinguish
// "absent" from zero values so the file only overrides what it names.
type fileConfig struct {
	InputDir         string   `yaml:"input_dir"`
	OutputDir        string   `yaml:"output_dir"`
	ProcessingDelay  *float64 `yaml:"processing_delay"`
	Workers          *int     `yaml:"workers"`
	Pattern          string   `yaml:"pattern"`
	Verbosity        string   `yaml:"verbosity"`
	Languages        string   `yaml:"languages"`
	Sidecar          *bool    `yaml:"sidecar"`
	Jobs             *int     `yaml:"jobs"`
	RotatePages      *bool    `yaml:"rotate_pages"`
	RotateConfidence *float64 `yaml:"rotate_confidence"`
	Deskew           *bool    `yaml:"deskew"`
	Clean            string   `yaml:"clean"`
	SkipText         *bool    `yaml:"skip_text"`
}

// applyFile layers a YAML config file over the current values.
func (c *config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	if fc.InputDir != "" {
		c.InputDir = fc.InputDir
	}
	if fc.OutputDir != "" {
		c.OutputDir = fc.OutputDir
	}
	if fc.ProcessingDelay != nil {
		c.Delay = secondsToDuration(*fc.ProcessingDelay)
	}
	if fc.Workers != nil {
		c.Workers = *fc.Workers
	}
	if fc.Pattern != "" {
		c.Pattern = fc.Pattern
	}
	if fc.Verbosity != "" {
		c.Verbosity = fc.Verbosity
	}
	if fc.Languages != "" {
		c.OCR.Languages = fc.Languages
	}
	if fc.Sidecar != nil {
		c.OCR.Sidecar = *fc.Sidecar
	}
	if fc.Jobs != nil {
		c.OCR.JobsPerTask = *fc.Jobs
	}
	if fc.RotatePages != nil {
		c.OCR.RotatePages = *fc.RotatePages
	}
	if fc.RotateConfidence != nil {
		c.OCR.RotateConfidence = *fc.RotateConfidence
	}
	if fc.Deskew != nil {
		c.OCR.Deskew = *fc.Deskew
	}
	if fc.Clean != "" {
		c.OCR.Clean = fc.Clean
	}
	if fc.SkipText != nil {
		c.OCR.SkipText = *fc.SkipText
	}
	return nil
}

func (c *config) validate() error {
	info, err := os.Stat(c.InputDir)
	if err != nil {
		return fmt.Errorf("input directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("input directory: %s is not a directory", c.InputDir)
	}
	if c.Delay <= 0 {
		c.Delay = defaultDelay
	}
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.Pattern == "" {
		c.Pattern = defaultPattern
	}
	if _, err := filepath.Match(c.Pattern, "probe"); err != nil {
		return fmt.Errorf("file pattern %q: %w", c.Pattern, err)
	}
	return nil
}

// outputPath maps an input file to its location under the output base,
// preserving the path relative to the input base.
func (c *config) outputPath(input string) (string, error) {
	rel, err := filepath.Rel(c.InputDir, input)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the input directory %s", input, c.InputDir)
	}
	return filepath.Join(c.OutputDir, rel), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// looksLikeYes reports whether a string spells a truthy setting.
func looksLikeYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "y", "yes", "on", "t", "true":
		return true
	}
	return false
}

// tryFloat parses a float, falling back to a default on any garbage. Tuning
// values from the environment should never prevent startup.
func tryFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fallback
	}
	return f
}

func secondsToDuration(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}

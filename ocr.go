package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const defaultOcrCommand = "ocrmypdf"

// ocrRunner shells out to ocrmypdf for a single input file, mirroring the
// input's relative location under the output base.
type ocrRunner struct {
	cfg     *config
	log     *logger
	command string
}

func newOcrRunner(cfg *config, log *logger) *ocrRunner {
	return &ocrRunner{cfg: cfg, log: log, command: defaultOcrCommand}
}

func (r *ocrRunner) run(input string) error {
	output, err := r.cfg.outputPath(input)
	if err != nil {
		return fmt.Errorf("deriving output path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	args := r.cfg.OCR.args(input, output)
	r.log.infof("running %s %s", r.command, strings.Join(args, " "))

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(r.command, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err = cmd.Run()
	if s := strings.TrimSpace(stdout.String()); s != "" {
		r.log.debugf("%s stdout: %s", r.command, s)
	}
	if s := strings.TrimSpace(stderr.String()); s != "" {
		r.log.debugf("%s stderr: %s", r.command, s)
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", r.command, input, err)
	}
	return nil
}

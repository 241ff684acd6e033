package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ocrmypdf-auto: %v\n", err)
		os.Exit(1)
	}
}

// runDaemon runs the watch-and-process loop until a termination signal
// arrives, then shuts everything down in order: event source first, then
// outstanding tasks, then the worker pool.
func runDaemon(cfg *config) error {
	log := newLogger(parseLogLevel(cfg.Verbosity), os.Stderr)

	runner := newOcrRunner(cfg, log.child("ocr"))
	sched := newScheduler(cfg, runner, log.child("scheduler"))
	if err := sched.start(); err != nil {
		return err
	}

	sig := awaitSignal()
	log.warnf("signal %v received, shutting down", sig)
	sched.shutdown()
	log.infof("shutdown complete")
	return nil
}

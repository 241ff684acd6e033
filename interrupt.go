package main

import (
	"os"
	"os/signal"
	"syscall"
)

// awaitSignal blocks until a termination signal arrives and reports which
// one. SIGINT and SIGTERM both trigger a graceful shutdown; in a container
// SIGTERM is what the runtime sends on stop.
func awaitSignal() os.Signal {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	return <-sigs
}

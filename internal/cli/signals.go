package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/teabranch/atlas-provision/internal/logging"
)

// WithInterrupt returns a context cancelled on SIGINT or SIGTERM. Cancelling
// it aborts an in-flight request or the wait between readiness checks; a
// cluster already being created on Atlas keeps provisioning.
func WithInterrupt(parent context.Context, logger *logging.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			if logger != nil {
				logger.Warn("Interrupted, stopping. Resources already requested from Atlas are not rolled back",
					"signal", sig.String())
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

// Package logging configures the process-wide zap logger.
package logging

import "go.uber.org/zap"

// Init builds the production logger and installs it as the zap global, so
// the rest of the service logs through zap.S(). The returned function
// flushes buffered entries and belongs in a defer in main.
func Init() func() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
	return func() { _ = logger.Sync() }
}

// Package logging provides the process-wide structured logger.
// All packages log through the sugared zap logger returned by Sugar so
// output stays uniform across the transport, session, and provider layers.
package logging

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init builds the global sugared logger from LOG_LEVEL and redirects the
// standard library logger into zap. Safe to call more than once.
func Init() *zap.SugaredLogger {
	once.Do(func() {
		var logger *zap.Logger
		switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
		case "debug":
			l, _ := zap.NewDevelopment()
			logger = l
		default:
			l, _ := zap.NewProduction()
			logger = l
		}
		_ = zap.RedirectStdLog(logger)
		sugar = logger.Sugar()
	})
	return sugar
}

// Sugar returns the initialized global logger.
func Sugar() *zap.SugaredLogger { return sugar }

// Named returns a child logger with the given name segment appended.
func Named(name string) *zap.SugaredLogger { return Init().Named(name) }

func init() {
	Init()
}

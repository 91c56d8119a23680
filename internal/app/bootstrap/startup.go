// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/abdeliveries/abdeliveries/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// The notifier timeout comes from config; TIMEOUT_* environment variables
// may still override any of the shared timeouts.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	cfg := timeouts.Current()
	cfg.Notify = appCfg.NotifierTimeout
	timeouts.Configure(cfg)

	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts overridden from environment", zap.Int("count", n))
	}

	cur := timeouts.Current()
	logger.Info("timeouts configured",
		zap.Duration("ping", cur.Ping),
		zap.Duration("short", cur.Short),
		zap.Duration("notify", cur.Notify))
	return nil
}

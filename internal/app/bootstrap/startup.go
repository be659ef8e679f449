// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"os"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	membershipstore "github.com/dalemusser/gatherhub/internal/app/store/memberships"
	"github.com/dalemusser/gatherhub/internal/app/system/tasks"
)

// jobRunner drives the background jobs; Shutdown stops it.
var jobRunner *tasks.Runner

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// It prepares the upload directory and starts the background reconcile
// sweep that repairs membership state after interrupted cascades.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := os.MkdirAll(appCfg.UploadDir, 0o755); err != nil {
		return err
	}

	memberships := membershipstore.New(deps.MongoDatabase)
	jobRunner = tasks.NewRunner(logger,
		tasks.MembershipReconcileJob(memberships, logger, appCfg.ReconcileInterval),
	)
	jobRunner.Start()

	return nil
}

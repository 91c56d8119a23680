// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	accountsfeature "github.com/abdeliveries/abdeliveries/internal/app/features/accounts"
	errorsfeature "github.com/abdeliveries/abdeliveries/internal/app/features/errors"
	healthfeature "github.com/abdeliveries/abdeliveries/internal/app/features/health"
	"github.com/abdeliveries/abdeliveries/internal/app/store/audit"
	userstore "github.com/abdeliveries/abdeliveries/internal/app/store/users"
	"github.com/abdeliveries/abdeliveries/internal/app/system/auditlog"
	"github.com/abdeliveries/abdeliveries/internal/app/system/authutil"
	"github.com/abdeliveries/abdeliveries/internal/app/system/notifier"
	"github.com/abdeliveries/abdeliveries/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed, so timeouts are final here.
//
// Routes:
//
//	GET  /health
//	GET  /api/user?phone=
//	POST /api/register
//	POST /api/login
//	POST /api/register-toast
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	hasher, err := authutil.NewHasher(appCfg.BcryptCost)
	if err != nil {
		logger.Error("password hasher init failed", zap.Error(err))
		return nil, err
	}

	var auditStore *audit.Store
	if appCfg.AuditLogAuth == auditlog.ModeAll || appCfg.AuditLogAuth == auditlog.ModeDB {
		auditStore = audit.New(deps.MongoDatabase)
	}
	auditLogger := auditlog.New(auditStore, logger, auditlog.Config{Auth: appCfg.AuditLogAuth})

	users := userstore.New(deps.MongoDatabase, appCfg.MongoUsersCollection)
	notify := notifier.New(appCfg.NotifierURL, timeouts.Notify(), logger)
	svc := accountsfeature.NewService(users, notify, hasher, logger)

	return newRouter(accountsfeature.NewHandler(svc, auditLogger, logger)), nil
}

// newRouter mounts the feature routers. Split out so tests can drive the
// full route table without a database.
func newRouter(accountsHandler *accountsfeature.Handler) chi.Router {
	r := chi.NewRouter()

	// Any origin may call the API; there are no cookies to protect.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	// Liveness check; never touches the database.
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler()))

	r.Mount("/api", accountsfeature.Routes(accountsHandler))

	return r
}

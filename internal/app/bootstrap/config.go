// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/abdeliveries/abdeliveries/internal/app/system/auditlog"
	"github.com/abdeliveries/abdeliveries/internal/app/system/authutil"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const (
	defaultMongoURI        = "mongodb://localhost:27017"
	defaultMongoDatabase   = "ab_deliveries"
	defaultUsersCollection = "users"
	defaultNotifierURL     = "http://localhost:4000"
	defaultNotifierTimeout = 10 * time.Second
)

// appConfigKeys defines the configuration keys for the account service.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, notifier_url, etc.
//   - Environment variables: ABDELIVERIES_MONGO_URI, ABDELIVERIES_NOTIFIER_URL, etc.
//   - Command-line flags: --mongo_uri, --notifier_url, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: defaultMongoURI, Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: defaultMongoDatabase, Desc: "MongoDB database name"},
	{Name: "mongo_users_collection", Default: defaultUsersCollection, Desc: "MongoDB collection for user documents"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Chat/notification service
	{Name: "notifier_url", Default: defaultNotifierURL, Desc: "Base URL of the chat/notification service"},
	{Name: "notifier_timeout", Default: "10s", Desc: "Timeout for each notifier call (e.g., 10s, 1500ms)"},

	{Name: "bcrypt_cost", Default: authutil.DefaultCost, Desc: "bcrypt work factor for password hashing"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: auditlog.ModeLog, Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// legacyEnv maps the bare environment names older deployments used onto the
// settings they fill. They apply only when the setting is still at its default.
var legacyEnv = []struct {
	name string
	def  string
	dst  func(*AppConfig) *string
}{
	{"MONGO_URI", defaultMongoURI, func(c *AppConfig) *string { return &c.MongoURI }},
	{"DB_NAME", defaultMongoDatabase, func(c *AppConfig) *string { return &c.MongoDatabase }},
	{"COLL_USERS", defaultUsersCollection, func(c *AppConfig) *string { return &c.MongoUsersCollection }},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, ABDELIVERIES_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "ABDELIVERIES", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:             appValues.String("mongo_uri"),
		MongoDatabase:        appValues.String("mongo_database"),
		MongoUsersCollection: appValues.String("mongo_users_collection"),
		MongoMaxPoolSize:     uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize:     uint64(appValues.Int("mongo_min_pool_size")),

		NotifierURL:     appValues.String("notifier_url"),
		NotifierTimeout: appValues.Duration("notifier_timeout", defaultNotifierTimeout),

		BcryptCost: appValues.Int("bcrypt_cost"),

		AuditLogAuth: appValues.String("audit_log_auth"),
	}

	applyLegacyEnv(&appCfg, os.Getenv, logger)

	return coreCfg, appCfg, nil
}

func applyLegacyEnv(appCfg *AppConfig, getenv func(string) string, logger *zap.Logger) {
	for _, le := range legacyEnv {
		dst := le.dst(appCfg)
		if *dst != le.def {
			continue
		}
		if v := getenv(le.name); v != "" {
			*dst = v
			logger.Info("using legacy environment variable", zap.String("name", le.name))
		}
	}
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Problems are caught here, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database must not be empty")
	}
	if appCfg.MongoUsersCollection == "" {
		return fmt.Errorf("mongo_users_collection must not be empty")
	}
	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
			appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}

	u, err := url.Parse(appCfg.NotifierURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("notifier_url must be an absolute http(s) URL, got %q", appCfg.NotifierURL)
	}
	if appCfg.NotifierTimeout <= 0 {
		return fmt.Errorf("notifier_timeout must be positive, got %s", appCfg.NotifierTimeout)
	}

	if _, err := authutil.NewHasher(appCfg.BcryptCost); err != nil {
		return fmt.Errorf("bcrypt_cost: %w", err)
	}

	if err := auditlog.ValidMode(appCfg.AuditLogAuth); err != nil {
		return fmt.Errorf("audit_log_auth: %w", err)
	}

	return nil
}

// Command pingdb checks that the configured MongoDB is reachable and prints
// the server's build info, then logs failed logins from the last day. It
// reads the same configuration as the service.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/abdeliveries/abdeliveries/internal/app/bootstrap"
	"github.com/abdeliveries/abdeliveries/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(context.Background(), logger); err != nil {
		logger.Error("pingdb failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *zap.Logger) error {
	coreCfg, appCfg, err := bootstrap.LoadConfig(logger)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := bootstrap.ValidateConfig(coreCfg, appCfg, logger); err != nil {
		return err
	}

	client, err := bootstrap.OpenMongo(ctx, appCfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	var info bson.M
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "buildInfo", Value: 1}}).Decode(&info); err != nil {
		return fmt.Errorf("buildInfo: %w", err)
	}

	out, err := bson.MarshalExtJSONIndent(info, false, false, "", "  ")
	if err != nil {
		return fmt.Errorf("encode build info: %w", err)
	}
	fmt.Println(string(out))

	db := client.Database(appCfg.MongoDatabase)
	n, err := db.Collection(appCfg.MongoUsersCollection).EstimatedDocumentCount(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	logger.Info("MongoDB reachable",
		zap.String("database", appCfg.MongoDatabase),
		zap.String("collection", appCfg.MongoUsersCollection),
		zap.Int64("users", n))

	return reportFailedLogins(ctx, audit.New(db), time.Now().Add(-failedLoginWindow), logger)
}

const (
	failedLoginWindow = 24 * time.Hour
	failedLoginLimit  = 20
)

func reportFailedLogins(ctx context.Context, store *audit.Store, since time.Time, logger *zap.Logger) error {
	failed, err := store.GetFailedLogins(ctx, since, failedLoginLimit)
	if err != nil {
		return fmt.Errorf("failed logins: %w", err)
	}
	for _, e := range failed {
		logger.Info("failed login",
			zap.Time("at", e.Timestamp),
			zap.String("event_type", e.EventType),
			zap.String("ip", e.IP),
			zap.String("email", e.Details["email"]))
	}
	logger.Info("failed logins since", zap.Time("since", since), zap.Int("count", len(failed)))
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/trongtien/page-builder-cms-sub000/internal/app"
	"github.com/trongtien/page-builder-cms-sub000/internal/config"
	"github.com/trongtien/page-builder-cms-sub000/internal/database"
	"github.com/trongtien/page-builder-cms-sub000/internal/kv"
	"github.com/trongtien/page-builder-cms-sub000/pkg/logger"
)

var (
	retries int
	delay   time.Duration
)

func main() {
	logger.Init(logger.Config{Level: os.Getenv("CMS_LOG_LEVEL"), Format: "json"})

	rootCmd := &cobra.Command{
		Use:   "cmsctl",
		Short: "Operational CLI for the CMS persistence layer",
	}

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Probe Postgres and Redis and report their health",
		RunE:  runHealth,
	}
	healthCmd.Flags().IntVar(&retries, "retries", 1, "probe attempts before giving up")
	healthCmd.Flags().DurationVar(&delay, "delay", time.Second, "fixed delay between attempts")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE:  runMigrate,
	}

	kvCmd := &cobra.Command{
		Use:   "kv",
		Short: "Key-value store commands",
	}
	kvCmd.AddCommand(&cobra.Command{
		Use:   "ping",
		Short: "Probe the key-value store",
		RunE:  runKVPing,
	})

	rootCmd.AddCommand(healthCmd, migrateCmd, kvCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.NewDB(logger.Get())

	dbCfg, err := config.LoadPostgres()
	if err != nil {
		return err
	}
	redisCfg, err := config.LoadRedis()
	if err != nil {
		return err
	}

	shutdown := app.NewShutdown(log)
	defer shutdown.CloseAll(ctx)
	shutdown.Listen(func() { os.Exit(1) })

	manager := database.NewManager(dbCfg, log)
	shutdown.Register("postgres", func(context.Context) error {
		manager.Disconnect()
		return nil
	})

	client := kv.NewClient(redisCfg, log)
	shutdown.Register("redis", func(context.Context) error {
		return client.Disconnect()
	})

	healthy := true

	dbResult := database.HealthResult{Status: database.StatusUnhealthy}
	if err := manager.Connect(ctx); err != nil {
		dbResult.Err = err.Error()
		dbResult.CheckedAt = time.Now()
		healthy = false
	} else {
		monitor := database.NewHealthMonitor(manager, log)
		res, ready := monitor.WaitUntilReady(ctx, retries, delay)
		dbResult = res
		if !ready {
			healthy = false
		}
	}

	kvMonitor := kv.NewHealthMonitor()
	kvResult := kv.HealthResult{LastCheck: time.Now(), Err: "redis client not connected"}
	if err := client.Connect(ctx); err != nil {
		kvResult.Err = err.Error()
		healthy = false
	} else {
		kvResult = kvMonitor.Check(ctx, client)
		if !kvResult.Connected {
			healthy = false
		}
	}

	out, _ := json.MarshalIndent(map[string]any{
		"postgres": map[string]any{
			"status":    dbResult.Status,
			"latencyMs": dbResult.Latency.Milliseconds(),
			"timestamp": dbResult.CheckedAt,
			"error":     dbResult.Err,
		},
		"redis": map[string]any{
			"connected": kvResult.Connected,
			"latencyMs": kvResult.Latency.Milliseconds(),
			"lastCheck": kvResult.LastCheck,
			"error":     kvResult.Err,
		},
	}, "", "  ")
	fmt.Println(string(out))

	if !healthy {
		os.Exit(1)
	}
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	dbCfg, err := config.LoadPostgres()
	if err != nil {
		return err
	}
	path := dbCfg.MigrationsPath
	if path == "" {
		path = "migrations"
	}
	m, err := migrate.New("file://"+path, dbCfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	fmt.Println("migrations applied")
	return nil
}

func runKVPing(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.NewDB(logger.Get())

	redisCfg, err := config.LoadRedis()
	if err != nil {
		return err
	}
	client := kv.NewClient(redisCfg, log)
	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer func() { _ = client.Disconnect() }()

	result := kv.NewHealthMonitor().Check(ctx, client)
	if !result.Connected {
		return fmt.Errorf("redis unhealthy: %s", result.Err)
	}
	fmt.Printf("PONG (%s)\n", result.Latency)
	return nil
}

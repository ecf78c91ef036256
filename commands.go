package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ashiphsayyad32/Zenimax-microservice-app/aggregator"
	"github.com/ashiphsayyad32/Zenimax-microservice-app/api"
	"github.com/ashiphsayyad32/Zenimax-microservice-app/config"
	"github.com/ashiphsayyad32/Zenimax-microservice-app/domain"
	"github.com/ashiphsayyad32/Zenimax-microservice-app/storage"
	"github.com/ashiphsayyad32/Zenimax-microservice-app/upstream"
)

const (
	FlagConfig      = "config"
	shutdownTimeout = 10 * time.Second
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "todo-gateway",
	Short:         "Aggregates categories, tasks and statuses into a single todo view",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP gateway",
	RunE:  runServe,
}

var initStoreCmd = &cobra.Command{
	Use:   "init-store",
	Short: "Create the categories table and the category events queue",
	RunE:  runInitStore,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, FlagConfig, "", "Path to a YAML configuration file")
	rootCmd.AddCommand(serveCmd, initStoreCmd)
}

// categoryStore is what both store backends provide.
type categoryStore interface {
	domain.CategoryStorage
	Ping(ctx context.Context) error
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if cfg.Server.Debug {
		log.SetLevel(log.DebugLevel)
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg config.Config) (categoryStore, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverTables:
		st, err := storage.NewTableStore(cfg.Store.ConnectionString, cfg.Store.Table)
		if err != nil {
			return nil, nil, fmt.Errorf("tables store: %w", err)
		}
		return st, func() {}, nil
	default:
		pool, err := storage.Connect(ctx, cfg.Store.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres store: %w", err)
		}
		return storage.NewPgStore(pool), pool.Close, nil
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := log.StandardLogger()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var notifier domain.CategoryNotifier
	if cfg.Notifications.Queue != "" {
		qn, err := storage.NewQueueNotifier(cfg.NotificationsConnectionString(), cfg.Notifications.Queue)
		if err != nil {
			return fmt.Errorf("category events queue: %w", err)
		}
		notifier = qn
	}

	var deduper api.Deduper
	if cfg.Redis.URL != "" {
		opts, err := cfg.RedisOptions()
		if err != nil {
			return err
		}
		rc := redis.NewClient(opts)
		defer func() {
			if cerr := rc.Close(); cerr != nil {
				logger.WithError(cerr).Warn("redis close")
			}
		}()
		deduper = api.NewRedisDeduper(rc, cfg.Redis.DedupeTTL)
	}

	tasksClient := upstream.New(cfg.Tasks.BaseURL, cfg.Tasks.Timeout)
	statusesClient := upstream.New(cfg.Statuses.BaseURL, cfg.Statuses.Timeout)

	agg := aggregator.New(
		store,
		upstream.NewTaskSource(tasksClient, cfg.Tasks.Path),
		upstream.NewStatusSource(statusesClient, cfg.Statuses.Path),
		aggregator.Config{
			Parallel: cfg.Aggregation.Parallel,
			Labels: aggregator.Labels{
				Categories: cfg.Aggregation.CategoryLabel,
				Tasks:      cfg.Tasks.Name,
				Statuses:   cfg.Statuses.Name,
			},
			Logger: logger,
		},
	)
	categories := domain.NewCategoryService(store, notifier)
	probes := []api.Probe{
		{Name: "categoryStore", Check: store.Ping},
		{Name: "taskService", Check: tasksClient.CheckHealth},
		{Name: "statusService", Check: statusesClient.CheckHealth},
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "Idempotency-Key"},
	}))
	if cfg.Server.Pprof {
		pprof.Register(e)
	}
	api.Register(e, agg, categories, deduper, probes, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(log.Fields{
			"addr":     cfg.Server.Addr,
			"store":    cfg.Store.Driver,
			"parallel": cfg.Aggregation.Parallel,
		}).Info("todo gateway listening")
		errCh <- e.Start(cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	return e.Shutdown(shutdownCtx)
}

func runInitStore(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	switch cfg.Store.Driver {
	case config.DriverTables:
		if err := storage.EnsureTable(ctx, cfg.Store.ConnectionString, cfg.Store.Table); err != nil {
			return fmt.Errorf("create table %s: %w", cfg.Store.Table, err)
		}
	default:
		pool, err := storage.Connect(ctx, cfg.Store.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := storage.NewPgStore(pool).EnsureTable(ctx); err != nil {
			return fmt.Errorf("create categories table: %w", err)
		}
	}
	log.WithField("store", cfg.Store.Driver).Info("categories store ready")

	if cfg.Notifications.Queue != "" {
		if err := storage.EnsureQueue(ctx, cfg.NotificationsConnectionString(), cfg.Notifications.Queue); err != nil {
			return fmt.Errorf("create queue %s: %w", cfg.Notifications.Queue, err)
		}
		log.WithField("queue", cfg.Notifications.Queue).Info("category events queue ready")
	}
	return nil
}

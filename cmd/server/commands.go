package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sentinel/api/internal/config"
	"github.com/sentinel/api/internal/database"
	"github.com/sentinel/api/internal/eventbus"
	"github.com/sentinel/api/internal/llm"
	"github.com/sentinel/api/internal/logging"
	"github.com/sentinel/api/internal/telemetry"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// bootstrap loads configuration and builds the logger shared by every command.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.LogFile, !cfg.IsProduction())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}

func newLLMClient(cfg *config.Config) *llm.Client {
	return llm.NewClient(llm.ClientConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Referer: cfg.LLM.Referer,
		Title:   cfg.LLM.Title,
		Timeout: cfg.LLM.Timeout,
	}, nil)
}

// draftBudget leaves room for one full low-cost chain (primary and backup
// timeouts) plus storage inside the server write deadline.
func draftBudget(cfg *config.Config) time.Duration {
	return 2*cfg.LLM.Timeout + 5*time.Second
}

// writeTimeout must exceed every handler's generation budget.
func writeTimeout(cfg *config.Config) time.Duration {
	return draftBudget(cfg) + 10*time.Second
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "migrate",
				Usage:   "Apply pending migrations before serving",
				Value:   true,
				EnvVars: []string{"AUTO_MIGRATE"},
			},
		},
		Action: func(c *cli.Context) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return serve(c.Context, cfg, logger, c.Bool("migrate"))
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger, migrate bool) error {
	logger.Info("Sentinel API starting...",
		zap.String("version", version),
		zap.String("environment", cfg.Environment),
	)

	shutdownTelemetry, err := telemetry.InitTracer(ctx, "sentinel-api", cfg.OTLPEndpoint)
	if err != nil {
		// collector might be down
		logger.Error("failed to initialize telemetry", zap.Error(err))
	} else {
		defer func() {
			if err := shutdownTelemetry(context.Background()); err != nil {
				logger.Error("failed to shutdown telemetry", zap.Error(err))
			}
		}()
	}

	if migrate {
		if err := database.RunMigrations(cfg.DatabaseURL, logger); err != nil {
			return err
		}
	}

	db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	deps := serverDeps{cfg: cfg, logger: logger, db: db}

	// Redis backs the shared rate limiter; without it each replica limits alone.
	rdb, err := database.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn("redis unavailable, using in-process rate limiting", zap.Error(err))
	} else {
		defer rdb.Close()
		deps.redis = rdb
	}

	var events eventbus.Publisher = eventbus.NopPublisher{}
	if cfg.NATSURL != "" {
		nats, err := eventbus.Connect(cfg.NATSURL, logger)
		if err != nil {
			logger.Warn("NATS unavailable, domain events disabled", zap.Error(err))
		} else {
			events = nats
		}
	}
	defer events.Close()
	deps.events = events

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	deps.registry = registry

	client := newLLMClient(cfg)
	deps.llmClient = client
	deps.generator = llm.NewPolicy(client, llm.Models{
		LowCostPrimary: cfg.LLM.LowCostModelPrimary,
		LowCostBackup:  cfg.LLM.LowCostModelBackup,
		Critical:       cfg.LLM.CriticalModel,
	}, logger, llm.NewMetrics(registry))
	if cfg.LLM.APIKey == "" {
		logger.Warn("OPENROUTER_API_KEY not set, every generation will use fallback text")
	}

	router := newRouter(deps)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout(cfg),
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server exited gracefully")
	return nil
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the database schema",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: func(c *cli.Context) error {
					cfg, logger, err := bootstrap()
					if err != nil {
						return err
					}
					defer logger.Sync()
					return database.RunMigrations(cfg.DatabaseURL, logger)
				},
			},
			{
				Name:  "down",
				Usage: "Roll back applied migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1, Usage: "Number of migrations to roll back"},
				},
				Action: func(c *cli.Context) error {
					cfg, logger, err := bootstrap()
					if err != nil {
						return err
					}
					defer logger.Sync()
					return database.RollbackMigrations(cfg.DatabaseURL, c.Int("steps"), logger)
				},
			},
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load the demo account and sample dashboard data",
		Action: func(c *cli.Context) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if err := database.RunMigrations(cfg.DatabaseURL, logger); err != nil {
				return err
			}
			db, err := database.NewPostgres(c.Context, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			if err := db.Seed(c.Context, logger); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Demo credentials:\n  Email: %s\n  Password: %s\n", database.DemoEmail, database.DemoPassword)
			return nil
		},
	}
}

func pingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Check connectivity to Postgres, Redis, NATS and the LLM provider",
		Action: func(c *cli.Context) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, cancel := context.WithTimeout(c.Context, 15*time.Second)
			defer cancel()

			failed := 0
			report := func(name string, err error) {
				if err != nil {
					failed++
					fmt.Fprintf(c.App.Writer, "%-9s FAIL  %v\n", name, err)
					return
				}
				fmt.Fprintf(c.App.Writer, "%-9s OK\n", name)
			}

			db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
			if err == nil {
				var one int
				err = db.Pool().QueryRow(ctx, "SELECT 1").Scan(&one)
				db.Close()
			}
			report("postgres", err)

			rdb, err := database.NewRedis(ctx, cfg.RedisURL)
			if err == nil {
				rdb.Close()
			}
			report("redis", err)

			if cfg.NATSURL != "" {
				nats, err := eventbus.Connect(cfg.NATSURL, logger)
				if err == nil {
					nats.Close()
				}
				report("nats", err)
			}

			report("llm", newLLMClient(cfg).Ping(ctx))

			if failed > 0 {
				return cli.Exit(fmt.Sprintf("%d dependencies unreachable", failed), 1)
			}
			return nil
		},
	}
}

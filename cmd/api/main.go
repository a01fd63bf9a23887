package main

import (
	"cinehub/proj/internal/api/tasks"
	"cinehub/proj/internal/clients/sso/grpc"
	"cinehub/proj/internal/config"
	"cinehub/proj/internal/lib/logger"
	"cinehub/proj/internal/mails"
	"cinehub/proj/internal/services"
	"cinehub/proj/internal/session"
	"cinehub/proj/internal/storage/memory"
	"cinehub/proj/internal/storage/postgres"
	pgmodels "cinehub/proj/internal/storage/postgres/models"
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const version = "1.0.0"

func main() {
	cfgPath := flag.String("config", "config/local.yml", "path to config file")
	flag.Parse()
	// .env is optional, real deployments set variables directly.
	_ = godotenv.Load()
	cfg := config.MustLoad(*cfgPath)
	log := logger.SetupLogger(cfg.Debug)

	stores, closeStores := mustOpenStores(cfg, log)
	defer closeStores()

	sso, err := grpc.New(
		log,
		cfg.AppID,
		cfg.Clients.SSO.Addr,
		cfg.Clients.SSO.RetryTimeout,
		cfg.Clients.SSO.RetriesCount,
	)
	if err != nil {
		panic(err)
	}
	defer sso.Close()
	mailer := mails.New(
		cfg.SMTPServer.Host,
		cfg.SMTPServer.Port,
		cfg.SMTPServer.Timeout,
		cfg.SMTPServer.Username,
		cfg.SMTPServer.Password,
		cfg.SMTPServer.Sender,
		cfg.SMTPServer.RetriesCount,
	)

	sessions := session.New(log)
	sessions.Subscribe(func(e session.Event) {
		log.Debug("session event", "kind", e.Kind, "user_id", e.User.ID)
	})
	sessionsCtx, stopSessions := context.WithCancel(context.Background())
	go sessions.Run(sessionsCtx, cfg.Sessions.PruneInterval)
	defer func() {
		stopSessions()
		sessions.Close()
	}()

	bgTasks := tasks.New(log, cfg.Tasks.Workers, cfg.Tasks.QueueSize)
	bgTasks.Run()

	app := NewApplication(cfg, log, services.New(log, cfg, stores, services.Deps{
		Mailer:       mailer,
		Sso:          sso,
		Sessions:     sessions,
		TaskExecutor: bgTasks,
	}))
	serveErr := app.serve()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := bgTasks.Shutdown(ctx); err != nil {
		log.Error("background tasks were not finished", "errMsg", err.Error())
	}
	if serveErr != nil {
		log.Error("shutting down the server", "reason", serveErr.Error())
		os.Exit(1)
	}
}

func mustOpenStores(cfg *config.Config, log *slog.Logger) (services.Stores, func()) {
	if cfg.DB.Driver == config.DriverMemory {
		log.Warn("using in-memory storage, data is lost on restart")
		return services.MemoryStores(memory.New()), func() {}
	}
	if cfg.DB.Migrate {
		if err := postgres.Migrate(cfg.DB.Dsn); err != nil {
			panic(err)
		}
		log.Info("database migrations applied")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	storage, err := postgres.New(ctx, cfg.DB.Dsn, cfg.DB.MaxConns, cfg.DB.MaxConnIdleTime)
	if err != nil {
		panic(err)
	}
	log.Info("database connection established")
	return services.PostgresStores(pgmodels.New(storage)), storage.Close
}

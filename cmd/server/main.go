package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/eventhub-rsvp/app/internal/clock"
	"github.com/eventhub-rsvp/app/internal/config"
	"github.com/eventhub-rsvp/app/internal/database"
	"github.com/eventhub-rsvp/app/internal/events"
	"github.com/eventhub-rsvp/app/internal/handlers"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/urfave/cli/v2"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "eventhub",
		Usage: "Event listing and RSVP service.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to a YAML config file.",
				EnvVars: []string{"EVENTS_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API.",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger := setupLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
			slog.SetDefault(logger)

			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			db, err := database.InitDB(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer db.Close()

			clk := clock.In(clock.Real(), loc)
			store := database.NewStore(db, clk)
			store.SetBcryptCost(cfg.Auth.BcryptCost)

			env := &handlers.Env{
				Store:      store,
				Events:     events.NewService(store, clk, logger, cfg.Events.RSVPMaxAttempts),
				Clock:      clk,
				Logger:     logger,
				SessionTTL: cfg.Auth.SessionTTL,
				PublicURL:  cfg.Server.PublicURL,
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := &http.Server{
				Addr:         net.JoinHostPort("", cfg.Server.Port),
				Handler:      handlers.NewRouter(env),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
				ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Server starting.", "addr", server.Addr, "database", cfg.Database.Path, "timezone", loc.String())
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("Shutting down.")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}
			return nil
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply the database schema and exit.",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger := setupLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)

			db, err := database.InitDB(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer db.Close()

			logger.Info("Schema applied.", "database", cfg.Database.Path)
			return nil
		},
	}
}

func setupLogger(w io.Writer, level, format string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

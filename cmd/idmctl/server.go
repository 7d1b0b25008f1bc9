package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"idm-in-go/pkg/auth"
	"idm-in-go/pkg/config"
	"idm-in-go/pkg/crypto"
	"idm-in-go/pkg/db"
	"idm-in-go/pkg/server"
	"idm-in-go/pkg/server/endpoints"
	storegorm "idm-in-go/pkg/server/store/gorm"
	"idm-in-go/pkg/session"
)

const shutdownTimeout = 30 * time.Second

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the IDM authentication server",
	Long: `Run the IDM authentication server

To run the server requires the environment variables IDM_DATA_KEY and DATABASE_URL.

By default, database migrations are run on startup. Use --no-migrate to skip.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Validate required environment variables first (fail fast)
		dataKeyB64, ok := os.LookupEnv("IDM_DATA_KEY")
		if !ok {
			fmt.Fprintln(os.Stderr, "IDM_DATA_KEY environment variable is required")
			os.Exit(1)
		}

		if os.Getenv("DATABASE_URL") == "" {
			fmt.Fprintln(os.Stderr, "DATABASE_URL environment variable is required")
			os.Exit(1)
		}

		logger := newLogger()
		slog.SetDefault(logger)

		// Run migrations unless --no-migrate is set
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			logger.Info("running database migrations")
			if err := runMigrations(); err != nil {
				fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
				os.Exit(1)
			}
		}

		dataKey, err := base64.StdEncoding.DecodeString(dataKeyB64)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Bad IDM_DATA_KEY:", err)
			os.Exit(1)
		}

		cfg, err := config.Load()
		if err != nil {
			logger.Error("failed to load configuration", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if addr, _ := cmd.Flags().GetString("listen-address"); addr != "" {
			cfg.ListenAddress = addr
		}
		if err := cfg.Validate(); err != nil {
			logger.Error("invalid configuration", slog.String("error", err.Error()))
			os.Exit(1)
		}

		database, err := db.Connect(db.Config{})
		if err != nil {
			logger.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}

		users := storegorm.NewUserStore(database)
		health := storegorm.NewHealthStore(database)

		authDoc, err := config.LoadAuthentication(cfg.AuthConfigFile)
		if err != nil {
			logger.Error("failed to load authentication document",
				slog.String("path", cfg.AuthConfigFile),
				slog.String("error", err.Error()))
			os.Exit(1)
		}

		sessions, err := newSessionModule(cfg, authDoc, dataKey)
		if err != nil {
			logger.Error("failed to initialize session module", slog.String("error", err.Error()))
			os.Exit(1)
		}

		decryptor, err := crypto.NewService(dataKey)
		if err != nil {
			logger.Error("failed to initialize crypto service", slog.String("error", err.Error()))
			os.Exit(1)
		}

		factory := auth.NewFactory(users, decryptor)
		service := auth.NewService(factory, auth.WithLogger(logger))
		service.Activate(authDoc.Modules())
		logger.Info("authentication chain activated",
			slog.Any("modules", service.Modules()),
			slog.String("path", cfg.AuthConfigFile))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if cfg.WatchAuthConfig {
			watcher := config.NewWatcher(cfg.AuthConfigFile, logger, func(doc *config.Authentication) {
				service.Activate(doc.Modules())
				logger.Info("authentication chain re-activated",
					slog.Any("modules", service.Modules()))
			})
			go func() {
				if err := watcher.Run(ctx); err != nil {
					logger.Error("authentication config watcher stopped",
						slog.String("error", err.Error()))
				}
			}()
		}

		srv := server.NewServer(service, sessions, users, health, cfg, database)

		endpoints.RegisterAll(srv)

		logger.Info("server listening", slog.String("addr", cfg.ListenAddress))

		serverErrChan := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				serverErrChan <- err
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		select {
		case sig := <-sigChan:
			logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		case err := <-serverErrChan:
			logger.Error("server failed", slog.String("error", err.Error()))
		}

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}

		service.Deactivate()

		logger.Info("server stopped")
	},
}

// newLogger builds the application logger. IDM_LOG_LEVEL selects the
// minimum level (debug, info, warn, error), defaulting to info.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch os.Getenv("IDM_LOG_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}

// newSessionModule wires the JWT session module from the server config and
// the session module properties of the authentication document. The signing
// key comes from IDM_SESSION_KEY when set, otherwise the data key is used.
func newSessionModule(cfg *config.ServerConfig, authDoc *config.Authentication, dataKey []byte) (*session.Module, error) {
	sessionKey := dataKey
	if keyB64 := os.Getenv("IDM_SESSION_KEY"); keyB64 != "" {
		key, err := base64.StdEncoding.DecodeString(keyB64)
		if err != nil {
			return nil, fmt.Errorf("bad IDM_SESSION_KEY: %w", err)
		}
		sessionKey = key
	}

	ttl := cfg.SessionTTL()
	props, err := authDoc.ServerAuthContext.SessionModule.DecodeProperties()
	if err != nil {
		return nil, err
	}
	if props.MaxTokenLifeMinutes > 0 {
		ttl = time.Duration(props.MaxTokenLifeMinutes) * time.Minute
	}

	return session.NewModule(sessionKey,
		session.WithTTL(ttl),
		session.WithIssuer(cfg.SessionIssuer),
	)
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("listen-address", "l", "", "override the configured listen address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}

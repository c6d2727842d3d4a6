// Package vtn implements the command that runs the VTN server.
package vtn

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"openadr/internal/infrastructure/auth"
	"openadr/internal/infrastructure/config"
	"openadr/internal/infrastructure/database"
	"openadr/internal/infrastructure/mdns"
	"openadr/internal/infrastructure/notifier"
	"openadr/internal/infrastructure/persistence/repository"
	httpRouter "openadr/internal/interfaces/http"
	"openadr/internal/shared/logger"
)

var (
	env      string
	basePath string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vtn",
		Short: "Start the VTN server",
		Long:  `Start the OpenADR 3 VTN: HTTP API, token endpoint, WebSocket notifications and optional mDNS advertisement.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVar(&basePath, "base-path", httpRouter.DefaultBasePath, "URL prefix of the OpenADR endpoints")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}
	ginMode := mapEnvToGinMode(env)

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Server.Mode = ginMode

	if err := logger.Init(&cfg.Logger, ginMode == "debug"); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("starting vtn", "environment", env, "address", cfg.Server.GetAddr())

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer database.Close()

	log := logger.NewLogger()
	db := database.Get()

	var jwks *auth.JWKSProvider
	if cfg.OAuth.JWKSLocation != "" {
		jwks = auth.NewJWKSProvider(cfg.OAuth.JWKSLocation, auth.KeyType(cfg.OAuth.KeyType), log)
	}
	tokens, err := auth.NewTokenService(cfg.OAuth.Base64Secret, jwks, log)
	if err != nil {
		logger.Fatal("failed to initialize token service", "error", err)
	}
	credentials := auth.NewCredentialStore(cfg.OAuth.Clients)

	subscriptions := repository.NewSubscriptionRepository(db, log)
	stores := httpRouter.Stores{
		Programs:      repository.NewProgramRepository(db, log),
		Events:        repository.NewEventRepository(db, log),
		Reports:       repository.NewReportRepository(db, log),
		Vens:          repository.NewVenRepositoryWithPolicy(db, repository.VenWritePolicyFor(cfg.OAuth.VenWrites), log),
		Resources:     repository.NewResourceRepository(db, log),
		Subscriptions: subscriptions,
	}
	n := notifier.New(subscriptions, log)

	router := httpRouter.NewRouter(stores, tokens, credentials, n, httpRouter.Options{
		BasePath:         basePath,
		Mode:             cfg.Server.Mode,
		OAuthEnabled:     cfg.OAuth.InternalEnabled,
		ConnectionActive: database.Active,
	}, log)

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var advertiser *mdns.Advertiser
	if cfg.Mdns.Enabled {
		mdnsCfg := cfg.Mdns
		if mdnsCfg.BasePath == "" {
			mdnsCfg.BasePath = router.BasePath()
		}
		advertiser, err = mdns.Advertise(&mdnsCfg, cfg.Server.Port, log)
		if err != nil {
			logger.Error("failed to advertise via mDNS", "error", err)
		}
	}

	go func() {
		logger.Info("server starting", "address", cfg.Server.GetAddr(), "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	if advertiser != nil {
		advertiser.Shutdown()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return err
	}

	logger.Info("server exited gracefully")
	return nil
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}

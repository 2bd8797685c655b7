/*
Package main is the entry point for the Chatterbox server.

It is responsible for loading configuration, initializing the global logging system,
wiring the verification flow manager to its stores, setting up the HTTP server,
and gracefully handling operating system interrupt signals (SIGINT, SIGTERM)
to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"chatterbox/internal/app/db"
	"chatterbox/internal/app/identity"
	"chatterbox/internal/app/otp"
	"chatterbox/internal/app/profile"
	"chatterbox/internal/app/storage"
	"chatterbox/internal/app/verify"
	"chatterbox/internal/configs"
	"chatterbox/internal/handler"
	"chatterbox/internal/pkg/logx"
	"chatterbox/internal/pkg/pow"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("sms_provider", cfg.SMSProvider).
		Int("pow_difficulty", cfg.PowDifficulty).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database pool (runs migrations on startup)
	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal(err, "Failed to initialize database")
	}
	defer pool.Close()

	// Redis client for in-flight verification codes
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logx.Fatal(err, "Invalid REDIS_URL")
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logx.Fatal(err, "Failed to connect to Redis")
	}

	// Code delivery backend
	var sender otp.Sender
	switch cfg.SMSProvider {
	case "sns":
		sender, err = otp.NewSNSSender(otp.SNSSenderConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKey,
			SecretAccessKey: cfg.AWSSecretKey,
			SenderID:        cfg.SNSSenderID,
		})
		if err != nil {
			logx.Fatal(err, "Failed to initialize SNS sender")
		}
	default:
		sender = otp.NewLogSender(*logx.Logger())
	}

	// Verification provider and identity store
	codeStore := otp.NewCodeStore(redisClient, otp.DefaultCodeTTL, otp.DefaultMaxAttempts)

	testNumbers := make(map[string]struct{})
	for _, number := range cfg.OTPTestNumbers {
		testNumbers[number] = struct{}{}
	}

	provider := otp.NewProvider(codeStore, sender, otp.ProviderConfig{
		TestNumbers: testNumbers,
	})
	identityStore := identity.NewStore(codeStore, identity.NewPostgresRepository(pool))

	// Verification flow manager
	flows := verify.NewManager(provider, identityStore, verify.ManagerOptions{})

	// Profile service
	profiles := profile.NewService(profile.NewPostgresStore(pool))

	// Avatar storage
	avatarStorage, err := storage.NewStorageService(storage.ServiceConfig{
		S3BucketName:      cfg.S3BucketName,
		S3Endpoint:        cfg.S3Endpoint,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
	})
	if err != nil {
		logx.Fatal(err, "Failed to initialize avatar storage")
	}

	deps := &handler.AppDeps{
		Flows:         flows,
		Config:        cfg,
		Profiles:      profiles,
		AvatarStorage: avatarStorage,
		Pow:           pow.NewPoWManager(cfg.PowDifficulty),
	}

	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 70 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Chatterbox Server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	flows.Shutdown()

	logx.Info("Server gracefully stopped.")
}

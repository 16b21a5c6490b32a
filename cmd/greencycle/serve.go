package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"greencycle/internal/assistant"
	"greencycle/internal/db"
	"greencycle/internal/feed"
	"greencycle/internal/pickups"
	"greencycle/internal/rewards"
	"greencycle/internal/server"
	"greencycle/internal/storage"
	"greencycle/internal/store"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return err
	}

	cognitoClient := cognitoidentityprovider.NewFromConfig(awsConfig)
	s3Client := s3.NewFromConfig(awsConfig)

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	publisher, err := feed.NewPublisher(config.RedisAddr)
	if err != nil {
		return err
	}
	defer publisher.Close()

	pickupRepo := store.NewPickupRepository(pool)
	userRepo := store.NewUserRepository(pool)
	purchaseRepo := store.NewPurchaseRepository(pool)
	rewardRepo := store.NewRewardRepository(pool)

	coordinator := pickups.NewCoordinator(logger, pickupRepo, publisher)
	ledger := rewards.NewLedger(logger, rewardRepo, purchaseRepo)

	imageStore := storage.NewImageStore(s3Client, config.S3BucketName, config.S3Region)
	assistantClient := assistant.NewClient(config.AssistantEndpoint, config.AssistantAPIKey)

	hub := feed.NewHub(logger)
	go hub.Run(ctx, publisher.Subscribe(ctx))

	jwkCache, err := jwk.NewCache(context.Background(), httprc.NewClient())
	if err != nil {
		return fmt.Errorf("failed to initialize jwk cache: %w", err)
	}

	jwksURL := fmt.Sprintf("%s/.well-known/jwks.json", config.CognitoIssuerURL)

	err = jwkCache.Register(context.Background(), jwksURL)
	if err != nil {
		return fmt.Errorf("failed to register cognito jwk with cache: %w", err)
	}

	srv, err := server.New(
		config,
		logger,
		cognitoClient,
		imageStore,
		assistantClient,
		coordinator,
		ledger,
		userRepo,
		hub,
		jwkCache,
		jwksURL,
	)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}

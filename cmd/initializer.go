package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"ngomaBack/internal/config"
	"ngomaBack/internal/handlers"
	"ngomaBack/internal/repositories"
	"ngomaBack/internal/services"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger

	verifier services.TokenVerifier

	paymentHandler  *handlers.PaymentHandler
	orderHandler    *handlers.OrderHandler
	downloadHandler *handlers.DownloadHandler
	mediaHandler    *handlers.MediaHandler
}

func initializeApp(ctx context.Context, cfg config.Config, errorLog, infoLog *log.Logger) (*application, func(), error) {
	fbApp, err := services.NewFirebaseApp(ctx, services.FirebaseConfig{
		ProjectID:   cfg.Firebase.ProjectID,
		ClientEmail: cfg.Firebase.ClientEmail,
		PrivateKey:  cfg.Firebase.PrivateKey,
	})
	if err != nil {
		return nil, nil, err
	}
	store, err := fbApp.Firestore(ctx)
	if err != nil {
		return nil, nil, err
	}

	var verifier services.TokenVerifier
	if cfg.Auth.JWTSigningKey != "" {
		infoLog.Printf("Using local JWT verifier; not for production")
		verifier, err = services.NewJWTVerifier(cfg.Auth.JWTSigningKey)
	} else {
		authClient, authErr := fbApp.Auth(ctx)
		if authErr != nil {
			store.Close()
			return nil, nil, authErr
		}
		verifier = &services.FirebaseVerifier{Auth: authClient}
	}
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	var cache *redis.Client
	if cfg.Redis.Addr != "" {
		cache = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	gateway, err := services.NewMoneyUnifyService(services.MoneyUnifyConfig{
		AuthID:  cfg.MoneyUnify.AuthID,
		BaseURL: cfg.MoneyUnify.BaseURL,
		Logger:  logger,
	})
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	storage, err := services.NewB2Storage(services.B2Config{
		KeyID:    cfg.B2.KeyID,
		AppKey:   cfg.B2.AppKey,
		Endpoint: cfg.B2.Endpoint,
		Bucket:   cfg.B2.Bucket,
	})
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	// Repositories
	catalogRepo := &repositories.CatalogRepository{Client: store, Cache: cache, CacheTTL: 5 * time.Minute}
	orderRepo := &repositories.OrderRepository{Client: store}

	// Services
	ledger := &services.LedgerService{Catalog: catalogRepo, Orders: orderRepo, Gateway: gateway}
	downloads := &services.DownloadService{Catalog: catalogRepo, Orders: orderRepo, Signer: storage}

	app := &application{
		errorLog:        errorLog,
		infoLog:         infoLog,
		verifier:        verifier,
		paymentHandler:  &handlers.PaymentHandler{Ledger: ledger},
		orderHandler:    &handlers.OrderHandler{Ledger: ledger},
		downloadHandler: &handlers.DownloadHandler{Downloads: downloads},
		mediaHandler:    &handlers.MediaHandler{Signer: storage},
	}

	cleanup := func() {
		store.Close()
		if cache != nil {
			cache.Close()
		}
	}
	return app, cleanup, nil
}

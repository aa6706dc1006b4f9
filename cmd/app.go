package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"storefront/internal/assistant"
	"storefront/internal/config"
	httpapi "storefront/internal/http"
	"storefront/internal/kv"
	"storefront/internal/repository"
	"storefront/internal/service"
)

// app is the wired object graph shared by the server and the CLI commands.
type app struct {
	backend kv.Backend
	store   *repository.Store
	svc     httpapi.Services
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	backend, err := kv.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	log.Debug("storage opened", zap.String("driver", cfg.Storage.Driver), zap.String("path", cfg.Storage.Path))

	store := repository.NewStore(backend, repository.Options{
		SeedCount: cfg.Shop.SeedProducts,
		Logger:    log.Named("store"),
	})
	cart, err := service.NewCart(ctx, store, log.Named("cart"))
	if err != nil {
		backend.Close()
		return nil, err
	}
	session, err := service.NewSession(ctx, store, log.Named("session"))
	if err != nil {
		backend.Close()
		return nil, err
	}

	var model assistant.Model
	gem, err := assistant.NewGemini(ctx, cfg.Assistant.APIKey, cfg.Assistant.Model)
	switch {
	case errors.Is(err, assistant.ErrMissingAPIKey):
		log.Info("assistant offline: no API key")
	case err != nil:
		log.Warn("assistant offline", zap.Error(err))
	default:
		model = gem
	}

	return &app{
		backend: backend,
		store:   store,
		svc: httpapi.Services{
			Products:  service.NewProductService(store, log.Named("products")),
			Orders:    service.NewOrderService(store, cfg.Shop.ShippingFee, log.Named("orders")),
			Cart:      cart,
			Session:   session,
			Assistant: assistant.NewService(model, cfg.GetAssistantTimeout(), log.Named("assistant")),
		},
	}, nil
}

func (a *app) Close() error { return a.backend.Close() }

// withApp opens the app for the duration of fn.
func withApp(ctx context.Context, fn func(a *app) error) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

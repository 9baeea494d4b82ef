package app

import (
	"context"
	"fmt"
	"log"

	"bidforge/internal/estimate/pipeline"
	"bidforge/internal/gateway/config"
	"bidforge/internal/gateway/handler"
	"bidforge/internal/gateway/server"
	estimatesvc "bidforge/internal/gateway/service/estimate"
	"bidforge/internal/llm"
)

type App struct {
	server    *server.Server
	generator llm.Generator
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := log.Default()

	stores, err := initStores(cfg)
	if err != nil {
		return nil, err
	}

	gen, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	prices := newMarketSource(cfg)

	pipe := pipeline.New(gen, prices, stores.ledger, logger)
	estimateSvc := estimatesvc.New(pipe, stores.ledger, stores.blueprints, logger)

	estimateHandler := handler.NewEstimateHandler(estimateSvc, logger)
	marketHandler := handler.NewMarketHandler(prices, logger)
	crmHandler := handler.NewCRMHandler(stores.crm, logger)
	progressHandler := handler.NewProgressHandler(estimateSvc.Progress(), logger)

	// Routing & Server
	mux := server.NewMux(estimateHandler, marketHandler, crmHandler, progressHandler)
	srv := server.New(cfg.Port, mux)

	return &App{
		server:    srv,
		generator: gen,
	}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	if a.generator != nil {
		if err := a.generator.Close(); err != nil {
			log.Printf("generator close: %v", err)
		}
	}
	return a.server.Shutdown(ctx)
}

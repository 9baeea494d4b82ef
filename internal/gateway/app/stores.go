package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"bidforge/internal/gateway/config"
	"bidforge/internal/gateway/repository/blueprint"
	"bidforge/internal/gateway/repository/crm"
	"bidforge/internal/gateway/repository/ledger"
	"bidforge/internal/llm"
	"bidforge/internal/market"
)

type gatewayStores struct {
	ledger     ledger.Store
	blueprints blueprint.Store
	crm        crm.Store
}

func initStores(cfg *config.Config) (*gatewayStores, error) {
	blueprints, err := chooseBlueprintStore(cfg)
	if err != nil {
		return nil, err
	}

	if dsn := strings.TrimSpace(cfg.LedgerDSN); dsn != "" {
		ledgerStore, err := ledger.NewPostgresStore(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open ledger store: %w", err)
		}
		crmStore, err := crm.NewPostgresStore(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open crm store: %w", err)
		}
		log.Printf("ledger store: postgres")
		return &gatewayStores{ledger: ledgerStore, blueprints: blueprints, crm: crmStore}, nil
	}

	log.Printf("ledger store: in-memory")
	return &gatewayStores{
		ledger:     ledger.NewMemoryStore(),
		blueprints: blueprints,
		crm:        crm.NewMemoryStore(),
	}, nil
}

func chooseBlueprintStore(cfg *config.Config) (blueprint.Store, error) {
	if cfg.Blueprint.CanUseS3() {
		s3Store, err := blueprint.NewS3Store(blueprint.S3Config{
			Endpoint:  cfg.Blueprint.Endpoint,
			Region:    cfg.Blueprint.Region,
			AccessKey: cfg.Blueprint.AccessKey,
			SecretKey: cfg.Blueprint.SecretKey,
			Bucket:    cfg.Blueprint.Bucket,
			UseSSL:    cfg.Blueprint.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize blueprint s3 store: %w", err)
		}
		log.Printf("blueprint store: s3 bucket=%s endpoint=%s", cfg.Blueprint.Bucket, cfg.Blueprint.Endpoint)
		return s3Store, nil
	}
	if cfg.Blueprint.Enabled {
		log.Printf("blueprint store: using in-memory fallback (s3 config incomplete)")
	}
	return blueprint.NewMemoryStore(), nil
}

// newGenerator picks the Gemini client when a key is present. A missing key
// outside local environments is a hard error rather than a silent fake.
func newGenerator(ctx context.Context, cfg *config.Config, logger *log.Logger) (llm.Generator, error) {
	if key := strings.TrimSpace(cfg.GeminiAPIKey); key != "" {
		gen, err := llm.NewGeminiGenerator(ctx, key, cfg.GeminiModel, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini generator: %w", err)
		}
		return gen, nil
	}
	if cfg.Env != "local" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required in env %q", cfg.Env)
	}
	log.Printf("generator: using deterministic fake (no GEMINI_API_KEY)")
	return &llm.FakeGenerator{}, nil
}

// newMarketSource returns nil when SerpApi is not configured; the pipeline
// treats a nil source as "no live grounding".
func newMarketSource(cfg *config.Config) market.Source {
	key := strings.TrimSpace(cfg.SerpAPIKey)
	if key == "" {
		log.Printf("market source: disabled (no SERPAPI_KEY)")
		return nil
	}
	return market.NewCachedSource(market.NewSerpAPISource(key), 0, cfg.PriceCacheTTL)
}

package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string

	// Gemini generation provider. An empty key in a local env switches the
	// gateway to the deterministic fake generator.
	GeminiAPIKey string
	GeminiModel  string

	// SerpApi price search. Empty key disables live market grounding.
	SerpAPIKey    string
	PriceCacheTTL time.Duration

	// LedgerDSN selects the postgres ledger; empty keeps everything in
	// memory for local runs.
	LedgerDSN string

	Blueprint BlueprintConfig
}

type BlueprintConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8081", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port:          *port,
		Env:           env,
		GeminiAPIKey:  strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:   firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_MODEL")), "gemini-2.0-flash"),
		SerpAPIKey:    strings.TrimSpace(os.Getenv("SERPAPI_KEY")),
		PriceCacheTTL: resolvePriceCacheTTL(),
		LedgerDSN:     strings.TrimSpace(os.Getenv("LEDGER_PG_DSN")),
		Blueprint:     loadBlueprintConfig(env),
	}, nil
}

func (c BlueprintConfig) CanUseS3() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != "" && c.Bucket != ""
}

func resolvePriceCacheTTL() time.Duration {
	raw := strings.TrimSpace(os.Getenv("PRICE_CACHE_TTL_SECONDS"))
	if raw == "" {
		return 15 * time.Minute
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(secs) * time.Second
}

func loadBlueprintConfig(env string) BlueprintConfig {
	endpoint := resolveBlueprintEndpoint(env)
	return BlueprintConfig{
		Enabled:   strings.EqualFold(strings.TrimSpace(env), "local") || endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("BLUEPRINT_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("BLUEPRINT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("BLUEPRINT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("BLUEPRINT_S3_BUCKET")), "bidforge-blueprints"),
		UseSSL:    resolveBlueprintUseSSL(env),
	}
}

func resolveBlueprintEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return firstNonEmpty(strings.TrimSpace(os.Getenv("BLUEPRINT_MINIO_ENDPOINT")), "minio:9000")
	}
	return strings.TrimSpace(os.Getenv("BLUEPRINT_S3_ENDPOINT"))
}

func resolveBlueprintUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("BLUEPRINT_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
remote:
  plans:
    - sku: unlock_1
      name: Single Unlock
      amount: 59
      credits: 1
    - sku: unlock_unlimited
      name: Unlimited
      amount: 1499
      credits: 0
  listing:
    page_size: 10
  promo:
    title: Launch Offer
    delay: 45s
  intents:
    ttl: 1h
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if len(cfg.Remote.Plans) != 2 {
		t.Fatalf("unexpected plan count: %d", len(cfg.Remote.Plans))
	}
	if cfg.Remote.Plans[0].Amount != 59 {
		t.Fatalf("unexpected unlock_1 amount: %d", cfg.Remote.Plans[0].Amount)
	}
	if cfg.Remote.Listing.PageSize != 10 {
		t.Fatalf("unexpected listing page_size: %d", cfg.Remote.Listing.PageSize)
	}
	if cfg.Remote.Promo.Title != "Launch Offer" {
		t.Fatalf("unexpected promo title: %s", cfg.Remote.Promo.Title)
	}
	if cfg.Remote.Promo.Delay.String() != "45s" {
		t.Fatalf("unexpected promo delay: %s", cfg.Remote.Promo.Delay.String())
	}
	if cfg.Remote.Intents.TTL.String() != "1h0m0s" {
		t.Fatalf("unexpected intents ttl: %s", cfg.Remote.Intents.TTL.String())
	}

	if cfg.Remote.Listing.MaxPageSize != 100 {
		t.Fatalf("listing max_page_size default should stay 100")
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected default http addr: %s", cfg.HTTP.Addr)
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if len(cfg.Remote.Plans) != 4 {
		t.Fatalf("unexpected default plan count: %d", len(cfg.Remote.Plans))
	}
	if cfg.Remote.Plans[0].SKU != "unlock_1" || cfg.Remote.Plans[0].Amount != 49 {
		t.Fatalf("unexpected unlock_1 defaults: %+v", cfg.Remote.Plans[0])
	}
	if cfg.Remote.Plans[3].SKU != "unlock_unlimited" {
		t.Fatalf("unexpected last plan sku: %s", cfg.Remote.Plans[3].SKU)
	}
	if cfg.Remote.Listing.PageSize != 20 {
		t.Fatalf("unexpected default page size: %d", cfg.Remote.Listing.PageSize)
	}
	if cfg.Auth.JWTAccessTTL.String() != "15m0s" {
		t.Fatalf("unexpected default access ttl: %s", cfg.Auth.JWTAccessTTL.String())
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("POSTGRES_DSN", "postgres://x:y@db:5432/app")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Postgres.DSN != "postgres://x:y@db:5432/app" {
		t.Fatalf("unexpected postgres dsn: %s", cfg.Postgres.DSN)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Fatalf("unexpected jwt secret: %s", cfg.Auth.JWTSecret)
	}
	if cfg.Redis.DB != 3 {
		t.Fatalf("unexpected redis db: %d", cfg.Redis.DB)
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_ENV", "HTTP_ADDR", "HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT", "HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL", "POSTGRES_DSN", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET", "S3_USE_SSL",
		"JWT_SECRET", "JWT_ACCESS_TTL", "REFRESH_TTL",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_STAFF_CHAT_ID",
	}
	for _, key := range keys {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

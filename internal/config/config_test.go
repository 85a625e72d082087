package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"TrendScanner/internal/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		configPathEnv, naverClientIDEnv, naverClientSecretEnv,
		youtubeAPIKeyEnv, databaseDSNEnv, telegramTokenEnv, telegramChatIDEnv,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.Run.WindowHours != 24 || cfg.Run.TopN != 20 {
		t.Fatalf("run defaults = %+v", cfg.Run)
	}
	if cfg.Run.Window() != 24*time.Hour {
		t.Fatalf("window = %v", cfg.Run.Window())
	}
	if len(cfg.Sources) == 0 || cfg.Sources[0].Collector != domain.SourceShop {
		t.Fatalf("source defaults = %+v", cfg.Sources)
	}
	if len(cfg.Feeds) == 0 {
		t.Fatal("feed defaults missing")
	}
	if cfg.Weights.MentionWeight(domain.SourceShop) != 2 {
		t.Fatalf("shop mention weight = %d", cfg.Weights.MentionWeight(domain.SourceShop))
	}
	if cfg.Weights.MentionWeight(domain.SourceFeed) != 1 {
		t.Fatalf("feed mention weight = %d", cfg.Weights.MentionWeight(domain.SourceFeed))
	}
	if cfg.Weights.MentionWeight("unknown") != 1 {
		t.Fatalf("unknown source weight = %d", cfg.Weights.MentionWeight("unknown"))
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadMergesFile(t *testing.T) {
	clearEnv(t)

	doc := `
run:
  topN: 5
  outputPath: /tmp/out.json
naver:
  clientId: file-id
scheduler:
  enabled: true
  intervalHours: 6
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()
	if cfg.Run.TopN != 5 || cfg.Run.OutputPath != "/tmp/out.json" {
		t.Fatalf("file override lost: %+v", cfg.Run)
	}
	if cfg.Run.WindowHours != 24 {
		t.Fatalf("unset field must keep its default, window = %d", cfg.Run.WindowHours)
	}
	if cfg.Naver.ClientID != "file-id" {
		t.Fatalf("naver client id = %q", cfg.Naver.ClientID)
	}
	if !cfg.Scheduler.Enabled || cfg.Scheduler.Interval() != 6*time.Hour {
		t.Fatalf("scheduler = %+v", cfg.Scheduler)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)

	doc := "naver:\n  clientId: file-id\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(configPathEnv, path)
	t.Setenv(naverClientIDEnv, "env-id")
	t.Setenv(databaseDSNEnv, "postgres://env")

	cfg := Load()
	if cfg.Naver.ClientID != "env-id" {
		t.Fatalf("env must win over file, got %q", cfg.Naver.ClientID)
	}
	if cfg.Database.DSN != "postgres://env" {
		t.Fatalf("dsn = %q", cfg.Database.DSN)
	}
}

func TestLoadUnreadableFileFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "absent.yaml"))

	cfg := Load()
	if cfg.Run.WindowHours != 24 {
		t.Fatalf("missing file must keep defaults, got %+v", cfg.Run)
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}

	broken := defaultConfig()
	broken.Run.WindowHours = 0
	if err := broken.Validate(); err == nil {
		t.Fatal("zero window must fail validation")
	}

	broken = defaultConfig()
	broken.Run.TopN = 0
	if err := broken.Validate(); err == nil {
		t.Fatal("zero topN must fail validation")
	}

	broken = defaultConfig()
	broken.Sources = nil
	broken.Feeds = nil
	if err := broken.Validate(); err == nil {
		t.Fatal("no sources must fail validation")
	}
}

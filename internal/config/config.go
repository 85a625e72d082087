package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"TrendScanner/internal/domain"
	"TrendScanner/internal/resolve"
)

const (
	configPathEnv        = "TREND_SCANNER_CONFIG"
	naverClientIDEnv     = "NAVER_CLIENT_ID"
	naverClientSecretEnv = "NAVER_CLIENT_SECRET"
	youtubeAPIKeyEnv     = "YOUTUBE_API_KEY"
	databaseDSNEnv       = "DATABASE_DSN"
	telegramTokenEnv     = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv    = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Run           RunConfig          `yaml:"run"`
	Naver         NaverConfig        `yaml:"naver"`
	YouTube       YouTubeConfig      `yaml:"youtube"`
	Database      DatabaseConfig     `yaml:"database"`
	Notifications NotificationConfig `yaml:"notifications"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Rules         RulesConfig        `yaml:"rules"`
	Sources       []SourceJobConfig  `yaml:"sources"`
	Feeds         []string           `yaml:"feeds"`
	Enrichment    EnrichmentConfig   `yaml:"enrichment"`
	Weights       WeightsConfig      `yaml:"weights"`
}

// LoggingConfig selects log level and output format.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// RunConfig bounds a single pipeline invocation.
type RunConfig struct {
	WindowHours int    `yaml:"windowHours"`
	TopN        int    `yaml:"topN"`
	OutputPath  string `yaml:"outputPath"`
}

// Window returns the recency window as a duration.
func (r RunConfig) Window() time.Duration {
	return time.Duration(r.WindowHours) * time.Hour
}

// NaverConfig carries open-API credentials shared by the shop, news,
// blog and DataLab clients.
type NaverConfig struct {
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
}

// YouTubeConfig carries the Data API key; empty disables the collector.
type YouTubeConfig struct {
	APIKey string `yaml:"apiKey"`
}

// DatabaseConfig describes the optional Postgres run archive.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send digests.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// SchedulerConfig enables recurring runs on a fixed interval.
type SchedulerConfig struct {
	Enabled       bool   `yaml:"enabled"`
	IntervalHours int    `yaml:"intervalHours"`
	Timezone      string `yaml:"timezone"`
}

// Interval returns the tick period, defaulting to 24h.
func (s SchedulerConfig) Interval() time.Duration {
	if s.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.IntervalHours) * time.Hour
}

// RulesConfig points at the externally supplied rule documents. Both
// are read once at startup; missing files degrade to empty sets.
type RulesConfig struct {
	CategoryRulesPath string `yaml:"categoryRulesPath"`
	NoiseWordsPath    string `yaml:"noiseWordsPath"`
}

// SourceJobConfig is one seed collection job: which collector to run
// and with which queries.
type SourceJobConfig struct {
	Collector string   `yaml:"collector"`
	Queries   []string `yaml:"queries"`
	Limit     int      `yaml:"limit"`
}

// EnrichmentConfig drives the corroboration passes.
type EnrichmentConfig struct {
	// CorroborateLimit caps how many pool entities get per-entity
	// news/video corroboration queries.
	CorroborateLimit int `yaml:"corroborateLimit"`
	// Celebs and ProductTerms are crossed into news/blog enrichment
	// queries (celebrity-context product mentions).
	Celebs       []string `yaml:"celebs"`
	ProductTerms []string `yaml:"productTerms"`
}

// WeightsConfig groups the mention-weight policy and the scoring
// policy. Mention weights are per source tag.
type WeightsConfig struct {
	Mentions map[string]int  `yaml:"mentions"`
	Scoring  resolve.Weights `yaml:"scoring"`
}

// MentionWeight returns the configured increment for a source tag,
// falling back to 1 for unknown tags.
func (w WeightsConfig) MentionWeight(source string) int {
	if v, ok := w.Mentions[source]; ok && v > 0 {
		return v
	}
	return 1
}

// Load reads YAML configuration (if present) and applies environment
// overrides for credentials.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// Validate checks the settings a run cannot proceed without.
func (c Config) Validate() error {
	if c.Run.WindowHours <= 0 {
		return fmt.Errorf("run.windowHours must be positive")
	}
	if c.Run.TopN <= 0 {
		return fmt.Errorf("run.topN must be positive")
	}
	if len(c.Sources) == 0 && len(c.Feeds) == 0 {
		return fmt.Errorf("no sources configured")
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(naverClientIDEnv); v != "" {
		c.Naver.ClientID = v
	}
	if v := os.Getenv(naverClientSecretEnv); v != "" {
		c.Naver.ClientSecret = v
	}
	if v := os.Getenv(youtubeAPIKeyEnv); v != "" {
		c.YouTube.APIKey = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.JSON {
		base.Logging.JSON = true
	}

	if override.Run.WindowHours > 0 {
		base.Run.WindowHours = override.Run.WindowHours
	}
	if override.Run.TopN > 0 {
		base.Run.TopN = override.Run.TopN
	}
	if override.Run.OutputPath != "" {
		base.Run.OutputPath = override.Run.OutputPath
	}

	if override.Naver.ClientID != "" {
		base.Naver.ClientID = override.Naver.ClientID
	}
	if override.Naver.ClientSecret != "" {
		base.Naver.ClientSecret = override.Naver.ClientSecret
	}
	if override.YouTube.APIKey != "" {
		base.YouTube.APIKey = override.YouTube.APIKey
	}
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Scheduler.Enabled {
		base.Scheduler.Enabled = true
	}
	if override.Scheduler.IntervalHours > 0 {
		base.Scheduler.IntervalHours = override.Scheduler.IntervalHours
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Rules.CategoryRulesPath != "" {
		base.Rules.CategoryRulesPath = override.Rules.CategoryRulesPath
	}
	if override.Rules.NoiseWordsPath != "" {
		base.Rules.NoiseWordsPath = override.Rules.NoiseWordsPath
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}
	if len(override.Feeds) > 0 {
		base.Feeds = override.Feeds
	}

	if override.Enrichment.CorroborateLimit > 0 {
		base.Enrichment.CorroborateLimit = override.Enrichment.CorroborateLimit
	}
	if len(override.Enrichment.Celebs) > 0 {
		base.Enrichment.Celebs = override.Enrichment.Celebs
	}
	if len(override.Enrichment.ProductTerms) > 0 {
		base.Enrichment.ProductTerms = override.Enrichment.ProductTerms
	}

	if len(override.Weights.Mentions) > 0 {
		base.Weights.Mentions = override.Weights.Mentions
	}
	if override.Weights.Scoring != (resolve.Weights{}) {
		base.Weights.Scoring = override.Weights.Scoring
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Run: RunConfig{
			WindowHours: 24,
			TopN:        20,
			OutputPath:  "data/trends/top_entities.json",
		},
		Scheduler: SchedulerConfig{IntervalHours: 24, Timezone: "Asia/Seoul"},
		Sources: []SourceJobConfig{
			{
				Collector: domain.SourceShop,
				Queries: []string{
					"로봇청소기", "정수기", "무선이어폰", "노트북",
					"에어프라이어", "커피머신", "쿠션", "선크림", "앰플",
					"프로틴", "비타민", "유산균",
				},
				Limit: 10,
			},
			{Collector: domain.SourceFeed, Limit: 0},
		},
		Feeds: []string{
			"https://trends.google.com/trending/rss?geo=KR",
			"https://news.google.com/rss?hl=ko&gl=KR&ceid=KR:ko",
		},
		Enrichment: EnrichmentConfig{
			CorroborateLimit: 40,
			Celebs: []string{
				"아이유", "장원영", "카리나", "안유진", "한소희", "박보영",
				"유재석", "기안84", "덱스",
			},
			ProductTerms: []string{
				"화장품", "쿠션", "립", "향수", "선크림", "앰플", "마스크팩",
				"스킨케어", "사용템", "애용템", "파우치", "왓츠인마이백",
				"단백질", "영양제", "정수기", "청소기", "주방템", "생활용품",
			},
		},
		Weights: WeightsConfig{
			Mentions: map[string]int{
				domain.SourceShop:  2,
				domain.SourceNews:  2,
				domain.SourceBlog:  2,
				domain.SourceVideo: 2,
				domain.SourceFeed:  1,
			},
			Scoring: resolve.DefaultWeights(),
		},
	}
}

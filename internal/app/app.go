package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"TrendScanner/internal/config"
	"TrendScanner/internal/domain"
	"TrendScanner/internal/infrastructure/collector"
	"TrendScanner/internal/infrastructure/scheduler"
	"TrendScanner/internal/infrastructure/storage"
	"TrendScanner/internal/infrastructure/telegram"
	"TrendScanner/internal/infrastructure/trends"
	"TrendScanner/internal/logging"
	"TrendScanner/internal/ports"
	"TrendScanner/internal/report"
	"TrendScanner/internal/resolve"
	"TrendScanner/internal/scanner"
	"TrendScanner/internal/usecase"
)

// Application wires configuration to the pipeline and its lifecycle.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	db       *sql.DB
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.JSON)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	lexicon := resolve.DefaultLexicon()
	if words, err := loadNoiseWords(cfg.Rules.NoiseWordsPath); err != nil {
		baseLogger.Warn("noise word extension unavailable", "error", err)
	} else {
		lexicon = lexicon.WithNoise(words)
	}

	rules, err := resolve.LoadCategoryRules(cfg.Rules.CategoryRulesPath)
	if err != nil {
		baseLogger.Warn("category rules unavailable, using empty set", "error", err)
	}

	naver := collector.NewNaverClient(cfg.Naver.ClientID, cfg.Naver.ClientSecret, nil)

	registry := scanner.NewRegistry()
	registry.Register(collector.NewShopCollector(naver))
	registry.Register(collector.NewNewsCollector(naver))
	registry.Register(collector.NewBlogCollector(naver))
	registry.Register(collector.NewYouTubeCollector(cfg.YouTube.APIKey, nil))
	registry.Register(collector.NewFeedCollector(cfg.Feeds, nil))

	source := collector.NewSource(registry, cfg.Sources, baseLogger.With("component", "source"))

	var trendIndex ports.TrendIndex
	if cfg.Naver.ClientID != "" && cfg.Naver.ClientSecret != "" {
		trendIndex = trends.NewClient(cfg.Naver.ClientID, cfg.Naver.ClientSecret, nil)
	}

	app := &Application{cfg: cfg, logger: baseLogger}

	var repository ports.RunRepository
	if cfg.Database.DSN != "" {
		db, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			baseLogger.Warn("run archive disabled", "error", err)
		} else {
			app.db = db
			repository = storage.NewPostgresRepository(db)
		}
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(
			cfg.Notifications.Telegram.BotToken,
			cfg.Notifications.Telegram.ChatID)
	}

	app.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Trends:     trendIndex,
		Repository: repository,
		Sink:       report.NewWriter(cfg.Run.OutputPath),
		Notifier:   notifier,
		Extractor:  resolve.NewExtractor(lexicon, baseLogger.With("component", "extractor")),
		Filter:     resolve.NewFilter(lexicon, baseLogger.With("component", "filter")),
		Classifier: resolve.NewClassifier(rules, lexicon),
		Scorer:     resolve.NewScorer(cfg.Weights.Scoring, lexicon),
		Logger:     baseLogger.With("component", "pipeline"),
		Options: usecase.RunOptions{
			Window:           cfg.Run.Window(),
			TopN:             cfg.Run.TopN,
			CorroborateLimit: cfg.Enrichment.CorroborateLimit,
			Celebs:           cfg.Enrichment.Celebs,
			ProductTerms:     cfg.Enrichment.ProductTerms,
			MentionWeights:   cfg.Weights.Mentions,
			Sources:          consultedSources(cfg),
		},
	})

	return app, nil
}

// Run performs a single batch execution, or keeps running on the
// configured interval when the scheduler is enabled.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	if !a.cfg.Scheduler.Enabled {
		_, err := a.pipeline.Run(ctx, time.Now())
		return err
	}

	driver := scheduler.NewTickerScheduler(a.cfg.Scheduler.Interval())
	sched := usecase.NewScheduler(driver, a.pipeline)
	if err := sched.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return sched.Stop(context.Background())
}

func (a *Application) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

// consultedSources derives the envelope source list: seed jobs plus
// the corroboration and enrichment sources that can contribute rows.
func consultedSources(cfg config.Config) []string {
	seen := map[string]struct{}{}
	var out []string
	add := func(tag string) {
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}

	for _, job := range cfg.Sources {
		add(job.Collector)
	}
	add(domain.SourceNews)
	add(domain.SourceBlog)
	if cfg.YouTube.APIKey != "" {
		add(domain.SourceVideo)
	}
	return out
}

func loadNoiseWords(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read noise words %s: %w", path, err)
	}
	var words []string
	if err := yaml.Unmarshal(raw, &words); err != nil {
		return nil, fmt.Errorf("parse noise words %s: %w", path, err)
	}
	return words, nil
}

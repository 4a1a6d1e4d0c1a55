// Package app はアプリケーションの起動と依存関係のワイヤリングを行う。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/mirrordash/internal/calendar"
	"github.com/hitoshi/mirrordash/internal/config"
	"github.com/hitoshi/mirrordash/internal/dashboard"
	"github.com/hitoshi/mirrordash/internal/database"
	"github.com/hitoshi/mirrordash/internal/geo"
	"github.com/hitoshi/mirrordash/internal/handler"
	"github.com/hitoshi/mirrordash/internal/logger"
	"github.com/hitoshi/mirrordash/internal/metrics"
	"github.com/hitoshi/mirrordash/internal/middleware"
	"github.com/hitoshi/mirrordash/internal/model"
	"github.com/hitoshi/mirrordash/internal/news"
	"github.com/hitoshi/mirrordash/internal/preference"
	"github.com/hitoshi/mirrordash/internal/quote"
	"github.com/hitoshi/mirrordash/internal/repository"
	"github.com/hitoshi/mirrordash/internal/security"
	"github.com/hitoshi/mirrordash/internal/weather"
	"github.com/hitoshi/mirrordash/internal/web"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	case CommandSeed:
		return runSeed(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はWebサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	eventRepo := repository.NewPostgresEventRepo(db, slog.Default())
	quoteRepo := repository.NewPostgresQuoteRepo(db)
	prefRepo := repository.NewPostgresPreferenceRepo(db)

	// 3. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. 外部APIクライアントの初期化（SSRF防止付きHTTPクライアント）
	outboundClient := security.NewOutboundGuard().NewOutboundClient(cfg.FetchTimeout)

	weatherClient := weather.NewClient(outboundClient, slog.Default(), cfg.OpenWeatherAPIKey)
	newsClient := news.NewClient(outboundClient, slog.Default(), cfg.NewsAPIKey)
	geoClient := geo.NewClient(outboundClient, slog.Default(), cfg.OpenWeatherAPIKey)

	// 5. ドメインサービスの初期化
	weatherService := weather.NewService(weatherClient, slog.Default(), collector)
	newsService := news.NewService(newsClient, slog.Default(), collector)
	quoteService := quote.NewService(quoteRepo, slog.Default())
	prefService := preference.NewService(prefRepo, slog.Default())
	formatter := calendar.NewFormatter(slog.Default())

	assembler := dashboard.NewAssembler(
		weatherService, newsService, quoteService, prefService,
		eventRepo, formatter, slog.Default(), collector,
	)

	// 6. テンプレートレンダラーの初期化（テンプレート不備は起動時に検出）
	renderer, err := web.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to initialize templates: %w", err)
	}

	// 7. ルーターの構築
	deps := &handler.RouterDeps{
		Logger:      slog.Default(),
		RateLimiter: middleware.NewRateLimiter(middleware.NewRateLimiterConfig(cfg.RateLimitGeneral)),

		PageHandler:     handler.NewPageHandler(assembler, renderer, slog.Default()),
		EventHandler:    handler.NewEventHandler(eventRepo, slog.Default()),
		LocationHandler: handler.NewLocationHandler(weatherClient, geoClient, prefService, slog.Default()),

		DB:             db,
		MetricsHandler: metrics.Handler(registry),
	}

	router := handler.NewRouter(deps)

	// 8. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("dashboard server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down dashboard server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("dashboard server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully",
		slog.Uint64("schema_version", uint64(version)),
	)
	return nil
}

// runSeed はデフォルトの格言とユーザー設定を投入する。
// 格言コレクションが空の場合のみ格言を投入し、
// ユーザー設定は未保存の場合のみデフォルト値を保存する。
func runSeed(cfg *config.Config) error {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	quoteRepo := repository.NewPostgresQuoteRepo(db)
	existing, err := quoteRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list quotes: %w", err)
	}
	if len(existing) == 0 {
		if err := quoteRepo.CreateMany(ctx, quote.DefaultQuotes()); err != nil {
			return fmt.Errorf("failed to seed quotes: %w", err)
		}
		slog.Info("default quotes seeded",
			slog.Int("quote_count", len(quote.DefaultQuotes())),
		)
	} else {
		slog.Info("quotes already present, skipping",
			slog.Int("quote_count", len(existing)),
		)
	}

	prefRepo := repository.NewPostgresPreferenceRepo(db)
	pref, err := prefRepo.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load preference: %w", err)
	}
	if pref == nil {
		seeded := model.DefaultPreference()
		seeded.Location = cfg.DefaultLocation
		seeded.NewsCategory = cfg.DefaultNewsCategory
		if err := prefRepo.Upsert(ctx, seeded); err != nil {
			return fmt.Errorf("failed to seed preference: %w", err)
		}
		slog.Info("default preference seeded",
			slog.String("location", seeded.Location),
		)
	} else {
		slog.Info("preference already present, skipping")
	}

	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"TickerLens/internal/collector"
	"TickerLens/internal/config"
	"TickerLens/internal/logger"
	"TickerLens/internal/metrics"
	"TickerLens/internal/notifier"
	"TickerLens/internal/render"
	"TickerLens/internal/scheduler"
	"TickerLens/internal/server"
	"TickerLens/internal/strategy"
)

func main() {
	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	cfgPath := flag.String("config", defaultPath, "path to the YAML config")
	once := flag.String("once", "", "analyse one ticker, print the report and exit")
	chartPath := flag.String("chart", "", "with -once, also write an HTML chart to this file")
	digest := flag.Bool("digest", false, "run the watchlist digest once and exit")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Config validation failed")
	}

	m := metrics.New()
	fetcher := newFetcher(cfg, m)
	log.Info().Str("source", fetcher.Name()).Str("range", cfg.DataSource.Range).Msg("TickerLens starting")
	col := collector.NewCollector(fetcher, cfg.Indicators, collector.Range(cfg.DataSource.Range), m)
	col.NewsSource = newNewsFetcher(cfg, m)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *once != "" {
		if err := runOnce(ctx, col, *once, *chartPath); err != nil {
			log.Fatal().Err(err).Str("symbol", *once).Msg("Analysis failed")
		}
		return
	}

	var tn *notifier.TelegramNotifier
	var sender scheduler.Sender
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, m)
		sender = tn
	} else {
		log.Warn().Msg("Telegram not configured, digest and bot commands disabled")
	}

	sched := scheduler.NewScheduler(ctx, col, sender, cfg.Watchlist, m)
	if *digest {
		if _, err := sched.RunDigestNow(); err != nil {
			log.Fatal().Err(err).Msg("Digest failed")
		}
		return
	}
	if err := sched.Register(cfg.Schedule.DigestCron); err != nil {
		log.Fatal().Err(err).Msg("Register cron tasks failed")
	}
	sched.Start()
	defer sched.Stop()

	srv, err := server.New(server.Config{
		Addr:      cfg.Server.Addr,
		Mode:      cfg.Server.Mode,
		Collector: col,
		Metrics:   m,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Init HTTP server failed")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gctx) })
	if tn != nil {
		g.Go(func() error {
			tn.StartPolling(gctx, sched.HandleCommand)
			return nil
		})
	}
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, running digest now")
		go sched.RunDigestNow()
	}

	log.Info().Str("addr", srv.Addr()).Strs("watchlist", cfg.Watchlist).Msg("TickerLens is running. Press Ctrl+C to stop.")
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("Service stopped with error")
	}
	log.Info().Msg("TickerLens stopped")
}

func newFetcher(cfg *config.Config, m *metrics.Metrics) collector.Fetcher {
	switch cfg.DataSource.Provider {
	case "rest":
		return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.HTTPOptions(), m)
	case "mock":
		return &collector.MockFetcher{Price: 100}
	default:
		return collector.NewYahooFetcher(cfg.HTTPOptions(), m)
	}
}

func newNewsFetcher(cfg *config.Config, m *metrics.Metrics) collector.NewsFetcher {
	switch {
	case cfg.DataSource.Provider == "mock":
		return &collector.MockNewsFetcher{}
	case cfg.NewsEnabled():
		return collector.NewNewsAPIFetcher(cfg.News.BaseURL, cfg.News.APIKey, cfg.News.PageSize, cfg.HTTPOptions(), m)
	default:
		log.Info().Msg("News API key not set, news disabled")
		return nil
	}
}

func runOnce(ctx context.Context, col *collector.Collector, symbol, chartPath string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	a, err := col.Collect(ctx, symbol)
	if err != nil {
		return err
	}
	fmt.Println(notifier.FormatTechnical(a, strategy.Evaluate(a.Symbol, a.Snapshot)))
	if a.Fundamentals != nil {
		fmt.Println()
		fmt.Println(notifier.FormatFundamentals(a.Fundamentals))
	}
	if chartPath == "" {
		return nil
	}
	f, err := os.Create(chartPath)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()
	if err := render.Page(f, a); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	log.Info().Str("path", chartPath).Msg("Chart written")
	return nil
}

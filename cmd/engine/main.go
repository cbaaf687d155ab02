package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"empregozap-engine/internal/config"
	"empregozap-engine/internal/httpapi"
	"empregozap-engine/internal/metrics"
	"empregozap-engine/internal/notify"
	"empregozap-engine/internal/scheduler"
	"empregozap-engine/internal/scrape"
	"empregozap-engine/internal/search"
	"empregozap-engine/internal/secrets"
	"empregozap-engine/internal/store"
	"empregozap-engine/internal/webhook"
	"empregozap-engine/internal/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// The data dir has to be known before the config file (which lives in
	// it) can be read, so it is env-only.
	dataDir := os.Getenv("ENGINE_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("data dir: %w", err)
	}

	// One engine per data dir; a second instance would race the delivery
	// cycle and double-send.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("instance lock: %w", err)
	}
	if !locked {
		return errors.New("another engine instance already holds " + lock.Path())
	}
	defer func() { _ = lock.Unlock() }()

	userCfgPath, err := config.EnsureUserConfig(dataDir, filepath.Join("config", "config.yml"))
	if err != nil {
		return fmt.Errorf("config bootstrap: %w", err)
	}
	raw, err := config.Load(userCfgPath)
	if err != nil {
		return fmt.Errorf("config load (%s): %w", userCfgPath, err)
	}
	cfg, validation := config.NormalizeAndValidate(raw)
	for _, w := range validation.Warnings {
		log.Warnw("config warning", "detail", w)
	}
	if !validation.OK() {
		for _, e := range validation.Errors {
			log.Errorw("config error", "detail", e)
		}
		return fmt.Errorf("config has %d error(s), fix %s", len(validation.Errors), userCfgPath)
	}

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}

	st, err := store.Open(filepath.Join(dataDir, "empregozap.db"))
	if err != nil {
		return fmt.Errorf("store open: %w", err)
	}
	defer st.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	met := metrics.New(reg)

	mgr := search.NewManager(st, log.Named("search"))
	sources := scrape.BuildRegistry(cfg.Scrape, log.Named("source"))
	log.Infow("sources enabled", "count", len(sources))

	forwarder := webhook.NewForwarder(
		cfg.Webhook.URL,
		time.Duration(cfg.Webhook.TimeoutSeconds)*time.Second,
		func() (string, error) { return secrets.Get(secrets.AccountWebhookAPIKey) },
		met,
		log.Named("webhook"),
	)
	runner := scrape.NewRunner(st, mgr, sources, forwarder, met, cfg.Scrape, log.Named("scrape"))

	var sender notify.Sender
	if cfg.Notify.Evolution.BaseURL != "" {
		sender = notify.NewWhatsAppClient(
			cfg.Notify.Evolution.BaseURL,
			cfg.Notify.Evolution.Instance,
			func() (string, error) { return secrets.Get(secrets.AccountEvolutionAPIKey) },
			log.Named("whatsapp"),
		)
	}
	var dispatcher *notify.Dispatcher
	if sender != nil {
		dispatcher = notify.NewDispatcher(st, sender, met, cfg.Notify, loc, log.Named("notify"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool := worker.NewPool(ctx, 2, 32, log.Named("worker"))
	defer pool.Close()

	cycles := []scheduler.Cycle{
		{Name: "scrape", Spec: cfg.Scrape.Cron, Run: runner.RunDue, RunAtStart: true},
		{Name: "retention", Spec: cfg.Retention.Cron, Run: func(ctx context.Context) error {
			removed, err := st.PurgeOlderThan(ctx, cfg.Retention.HorizonDays)
			if err != nil {
				return err
			}
			log.Infow("retention purge done", "removed", removed, "horizon_days", cfg.Retention.HorizonDays)
			return nil
		}},
	}
	if dispatcher != nil {
		cycles = append(cycles, scheduler.Cycle{
			Name: "notify", Spec: cfg.Notify.Cron, Run: dispatcher.DispatchAll, RunAtStart: true,
		})
	}
	sched := scheduler.New(loc, log.Named("scheduler"), cycles...)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	defer sched.Stop()

	deps := httpapi.Deps{
		Store:     st,
		Searches:  mgr,
		Pool:      pool,
		RunSearch: runner.Run,
		RunDue:    runner.RunDue,
		Metrics:   met,
		Gatherer:  reg,
		Log:       log.Named("http"),
	}
	if dispatcher != nil {
		deps.Confirm = dispatcher.SendConfirmation
	}

	handler := httpapi.Chain(
		httpapi.NewMux(deps),
		httpapi.RequestID,
		httpapi.AccessLog(log.Named("http")),
		httpapi.Recover(log.Named("http")),
	)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("engine listening", "addr", srv.Addr, "data_dir", dataDir)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Infow("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Warnw("http shutdown", "error", err)
	}
	return nil
}

func newLogger() (*zap.SugaredLogger, error) {
	if os.Getenv("ENGINE_DEBUG") != "" {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		return l.Sugar(), nil
	}
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

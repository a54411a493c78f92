package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"FareSentinel/internal/calculator"
	"FareSentinel/internal/collector"
	"FareSentinel/internal/config"
	"FareSentinel/internal/model"
	"FareSentinel/internal/notifier"
	"FareSentinel/internal/recorder"
	"FareSentinel/internal/scheduler"
	"FareSentinel/internal/state"
	"FareSentinel/internal/tracker"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] FareSentinel starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		log.Fatalf("[FATAL] load timezone: %v", err)
	}

	trip := model.Trip{
		Origin:      cfg.Trip.Origin,
		Destination: cfg.Trip.Destination,
		Hub:         cfg.Trip.Hub,
		Date:        cfg.Trip.Date,
		Passengers:  cfg.Trip.Passengers,
	}
	rules := collector.Rules{
		Allowed:    cfg.Allowed(),
		Preferred:  cfg.Trip.PreferredCarrier,
		MaxStops:   *cfg.Trip.MaxStops,
		Program:    cfg.Trip.Program,
		Passengers: cfg.Trip.Passengers,
	}

	// Init fetchers
	var (
		cash    collector.CashFetcher
		rewards collector.RewardFetcher
		dists   collector.DistributionFetcher
	)
	if cfg.Collector.Mock {
		mock := collector.NewSampleMock(trip)
		cash, rewards, dists = mock, mock, mock
	} else {
		if cfg.Amadeus.ClientID != "" {
			am := collector.NewAmadeusFetcher(cfg.Amadeus.BaseURL, cfg.Amadeus.ClientID, cfg.Amadeus.ClientSecret, cfg.Trip.Currency, cfg.Proxy)
			cash, dists = am, am
		} else {
			log.Println("[WARN] no Amadeus credentials, cash fares disabled")
		}
		if cfg.SeatsAero.APIKey != "" {
			rewards = collector.NewSeatsAeroFetcher(cfg.SeatsAero.BaseURL, cfg.SeatsAero.APIKey, cfg.Proxy)
		} else {
			log.Println("[WARN] no seats.aero key, reward seats disabled")
		}
	}
	col := collector.NewCollector(trip, rules, cash, rewards, dists, cfg.Collector.Interval)
	col.Estimator = calculator.NewContextEstimator(cfg.Trip.Currency)

	// Init state store
	var store state.Store
	switch cfg.State.Backend {
	case "github":
		gs := state.NewGitHubStore(cfg.State.GitHub.Repo, cfg.State.GitHub.Path, cfg.State.GitHub.Token)
		gs.Branch = cfg.State.GitHub.Branch
		store = gs
	case "none":
		store = state.NewNoopStore()
	default:
		store = state.NewFileStore(cfg.State.File)
	}
	log.Printf("[INFO] state store: %s", store.Name())

	// Init notifiers
	var (
		channels notifier.Multi
		tn       *notifier.TelegramNotifier
	)
	for _, via := range cfg.Notify.Via {
		switch via {
		case "slack":
			channels = append(channels, notifier.NewSlackNotifier(cfg.Notify.Slack.WebhookURL, cfg.Proxy))
		case "whatsapp":
			tw := cfg.Notify.Twilio
			channels = append(channels, notifier.NewWhatsAppNotifier(tw.AccountSID, tw.AuthToken, tw.FromWhatsApp, tw.ToWhatsApp, cfg.Proxy))
		case "telegram":
			tn = notifier.NewTelegramNotifier(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID, cfg.Proxy)
			channels = append(channels, tn)
		case "log":
			channels = append(channels, notifier.LogNotifier{})
		}
	}
	var notify notifier.Notifier = channels
	if len(channels) == 1 {
		notify = channels[0]
	}
	log.Printf("[INFO] notify via: %s", notify.Name())

	// Init recorder
	var rec recorder.Recorder
	switch {
	case cfg.Database.PostgresURL != "":
		pr, err := recorder.NewPostgresRecorder(cfg.Database.PostgresURL)
		if err != nil {
			log.Printf("[WARN] init postgres recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = pr
			defer pr.Close()
		}
	case cfg.Database.SQLitePath != "":
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	default:
		rec = recorder.NewNoopRecorder()
	}

	tr := tracker.New(col, store, notify, rec, notifier.ReportOptions{
		Currency:     cfg.Trip.Currency,
		Program:      displayProgram(cfg.Trip.Program),
		CarrierNames: cfg.Trip.Carriers,
		DealCashPP:   cfg.Deals.BusinessCashPP,
		DealPointsPP: cfg.Deals.BusinessPointsPP,
		Booster:      col.Booster,
		Location:     loc,
	})
	tr.Retries = cfg.Notify.Retries

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One-shot mode for CI schedulers
	if os.Getenv("RUN_ONCE") == "true" {
		if _, err := tr.Run(ctx); err != nil {
			log.Printf("[ERROR] run: %v", err)
			rec.Close()
			os.Exit(1)
		}
		return
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, tr, loc, cfg.Trip.Currency)
	if err := sched.Register(cfg.Schedule.DailyCron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()

	// Start Telegram polling
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing tracker pass now")
		sched.RunAsync()
	}

	log.Println("[INFO] FareSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	sched.Stop()
	cancel()
	log.Println("[INFO] FareSentinel stopped")
}

func displayProgram(p string) string {
	if p == "" {
		return p
	}
	return strings.ToUpper(p[:1]) + p[1:]
}

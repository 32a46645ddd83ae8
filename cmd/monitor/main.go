package main

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
	"gopkg.in/natefinch/lumberjack.v2"

	"go-jobwatch-automation/internal/browser"
	"go-jobwatch-automation/internal/config"
	"go-jobwatch-automation/internal/filter"
	"go-jobwatch-automation/internal/report"
	"go-jobwatch-automation/internal/reporter"
	"go-jobwatch-automation/internal/runner"
	"go-jobwatch-automation/internal/state"
	"go-jobwatch-automation/utils"
)

func main() {
	//tee logs to a rolling file next to stderr
	log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
		Filename:   filepath.Join("logs", "monitor.log"),
		MaxSize:    5, //MB
		MaxBackups: 3,
	}))

	//load config
	configPath := "configs/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	log.Printf("🔧 Config loaded. Searches: %d, base URL: %s", len(cfg.Searches), cfg.BaseURL)

	origin, err := cfg.Origin()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	//open state store (takes the run lock)
	store, err := state.Open(cfg.StateDir, cfg.BaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to open state store: %v", err)
	}
	defer store.Close()

	//setup context with timeout = 10 mins
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	log.Println("🚀 Starting job watch run...")

	//init playwright manager
	pwManager, err := browser.NewPlaywright(*cfg.Headless)
	if err != nil {
		log.Fatalf("❌ Failed to init Playwright: %v", err)
	}
	defer pwManager.Close()
	log.Println("✅ Browser initialized successfully!")

	//load cookies (optional, e.g. consent cookies)
	var cookies []playwright.OptionalCookie
	if cfg.CookiesPath != "" {
		cookies, err = browser.LoadCookies(cfg.CookiesPath)
		if err != nil {
			log.Printf("⚠️ Could not load cookies: %v. Continuing.", err)
			cookies = nil
		} else {
			log.Printf("🍪 Loaded %d cookies", len(cookies))
		}
	}

	//init optional telegram notifier
	var notifier *reporter.TelegramReporter
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		notifier, err = reporter.NewTelegramReporter(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Printf("⚠️ Telegram disabled: %v", err)
			notifier = nil
		} else {
			log.Println("🤖 Telegram notifier initialized.")
		}
	}

	diag := utils.NewDiagnosticsDebugger(cfg.DiagnosticsDir)
	applier := filter.NewApplier(diag)
	run := runner.New(cfg, origin, pwManager, store, applier, cookies)

	//run searches sequentially; errors stay scoped to their search
	agg := report.NewAggregator(cfg.BaseURL)
	failed := 0
	for i, search := range cfg.Searches {
		if i > 0 {
			//polite pacing between searches
			utils.RandomDelay(1500, 4000)
		}

		log.Printf("\n=== %s ===", search.Label)
		res, err := run.Run(ctx, search)
		if err != nil {
			log.Printf("❌ Search %q failed: %v", search.Key, err)
			agg.AddFailure(search, err)
			failed++
			continue
		}

		log.Printf("Locations: %v", res.Locations)
		log.Printf("Page: %s", res.PageTitle)
		log.Printf("Found jobs: %d", len(res.Jobs))
		log.Printf("New jobs: %d", len(res.NewJobs))
		for _, job := range res.NewJobs {
			log.Printf("- %s | %s", job.Title, job.URL)
			if notifier != nil {
				if err := notifier.SendNewJob(search.Label, job); err != nil {
					log.Printf("⚠️ Failed to send job to Telegram: %v", err)
				}
				//1 second delay to avoid 429
				time.Sleep(1 * time.Second)
			}
		}

		agg.AddResult(res)
	}

	//save aggregate report
	reportPath := filepath.Join(cfg.StateDir, "last_run_report.json")
	if err := agg.WriteFile(reportPath); err != nil {
		log.Printf("⚠️ Failed to write run report: %v", err)
	} else {
		log.Printf("📁 Report saved to %s", reportPath)
	}

	//signal the hosting automation
	if err := agg.WriteAutomationOutput(); err != nil {
		log.Printf("⚠️ Failed to write automation output: %v", err)
	}

	if notifier != nil && (agg.TotalNew() > 0 || failed > 0) {
		if err := notifier.SendSummary(agg.TotalNew(), failed); err != nil {
			log.Printf("⚠️ Failed to send summary to Telegram: %v", err)
		}
	}

	log.Printf("🏁 Run finished. New jobs: %d, failed searches: %d", agg.TotalNew(), failed)
}

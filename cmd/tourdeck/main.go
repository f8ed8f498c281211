package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"

	"tourdeck/internal/api"
	"tourdeck/internal/config"
	"tourdeck/internal/eventbus"
	"tourdeck/internal/session"
	"tourdeck/internal/ui"
	"tourdeck/internal/ui/coordinator"
	"tourdeck/internal/ui/views"
)

func main() {
	var (
		configPath string
		country    string
		query      string
		envFile    string
	)
	flag.StringVar(&configPath, "config", "", "Path to config file (default: user config dir)")
	flag.StringVar(&country, "country", "", "Country for this session, e.g. MX")
	flag.StringVar(&query, "query", "", "Shareable query to restore, e.g. 'userId=P1&countryId=MX&page=2'")
	flag.StringVar(&envFile, "env", ".env", "Optional .env file with TOURDECK_* overrides")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: tourdeck [flags] [list]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	headless := false
	switch flag.Arg(0) {
	case "":
	case "list":
		headless = true
	default:
		flag.Usage()
		os.Exit(2)
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	bus := eventbus.New()
	defer bus.Close()

	configSvc := config.NewConfigServiceWithBus(bus)
	if configPath != "" {
		configSvc = config.NewConfigServiceAt(configPath, bus)
	}
	cfg := loadOrCreateConfig(configSvc)
	config.ApplyEnv(cfg, envFile)
	if country != "" {
		cfg.Session.CountryID = country
	}

	// Set up logging
	logFile, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Could not open log file: %v", err)
	} else {
		defer logFile.Close()
		log.SetOutput(logFile)
	}

	client := api.NewClient(api.Options{
		BaseURL:           cfg.API.BaseURL,
		Token:             cfg.API.Token,
		Timeout:           cfg.API.Timeout(),
		RequestsPerSecond: cfg.API.RequestsPerSecond,
	})
	sess := session.New(cfg.Session.CountryID)
	coord := coordinator.NewCoordinator(bus, sess, client, client, cfg.UI.PageLimit)

	if headless {
		if err := runList(ctx, coord, query, os.Stdout); err != nil {
			log.Printf("list failed: %v", err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	uiModel := ui.NewModel(ctx, bus, cfg, coord, query)
	p := tea.NewProgram(uiModel, tea.WithAltScreen(), tea.WithContext(ctx))
	uiModel.SetProgram(p)

	// Forward events to the UI
	eventChan := make(chan eventbus.DomainEvent, 100)
	forward := func(e eventbus.DomainEvent) {
		select {
		case eventChan <- e:
		default:
			log.Println("Event channel full, dropping event")
		}
	}
	for _, t := range []eventbus.EventType{
		eventbus.EventFetchStarted,
		eventbus.EventResultsLoaded,
		eventbus.EventFetchFailed,
		eventbus.EventStaleResponse,
		eventbus.EventPriceRangeLoaded,
		eventbus.EventFiltersApplied,
		eventbus.EventFiltersCleared,
		eventbus.EventValidationFailed,
	} {
		unsubscribe := bus.Subscribe(t, forward)
		defer unsubscribe()
	}

	go func() {
		for event := range eventChan {
			p.Send(ui.EventMsg{Event: event})
		}
	}()

	log.Printf("Starting UI...")
	if _, err := p.Run(); err != nil {
		log.Printf("Error running program: %v", err)
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
	log.Printf("UI exited normally")

	close(eventChan)
	cancel()
}

// loadOrCreateConfig loads the config file, writing the defaults on first run
func loadOrCreateConfig(configSvc config.ConfigService) *config.Config {
	if _, err := os.Stat(configSvc.Path()); err == nil {
		cfg, err := configSvc.Load()
		if err == nil {
			return cfg
		}
		log.Printf("Error loading config: %v", err)
		return config.DefaultConfig()
	}

	cfg := config.DefaultConfig()
	if err := configSvc.Save(cfg); err != nil {
		log.Printf("Failed to save config: %v", err)
	}
	return cfg
}

// runList restores query, fetches its page and prints it
func runList(ctx context.Context, coord *coordinator.Coordinator, query string, out io.Writer) error {
	page := 1
	if query != "" {
		var err error
		if page, err = coord.MountAndWait(ctx, query); err != nil {
			return err
		}
	}

	if err := coord.ApplyAndWait(ctx); err != nil {
		return fmt.Errorf("failed to apply filters: %w", err)
	}
	if page > 1 {
		if err := coord.SetPageAndWait(ctx, page); err != nil {
			return fmt.Errorf("failed to load page %d: %w", page, err)
		}
	}

	snap := coord.Results.Snapshot()
	if snap.Err != nil {
		return snap.Err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCITY\tCATEGORY\tPRICE")
	for _, t := range snap.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s %s\n", t.ID, t.Title, t.CityID, t.CategoryID, views.FormatPrice(t.Price), t.Currency)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	p := snap.Pagination
	fmt.Fprintf(out, "\npage %d of %d, %d tours\n", p.Page, p.TotalPages, p.Total)
	if share := coord.ShareQuery(); share != "" {
		fmt.Fprintf(out, "share: ?%s\n", share)
	}
	return nil
}

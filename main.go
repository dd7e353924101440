package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"casa8_ingest/config"
	"casa8_ingest/geocode"
	"casa8_ingest/httputil"
	"casa8_ingest/logging"
	"casa8_ingest/models"
	"casa8_ingest/scheduler"
	"casa8_ingest/services"
	"casa8_ingest/storage"
)

var (
	runImport   = flag.Bool("import", false, "Full import: -import <file> <market>, then exit")
	runSync     = flag.Bool("sync", false, "Incremental sync: -sync <file> <market>, then exit")
	showHistory = flag.Bool("history", false, "Print recent runs and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	logFile, err := logging.Setup("ingest.log")
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *showHistory {
		printHistory(cfg.DBPath)
		return
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	ctx := context.Background()
	clients := httputil.NewClients()

	store, closeStore, err := newPropertyStore(ctx, cfg, clients)
	if err != nil {
		log.Fatalf("Failed to connect to property store: %v", err)
	}
	defer closeStore()

	objects, err := newObjectStore(ctx, cfg, clients)
	if err != nil {
		log.Fatalf("Failed to set up object store: %v", err)
	}

	// A disabled client stays out of the transformer entirely so no
	// per-record rate delay applies when geocoding is off.
	var geocoder services.Geocoder
	if client := geocode.NewClient(cfg.Geocoding.Endpoint, cfg.Geocoding.APIKey, clients.Geocoding); client.Enabled() {
		geocoder = client
	} else {
		log.Println("Geocoding disabled: no API key configured")
	}

	transformer := services.NewTransformer(services.NewMediaUploader(objects), geocoder, cfg.Import.SystemLandlordID)
	importer := services.NewImporter(store, transformer)
	syncer := services.NewSyncer(store, transformer)

	runs, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open run history: %v", err)
	}
	defer runs.Close()

	if *runImport || *runSync {
		runOnce(ctx, cfg, importer, syncer, runs)
		return
	}

	// Daemon mode: scheduled syncs for the configured market feeds.
	log.Printf("Loaded %d market configs", len(cfg.Markets))
	for slug, market := range cfg.Markets {
		log.Printf("  - %s (%s)", market.Name, slug)
	}

	sched := scheduler.New(cfg, syncer, runs)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	sched.Stop()
}

func runOnce(ctx context.Context, cfg *config.Config, importer *services.Importer, syncer *services.Syncer, runs *storage.SQLiteStore) {
	args := flag.Args()
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: casa8_ingest -import|-sync <file> <market>")
		os.Exit(1)
	}
	filePath, sourceMarket := args[0], args[1]

	if !config.ValidMarketSlug(sourceMarket) {
		fmt.Fprintf(os.Stderr, "invalid market slug %q (want e.g. san-antonio-tx)\n", sourceMarket)
		os.Exit(1)
	}

	mode := models.RunModeImport
	if *runSync {
		mode = models.RunModeSync
	}

	run := &models.ImportRun{
		Mode:         mode,
		SourceMarket: sourceMarket,
		FilePath:     filePath,
		StartedAt:    time.Now(),
		Status:       models.RunStatusRunning,
	}
	runID, err := runs.CreateRun(run)
	if err != nil {
		log.Printf("Warning: failed to create run record: %v", err)
	}

	var result *models.ImportResult
	if mode == models.RunModeSync {
		result = syncer.SyncFromFile(ctx, filePath, sourceMarket)
	} else {
		result = importer.ImportFromFile(ctx, filePath, sourceMarket)
	}

	if runID != 0 {
		if err := runs.FinishRun(runID, result); err != nil {
			log.Printf("Warning: failed to finish run record: %v", err)
		}
	}

	if mode == models.RunModeSync {
		if err := logging.AppendAudit(cfg.Import.AuditLogPath, mode, sourceMarket, result); err != nil {
			log.Printf("Warning: failed to append audit record: %v", err)
		}
	}

	printSummary(sourceMarket, result)
	if !result.Success {
		os.Exit(1)
	}
}

func printHistory(dbPath string) {
	runs, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		log.Fatalf("Failed to open run history: %v", err)
	}
	defer runs.Close()

	recent, err := runs.RecentRuns(20)
	if err != nil {
		log.Fatalf("Failed to read run history: %v", err)
	}
	if len(recent) == 0 {
		fmt.Println("No runs recorded yet.")
		return
	}

	for _, r := range recent {
		fmt.Printf("%s  %-6s %-18s %-9s %d processed / %d new / %d updated / %d deactivated / %d errors\n",
			r.StartedAt.Format("2006-01-02 15:04"), r.Mode, r.SourceMarket, r.Status,
			r.TotalProcessed, r.NewProperties, r.UpdatedProperties, r.DeactivatedProperties, r.ErrorsCount)
	}
}

func printSummary(sourceMarket string, result *models.ImportResult) {
	fmt.Printf("\n=== %s ===\n", sourceMarket)
	fmt.Printf("Processed:   %d\n", result.TotalProcessed)
	fmt.Printf("New:         %d\n", result.NewProperties)
	fmt.Printf("Updated:     %d\n", result.UpdatedProperties)
	fmt.Printf("Deactivated: %d\n", result.DeactivatedProperties)
	fmt.Printf("Images:      %d\n", result.ImageUploads)

	for slug, m := range result.Markets {
		fmt.Printf("  %s: %d processed / %d new / %d updated / %d deactivated\n",
			slug, m.Processed, m.New, m.Updated, m.Deactivated)
	}

	if len(result.Errors) > 0 {
		fmt.Printf("Errors (%d):\n", len(result.Errors))
		for _, msg := range result.Errors {
			fmt.Printf("  - %s\n", msg)
		}
	} else {
		fmt.Println("Errors:      none")
	}
}

func newPropertyStore(ctx context.Context, cfg *config.Config, clients *httputil.Clients) (services.PropertyStore, func(), error) {
	if cfg.Supabase.DBURL != "" {
		pg, err := storage.NewPostgresStore(ctx, cfg.Supabase.DBURL)
		if err != nil {
			return nil, nil, err
		}
		log.Println("Property store: direct Postgres")
		return pg, pg.Close, nil
	}

	log.Println("Property store: Supabase REST")
	rest := storage.NewSupabaseStore(&cfg.Supabase, clients.Supabase)
	return rest, func() {}, nil
}

func newObjectStore(ctx context.Context, cfg *config.Config, clients *httputil.Clients) (services.ObjectStore, error) {
	if cfg.Storage.S3AccessKeyID != "" {
		uploader, err := storage.NewS3Uploader(ctx, storage.S3Config{
			Bucket:          cfg.Storage.Bucket,
			Region:          cfg.Storage.S3Region,
			Endpoint:        cfg.Storage.S3Endpoint,
			AccessKeyID:     cfg.Storage.S3AccessKeyID,
			SecretAccessKey: cfg.Storage.S3SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		log.Println("Object store: S3")
		return uploader, nil
	}

	log.Println("Object store: Supabase Storage")
	return storage.NewSupabaseBucket(&cfg.Supabase, cfg.Storage.Bucket, clients.Supabase), nil
}

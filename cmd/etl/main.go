package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/yourusername/wordguard/internal/config"
	"github.com/yourusername/wordguard/internal/etl"
	"github.com/yourusername/wordguard/internal/logger"
)

func main() {
	var (
		configPath = flag.String("config", "", "Configuration file path")
		inputFile  = flag.String("input", "", "Input term dataset (CSV, Parquet, or JSON lines)")
		outputDir  = flag.String("output", "", "Vocabulary directory (defaults to the configured one)")
		category   = flag.String("category", "imported", "Category for records without one")
		keepDupes  = flag.Bool("keep-duplicates", false, "Import terms already present in the vocabulary")
	)
	flag.Parse()

	if *inputFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s --input dataset.csv [options]\n\nOptions:\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --input banned_terms.csv\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --input terms.parquet --category slurs\n", os.Args[0])
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	dir := cfg.Vocabulary.Dir
	if *outputDir != "" {
		dir = *outputDir
	}

	log.Info("Starting WordGuard vocabulary ingestion",
		zap.String("input", *inputFile),
		zap.String("output_dir", dir))

	// Create context with cancellation on shutdown signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, cancelling ingestion...")
		cancel()
	}()

	pipeline := etl.NewPipeline(&etl.Config{
		OutputDir:       dir,
		DefaultCategory: *category,
		SkipDuplicates:  !*keepDupes,
		ValidateData:    true,
	}, log.WithComponent("etl").Logger)

	result, err := pipeline.ProcessFile(ctx, *inputFile)
	if err != nil {
		log.Fatal("Vocabulary ingestion failed", zap.Error(err))
	}

	log.Info("Vocabulary ingestion finished",
		zap.Int64("total_records", result.TotalRecords),
		zap.Int64("imported", result.Imported),
		zap.Int64("duplicates", result.Duplicates),
		zap.Int64("invalid", result.Invalid),
		zap.Strings("categories", result.Categories),
		zap.Duration("duration", result.Duration))
}

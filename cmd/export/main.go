package main

import (
	"context"
	"flag"
	"os"
	"time"

	"docshield/internal/config"
	"docshield/internal/infrastructure/registry/postgres"
	"docshield/internal/infrastructure/report"
	"docshield/internal/observability/logging"
)

func main() {
	out := flag.String("out", "documents.xlsx", "output workbook path")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}

	logger := logging.NewTextLogger("docshield-export", cfg.LogLevel)

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		logger.Error("open postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	registry := postgres.NewRegistry(db)
	records, err := registry.ListAll(ctx)
	if err != nil {
		logger.Error("list registry", "error", err)
		os.Exit(1)
	}

	if err := report.WriteRegistryXLSX(*out, records); err != nil {
		logger.Error("write workbook", "error", err)
		os.Exit(1)
	}

	logger.Info("registry exported", "path", *out, "records", len(records))
}

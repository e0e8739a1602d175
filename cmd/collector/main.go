package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/quantscope/macdscan/internal/collector"
	"github.com/quantscope/macdscan/internal/config"
	"github.com/quantscope/macdscan/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.ReadFromFile(os.Getenv("CONFIG"))
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.Default()

	st, err := store.NewSQLiteStore(logger, cfg.Store.Path)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	if cfg.Store.Symbols != "" {
		symbols, err := store.LoadSymbols(cfg.Store.Symbols)
		if err != nil {
			log.Fatal(err)
		}
		if err := st.PutSymbols(ctx, symbols); err != nil {
			log.Fatal(err)
		}
	}

	symbols, err := st.ListSymbols(ctx)
	if err != nil {
		log.Fatal(err)
	}

	var col collector.Collector
	switch src := cfg.Collector.SourceRef.Source.(type) {
	case config.Alpaca:
		col, err = collector.NewAlpacaCollector(logger, src, st, symbols, cfg.Store.Period, cfg.Collector.LookbackDays)
		if err != nil {
			log.Fatal(err)
		}
	case config.CSV:
		col = collector.NewCSVCollector(logger, src, st, cfg.Store.Period)
	default:
		log.Fatal("unsupported collector source")
	}

	sched := collector.NewScheduler(logger, col)
	if cfg.Collector.RunOnStart {
		sched.CollectNow(ctx)
	}

	if err := sched.Run(ctx, cfg.Collector.Schedule); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/quantscope/macdscan/internal/analysis"
	"github.com/quantscope/macdscan/internal/config"
	"github.com/quantscope/macdscan/internal/report"
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

	runner := analysis.NewBatchRunner(logger, *cfg, st)
	res, err := runner.Run(ctx)
	if err != nil {
		log.Fatal(err)
	}

	rows := report.IntervalRows(res)
	if err := st.SaveIntervals(ctx, rows); err != nil {
		log.Fatal(err)
	}

	if cfg.Report.CSV != "" {
		f, err := os.Create(cfg.Report.CSV)
		if err != nil {
			log.Fatal(err)
		}
		if err := report.WriteIntervalCSV(f, rows); err != nil {
			f.Close()
			log.Fatal(err)
		}
		f.Close()
	}

	summary := report.NewSummaryBuilder(logger)
	summary.Submit(res)

	if cfg.Report.JSON != "" {
		err = summary.WriteToFile(cfg.Report.JSON)
	} else {
		err = summary.Write(os.Stdout)
	}
	if err != nil {
		log.Fatal(err)
	}

	if cfg.Report.PlotDir != "" {
		files, err := report.SaveHistograms(cfg.Report.PlotDir, res)
		if err != nil {
			log.Fatal(err)
		}
		for _, f := range files {
			logger.Info("saved plot", "path", f)
		}
	}
}

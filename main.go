package main

import (
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"

	"edsim/config"
	"edsim/metrics"
	"edsim/orchestrator"
	"edsim/report"
)

func main() {
	configPath := flag.String("config", "", "Path to config.json (default: ./config.json)")
	days := flag.Int("days", 28, "Total simulated duration in days")
	seed := flag.Int64("seed", 1, "RNG seed (fixed seed => deterministic run)")
	format := flag.String("format", "text", "Output format: text|json|csv")
	metricsAddr := flag.String("metrics-addr", "", "Address to expose Prometheus metrics (e.g., :9090)")
	pushGateway := flag.String("push-url", "", "Pushgateway URL to push metrics to (e.g., http://localhost:9091)")
	wait := flag.Bool("wait", false, "Keep process running after completion to allow for metric scraping")

	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *metricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
			logger.Info("metrics server listening", zap.String("addr", *metricsAddr))
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				logger.Error("metrics server error", zap.Error(err))
			}
		}()
	}

	validFormats := map[string]bool{"text": true, "json": true, "csv": true}
	if !validFormats[*format] {
		fmt.Printf("Error: format must be one of: text, json, csv (got: %s)\n", *format)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("fatal configuration error", zap.Error(err))
		os.Exit(1)
	}

	o, err := orchestrator.New(cfg, rand.New(rand.NewSource(*seed)), logger)
	if err != nil {
		logger.Error("fatal configuration error", zap.Error(err))
		os.Exit(1)
	}

	reports, err := o.Run(*days)
	if err != nil {
		logger.Error("orchestrator run failed", zap.Error(err))
		os.Exit(1)
	}

	for _, r := range reports {
		switch *format {
		case "json":
			fmt.Print(report.FormatJSON(r.Hourly))
		case "csv":
			fmt.Print(report.FormatCSV(r.Hourly))
		default:
			fmt.Print(report.FormatText(r.Hourly))
		}
		for class, sched := range r.Schedules {
			fmt.Printf("--- roster: %s (cycle %d) ---\n", class, r.CycleIndex)
			fmt.Print(report.FormatScheduleText(sched))
		}
	}

	if *pushGateway != "" {
		jobName := "edsim"
		if err := push.New(*pushGateway, jobName).Gatherer(metrics.Registry).Push(); err != nil {
			logger.Error("error pushing to pushgateway", zap.Error(err))
		} else {
			logger.Info("metrics successfully pushed to pushgateway")
		}
	}

	if *wait && *metricsAddr != "" {
		fmt.Println("\nProcess kept alive for metric scraping. Press Ctrl+C to exit.")
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		fmt.Println("\nExiting...")
	} else if *metricsAddr != "" && *pushGateway == "" {
		time.Sleep(100 * time.Millisecond)
	}
}

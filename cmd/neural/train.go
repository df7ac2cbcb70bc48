package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/joelsearcy/micrograd-go/pkg/train"
)

var (
	configPath  string
	dataPath    string
	iterations  int
	lr          float64
	optimizer   string
	seed        uint64
	workers     int
	metricsAddr string
	cpuProfile  string

	trainCmd = &cobra.Command{
		Use:   "train",
		Short: "Train a multi-layer perceptron and print loss and predictions",
		Args:  cobra.NoArgs,
		RunE:  runTrain,
	}
)

func init() {
	trainCmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML run configuration (defaults reproduce the classic demo).")
	trainCmd.Flags().StringVar(&dataPath, "data", "", "Sample file: one sample per line, inputs then target.")
	trainCmd.Flags().IntVarP(&iterations, "iterations", "n", 100, "Number of training iterations.")
	trainCmd.Flags().Float64Var(&lr, "lr", 0.1, "Learning rate.")
	trainCmd.Flags().StringVar(&optimizer, "optimizer", "sgd", "Optimizer (sgd, adam).")
	trainCmd.Flags().Uint64Var(&seed, "seed", 42, "Seed for parameter initialization.")
	trainCmd.Flags().IntVar(&workers, "workers", 0, "Samples evaluated concurrently (0 = GOMAXPROCS).")
	trainCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090.")
	trainCmd.Flags().StringVar(&cpuProfile, "cpuprofile", "", "Write a CPU profile to this file.")
}

// applyFlags overrides cfg with every flag set on the command line.
func applyFlags(cmd *cobra.Command, cfg *train.Config) {
	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataPath = dataPath
	}
	if flags.Changed("iterations") {
		cfg.Iterations = iterations
	}
	if flags.Changed("lr") {
		cfg.LearningRate = lr
	}
	if flags.Changed("optimizer") {
		cfg.Optimizer = optimizer
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg := train.DefaultConfig()
	if configPath != "" {
		loaded, err := train.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	applyFlags(cmd, &cfg)

	if cpuProfile != "" {
		cpuFile, err := os.Create(cpuProfile)
		if err != nil {
			return fmt.Errorf("creating CPU profile: %w", err)
		}
		defer cpuFile.Close()

		if err := pprof.StartCPUProfile(cpuFile); err != nil {
			return fmt.Errorf("starting CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		slog.Info("CPU profiling enabled", slog.String("path", cpuProfile))
	}

	if metricsAddr != "" {
		srv := serveMetrics(metricsAddr)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	tr, err := train.New(cfg, slog.Default())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	last, err := tr.Run(cmd.Context(), func(r train.Report) {
		printReport(out, r)
	})
	if err != nil {
		return err
	}

	// final predictions
	fmt.Fprintln(out, formatFloats(last.Predictions))
	return nil
}

// serveMetrics exposes the default Prometheus registry on addr.
func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", slog.String("addr", addr), slog.Any("error", err))
		}
	}()
	slog.Info("serving metrics", slog.String("addr", addr))
	return srv
}

func printReport(w io.Writer, r train.Report) {
	fmt.Fprintf(w, "%2d: %s, pred: %s\n", r.Iteration, strconv.FormatFloat(r.Loss, 'g', -1, 64), formatFloats(r.Predictions))
}

func formatFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

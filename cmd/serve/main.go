// Command serve exposes a completed comparison artifact over HTTP:
// the rendered HTML report at / and the raw JSON at /api/report.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"radonlab/domain/compare"
	"radonlab/internal/config"
	"radonlab/internal/logx"
	"radonlab/internal/report"
)

func main() {
	_ = godotenv.Load()
	logger := logx.New()
	slog.SetDefault(logger)

	artifact := flag.String("artifact", "comparison.json", "JSON artifact produced by `radonlab compare --json`")
	addr := flag.String("addr", "", "Listen address (overrides RADON_ADDR)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *addr == "" {
		*addr = cfg.Server.Addr
	}

	rep, err := loadArtifact(*artifact)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	html := report.HTML(rep)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(html)
	})
	r.Get("/api/report", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rep)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	logger.Info("serving comparison report", "addr", *addr, "artifact", *artifact)
	if err := http.ListenAndServe(*addr, r); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func loadArtifact(path string) (*compare.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading artifact: %w", err)
	}
	var rep compare.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("decoding artifact: %w", err)
	}
	return &rep, nil
}

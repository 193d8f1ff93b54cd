package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ocrapp/api/internal/config"
	"ocrapp/api/internal/engines"
	"ocrapp/api/internal/handle"
	"ocrapp/api/internal/httpserver"
	"ocrapp/api/internal/ocr"
	"ocrapp/api/internal/store"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg, err := engines.Build(cfg)
	if err != nil {
		log.Fatal(err)
	}
	langs, err := ocr.ParseLanguages(cfg.Languages)
	if err != nil {
		log.Fatalf("OCR_LANGUAGES: %v", err)
	}

	var opts []handle.Option
	if cfg.DatabaseURL != "" {
		repo, closeDB, err := store.OpenExtractionRepo(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer closeDB()
		opts = append(opts, handle.WithStore(repo))
		go store.PurgeLoop(ctx, repo, cfg.HistoryRetention, time.Hour)
	} else {
		log.Printf("DATABASE_URL is not set: extraction history disabled")
	}

	h := handle.New(reg, langs, opts...)
	mux := http.NewServeMux()
	h.Routes(mux)

	if err := httpserver.Run(ctx, "0.0.0.0:"+cfg.Port, mux); err != nil {
		log.Fatal(err)
	}
}

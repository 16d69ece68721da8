package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/wederfonseca/achadinhododia/internal/capi"
	"github.com/wederfonseca/achadinhododia/internal/config"
	"github.com/wederfonseca/achadinhododia/internal/httpserver"
	"github.com/wederfonseca/achadinhododia/internal/logger"
	"github.com/wederfonseca/achadinhododia/internal/store"
)

// main boots the service: config → logging → store → HTTP server.
func main() {
	// Load runtime config from environment (Meta credentials, store
	// backend, dedup policy) once; handlers never touch the environment.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zlog, err := logger.Setup(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer zlog.Sync()

	// Connect the dedup/counter store. st is nil for STORE_BACKEND=none,
	// which disables dedup and counting but keeps forwarding alive.
	st, err := store.New(cfg)
	if err != nil {
		zlog.Fatal("store init failed", zap.Error(err))
	}
	if st != nil {
		defer st.Close()
	}

	if !cfg.ProviderConfigured() {
		// Keep serving so /collect can answer 500 and the log shows why.
		zlog.Error("META_PIXEL_ID / META_ACCESS_TOKEN not set; collect will reject events")
	}

	router := httpserver.NewRouter(cfg, st, capi.New(cfg), zlog)

	zlog.Info("server started",
		zap.String("port", cfg.Port),
		zap.String("store", cfg.StoreBackend),
		zap.String("dedup_window", cfg.DedupWindow))
	if err := router.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

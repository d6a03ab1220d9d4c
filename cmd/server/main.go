package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kolv02/backend/internal/auth"
	"github.com/kolv02/backend/internal/config"
	"github.com/kolv02/backend/internal/middleware"
	"github.com/kolv02/backend/internal/server"
	"github.com/kolv02/backend/internal/storage/sqlite"
	"github.com/kolv02/backend/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	tokens := auth.NewManager(cfg.TokenSecret, cfg.TokenTTL)
	srv := server.New(store, tokens)

	// Middleware chain: logging wraps metrics wraps CORS wraps routes.
	handler := middleware.Logging(middleware.Metrics(middleware.CORS(srv.Handler())))

	// Serve HTTP/2 without TLS for clients that speak it.
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.Port)
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

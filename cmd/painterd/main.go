package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/painterhq/painter/internal/config"
	"github.com/painterhq/painter/internal/export"
	"github.com/painterhq/painter/internal/geom"
	mw "github.com/painterhq/painter/internal/middleware"
	"github.com/painterhq/painter/internal/project"
	"github.com/painterhq/painter/internal/session"
	"github.com/painterhq/painter/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(ctx, cfg.StoreDriver, cfg.SQLitePath, cfg.DatabaseURL)
	if err != nil {
		slog.Error("open snapshot store", "error", err, "driver", cfg.StoreDriver)
		os.Exit(1)
	}
	defer st.Close()

	projectService := project.NewService(st, cfg.ThumbnailSize)
	projectHandler := project.NewHandler(projectService)
	exportHandler := export.NewHandler(cfg.ViewportWidth, cfg.ViewportHeight, slog.Default())

	hub := session.NewHub(slog.Default())
	sessionHandler := session.NewHandler(hub, session.Options{
		Engine:        cfg.EngineOptions(geom.Mode2D, nil),
		Store:         st,
		DataDir:       cfg.DataDir,
		ThumbnailSize: cfg.ThumbnailSize,
		Logger:        slog.Default(),
	}, cfg.Origins())

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/render", exportHandler.RenderPNG).Methods("POST", "OPTIONS")
	projectHandler.Register(r)

	// WebSocket endpoint, one private engine per connection
	r.Handle("/ws", sessionHandler)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		// Close sessions first so pending saves can finish.
		hub.Stop(shutdownCtx)
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "store", cfg.StoreDriver)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

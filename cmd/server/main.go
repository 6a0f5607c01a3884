package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitparty/internal/config"
	"github.com/mmynk/splitparty/internal/server"
	"github.com/mmynk/splitparty/internal/service"
	"github.com/mmynk/splitparty/internal/storage/sqlite"
	"github.com/mmynk/splitparty/internal/stream"
	"github.com/mmynk/splitparty/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	logging.Setup()

	cfg := config.Load()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	// A Redis-backed stream fans events out across server instances; the
	// in-process bus covers the single-instance case.
	var bus stream.Stream
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer client.Close()
		bus = stream.NewRedis(client)
		slog.Info("Using Redis change stream", "addr", cfg.RedisAddr)
	} else {
		memBus := stream.NewBus()
		defer memBus.Close()
		bus = memBus
		slog.Info("Using in-process change stream")
	}

	svc := service.NewBillService(store, bus)
	api := server.New(svc, bus)

	mux := http.NewServeMux()
	mux.Handle("/api/", api.Router())
	mux.Handle("/metrics", api.Router())

	// Serve static files from frontend/static
	staticDir, err := filepath.Abs(cfg.StaticPath)
	if err != nil {
		slog.Error("Failed to resolve static path", "error", err)
		os.Exit(1)
	}
	slog.Info("Serving static files", "path", staticDir)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(staticDir, filepath.Clean(urlPath))

		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			// For SPA-like behavior, serve index.html for unknown paths
			// But for bill.html, we use query params so this isn't needed
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}

		http.ServeFile(w, r, filePath)
	})

	handler := corsMiddleware(mux)

	// Wrap with h2c so browsers on HTTP/2 can hold many SSE streams open
	// without TLS termination in front.
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := ":" + cfg.Port
	slog.Info("Server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"embedded-api/blob"
	"embedded-api/calendar"
	"embedded-api/config"
	"embedded-api/ghpr"
	"embedded-api/media"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

const version = "1.0.0"

type healthResponse struct {
	OK      bool   `json:"ok"`
	Version string `json:"version"`
	Service string `json:"service"`
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Println("Starting Embedded API Server...")

	ctx := context.Background()

	store := newMediaStore(ctx, cfg)
	limits := media.Limits{
		MaxFiles:     cfg.MaxFiles,
		MaxFileSize:  cfg.MaxFileSize,
		MaxTotalSize: cfg.MaxTotalSize,
	}

	var calendars calendarService
	if client, err := calendar.NewClient(ctx); err != nil {
		log.Printf("Calendar credentials not available, event routes will fail: %v", err)
	} else {
		calendars = client
	}

	var blobs blobStore
	if cfg.BlobToken != "" {
		blobs = blob.NewClient(cfg.BlobToken)
	} else {
		log.Println("BLOB_READ_WRITE_TOKEN not set, direct uploads disabled")
	}

	var pr prUploader
	if cfg.GitHubToken != "" && cfg.GitHubRepo != "" {
		pr = ghpr.NewUploader(cfg.GitHubToken, cfg.GitHubRepo, cfg.GitHubBranch)
	} else {
		log.Println("GitHub credentials not set, PR-based uploads disabled")
	}

	r := mux.NewRouter()
	r.Use(corsMiddleware(cfg.AllowedOrigin))
	// Preflight requests are answered by the CORS middleware.
	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	r.HandleFunc("/", rootHandler).Methods("GET")
	r.HandleFunc("/api", apiIndexHandler).Methods("GET")
	r.HandleFunc("/api/health", healthHandler).Methods("GET")

	registerEventRoutes(r, calendars, cfg.CalendarID, cfg.AdminToken)
	registerMediaRoutes(r, store, limits, cfg.AdminToken)
	registerUploadRoutes(r, blobs, pr, limits, cfg.AdminToken)

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Listen,
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  60 * time.Second,
	}

	log.Printf("Embedded API Server v%s starting on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// newMediaStore selects the catalog backend: Redis when configured,
// otherwise the in-memory store constructed once and shared by handlers.
func newMediaStore(ctx context.Context, cfg *config.Config) media.Store {
	if cfg.RedisURL == "" {
		log.Println("REDIS_URL not set, using in-memory media store")
		return media.NewMemoryStore()
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Invalid REDIS_URL: %v", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("Connected to Redis")
	return media.NewRedisStore(client)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		OK:      true,
		Version: version,
		Service: "embedded-api",
	})
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "Embedded Purdue API",
		"version": version,
		"endpoints": map[string]string{
			"events": "/api/events",
			"media":  "/api/media",
			"health": "/api/health",
		},
	})
}

func apiIndexHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"endpoints": map[string]any{
			"events": map[string]string{
				"list":   "GET /api/events",
				"feed":   "GET /api/events.ics",
				"create": "POST /api/events",
			},
			"media": map[string]string{
				"list":      "GET /api/media",
				"create":    "POST /api/media",
				"upload":    "POST /api/media/upload",
				"upload_gh": "POST /api/media/upload-gh",
			},
			"health": "GET /api/health",
		},
	})
}

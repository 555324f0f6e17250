package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"canvasgw/internal/config"
	"canvasgw/internal/handler"
	"canvasgw/internal/middleware"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"canvas_base_url", cfg.CanvasBaseURL,
		"llm_model", cfg.LLMModel,
	)

	chatHandler := handler.NewChatHandler(cfg, logger)
	canvasHandler := handler.NewCanvasHandler(cfg.CanvasBaseURL, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", canvasHandler.HealthCheck)

	// Agent chat and tool diagnostics
	mux.HandleFunc("POST /chat", chatHandler.Chat)
	mux.HandleFunc("POST /tool_test", chatHandler.ToolTest)

	// File browsing (non-agent path)
	mux.HandleFunc("GET /courses", canvasHandler.ListCourses)
	mux.HandleFunc("GET /courses/{id}/file_tree", canvasHandler.GetFileTree)
	mux.HandleFunc("GET /files/{id}/download", canvasHandler.DownloadFile)

	// Static frontend bundle, when present
	if info, err := os.Stat(cfg.FrontendDir); err == nil && info.IsDir() {
		mux.Handle("/", http.FileServer(http.Dir(cfg.FrontendDir)))
		logger.Info("serving frontend", "dir", cfg.FrontendDir)
	}

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → RequestID → Recovery → Routes
	var root http.Handler = mux
	root = middleware.Recovery(logger)(root)
	root = middleware.RequestID()(root)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Origin", "Content-Type", "Accept",
			"X-Canvas-Token", "X-LLM-Base", "X-LLM-Key", "X-LLM-Model",
			"X-Agent-Verbose", "X-Request-ID",
		},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // downloads stream for as long as upstream takes
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"invoice-insight/internal/api/handlers"
	"invoice-insight/internal/api/middleware"
	"invoice-insight/internal/config"
	"invoice-insight/internal/jobs"
	"invoice-insight/internal/jobs/inmemory"
	"invoice-insight/internal/logger"
	"invoice-insight/internal/store"
)

func main() {
	cfg := config.Load()

	log := logger.New()

	ctx := context.Background()

	// Session stores
	datasets := store.New()
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.QueueSize, jobStore)

	// Start analysis workers in the background
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	go func() {
		log.Info().Msg("Starting analysis workers")
		if err := jobQueue.Start(workerCtx, jobs.AnalyzeHandler(datasets, log)); err != nil {
			log.Error().Err(err).Msg("Analysis workers stopped with error")
		}
	}()

	// Initialize handlers
	datasetsHandler := handlers.NewDatasetsHandler(datasets, log)
	analysisHandler := handlers.NewAnalysisHandler(datasets, log)
	jobsHandler := handlers.NewJobsHandler(datasets, jobStore, jobQueue, log)

	// Create router
	mux := http.NewServeMux()

	// Datasets endpoints
	mux.HandleFunc("/api/datasets", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			datasetsHandler.List(w, r)
		case http.MethodPost:
			datasetsHandler.Upload(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/datasets/sample", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			datasetsHandler.GenerateSample(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/datasets/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/datasets/")
		datasetID, view, _ := strings.Cut(rest, "/")
		if datasetID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Dataset ID is required")
			return
		}

		switch view {
		case "":
			switch r.Method {
			case http.MethodGet:
				datasetsHandler.Get(w, r, datasetID)
			case http.MethodDelete:
				datasetsHandler.Delete(w, r, datasetID)
			default:
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		case "kpis":
			requireGet(w, r, datasetID, analysisHandler.KPIs)
		case "trend":
			requireGet(w, r, datasetID, analysisHandler.Trend)
		case "distribution":
			requireGet(w, r, datasetID, analysisHandler.Distribution)
		case "accounts":
			requireGet(w, r, datasetID, analysisHandler.Accounts)
		case "highlights":
			requireGet(w, r, datasetID, analysisHandler.Highlights)
		case "statistics":
			requireGet(w, r, datasetID, analysisHandler.Statistics)
		case "quality":
			requireGet(w, r, datasetID, analysisHandler.Quality)
		case "anomalies":
			if r.Method == http.MethodPost {
				analysisHandler.Anomalies(w, r, datasetID)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		default:
			middleware.WriteError(w, http.StatusNotFound, "Unknown view: "+view)
		}
	})

	// Analyses endpoint
	mux.HandleFunc("/api/analyses", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			jobsHandler.Enqueue(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Jobs endpoints
	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.List(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.Get(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.RequestID(
			middleware.Logger(log)(
				middleware.CORS(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight analyses
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}

func requireGet(w http.ResponseWriter, r *http.Request, datasetID string, fn func(http.ResponseWriter, *http.Request, string)) {
	if r.Method != http.MethodGet {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	fn(w, r, datasetID)
}

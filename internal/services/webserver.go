package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"mcx-exporter/internal/common"
	"mcx-exporter/internal/handlers"
	"mcx-exporter/internal/interfaces"
	"mcx-exporter/internal/middleware"

	"github.com/ternarybob/arbor"
)

// webServer provides HTTP endpoints for monitoring the local case cache and
// triggering collection runs.
type webServer struct {
	config       *common.Config
	storage      interfaces.Storage
	server       *http.Server
	logger       arbor.ILogger
	apiHandlers  *handlers.APIHandlers
	wsHub        *handlers.WebSocketHub
	newCollector func() (interfaces.Collector, error)
	running      bool
	startTime    time.Time
}

// NewWebServer creates a new web server instance
func NewWebServer(cfg *common.Config, storage interfaces.Storage, logger arbor.ILogger) (interfaces.WebService, error) {
	mux := http.NewServeMux()

	wsHub := handlers.NewWebSocketHub(logger)
	apiHandlers := handlers.NewAPIHandlers(cfg, storage, logger)

	ws := &webServer{
		config:      cfg,
		storage:     storage,
		logger:      logger,
		apiHandlers: apiHandlers,
		wsHub:       wsHub,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Exporter.Port),
			Handler: mux,
		},
	}

	ws.newCollector = func() (interfaces.Collector, error) {
		if err := cfg.ValidateCredentials(); err != nil {
			return nil, err
		}
		client := NewMcxClient(&cfg.Mcx)
		if err := client.Authenticate(); err != nil {
			return nil, err
		}
		return NewCollector(cfg, client, storage, logger), nil
	}

	logMiddleware := middleware.Logging(logger)
	corsMiddleware := middleware.CORS

	mux.HandleFunc("/health", logMiddleware(corsMiddleware(apiHandlers.HealthHandler)))
	mux.HandleFunc("/version", logMiddleware(corsMiddleware(apiHandlers.VersionHandler)))
	mux.HandleFunc("/status", logMiddleware(corsMiddleware(apiHandlers.StatusHandler)))
	mux.HandleFunc("/cases", logMiddleware(corsMiddleware(apiHandlers.CasesHandler)))
	mux.HandleFunc("/inbox", logMiddleware(corsMiddleware(apiHandlers.InboxHandler)))
	mux.HandleFunc("/config", logMiddleware(corsMiddleware(apiHandlers.ConfigHandler)))
	mux.HandleFunc("/collect", logMiddleware(corsMiddleware(ws.collectHandler)))

	mux.HandleFunc("/ws", corsMiddleware(wsHub.WebSocketHandler))

	return ws, nil
}

// collectHandler runs a full case collection and export, broadcasting
// progress events to websocket clients as the run advances.
func (ws *webServer) collectHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	collector, err := ws.newCollector()
	if err != nil {
		ws.logger.Error().Err(err).Msg("Failed to connect to MCX API")
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	ws.wsHub.SendExportUpdate("collection_started", map[string]interface{}{
		"command": "cases",
	})

	rowSet, err := collector.CollectCases()
	if err != nil {
		ws.logger.Error().Err(err).Msg("Collection run failed")
		ws.wsHub.SendExportUpdate("collection_failed", map[string]interface{}{
			"error": err.Error(),
		})
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	exporter := NewExporter(&ws.config.Exporter, ws.logger)
	path, err := exporter.Export("cases", rowSet.FieldNames, rowSet.Rows)
	if err != nil {
		ws.logger.Error().Err(err).Msg("Export failed")
		ws.wsHub.SendExportUpdate("export_failed", map[string]interface{}{
			"error": err.Error(),
		})
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ws.wsHub.SendExportUpdate("export_written", map[string]interface{}{
		"cases": len(rowSet.Rows),
		"path":  path,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"cases": len(rowSet.Rows),
		"path":  path,
	})
}

// Start starts the web server
func (ws *webServer) Start(ctx context.Context) error {
	ws.running = true
	ws.startTime = time.Now()

	go func() {
		ws.logger.Info().Int("port", ws.config.Exporter.Port).Msg("Starting web server")
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			ws.logger.Error().Err(err).Msg("Web server error")
		}
	}()
	return nil
}

// Stop stops the web server
func (ws *webServer) Stop() error {
	ws.running = false

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ws.logger.Info().Msg("Shutting down web server")
	return ws.server.Shutdown(ctx)
}

// IsRunning returns true if the web server is running
func (ws *webServer) IsRunning() bool {
	return ws.running
}

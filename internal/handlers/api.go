package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"mcx-exporter/internal/common"
	"mcx-exporter/internal/interfaces"

	"github.com/ternarybob/arbor"
)

// APIHandlers contains all API endpoint handlers
type APIHandlers struct {
	config    *common.Config
	storage   interfaces.Storage
	logger    arbor.ILogger
	startTime time.Time
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Build     string    `json:"build"`
	Uptime    float64   `json:"uptime_seconds"`
	Services  struct {
		Database bool `json:"database"`
	} `json:"services"`
}

// VersionResponse represents version information
type VersionResponse struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
}

// StatusResponse represents the exporter status response
type StatusResponse struct {
	Running    bool      `json:"running"`
	Uptime     float64   `json:"uptime"`
	CaseCount  int       `json:"case_count"`
	LastUpdate time.Time `json:"last_update,omitempty"`
}

// CaseSummary lists one stored case snapshot without its document body
type CaseSummary struct {
	CaseID    int       `json:"case_id"`
	Collected time.Time `json:"collected"`
	Updated   time.Time `json:"updated"`
	Version   int       `json:"version"`
}

// ConfigResponse represents the configuration display response. Credentials
// are deliberately omitted.
type ConfigResponse struct {
	Exporter *common.ExporterConfig `json:"exporter"`
	Storage  *common.StorageConfig  `json:"storage"`
	Logging  *common.LoggingConfig  `json:"logging"`
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(config *common.Config, storage interfaces.Storage, logger arbor.ILogger) *APIHandlers {
	return &APIHandlers{
		config:    config,
		storage:   storage,
		logger:    logger,
		startTime: time.Now(),
	}
}

// HealthHandler returns system health status
func (h *APIHandlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   common.GetVersion(),
		Build:     common.GetBuild(),
		Uptime:    time.Since(h.startTime).Seconds(),
	}

	health.Services.Database = h.testDatabaseConnection()
	if !health.Services.Database {
		health.Status = "degraded"
	}

	h.writeJSON(w, health)
}

// VersionHandler returns version information
func (h *APIHandlers) VersionHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	h.writeJSON(w, VersionResponse{
		Version: common.GetVersion(),
		Build:   common.GetBuild(),
		Commit:  common.GetGitCommit(),
	})
}

// StatusHandler returns cache status and metrics
func (h *APIHandlers) StatusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	status := StatusResponse{
		Running: true,
		Uptime:  time.Since(h.startTime).Seconds(),
	}

	if count, err := h.storage.CaseCount(); err == nil {
		status.CaseCount = count
	}
	if lastUpdate, err := h.storage.LastUpdate(); err == nil {
		status.LastUpdate = lastUpdate
	}

	h.writeJSON(w, status)
}

// CasesHandler lists the stored case snapshots
func (h *APIHandlers) CasesHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	records, err := h.storage.LoadAllCases()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load cases")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	summaries := make([]CaseSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, CaseSummary{
			CaseID:    record.CaseID,
			Collected: record.Collected,
			Updated:   record.Updated,
			Version:   record.Version,
		})
	}

	h.writeJSON(w, summaries)
}

// InboxHandler returns the latest cached inbox rows
func (h *APIHandlers) InboxHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	rows, err := h.storage.LoadInboxRows()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load inbox rows")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	raw := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		raw = append(raw, row)
	}

	h.writeJSON(w, raw)
}

// ConfigHandler returns the non-secret configuration
func (h *APIHandlers) ConfigHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	h.writeJSON(w, ConfigResponse{
		Exporter: &h.config.Exporter,
		Storage:  &h.config.Storage,
		Logging:  &h.config.Logging,
	})
}

func (h *APIHandlers) writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *APIHandlers) testDatabaseConnection() bool {
	_, err := h.storage.CaseCount()
	return err == nil
}

package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"mcx-exporter/internal/common"
	"mcx-exporter/internal/interfaces"
	"mcx-exporter/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

// fakeCollector serves a canned row set without touching the network.
type fakeCollector struct {
	rowSet *models.RowSet
	err    error
}

func (f *fakeCollector) CollectInbox() (*models.Inbox, error) {
	return nil, f.err
}

func (f *fakeCollector) CollectCases() (*models.RowSet, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rowSet, nil
}

func newTestWebServer(t *testing.T) (*webServer, *common.Config) {
	t.Helper()

	dir := t.TempDir()
	cfg := common.DefaultConfig()
	cfg.Exporter.Format = "csv"
	cfg.Exporter.OutputDir = filepath.Join(dir, "out")
	cfg.Storage.DatabasePath = filepath.Join(dir, "test.db")
	cfg.Storage.BackupDir = ""

	store, err := NewStorage(&cfg.Storage)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	service, err := NewWebServer(cfg, store, arbor.NewLogger())
	require.NoError(t, err)

	return service.(*webServer), cfg
}

func TestCollectHandler(t *testing.T) {
	ws, cfg := newTestWebServer(t)

	row := models.NewRow()
	row.Set(models.ColCaseID, 42)
	row.Set(models.ColOwner, "Jo Bloggs")

	ws.newCollector = func() (interfaces.Collector, error) {
		return &fakeCollector{rowSet: &models.RowSet{
			FieldNames: []string{models.ColCaseID, models.ColOwner},
			Rows:       []*models.Row{row},
		}}, nil
	}

	rec := httptest.NewRecorder()
	ws.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/collect", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Cases int    `json:"cases"`
		Path  string `json:"path"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Cases)
	assert.Equal(t, filepath.Join(cfg.Exporter.OutputDir, "cases.csv"), resp.Path)

	// The export actually landed on disk.
	_, err := os.Stat(resp.Path)
	assert.NoError(t, err)
}

func TestCollectHandlerRejectsGet(t *testing.T) {
	ws, _ := newTestWebServer(t)

	rec := httptest.NewRecorder()
	ws.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/collect", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCollectHandlerConnectFailure(t *testing.T) {
	ws, _ := newTestWebServer(t)

	// Default factory: no credentials configured.
	rec := httptest.NewRecorder()
	ws.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/collect", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "instance is required")
}

func TestCollectHandlerCollectionFailure(t *testing.T) {
	ws, _ := newTestWebServer(t)

	ws.newCollector = func() (interfaces.Collector, error) {
		return &fakeCollector{err: common.NewNetworkError("mcx_status", "MCX API returned status 500")}, nil
	}

	rec := httptest.NewRecorder()
	ws.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/collect", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStatusEndpointReflectsCache(t *testing.T) {
	ws, _ := newTestWebServer(t)

	require.NoError(t, ws.storage.SaveCase(&interfaces.CaseRecord{
		CaseID:   42,
		Document: json.RawMessage(`{}`),
	}))

	rec := httptest.NewRecorder()
	ws.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		Running   bool `json:"running"`
		CaseCount int  `json:"case_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 1, status.CaseCount)
}

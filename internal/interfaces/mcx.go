package interfaces

import (
	"context"
	"encoding/json"
	"time"

	"mcx-exporter/internal/models"
)

// CaseClient talks to the MCX case-management endpoint. Authenticate must
// succeed before the other calls; the session token is injected into every
// subsequent request body.
type CaseClient interface {
	Authenticate() error
	GetCaseInbox() ([]json.RawMessage, error)
	GetCase(caseID int) (*models.CaseViewDocument, json.RawMessage, error)
}

// Collector drives one export run end to end: fetch, normalize, persist.
type Collector interface {
	CollectInbox() (*models.Inbox, error)
	CollectCases() (*models.RowSet, error)
}

// Storage persists collected case snapshots and inbox rows between runs.
type Storage interface {
	SaveCase(record *CaseRecord) error
	LoadCase(caseID int) (*CaseRecord, error)
	LoadAllCases() ([]*CaseRecord, error)
	SaveInboxRows(rows [][]byte) error
	LoadInboxRows() ([][]byte, error)
	CaseCount() (int, error)
	LastUpdate() (time.Time, error)
	Backup() error
	CleanupOldData() error
	Close() error
}

// CaseRecord is one stored case snapshot: the raw case-view document plus
// collection bookkeeping.
type CaseRecord struct {
	CaseID    int             `json:"case_id"`
	Document  json.RawMessage `json:"document"`
	Collected time.Time       `json:"collected"`
	Updated   time.Time       `json:"updated"`
	Version   int             `json:"version"`
}

type WebService interface {
	Start(ctx context.Context) error
	Stop() error
	IsRunning() bool
}

package services

import (
	"fmt"
	"sort"

	"mcx-exporter/internal/common"
	"mcx-exporter/internal/interfaces"
	"mcx-exporter/internal/models"

	"github.com/ternarybob/arbor"
)

type collector struct {
	config  *common.Config
	client  interfaces.CaseClient
	storage interfaces.Storage
	logger  arbor.ILogger
}

// NewCollector wires the API client and local storage into one export run.
func NewCollector(config *common.Config, client interfaces.CaseClient, storage interfaces.Storage, logger arbor.ILogger) interfaces.Collector {
	return &collector{
		config:  config,
		client:  client,
		storage: storage,
		logger:  logger,
	}
}

// CollectInbox fetches and flattens the case inbox, caching the raw rows.
func (c *collector) CollectInbox() (*models.Inbox, error) {
	rawRows, err := c.client.GetCaseInbox()
	if err != nil {
		return nil, err
	}

	inbox, err := models.NewInbox(rawRows)
	if err != nil {
		return nil, err
	}

	stored := make([][]byte, len(rawRows))
	for i, raw := range rawRows {
		stored[i] = raw
	}
	if err := c.storage.SaveInboxRows(stored); err != nil {
		return nil, err
	}

	c.logger.Info().
		Int("rows", len(inbox.Rows)).
		Int("fields", len(inbox.FieldNames)).
		Msg("Collected case inbox")

	return inbox, nil
}

// CollectCases fetches the inbox, then each case in inbox order. Cases are
// fetched and normalized one at a time; a case that fails normalization
// aborts the run rather than emitting a partial row.
func (c *collector) CollectCases() (*models.RowSet, error) {
	inbox, err := c.CollectInbox()
	if err != nil {
		return nil, err
	}

	rows := make([]*models.Row, 0, len(inbox.IDs))
	for _, caseID := range inbox.IDs {
		doc, raw, err := c.client.GetCase(caseID)
		if err != nil {
			return nil, err
		}

		mcxCase, err := models.NewCase(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to normalize case %d: %w", caseID, err)
		}

		if err := c.storage.SaveCase(&interfaces.CaseRecord{
			CaseID:   caseID,
			Document: raw,
		}); err != nil {
			return nil, err
		}

		rows = append(rows, mcxCase.Row())

		c.logger.Info().
			Int("case_id", caseID).
			Str("status", mcxCase.Status).
			Msg("Collected case")
	}

	// Expired snapshots are pruned opportunistically after each run; a
	// cleanup failure does not fail the export.
	if err := c.storage.CleanupOldData(); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to clean up expired case snapshots")
	}

	return &models.RowSet{
		FieldNames: unionFieldNames(rows),
		Rows:       rows,
	}, nil
}

// unionFieldNames collects the distinct field names across all rows, sorted,
// since case rows have heterogeneous columns.
func unionFieldNames(rows []*models.Row) []string {
	seen := make(map[string]bool)
	var names []string
	for _, row := range rows {
		for _, name := range row.Fields() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

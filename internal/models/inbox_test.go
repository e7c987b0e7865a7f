package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawRows(rows ...string) []json.RawMessage {
	raw := make([]json.RawMessage, len(rows))
	for i, row := range rows {
		raw[i] = json.RawMessage(row)
	}
	return raw
}

func TestNewInbox(t *testing.T) {
	inbox, err := NewInbox(rawRows(
		`{"CaseId": 42, "AlertName": "Detractor", "Columns": [
			{"ColumnName": "Status", "ColumnValue": "Open"},
			{"ColumnName": "Owner", "ColumnValue": "Jo Bloggs"}
		]}`,
		`{"CaseId": 43, "AlertName": "Promoter", "Region": "North", "Columns": [
			{"ColumnName": "Status", "ColumnValue": "Closed"}
		]}`,
	))
	require.NoError(t, err)

	assert.Equal(t, []int{42, 43}, inbox.IDs)

	// Field names follow first appearance across rows; nested columns are
	// flattened in place of the Columns key.
	assert.Equal(t, []string{"CaseId", "AlertName", "Status", "Owner", "Region"}, inbox.FieldNames)

	require.Len(t, inbox.Rows, 2)
	assert.Equal(t, 42, inbox.Rows[0].Value("CaseId"))
	assert.Equal(t, "Open", inbox.Rows[0].Value("Status"))
	assert.Equal(t, "Jo Bloggs", inbox.Rows[0].Value("Owner"))

	assert.Equal(t, 43, inbox.Rows[1].Value("CaseId"))
	assert.Equal(t, "Closed", inbox.Rows[1].Value("Status"))
	assert.Equal(t, "North", inbox.Rows[1].Value("Region"))

	// A field missing from a row is simply absent, not empty.
	_, ok := inbox.Rows[1].Get("Owner")
	assert.False(t, ok)
}

func TestNewInboxPreservesDuplicateCases(t *testing.T) {
	inbox, err := NewInbox(rawRows(
		`{"CaseId": 42, "Columns": []}`,
		`{"CaseId": 42, "Columns": []}`,
	))
	require.NoError(t, err)

	assert.Equal(t, []int{42, 42}, inbox.IDs)
	assert.Len(t, inbox.Rows, 2)
}

func TestNewInboxEmpty(t *testing.T) {
	inbox, err := NewInbox(nil)
	require.NoError(t, err)

	assert.Empty(t, inbox.IDs)
	assert.Empty(t, inbox.FieldNames)
	assert.Empty(t, inbox.Rows)
}

func TestNewInboxBadCaseID(t *testing.T) {
	_, err := NewInbox(rawRows(`{"CaseId": "not-a-number"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CaseId")
}

func TestNewInboxNotAnObject(t *testing.T) {
	_, err := NewInbox(rawRows(`[1, 2, 3]`))
	require.Error(t, err)
}

func TestDecodeOrderedObject(t *testing.T) {
	fields, err := decodeOrderedObject(json.RawMessage(`{"b": 1, "a": 2, "c": {"nested": true}}`))
	require.NoError(t, err)

	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.key
	}
	assert.Equal(t, []string{"b", "a", "c"}, keys)
	assert.JSONEq(t, `{"nested": true}`, string(fields[2].raw))
}

package models

import (
	"bytes"
	"encoding/json"

	"mcx-exporter/internal/common"
)

// InboxColumn is one {name, value} pair in an inbox row's nested Columns
// list.
type InboxColumn struct {
	ColumnName  string `json:"ColumnName"`
	ColumnValue string `json:"ColumnValue"`
}

// Inbox is the flattened list view of many cases' summary columns: the case
// ids in row order, every field name in order of first appearance across all
// rows and their nested column lists, and one flat row per inbox entry. Rows
// are not deduplicated or sorted.
type Inbox struct {
	IDs        []int
	FieldNames []string
	Rows       []*Row
}

// NewInbox flattens raw inbox rows. Each row is decoded token by token so
// field discovery follows document order; a Go map would randomize it.
func NewInbox(rawRows []json.RawMessage) (*Inbox, error) {
	inbox := &Inbox{}

	seen := make(map[string]bool)
	addField := func(name string) {
		if !seen[name] {
			seen[name] = true
			inbox.FieldNames = append(inbox.FieldNames, name)
		}
	}

	for _, raw := range rawRows {
		fields, err := decodeOrderedObject(raw)
		if err != nil {
			return nil, common.WrapError(err, common.ErrorTypeParsing, "inbox_row_decode",
				"failed to decode inbox row").WithContext("document", string(raw))
		}

		row := NewRow()
		for _, field := range fields {
			// Special case for the nested list of n columns.
			if field.key == "Columns" {
				var columns []InboxColumn
				if err := json.Unmarshal(field.raw, &columns); err != nil {
					return nil, common.WrapError(err, common.ErrorTypeParsing, "inbox_columns_decode",
						"failed to decode inbox row columns").WithContext("document", string(raw))
				}
				for _, column := range columns {
					addField(column.ColumnName)
					row.Set(column.ColumnName, column.ColumnValue)
				}
				continue
			}

			addField(field.key)

			if field.key == "CaseId" {
				var caseID int
				if err := json.Unmarshal(field.raw, &caseID); err != nil {
					return nil, common.WrapError(err, common.ErrorTypeParsing, "inbox_case_id",
						"inbox row CaseId is not an integer").WithContext("document", string(raw))
				}
				inbox.IDs = append(inbox.IDs, caseID)
				row.Set(field.key, caseID)
				continue
			}

			var value interface{}
			if err := json.Unmarshal(field.raw, &value); err != nil {
				return nil, common.WrapError(err, common.ErrorTypeParsing, "inbox_field_decode",
					"failed to decode inbox row field").WithContext("document", string(raw))
			}
			row.Set(field.key, value)
		}

		inbox.Rows = append(inbox.Rows, row)
	}

	return inbox, nil
}

type orderedField struct {
	key string
	raw json.RawMessage
}

// decodeOrderedObject walks a JSON object with a token decoder, returning
// its key/value pairs in document order.
func decodeOrderedObject(raw json.RawMessage) ([]orderedField, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, common.NewParsingError("not_an_object", "expected a JSON object")
	}

	var fields []orderedField
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, common.NewParsingError("bad_object_key", "expected a string object key")
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		fields = append(fields, orderedField{key: key, raw: value})
	}

	return fields, nil
}

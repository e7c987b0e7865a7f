package models

import (
	"bytes"
	"encoding/json"
)

// Row is an insertion-order-preserving field→value mapping, the flattened
// export form of a case or inbox entry. Setting an existing field replaces
// its value but keeps the field's original position (last write wins).
type Row struct {
	fields []string
	values map[string]interface{}
}

func NewRow() *Row {
	return &Row{values: make(map[string]interface{})}
}

// Set stores a value under name, appending name to the field order on first
// appearance.
func (r *Row) Set(name string, value interface{}) {
	if _, ok := r.values[name]; !ok {
		r.fields = append(r.fields, name)
	}
	r.values[name] = value
}

// Get returns the value for name and whether the field is present.
func (r *Row) Get(name string) (interface{}, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Value returns the value for name, or nil when absent.
func (r *Row) Value(name string) interface{} {
	return r.values[name]
}

// Fields returns the field names in insertion order.
func (r *Row) Fields() []string {
	return r.fields
}

func (r *Row) Len() int {
	return len(r.fields)
}

// MarshalJSON emits the row as a JSON object with fields in insertion order.
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(r.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RowSet pairs an ordered field list with the rows it describes; this is the
// shape handed to the export sinks.
type RowSet struct {
	FieldNames []string
	Rows       []*Row
}

// ABOUTME: Ordered, immutable schema-less document handed to the presentation engine
// ABOUTME: Preserves document key order through JSON decoding and encoding
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"time"
)

// Field is one key/value pair of a Record.
type Field struct {
	Key   string
	Value any
}

// Record is a schema-less document. The zero value is an empty document.
// A Record never changes after construction; With returns a modified copy.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord builds a Record from pairs in order. A repeated key keeps its
// first position and its last value.
func NewRecord(fields ...Field) Record {
	r := Record{
		keys:   make([]string, 0, len(fields)),
		values: make(map[string]any, len(fields)),
	}
	for _, f := range fields {
		if _, exists := r.values[f.Key]; !exists {
			r.keys = append(r.keys, f.Key)
		}
		r.values[f.Key] = f.Value
	}
	return r
}

// RecordFromMap converts a Go map. Maps carry no order, so keys are sorted.
func RecordFromMap(m map[string]any) Record {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, len(keys))
	for i, k := range keys {
		fields[i] = Field{Key: k, Value: m[k]}
	}
	return NewRecord(fields...)
}

// AsRecord accepts anything shaped like a mapping with string keys.
func AsRecord(v any) (Record, bool) {
	switch x := v.(type) {
	case Record:
		return x, true
	case *Record:
		if x == nil {
			return Record{}, false
		}
		return *x, true
	case map[string]any:
		if x == nil {
			return Record{}, false
		}
		return RecordFromMap(x), true
	case nil:
		return Record{}, false
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return Record{}, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String || rv.IsNil() {
		return Record{}, false
	}

	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return RecordFromMap(m), true
}

// Keys returns the field names in document order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.keys)
}

// Get returns a field value and whether the key exists.
func (r Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Fields returns the key/value pairs in document order.
func (r Record) Fields() []Field {
	out := make([]Field, len(r.keys))
	for i, k := range r.keys {
		out[i] = Field{Key: k, Value: r.values[k]}
	}
	return out
}

// With returns a copy with key set to value.
func (r Record) With(key string, value any) Record {
	return NewRecord(append(r.Fields(), Field{Key: key, Value: value})...)
}

// Without returns a copy without key.
func (r Record) Without(key string) Record {
	fields := make([]Field, 0, len(r.keys))
	for _, f := range r.Fields() {
		if f.Key != key {
			fields = append(fields, f)
		}
	}
	return NewRecord(fields...)
}

// String returns the field value when it is a non-empty string.
func (r Record) String(key string) string {
	if s, ok := r.values[key].(string); ok {
		return s
	}
	return ""
}

// MarshalJSON writes the document with keys in order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping key order. Nested objects
// become Records and serialized timestamps become Timestamp values.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	v, err := decodeValue(dec)
	if err != nil {
		return err
	}
	rec, ok := v.(Record)
	if !ok {
		return fmt.Errorf("expected JSON object, got %T", v)
	}
	*r = rec
	return nil
}

// ParseRecords decodes either a single JSON object or an array of objects.
func ParseRecords(data []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case Record:
		return []Record{x}, nil
	case []any:
		out := make([]Record, 0, len(x))
		for i, item := range x {
			rec, ok := item.(Record)
			if !ok {
				return nil, fmt.Errorf("element %d: expected JSON object, got %T", i, item)
			}
			out = append(out, rec)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected JSON object or array, got %T", v)
	}
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	default:
		return t, nil
	}
}

func decodeObject(dec *json.Decoder) (any, error) {
	var fields []Field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Key: key, Value: val})
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, err
	}
	rec := NewRecord(fields...)
	if ts, ok := timestampFromRecord(rec); ok {
		return ts, nil
	}
	return rec, nil
}

func decodeArray(dec *json.Decoder) (any, error) {
	out := []any{}
	for dec.More() {
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, err
	}
	return out, nil
}

// Timestamp is the serialized form of a document-store timestamp.
type Timestamp struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int32 `json:"nanoseconds"`
}

// TimestampOf converts a time to its serialized form.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanoseconds: int32(t.Nanosecond())}
}

// Time materializes the timestamp.
func (ts Timestamp) Time() time.Time {
	return time.Unix(ts.Seconds, int64(ts.Nanoseconds))
}

func timestampFromRecord(r Record) (Timestamp, bool) {
	if r.Len() != 2 {
		return Timestamp{}, false
	}
	for _, names := range [][2]string{{"seconds", "nanoseconds"}, {"_seconds", "_nanoseconds"}} {
		sec, ok1 := r.values[names[0]].(float64)
		nsec, ok2 := r.values[names[1]].(float64)
		if ok1 && ok2 {
			return Timestamp{Seconds: int64(sec), Nanoseconds: int32(nsec)}, true
		}
	}
	return Timestamp{}, false
}

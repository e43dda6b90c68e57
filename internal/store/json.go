package store

import (
	"encoding/json"
	"log/slog"
)

// Explicit jsonb codec for the storage boundary: encode-on-write,
// decode-on-read. A row with an unparsable column yields an empty value and a
// log line instead of failing the whole query.

func encodeMap(m map[string]any) (any, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func decodeMap(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		slog.Error("unparsable jsonb map column", "error", err)
		return map[string]any{}
	}
	return m
}

func encodeStrings(s []string) ([]byte, error) {
	if s == nil {
		s = []string{}
	}
	return json.Marshal(s)
}

func decodeStrings(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var s []string
	if err := json.Unmarshal(raw, &s); err != nil {
		slog.Error("unparsable jsonb array column", "error", err)
		return []string{}
	}
	return s
}

func encodeValue(v json.RawMessage) any {
	if len(v) == 0 {
		return nil
	}
	return []byte(v)
}

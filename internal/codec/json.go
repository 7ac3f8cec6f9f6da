// Copyright (c) 2026 The simpler-state Authors
//
// json.go — JSON codec wrapping encoding/json; the default serialization
// pipeline. Mirrors the stringify/parse round-trip of browser storage:
// scalars keep their literal form ("1", "true", `"hi"`).

package codec

import "encoding/json"

// JSON is the default codec using standard library encoding/json.
type JSON struct{}

// Encode serializes v to its JSON text.
func (JSON) Encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode deserializes JSON text into v.
func (JSON) Decode(raw string, v any) error {
	return json.Unmarshal([]byte(raw), v)
}

// Name returns "json".
func (JSON) Name() string { return "json" }

// Default is the default codec instance.
var Default Codec = JSON{}

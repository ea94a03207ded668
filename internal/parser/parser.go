// Package parser turns raw generation output into validated plant records.
//
// The generation service is non-deterministic and sometimes returns malformed
// text, so every step here fails soft: bad input yields fewer (or zero)
// records and a log line, never an error.
package parser

import (
	"encoding/json"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/starford/sprout/internal/models"
)

// Parse strips Markdown code-fence markers from text and decodes the rest as
// a JSON array. It returns an empty slice when the payload is not an array.
func Parse(text string) []any {
	cleaned := strings.TrimSpace(stripFences(text))

	var raw any
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		slog.Warn("parse generation response failed", slog.String("error", err.Error()))
		return []any{}
	}
	items, ok := raw.([]any)
	if !ok {
		slog.Warn("generation response is not a JSON array")
		return []any{}
	}
	return items
}

// stripFences removes every "```json" and then every remaining "```".
func stripFences(text string) string {
	return strings.ReplaceAll(strings.ReplaceAll(text, "```json", ""), "```", "")
}

// Valid reports whether raw is an object with truthy name, scientificName
// and benefits. It is a presence check only.
func Valid(raw any) bool {
	obj, ok := raw.(map[string]any)
	if !ok || obj == nil {
		return false
	}
	return truthy(obj["name"]) && truthy(obj["scientificName"]) && truthy(obj["benefits"])
}

// Filter keeps the records accepted by Valid, preserving order.
func Filter(items []any) []any {
	out := make([]any, 0, len(items))
	for _, it := range items {
		if Valid(it) {
			out = append(out, it)
		}
	}
	return out
}

// careFields are displayed as text. Numbers and bools are rendered as text,
// anything else is dropped from the record.
var careFields = []string{"light", "water", "humidity", "temperature"}

// optionalFields are dropped from the record unless they hold a string.
var optionalFields = []string{"image", "addedAt"}

// Decode converts validated raw records to typed plants. Optional fields are
// read leniently; a record is dropped only when a required field does not fit
// the model.
func Decode(items []any) []models.Plant {
	out := make([]models.Plant, 0, len(items))
	for _, it := range items {
		data, err := json.Marshal(lenient(it))
		if err != nil {
			continue
		}
		var p models.Plant
		if err := json.Unmarshal(data, &p); err != nil {
			slog.Warn("drop malformed plant record", slog.String("error", err.Error()))
			continue
		}
		out = append(out, p)
	}
	return out
}

// Plants runs Parse, Filter and Decode over a generation payload.
func Plants(text string) []models.Plant {
	return Decode(Filter(Parse(text)))
}

// lenient returns a copy of raw with optional fields coerced or removed.
func lenient(raw any) any {
	obj, ok := raw.(map[string]any)
	if !ok {
		return raw
	}
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = v
	}
	for _, k := range careFields {
		v, ok := out[k]
		if !ok {
			continue
		}
		switch x := v.(type) {
		case string:
		case float64:
			out[k] = strconv.FormatFloat(x, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(x)
		default:
			delete(out, k)
		}
	}
	for _, k := range optionalFields {
		if _, ok := out[k].(string); !ok {
			delete(out, k)
		}
	}
	return out
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0 && !math.IsNaN(x)
	default:
		// Arrays and objects are always truthy.
		return true
	}
}

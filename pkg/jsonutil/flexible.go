// Package jsonutil tolerates the type sloppiness of LLM-produced JSON:
// numbers where strings belong, strings where numbers belong.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexibleString converts a raw JSON value to a string, accepting strings,
// numbers, and booleans. Returns "" for null or empty input.
func FlexibleString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		return strVal
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		if numVal == float64(int64(numVal)) {
			return fmt.Sprintf("%d", int64(numVal))
		}
		return fmt.Sprintf("%g", numVal)
	}

	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		return fmt.Sprintf("%t", boolVal)
	}

	return string(raw)
}

// FlexibleInt converts a raw JSON value to an int, accepting numbers and
// numeric strings ("3", "3.0"). Returns the fallback for anything else.
func FlexibleInt(raw json.RawMessage, fallback int) int {
	if len(raw) == 0 || string(raw) == "null" {
		return fallback
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		return int(numVal)
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		strVal = strings.TrimSpace(strVal)
		if n, err := strconv.Atoi(strVal); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(strVal, 64); err == nil {
			return int(f)
		}
	}

	return fallback
}

// FlexibleStringSlice converts a raw JSON value to a string slice, accepting
// arrays of mixed scalars or a single scalar. Returns nil for null/empty.
func FlexibleStringSlice(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var rawItems []json.RawMessage
	if err := json.Unmarshal(raw, &rawItems); err == nil {
		out := make([]string, 0, len(rawItems))
		for _, item := range rawItems {
			if s := FlexibleString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}

	if s := FlexibleString(raw); s != "" {
		return []string{s}
	}
	return nil
}

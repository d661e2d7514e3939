// Package utils holds small parsing helpers shared across the pipeline.
package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// StripFences removes a wrapping markdown code block from model output.
// Classifier responses frequently arrive as ```json ... ``` despite the
// response-format instruction.
func StripFences(s string) string {
	cleaned := strings.TrimSpace(s)
	if strings.HasPrefix(cleaned, "```json") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
		return strings.TrimSpace(cleaned)
	}
	if strings.HasPrefix(cleaned, "```") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		return strings.TrimSpace(cleaned)
	}
	return cleaned
}

// RepairJSON fixes the common defects of model-emitted JSON: single quotes,
// unquoted keys, trailing commas, unclosed brackets.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %v", err)
	}
	return repaired, nil
}

// ParseHJSON parses human-friendly JSON (comments, unquoted strings, optional
// commas) and re-emits standard JSON.
func ParseHJSON(input string) (string, error) {
	var result interface{}
	if err := hjson.Unmarshal([]byte(input), &result); err != nil {
		return "", fmt.Errorf("hjson parse: %v", err)
	}
	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("hjson re-marshal: %v", err)
	}
	return string(out), nil
}

// SmartParse unmarshals model output into schema, escalating through three
// strategies: strict JSON, repaired JSON, then Hjson. The caller treats a
// failure of all three as an unresolved classification, never a run failure.
func SmartParse(input string, schema interface{}) error {
	input = StripFences(input)

	if err := json.Unmarshal([]byte(input), schema); err == nil {
		return nil
	}

	if repaired, err := RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return nil
		}
	}

	if relaxed, err := ParseHJSON(input); err == nil {
		if err := json.Unmarshal([]byte(relaxed), schema); err == nil {
			return nil
		}
	}

	return fmt.Errorf("all parsing strategies failed")
}

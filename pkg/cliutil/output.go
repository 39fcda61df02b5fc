package cliutil

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// WriteJSON writes the given value as JSON to the writer.
// If verbose is true, it pretty-prints with indentation.
func WriteJSON(w io.Writer, v any, verbose bool) error {
	encoder := json.NewEncoder(w)
	if verbose {
		encoder.SetIndent("", "  ")
	}
	// Avoid escaping HTML characters if not strictly necessary,
	// but default is typically fine. Let's keep it standard.
	return encoder.Encode(v)
}

// WriteLLM writes v as a flat, sorted "- key: value" list, the same
// register generateLLMDocs uses for command listings (--format llm):
// plain markdown bullets an agent can parse without a JSON decoder.
func WriteLLM(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var asMap map[string]any
	if err := json.Unmarshal(data, &asMap); err != nil {
		// Not an object (slice, scalar, ...): fall back to a single bullet.
		_, err := fmt.Fprintf(w, "- value: %v\n", v)
		return err
	}

	keys := make([]string, 0, len(asMap))
	for k := range asMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "- %s: %v\n", k, asMap[k]); err != nil {
			return err
		}
	}
	return nil
}

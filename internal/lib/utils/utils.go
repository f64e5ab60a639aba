// Package utils contains small helper functions used across the project.
//
// These are usually generic helpers that don't belong to a specific domain.
package utils

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// FormatJSON renders any Go value as indented JSON.
//
// Values that cannot be encoded (channels, funcs, cycles) return an error
// instead of a partial document.
func FormatJSON(v any) (string, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json: %w", err)
	}
	return string(out), nil
}

// PrintJSON writes "<label> <json>" followed by a newline to w.
//
//	PrintJSON(os.Stdout, "Subject created:", subject)
func PrintJSON(w io.Writer, label string, v any) error {
	body, err := FormatJSON(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, label, body)
	return err
}

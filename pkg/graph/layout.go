package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/gmplayout/pkg/facility"
	"github.com/matzehuels/gmplayout/pkg/pipeline"
)

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a layout to pretty-printed JSON bytes.
func MarshalLayout(l *facility.Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout decodes either layout encoding and validates the result.
func UnmarshalLayout(data []byte) (*facility.Layout, error) {
	var probe struct {
		Nodes json.RawMessage `json:"nodes"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("unmarshal layout: %w", err)
	}
	if probe.Nodes != nil {
		var g Graph
		if err := json.Unmarshal(data, &g); err != nil {
			return nil, fmt.Errorf("unmarshal graph: %w", err)
		}
		return ToLayout(g)
	}

	var l facility.Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("unmarshal layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	return &l, nil
}

// ReadLayout decodes a layout from r.
func ReadLayout(r io.Reader) (*facility.Layout, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return UnmarshalLayout(bytes.TrimSpace(data))
}

// ReadLayoutFile reads a layout from a JSON file.
func ReadLayoutFile(path string) (*facility.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}

// WriteLayout writes l as a layout document.
func WriteLayout(l *facility.Layout, w io.Writer) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// WriteLayoutFile writes l to a JSON file.
func WriteLayoutFile(l *facility.Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// =============================================================================
// Result Serialization API
// =============================================================================

// MarshalResult serializes a generation result to pretty-printed JSON.
func MarshalResult(res *pipeline.Result) ([]byte, error) {
	return json.MarshalIndent(res, "", "  ")
}

// UnmarshalResult decodes a generation result. Its layout is validated.
func UnmarshalResult(data []byte) (*pipeline.Result, error) {
	var res pipeline.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	if res.Layout == nil {
		return nil, fmt.Errorf("result has no layout")
	}
	if err := res.Layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	return &res, nil
}

// WriteResultFile writes a generation result to a JSON file.
func WriteResultFile(res *pipeline.Result, path string) error {
	data, err := MarshalResult(res)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// ReadResultFile reads a generation result from a JSON file.
func ReadResultFile(path string) (*pipeline.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalResult(data)
}

package fetcher

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// RequestedDownload is one entry of yt-dlp's requested_downloads list.
type RequestedDownload struct {
	Filepath string
	Filename string
}

// Path returns filepath, falling back to _filename.
func (d RequestedDownload) Path() string {
	if d.Filepath != "" {
		return d.Filepath
	}
	return d.Filename
}

// Metadata is the subset of yt-dlp's info dictionary the pipeline relies on.
type Metadata struct {
	ID     string
	Ext    string
	Title  string
	Width  int
	Height int
	// Duration is in seconds and only meaningful when DurationKnown is set.
	Duration      float64
	DurationKnown bool

	RequestedDownloads []RequestedDownload
	// Top-level _filename, filename and filepath, in that order.
	InternalFilename string
	Filename         string
	Filepath         string

	// Fields holds the raw top-level values for output template rendering.
	Fields map[string]any
}

// HasDimensions reports whether both width and height are positive.
func (m Metadata) HasDimensions() bool {
	return m.Width > 0 && m.Height > 0
}

// ParseMetadata decodes a --dump-single-json payload. Fields of an unexpected
// type are ignored rather than rejected.
func ParseMetadata(data []byte) (Metadata, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Metadata{}, fmt.Errorf("decode metadata: %w", err)
	}
	if raw == nil {
		return Metadata{}, fmt.Errorf("decode metadata: empty document")
	}

	meta := Metadata{
		ID:               stringField(raw, "id"),
		Ext:              stringField(raw, "ext"),
		Title:            stringField(raw, "title"),
		Width:            intField(raw, "width"),
		Height:           intField(raw, "height"),
		InternalFilename: stringField(raw, "_filename"),
		Filename:         stringField(raw, "filename"),
		Filepath:         stringField(raw, "filepath"),
		Fields:           raw,
	}
	if duration, ok := floatField(raw, "duration"); ok && duration >= 0 {
		meta.Duration = duration
		meta.DurationKnown = true
	}
	if entries, ok := raw["requested_downloads"].([]any); ok {
		for _, entry := range entries {
			fields, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			download := RequestedDownload{
				Filepath: stringField(fields, "filepath"),
				Filename: stringField(fields, "_filename"),
			}
			if download.Path() != "" {
				meta.RequestedDownloads = append(meta.RequestedDownloads, download)
			}
		}
	}
	return meta, nil
}

func stringField(fields map[string]any, key string) string {
	if value, ok := fields[key].(string); ok {
		return value
	}
	return ""
}

func floatField(fields map[string]any, key string) (float64, bool) {
	switch value := fields[key].(type) {
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return 0, false
		}
		return value, true
	case string:
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func intField(fields map[string]any, key string) int {
	value, ok := floatField(fields, key)
	if !ok || value < 0 || value > math.MaxInt32 {
		return 0
	}
	return int(value)
}

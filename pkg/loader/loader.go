// Package loader fetches raw dataset payloads from a URL or a local file and
// decodes them into records.
package loader

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// MaxPayloadSize is the largest dataset payload we will read (32MB).
const MaxPayloadSize = 32 * 1024 * 1024

// Fetcher retrieves the raw JSON payload of a dataset.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface
type FetcherFunc func(ctx context.Context) ([]byte, error)

// Fetch implements Fetcher
func (f FetcherFunc) Fetch(ctx context.Context) ([]byte, error) {
	return f(ctx)
}

// NewFetcher returns an HTTP fetcher for http(s) locations and a file
// fetcher for everything else.
func NewFetcher(location string, noCache bool) Fetcher {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return &HTTPFetcher{URL: location, NoCache: noCache}
	}
	return &FileFetcher{Path: location}
}

// FileFetcher reads a dataset from disk. The format is chosen by extension:
// .json, .jsonc (comments allowed), .yaml/.yml and .jsonl (one record per
// line). Every format is normalised to a JSON payload.
type FileFetcher struct {
	Path string
}

// Fetch implements Fetcher
func (f *FileFetcher) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(f.Path); os.IsNotExist(err) {
		return nil, fmt.Errorf("no dataset found at %s", f.Path)
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	if len(data) > MaxPayloadSize {
		return nil, fmt.Errorf("dataset %s exceeds %d bytes", f.Path, MaxPayloadSize)
	}

	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".jsonc":
		return jsonc.ToJSON(data), nil
	case ".yaml", ".yml":
		return yamlToJSON(data)
	case ".jsonl":
		return jsonlToJSON(data)
	default:
		return data, nil
	}
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse yaml dataset: %w", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert yaml dataset: %w", err)
	}
	return out, nil
}

// jsonlToJSON folds a JSONL file into a JSON array. Malformed lines are
// skipped so one bad row does not lose the whole dataset.
func jsonlToJSON(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	scanner := bufio.NewScanner(bytes.NewReader(data))
	// Rows are small, but allow long lines anyway
	const maxCapacity = 1024 * 1024
	scanner.Buffer(make([]byte, 0, 64*1024), maxCapacity)

	first := true
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		buf.Write(line)
		first = false
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading jsonl dataset: %w", err)
	}

	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// DecodeArray decodes a JSON array payload into records. A payload that is
// valid JSON but not an array yields no records and no error. Elements that
// do not decode into T are skipped.
func DecodeArray[T any](payload []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty payload")
	}
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("payload is not valid json")
	}
	if trimmed[0] != '[' {
		return []T{}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode array: %w", err)
	}

	records := make([]T, 0, len(raw))
	for _, elem := range raw {
		var rec T
		if err := json.Unmarshal(elem, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

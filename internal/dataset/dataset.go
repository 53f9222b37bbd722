// Package dataset downloads and parses pitch CSV files.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/pitchmap/internal/model"
	"github.com/verte-zerg/pitchmap/internal/query"
)

// File describes a downloaded CSV in the cache directory.
type File struct {
	URL  string
	Path string
}

// MissingColumnsError lists required columns absent from a header.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("dataset is missing required columns: %s", strings.Join(e.Columns, ", "))
}

// Unwrap lets callers match query.ErrMissingColumn.
func (e *MissingColumnsError) Unwrap() error {
	return query.ErrMissingColumn
}

// Fetch downloads url into cacheDir as name.csv.
func Fetch(ctx context.Context, url, cacheDir, name string) (File, error) {
	if url == "" {
		return File{}, fmt.Errorf("dataset url is required")
	}
	if cacheDir == "" {
		return File{}, fmt.Errorf("cache directory is required")
	}
	if name == "" {
		return File{}, fmt.Errorf("dataset name is required")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return File{}, fmt.Errorf("failed to create cache dir: %w", err)
	}

	resp, err := httpRequest(ctx, url)
	if err != nil {
		return File{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return File{}, fmt.Errorf("unexpected dataset status: %s", resp.Status)
	}

	tmpFile, err := os.CreateTemp(cacheDir, "dataset-*.csv")
	if err != nil {
		return File{}, fmt.Errorf("failed to create temp dataset: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return File{}, fmt.Errorf("failed to download dataset: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return File{}, fmt.Errorf("failed to close temp dataset: %w", err)
	}
	destPath := filepath.Join(cacheDir, name+".csv")
	if err := os.Rename(tmpPath, destPath); err != nil {
		return File{}, fmt.Errorf("failed to move dataset into cache: %w", err)
	}
	return File{URL: url, Path: destPath}, nil
}

func httpRequest(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "pitchmap")
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// LoadFile parses a CSV file from disk.
func LoadFile(path string) (*query.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only dataset.
			_ = cerr
		}
	}()
	return Parse(file)
}

// Parse reads a pitch CSV. Required columns must be present; descriptive
// columns are optional and become NaN when absent or blank.
func Parse(r io.Reader) (*query.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dataset is empty")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	if err := Validate(index, model.RequiredColumns); err != nil {
		return nil, err
	}

	columns := make([]string, 0, len(model.RequiredColumns)+len(model.DescriptiveColumns))
	columns = append(columns, model.RequiredColumns...)
	for _, col := range model.DescriptiveColumns {
		if _, ok := index[col]; ok {
			columns = append(columns, col)
		}
	}

	var rows []model.Observation
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}
		obs, err := parseRecord(record, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, obs)
	}
	return query.NewTable(columns, rows), nil
}

// Validate checks that every required column is present in the header index.
func Validate(index map[string]int, required []string) error {
	var missing []string
	for _, col := range required {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}
	return nil
}

func parseRecord(record []string, index map[string]int) (model.Observation, error) {
	text := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	num := func(col string) (float64, error) {
		raw := text(col)
		if raw == "" || strings.EqualFold(raw, "nan") || strings.EqualFold(raw, "na") {
			return math.NaN(), nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q", col, raw)
		}
		return v, nil
	}

	obs := model.Observation{
		PitchType:  text(model.ColPitchType),
		PlayerName: text(model.ColPlayerName),
		Throws:     text(model.ColThrows),
	}
	targets := []struct {
		col string
		dst *float64
	}{
		{model.ColArmAngle, &obs.ArmAngle},
		{model.ColHB, &obs.HB},
		{model.ColIVB, &obs.IVB},
		{model.ColReleaseSpeed, &obs.ReleaseSpeed},
		{model.ColReleaseSpinRate, &obs.ReleaseSpinRate},
		{model.ColXWOBA, &obs.XWOBA},
		{model.ColReleaseExtension, &obs.ReleaseExtension},
		{model.ColReleasePosZ, &obs.ReleasePosZ},
	}
	for _, t := range targets {
		v, err := num(t.col)
		if err != nil {
			return model.Observation{}, err
		}
		*t.dst = v
	}
	return obs, nil
}

package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/pitchmap/internal/model"
)

func TestTextTableAlignsColumns(t *testing.T) {
	headers := []string{"Pitch", "League", "HB"}
	rows := [][]string{
		{"Slider", "1204", "-3.1"},
		{"Sweeper", "87", "12.0"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := newTextTable(headers, rows, rightAlign).lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Pitch   League   HB" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Slider    1204 -3.1" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Sweeper     87 12.0" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestTextTableWideCells(t *testing.T) {
	lines := newTextTable([]string{"Type", "HB"}, [][]string{{"カーブ", "1.0"}}, map[int]bool{1: true}).lines()
	if lines[0] != "Type    HB" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "カーブ 1.0" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
}

func TestRenderDatasets(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderDatasets(&buf, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "No datasets found.\n" {
		t.Fatalf("unexpected empty output: %q", buf.String())
	}

	buf.Reset()
	infos := []model.DatasetInfo{
		{Name: "league", Rows: 1200, SourceURL: "https://example.com/a.csv", FetchedAt: time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)},
		{Name: "rookies", Rows: 87, SourceURL: "https://example.com/b.csv", FetchedAt: time.Date(2024, 10, 2, 12, 0, 0, 0, time.UTC)},
	}
	if err := RenderDatasets(&buf, infos); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Name    Pitches") {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "rookies      87") {
		t.Fatalf("unexpected row: %q", lines[2])
	}
}

package dataset

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/verte-zerg/pitchmap/internal/model"
	"github.com/verte-zerg/pitchmap/internal/query"
)

const sampleCSV = `pitch_type,player_name,arm_angle,HB,iVB,p_throws,release_speed,estimated_woba_using_speedangle
Fastball,"Skenes, Paul",42.1,-9.5,17.2,R,99.1,
Slider,"Skenes, Paul",41.8,4.2,1.1,R,86.0,0.210
Fastball,"Sale, Chris",20.5,13.0,12.4,L,94.8,nan
`

func TestParse(t *testing.T) {
	tbl, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tbl.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", tbl.Len())
	}
	row := tbl.Row(0)
	if row.PlayerName != "Skenes, Paul" || row.Throws != "R" || row.ArmAngle != 42.1 || row.IVB != 17.2 {
		t.Fatalf("unexpected first row: %+v", row)
	}
	if !math.IsNaN(row.XWOBA) {
		t.Fatalf("expected blank xwOBA to be NaN, got %v", row.XWOBA)
	}
	if !math.IsNaN(tbl.Row(2).XWOBA) {
		t.Fatalf("expected nan literal to parse as NaN")
	}
	if !math.IsNaN(row.ReleaseSpinRate) {
		t.Fatalf("expected absent column to be NaN")
	}
	if !tbl.HasColumn(model.ColReleaseSpeed) || tbl.HasColumn(model.ColReleaseSpinRate) {
		t.Fatalf("unexpected header columns: %v", tbl.Columns())
	}
	mean, err := query.ComputeMean(tbl, model.ColXWOBA)
	if err != nil || mean != 0.210 {
		t.Fatalf("expected xwOBA mean 0.210, got %v (%v)", mean, err)
	}
}

func TestParseMissingColumns(t *testing.T) {
	_, err := Parse(strings.NewReader("pitch_type,player_name,HB\nFastball,A,1\n"))
	var missing *MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnsError, got %v", err)
	}
	want := []string{model.ColThrows, model.ColArmAngle, model.ColIVB}
	if strings.Join(missing.Columns, ",") != strings.Join(want, ",") {
		t.Fatalf("expected missing %v, got %v", want, missing.Columns)
	}
	if !errors.Is(err, query.ErrMissingColumn) {
		t.Fatalf("expected error to match query.ErrMissingColumn")
	}
}

func TestParseInvalidNumber(t *testing.T) {
	input := "pitch_type,player_name,arm_angle,HB,iVB,p_throws\nFastball,A,high,1,2,R\n"
	_, err := Parse(strings.NewReader(input))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line 2 error, got %v", err)
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := Parse(strings.NewReader("")); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(sampleCSV))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	file, err := Fetch(context.Background(), srv.URL+"/pitches.csv", dir, "league")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	data, err := os.ReadFile(file.Path)
	if err != nil {
		t.Fatalf("read cached file: %v", err)
	}
	if string(data) != sampleCSV {
		t.Fatalf("cached content mismatch")
	}
	tbl, err := LoadFile(file.Path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tbl.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", tbl.Len())
	}

	if _, err := Fetch(context.Background(), srv.URL+"/missing", dir, "gone"); err == nil {
		t.Fatalf("expected error for 404")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the cached dataset in dir, got %d entries", len(entries))
	}
}

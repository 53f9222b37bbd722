package stats

import (
	"errors"
	"math"
	"testing"

	"github.com/verte-zerg/pitchmap/internal/model"
	"github.com/verte-zerg/pitchmap/internal/query"
	"github.com/verte-zerg/pitchmap/internal/session"
)

func leagueTable() *query.Table {
	rows := []model.Observation{
		model.NewObservation("Fastball", "Able", "R", 20, 5, 15),
		model.NewObservation("Fastball", "Able", "R", 20, 7, 16),
		model.NewObservation("Slider", "Able", "R", 20, -3, 2),
		model.NewObservation("Fastball", "Baker", "R", 22, 8, 14),
		model.NewObservation("Fastball", "Cruz", "R", 30, 9, 18),
		model.NewObservation("Fastball", "Diaz", "L", 20, -6, 16),
		model.NewObservation("Slider", "Baker", "R", 21, -4, 1),
		model.NewObservation("Changeup", "Evans", "R", 40, 10, 5),
	}
	return query.NewTable(model.RequiredColumns, rows)
}

func TestBuildSinglePitch(t *testing.T) {
	report, err := BuildSinglePitch(leagueTable(), SinglePitchParams{PitchType: "Fastball", Pitcher: "Able", Radius: 3})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if report.Range != (ArmAngleRange{Lo: 17, Hi: 23}) {
		t.Fatalf("unexpected range: %+v", report.Range)
	}
	if report.Throws != "R" {
		t.Fatalf("expected pitcher handedness R, got %q", report.Throws)
	}
	if report.LeagueCount != 3 || report.League.Len() != 3 {
		t.Fatalf("expected 3 league rows, got %d", report.LeagueCount)
	}
	card := report.Pitcher
	if card.Count != 2 || card.HB != 6 || card.IVB != 15.5 || card.ArmAngle != 20 {
		t.Fatalf("unexpected card: %+v", card)
	}
}

func TestBuildSinglePitchNotices(t *testing.T) {
	tbl := leagueTable()
	_, err := BuildSinglePitch(tbl, SinglePitchParams{PitchType: "Fastball", Pitcher: "Nobody"})
	if !errors.Is(err, ErrNoPitcherData) || !errors.Is(err, query.ErrEmptyResult) {
		t.Fatalf("expected no pitcher data, got %v", err)
	}
	_, err = BuildSinglePitch(tbl, SinglePitchParams{PitchType: "Fastball", Pitcher: "Able", Throws: "S"})
	if !errors.Is(err, ErrNoLeagueData) || !errors.Is(err, query.ErrEmptyResult) {
		t.Fatalf("expected no league data, got %v", err)
	}
}

func TestBuildArsenal(t *testing.T) {
	report, err := BuildArsenal(leagueTable(), ArsenalParams{Pitcher: "Able"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if report.Throws != "R" || report.ArmAngle != 20 {
		t.Fatalf("unexpected report header: %+v", report)
	}
	if len(report.Overlays) != 2 {
		t.Fatalf("expected 2 overlays, got %d", len(report.Overlays))
	}
	fb, sl := report.Overlays[0], report.Overlays[1]
	if fb.PitchType != "Fastball" || sl.PitchType != "Slider" {
		t.Fatalf("expected first-seen order, got %s, %s", fb.PitchType, sl.PitchType)
	}
	if fb.LeagueCount != 3 || !fb.HasMarker || fb.Marker.X != 6 || fb.Marker.Y != 15.5 {
		t.Fatalf("unexpected fastball overlay: %+v", fb)
	}
	if sl.LeagueCount != 2 || sl.Marker.X != -3 || sl.Marker.Y != 2 {
		t.Fatalf("unexpected slider overlay: %+v", sl)
	}
}

func TestBuildCustomPitcher(t *testing.T) {
	list := session.New()
	list.Add(model.UserPitch{PitchType: "Slider", HB: -2, IVB: 3})
	list.Add(model.UserPitch{PitchType: "Changeup", HB: 12, IVB: 6})
	list.Add(model.UserPitch{PitchType: "Slider", HB: -4, IVB: 1})

	report, err := BuildCustomPitcher(leagueTable(), list, CustomParams{Throws: "R", MinAngle: 15, MaxAngle: 25})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if report.LeagueCount != 5 {
		t.Fatalf("expected 5 league rows, got %d", report.LeagueCount)
	}
	if len(report.Overlays) != 2 || report.Overlays[0].PitchType != "Slider" || report.Overlays[1].PitchType != "Changeup" {
		t.Fatalf("unexpected overlays: %+v", report.Overlays)
	}
	sl := report.Overlays[0]
	if sl.LeagueCount != 2 || sl.Marker.X != -3 || sl.Marker.Y != 2 || len(sl.UserPitches) != 2 {
		t.Fatalf("unexpected slider overlay: %+v", sl)
	}
	if len(report.Missing) != 1 || report.Missing[0] != "Changeup" {
		t.Fatalf("expected Changeup to be missing, got %v", report.Missing)
	}
}

func TestBuildCustomPitcherEmptyList(t *testing.T) {
	report, err := BuildCustomPitcher(leagueTable(), session.New(), CustomParams{Throws: "R", MinAngle: 15, MaxAngle: 25})
	if !errors.Is(err, ErrNoUserPitches) {
		t.Fatalf("expected ErrNoUserPitches, got %v", err)
	}
	if report.LeagueCount != 5 || len(report.Overlays) != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestBuildCustomPitcherArmAngleMatch(t *testing.T) {
	list := session.New()
	list.Add(model.UserPitch{PitchType: "Slider", HB: -2, IVB: 3})
	angle := 21.0

	approx, err := BuildCustomPitcher(leagueTable(), list, CustomParams{Throws: "R", ArmAngle: &angle, Match: model.MatchApprox, Tolerance: 1})
	if err != nil {
		t.Fatalf("approx: %v", err)
	}
	if approx.LeagueCount != 5 || approx.Overlays[0].LeagueCount != 2 {
		t.Fatalf("unexpected approx counts: %d, %d", approx.LeagueCount, approx.Overlays[0].LeagueCount)
	}

	exact, err := BuildCustomPitcher(leagueTable(), list, CustomParams{Throws: "R", ArmAngle: &angle, Match: model.MatchExact})
	if err != nil {
		t.Fatalf("exact: %v", err)
	}
	if exact.LeagueCount != 1 || exact.Overlays[0].LeagueCount != 1 {
		t.Fatalf("unexpected exact counts: %d, %d", exact.LeagueCount, exact.Overlays[0].LeagueCount)
	}

	off := 45.0
	if _, err := BuildCustomPitcher(leagueTable(), list, CustomParams{Throws: "R", ArmAngle: &off, Match: model.MatchExact}); !errors.Is(err, ErrNoLeagueData) {
		t.Fatalf("expected no league data, got %v", err)
	}
}

func TestBuildCustomPitcherPerPitchArmAngle(t *testing.T) {
	angle := 21.0
	list := session.New()
	list.Add(model.UserPitch{PitchType: "Slider", HB: -2, IVB: 3, ArmAngle: &angle})

	report, err := BuildCustomPitcher(leagueTable(), list, CustomParams{Throws: "R", MinAngle: 15, MaxAngle: 25, Match: model.MatchExact})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if report.LeagueCount != 5 {
		t.Fatalf("expected range league of 5, got %d", report.LeagueCount)
	}
	if report.Overlays[0].LeagueCount != 1 {
		t.Fatalf("expected exact per-pitch match of 1, got %d", report.Overlays[0].LeagueCount)
	}
}

func sliderTable() *query.Table {
	rows := []model.Observation{
		model.NewObservation("Slider", "Able", "R", 10, -3, 2),
		model.NewObservation("Slider", "Baker", "R", 25, -4, 1),
		model.NewObservation("Slider", "Cruz", "R", 40, -6, 0),
	}
	return query.NewTable(model.RequiredColumns, rows)
}

func TestBuildCustomPitcherUnionOfPitchAngles(t *testing.T) {
	low, high := 10.0, 40.0
	list := session.New()
	list.Add(model.UserPitch{PitchType: "Slider", HB: -2, IVB: 3, ArmAngle: &low})
	list.Add(model.UserPitch{PitchType: "Slider", HB: -6, IVB: 1, ArmAngle: &high})

	report, err := BuildCustomPitcher(sliderTable(), list, CustomParams{Throws: "R", MinAngle: 20, MaxAngle: 30, Match: model.MatchExact})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(report.Overlays) != 1 {
		t.Fatalf("expected one slider overlay, got %d", len(report.Overlays))
	}
	league := report.Overlays[0].League
	if league.Len() != 2 || league.Row(0).PlayerName != "Able" || league.Row(1).PlayerName != "Cruz" {
		t.Fatalf("expected Able and Cruz, got %+v", league.Rows())
	}
	if report.LeagueCount != 1 {
		t.Fatalf("expected band pool of 1, got %d", report.LeagueCount)
	}
}

func TestBuildCustomPitcherPitchAngleOutsideEmptyBand(t *testing.T) {
	angle := 40.0
	list := session.New()
	list.Add(model.UserPitch{PitchType: "Slider", HB: -6, IVB: 1, ArmAngle: &angle})

	report, err := BuildCustomPitcher(sliderTable(), list, CustomParams{Throws: "R", MinAngle: -5, MaxAngle: 5, Match: model.MatchExact})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if report.LeagueCount != 0 || report.Overlays[0].LeagueCount != 1 || len(report.Missing) != 0 {
		t.Fatalf("unexpected report: pool %d, overlay %d, missing %v", report.LeagueCount, report.Overlays[0].LeagueCount, report.Missing)
	}

	if _, err := BuildCustomPitcher(sliderTable(), session.New(), CustomParams{Throws: "R", MinAngle: -5, MaxAngle: 5}); !errors.Is(err, ErrNoLeagueData) {
		t.Fatalf("expected no league data for an empty list and pool, got %v", err)
	}
}

func TestBuildCustomPitcherDescribesSelection(t *testing.T) {
	list := session.New()
	list.Add(model.UserPitch{PitchType: "Slider", HB: -2, IVB: 3})

	band, err := BuildCustomPitcher(leagueTable(), list, CustomParams{Throws: "R", MinAngle: 15, MaxAngle: 25})
	if err != nil {
		t.Fatalf("band: %v", err)
	}
	if band.Range == nil || *band.Range != (ArmAngleRange{Lo: 15, Hi: 25}) || band.ArmAngle != "15.0-25.0" {
		t.Fatalf("unexpected band selection: %+v %q", band.Range, band.ArmAngle)
	}

	angle := 21.0
	approx, err := BuildCustomPitcher(leagueTable(), list, CustomParams{Throws: "R", MinAngle: 15, MaxAngle: 25, ArmAngle: &angle, Match: model.MatchApprox, Tolerance: 1})
	if err != nil {
		t.Fatalf("approx: %v", err)
	}
	if approx.Range != nil || approx.ArmAngle != "21.0 ±1.0" {
		t.Fatalf("unexpected approx selection: %+v %q", approx.Range, approx.ArmAngle)
	}
	if got := DescribeArmAngle(CustomParams{ArmAngle: &angle, Match: model.MatchExact}); got != "21.0 exact" {
		t.Fatalf("unexpected exact description: %q", got)
	}
}

func TestUserMeanSkipsNonFinite(t *testing.T) {
	pitches := []model.UserPitch{
		{PitchType: "Slider", HB: math.NaN(), IVB: 3},
		{PitchType: "Slider", HB: -4, IVB: 2},
		{PitchType: "Slider", HB: -2, IVB: math.Inf(1)},
	}
	mean, ok := userMean(pitches)
	if !ok || mean.X != -4 || mean.Y != 2 {
		t.Fatalf("unexpected mean: %+v %v", mean, ok)
	}
	if _, ok := userMean(pitches[:1]); ok {
		t.Fatalf("expected no mean for only non-finite pitches")
	}
	if got := UserPoints(pitches); len(got) != 1 {
		t.Fatalf("expected one finite point, got %d", len(got))
	}
}

func TestMatchPredicateFallsBackToExact(t *testing.T) {
	tbl := leagueTable()
	got, err := query.Combine(tbl, MatchPredicate("fuzzy", 21, 5))
	if err != nil {
		t.Fatalf("combine: %v", err)
	}
	if got.Len() != 1 {
		t.Fatalf("expected exact match of 1 row, got %d", got.Len())
	}
}

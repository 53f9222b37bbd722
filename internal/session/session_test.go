package session

import (
	"testing"

	"github.com/verte-zerg/pitchmap/internal/model"
)

func TestAddToEmptyList(t *testing.T) {
	l := New()
	if l.State() != Empty {
		t.Fatalf("expected new list to be empty")
	}
	p := model.UserPitch{PitchType: "Slider", HB: -4.5, IVB: 2}
	l.Add(p)
	if l.State() != NonEmpty {
		t.Fatalf("expected non-empty state after add")
	}
	got := l.Pitches()
	if len(got) != 1 {
		t.Fatalf("expected 1 pitch, got %d", len(got))
	}
	if got[0] != p {
		t.Fatalf("expected %+v, got %+v", p, got[0])
	}
}

func TestAddKeepsDuplicates(t *testing.T) {
	var l PitchList
	p := model.UserPitch{PitchType: "Fastball", HB: 8, IVB: 17}
	l.Add(p)
	l.Add(p)
	if l.Len() != 2 {
		t.Fatalf("expected duplicates to be kept, got %d", l.Len())
	}
}

func TestGroupByPitchType(t *testing.T) {
	l := New()
	l.Add(model.UserPitch{PitchType: "Slider", HB: -3, IVB: 1})
	l.Add(model.UserPitch{PitchType: "Changeup", HB: 12, IVB: 6})
	l.Add(model.UserPitch{PitchType: "Slider", HB: -5, IVB: 0})

	groups := l.GroupByPitchType()
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	sliders := groups["Slider"]
	if len(sliders) != 2 || sliders[0].HB != -3 || sliders[1].HB != -5 {
		t.Fatalf("unexpected slider group: %+v", sliders)
	}
	if len(groups["Changeup"]) != 1 {
		t.Fatalf("unexpected changeup group: %+v", groups["Changeup"])
	}
	types := l.PitchTypes()
	if len(types) != 2 || types[0] != "Slider" || types[1] != "Changeup" {
		t.Fatalf("unexpected type order: %v", types)
	}
}

func TestResetClearsEverything(t *testing.T) {
	l := New()
	l.Add(model.UserPitch{PitchType: "Curveball", HB: 6, IVB: -12})
	l.Reset()
	if l.State() != Empty || l.Len() != 0 {
		t.Fatalf("expected empty list after reset")
	}
	if groups := l.GroupByPitchType(); len(groups) != 0 {
		t.Fatalf("expected no groups after reset, got %v", groups)
	}
	l.Reset()
	if l.State() != Empty {
		t.Fatalf("expected reset on empty list to stay empty")
	}
}

func TestPitchesReturnsCopy(t *testing.T) {
	angle := 35.0
	l := New()
	l.Add(model.UserPitch{PitchType: "Fastball", HB: 8, IVB: 17, ArmAngle: &angle})
	angle = 10
	got := l.Pitches()
	got[0].PitchType = "Sinker"
	again := l.Pitches()
	if again[0].PitchType != "Fastball" {
		t.Fatalf("caller mutation leaked into list")
	}
	if again[0].ArmAngle == nil || *again[0].ArmAngle != 35 {
		t.Fatalf("expected stored arm angle 35, got %v", again[0].ArmAngle)
	}
}

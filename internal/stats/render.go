package stats

import (
	"fmt"
	"io"
	"strconv"

	"github.com/verte-zerg/pitchmap/internal/density"
	"github.com/verte-zerg/pitchmap/internal/model"
)

var extraLabels = map[string]string{
	model.ColReleaseSpeed:     "Velo (mph)",
	model.ColReleaseSpinRate:  "Spin (rpm)",
	model.ColXWOBA:            "xwOBA",
	model.ColReleaseExtension: "Extension (ft)",
	model.ColReleasePosZ:      "Release Height (ft)",
}

var extraFormats = map[string]string{
	model.ColReleaseSpinRate: "%.0f",
	model.ColXWOBA:           "%.3f",
}

// RenderSummary prints a pitcher card.
func RenderSummary(w io.Writer, card PitcherCard) error {
	title := card.Pitcher
	if card.PitchType != "" {
		title = fmt.Sprintf("%s - %s", card.Pitcher, card.PitchType)
	}
	headers := []string{"Metric", "Value"}
	rows := [][]string{
		{"Throws", card.Throws},
		{"Pitches", strconv.Itoa(card.Count)},
		{"Arm Angle", fmt.Sprintf("%.1f", card.ArmAngle)},
		{"HB (in)", fmt.Sprintf("%.1f", card.HB)},
		{"iVB (in)", fmt.Sprintf("%.1f", card.IVB)},
	}
	for _, col := range model.DescriptiveColumns {
		v, ok := card.Extras[col]
		if !ok {
			continue
		}
		format, ok := extraFormats[col]
		if !ok {
			format = "%.1f"
		}
		rows = append(rows, []string{extraLabels[col], fmt.Sprintf(format, v)})
	}
	return writeTable(w, title, headers, rows, map[int]bool{1: true})
}

// RenderPitchTable prints the pitches added to a custom pitcher.
func RenderPitchTable(w io.Writer, pitches []model.UserPitch) error {
	if len(pitches) == 0 {
		_, err := fmt.Fprintln(w, "No pitches added yet.")
		return err
	}
	headers := []string{"#", "Pitch Type", "HB", "iVB", "Arm Angle"}
	rows := make([][]string, 0, len(pitches))
	for i, p := range pitches {
		angle := "-"
		if p.ArmAngle != nil {
			angle = fmt.Sprintf("%.1f", *p.ArmAngle)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			p.PitchType,
			fmt.Sprintf("%.1f", p.HB),
			fmt.Sprintf("%.1f", p.IVB),
			angle,
		})
	}
	return writeTable(w, "Added Pitches", headers, rows, map[int]bool{0: true, 2: true, 3: true, 4: true})
}

// RenderOverlayTable prints league sample sizes and highlighted points per
// pitch type.
func RenderOverlayTable(w io.Writer, overlays []Overlay) error {
	headers := []string{"Pitch Type", "League", "HB", "iVB"}
	rows := make([][]string, 0, len(overlays))
	for _, ov := range overlays {
		hb, ivb := "-", "-"
		if ov.HasMarker {
			hb = fmt.Sprintf("%.1f", ov.Marker.X)
			ivb = fmt.Sprintf("%.1f", ov.Marker.Y)
		}
		rows = append(rows, []string{ov.PitchType, strconv.Itoa(ov.LeagueCount), hb, ivb})
	}
	return writeTable(w, "Pitch Types", headers, rows, map[int]bool{1: true, 2: true, 3: true})
}

// RenderSinglePitch prints the single-pitch comparison.
func RenderSinglePitch(w io.Writer, r SinglePitchReport, opts HeatmapOptions) error {
	title := fmt.Sprintf("%s vs %sHP league %s (arm angle %.1f-%.1f, n=%d)",
		r.Pitcher.Pitcher, r.Throws, r.PitchType, r.Range.Lo, r.Range.Hi, r.LeagueCount)
	layers := []Layer{{Name: "League " + r.PitchType, Points: Points(r.League)}}
	markers := []Marker{{Label: r.Pitcher.Pitcher, Point: pointOf(r.Pitcher)}}
	if err := RenderHeatmap(w, title, layers, markers, opts); err != nil {
		return err
	}
	return RenderSummary(w, r.Pitcher)
}

// RenderArsenal prints one heatmap per pitch type of the arsenal.
func RenderArsenal(w io.Writer, r ArsenalReport, opts HeatmapOptions) error {
	if _, err := fmt.Fprintf(w, "%s arsenal (%sHP, arm angle %.1f-%.1f)\n\n",
		r.Pitcher, r.Throws, r.Range.Lo, r.Range.Hi); err != nil {
		return err
	}
	for _, ov := range r.Overlays {
		if err := renderOverlay(w, r.Pitcher, ov, opts); err != nil {
			return err
		}
	}
	return RenderOverlayTable(w, r.Overlays)
}

// RenderCustom prints the custom pitcher comparison.
func RenderCustom(w io.Writer, r CustomReport, opts HeatmapOptions) error {
	if _, err := fmt.Fprintf(w, "Custom pitcher (%sHP, arm angle %s, league n=%d)\n\n",
		r.Throws, r.ArmAngle, r.LeagueCount); err != nil {
		return err
	}
	var added []model.UserPitch
	for _, ov := range r.Overlays {
		if err := renderOverlay(w, "Your pitch", ov, opts); err != nil {
			return err
		}
		added = append(added, ov.UserPitches...)
	}
	for _, pt := range r.Missing {
		if _, err := fmt.Fprintf(w, "No league data for %s.\n", pt); err != nil {
			return err
		}
	}
	return RenderPitchTable(w, added)
}

func renderOverlay(w io.Writer, label string, ov Overlay, opts HeatmapOptions) error {
	title := fmt.Sprintf("%s (league n=%d)", ov.PitchType, ov.LeagueCount)
	layers := []Layer{{Name: "League " + ov.PitchType, Points: Points(ov.League)}}
	userPoints := UserPoints(ov.UserPitches)
	if len(userPoints) >= 2 {
		layers = append(layers, Layer{Name: "Your " + ov.PitchType, Points: userPoints})
	}
	var markers []Marker
	for _, pt := range userPoints {
		markers = append(markers, Marker{Label: ov.PitchType, Point: pt, Glyph: 'o'})
	}
	if ov.HasMarker {
		markers = append(markers, Marker{Label: label, Point: ov.Marker})
	}
	return RenderHeatmap(w, title, layers, markers, opts)
}

func writeTable(w io.Writer, title string, headers []string, rows [][]string, rightAlign map[int]bool) error {
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for _, line := range newTextTable(headers, rows, rightAlign).lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func pointOf(card PitcherCard) density.Point {
	return density.Point{X: card.HB, Y: card.IVB}
}

func pointOfPitch(p model.UserPitch) density.Point {
	return density.Point{X: p.HB, Y: p.IVB}
}

// RenderDatasets prints the cached datasets.
func RenderDatasets(w io.Writer, infos []model.DatasetInfo) error {
	if len(infos) == 0 {
		_, err := fmt.Fprintln(w, "No datasets found.")
		return err
	}
	headers := []string{"Name", "Pitches", "Fetched", "Source"}
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{
			info.Name,
			strconv.Itoa(info.Rows),
			info.FetchedAt.Local().Format("2006-01-02 15:04"),
			info.SourceURL,
		})
	}
	return writeTable(w, "", headers, rows, map[int]bool{1: true})
}

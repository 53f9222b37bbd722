// Package stats builds the dashboard comparisons and renders them as text.
package stats

import (
	"errors"
	"fmt"
	"math"

	"github.com/verte-zerg/pitchmap/internal/density"
	"github.com/verte-zerg/pitchmap/internal/model"
	"github.com/verte-zerg/pitchmap/internal/query"
	"github.com/verte-zerg/pitchmap/internal/session"
)

// DefaultArmAngleRadius is the half-width of the band around a pitcher's
// average arm angle.
const DefaultArmAngleRadius = 3.0

var (
	// ErrNoPitcherData is returned when the selected pitcher has no rows.
	ErrNoPitcherData = errors.New("no data found for the selected pitcher")
	// ErrNoLeagueData is returned when the league comparison subset is empty.
	ErrNoLeagueData = errors.New("no league data matches the selected criteria")
	// ErrNoUserPitches is returned when a custom pitcher has no pitches yet.
	ErrNoUserPitches = errors.New("no pitches added yet")
)

// PitcherCard summarises a pitcher's pitches of one selection.
type PitcherCard struct {
	Pitcher   string             `json:"pitcher"`
	PitchType string             `json:"pitch_type,omitempty"`
	Throws    string             `json:"p_throws"`
	Count     int                `json:"count"`
	HB        float64            `json:"hb"`
	IVB       float64            `json:"ivb"`
	ArmAngle  float64            `json:"arm_angle"`
	Extras    map[string]float64 `json:"extras,omitempty"`
}

// ArmAngleRange is an inclusive arm-angle band.
type ArmAngleRange struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// SinglePitchParams selects one pitch type of one pitcher.
type SinglePitchParams struct {
	PitchType string
	Pitcher   string
	// Throws filters the league by handedness; empty uses the pitcher's.
	Throws string
	Radius float64
}

// SinglePitchReport compares one pitch against league pitches of the same
// type, handedness and arm-angle band.
type SinglePitchReport struct {
	PitchType   string        `json:"pitch_type"`
	Throws      string        `json:"p_throws"`
	Range       ArmAngleRange `json:"arm_angle_range"`
	Pitcher     PitcherCard   `json:"pitcher"`
	LeagueCount int           `json:"league_count"`
	League      *query.Table  `json:"-"`
}

// ArsenalParams selects a pitcher's full arsenal.
type ArsenalParams struct {
	Pitcher string
	Radius  float64
}

// Overlay is one pitch type of a comparison: a league subset plus the
// point highlighted on top of it.
type Overlay struct {
	PitchType   string            `json:"pitch_type"`
	LeagueCount int               `json:"league_count"`
	Marker      density.Point     `json:"marker"`
	HasMarker   bool              `json:"has_marker"`
	UserPitches []model.UserPitch `json:"user_pitches,omitempty"`
	League      *query.Table      `json:"-"`
}

// ArsenalReport compares every pitch type of a pitcher against the league.
type ArsenalReport struct {
	Pitcher  string        `json:"pitcher"`
	Throws   string        `json:"p_throws"`
	ArmAngle float64       `json:"arm_angle"`
	Range    ArmAngleRange `json:"arm_angle_range"`
	Overlays []Overlay     `json:"overlays"`
}

// CustomParams selects the league subset for a custom pitcher.
type CustomParams struct {
	Throws   string
	MinAngle float64
	MaxAngle float64
	// ArmAngle switches from the min/max band to a single-angle match.
	ArmAngle  *float64
	Match     string
	Tolerance float64
}

// CustomReport compares user-defined pitches against the league.
type CustomReport struct {
	Throws string `json:"p_throws"`
	// Range is set only when the min/max band selected the league pool.
	Range       *ArmAngleRange `json:"arm_angle_range,omitempty"`
	ArmAngle    string         `json:"arm_angle"`
	LeagueCount int            `json:"league_count"`
	Overlays    []Overlay      `json:"overlays"`
	// Missing lists pitch types without league data.
	Missing []string `json:"missing,omitempty"`
}

// BuildSinglePitch compares one pitcher's pitch type against the league.
func BuildSinglePitch(t *query.Table, p SinglePitchParams) (SinglePitchReport, error) {
	pitchFiltered, err := query.FilterByEquality(t, model.ColPitchType, p.PitchType)
	if err != nil {
		return SinglePitchReport{}, err
	}
	pitcherData, err := query.FilterByEquality(pitchFiltered, model.ColPlayerName, p.Pitcher)
	if err != nil {
		return SinglePitchReport{}, err
	}
	card, err := buildCard(pitcherData, p.Pitcher, p.PitchType)
	if err != nil {
		return SinglePitchReport{}, err
	}

	throws := p.Throws
	if throws == "" {
		throws = card.Throws
	}
	lo, hi := query.DeriveSymmetricRange(card.ArmAngle, radiusOrDefault(p.Radius))
	league, err := query.Combine(pitchFiltered,
		query.Between(model.ColArmAngle, lo, hi),
		query.Equal(model.ColThrows, throws),
	)
	if err != nil {
		return SinglePitchReport{}, err
	}
	if league.Empty() {
		return SinglePitchReport{}, fmt.Errorf("%w: %w", ErrNoLeagueData, query.ErrEmptyResult)
	}
	return SinglePitchReport{
		PitchType:   p.PitchType,
		Throws:      throws,
		Range:       ArmAngleRange{Lo: lo, Hi: hi},
		Pitcher:     card,
		LeagueCount: league.Len(),
		League:      league,
	}, nil
}

// BuildArsenal compares each of a pitcher's pitch types against league
// pitches of the same type thrown from the pitcher's hand and arm-angle band.
func BuildArsenal(t *query.Table, p ArsenalParams) (ArsenalReport, error) {
	pitcherData, err := query.FilterByEquality(t, model.ColPlayerName, p.Pitcher)
	if err != nil {
		return ArsenalReport{}, err
	}
	card, err := buildCard(pitcherData, p.Pitcher, "")
	if err != nil {
		return ArsenalReport{}, err
	}
	lo, hi := query.DeriveSymmetricRange(card.ArmAngle, radiusOrDefault(p.Radius))
	league, err := query.Combine(t,
		query.Equal(model.ColThrows, card.Throws),
		query.Between(model.ColArmAngle, lo, hi),
	)
	if err != nil {
		return ArsenalReport{}, err
	}

	types, err := query.DistinctValues(pitcherData, model.ColPitchType)
	if err != nil {
		return ArsenalReport{}, err
	}
	overlays := make([]Overlay, 0, len(types))
	for _, pt := range types {
		leagueType, err := query.FilterByEquality(league, model.ColPitchType, pt)
		if err != nil {
			return ArsenalReport{}, err
		}
		pitchData, err := query.FilterByEquality(pitcherData, model.ColPitchType, pt)
		if err != nil {
			return ArsenalReport{}, err
		}
		ov := Overlay{PitchType: pt, LeagueCount: leagueType.Len(), League: leagueType}
		if marker, err := meanPoint(pitchData); err == nil {
			ov.Marker = marker
			ov.HasMarker = true
		} else if !errors.Is(err, query.ErrEmptyResult) {
			return ArsenalReport{}, err
		}
		overlays = append(overlays, ov)
	}
	return ArsenalReport{
		Pitcher:  p.Pitcher,
		Throws:   card.Throws,
		ArmAngle: card.ArmAngle,
		Range:    ArmAngleRange{Lo: lo, Hi: hi},
		Overlays: overlays,
	}, nil
}

// BuildCustomPitcher compares the pitches of a session list against league
// pitches of the same type. The league pool uses the min/max band or the
// single arm angle of the params; a pitch carrying its own arm angle is
// matched at that angle instead, and a type's league subset is the union
// over its pitches. With an empty list the league summary is still returned
// together with ErrNoUserPitches.
func BuildCustomPitcher(t *query.Table, pitches *session.PitchList, p CustomParams) (CustomReport, error) {
	base, err := query.FilterByEquality(t, model.ColThrows, p.Throws)
	if err != nil {
		return CustomReport{}, err
	}
	league, err := query.Combine(base, customAnglePredicate(p, p.ArmAngle))
	if err != nil {
		return CustomReport{}, err
	}
	report := CustomReport{
		Throws:      p.Throws,
		ArmAngle:    DescribeArmAngle(p),
		LeagueCount: league.Len(),
	}
	if p.ArmAngle == nil {
		report.Range = &ArmAngleRange{Lo: p.MinAngle, Hi: p.MaxAngle}
	}
	if pitches == nil || pitches.State() == session.Empty {
		if league.Empty() {
			return CustomReport{}, fmt.Errorf("%w: %w", ErrNoLeagueData, query.ErrEmptyResult)
		}
		return report, ErrNoUserPitches
	}

	groups := pitches.GroupByPitchType()
	for _, pt := range pitches.PitchTypes() {
		group := groups[pt]
		typed, err := query.FilterByEquality(base, model.ColPitchType, pt)
		if err != nil {
			return CustomReport{}, err
		}
		leagueType, err := query.MatchAny(typed, groupAnglePredicates(p, group)...)
		if err != nil {
			return CustomReport{}, err
		}
		if leagueType.Empty() {
			report.Missing = append(report.Missing, pt)
		}
		ov := Overlay{
			PitchType:   pt,
			LeagueCount: leagueType.Len(),
			UserPitches: group,
			League:      leagueType,
		}
		ov.Marker, ov.HasMarker = userMean(group)
		report.Overlays = append(report.Overlays, ov)
	}
	if len(report.Missing) == len(report.Overlays) {
		return CustomReport{}, fmt.Errorf("%w: %w", ErrNoLeagueData, query.ErrEmptyResult)
	}
	return report, nil
}

// DescribeArmAngle formats the arm-angle selection of a custom pitcher.
func DescribeArmAngle(p CustomParams) string {
	if p.ArmAngle == nil {
		return fmt.Sprintf("%.1f-%.1f", p.MinAngle, p.MaxAngle)
	}
	if p.Match == model.MatchApprox {
		return fmt.Sprintf("%.1f ±%.1f", *p.ArmAngle, p.Tolerance)
	}
	return fmt.Sprintf("%.1f exact", *p.ArmAngle)
}

// MatchPredicate returns the arm-angle predicate for a single-angle query.
// Unknown policies fall back to exact matching.
func MatchPredicate(policy string, angle, tolerance float64) query.Predicate {
	if policy == model.MatchApprox {
		return query.Approx(model.ColArmAngle, angle, tolerance)
	}
	return query.Exact(model.ColArmAngle, angle)
}

func customAnglePredicate(p CustomParams, angle *float64) query.Predicate {
	if angle != nil {
		return MatchPredicate(p.Match, *angle, p.Tolerance)
	}
	return query.Between(model.ColArmAngle, p.MinAngle, p.MaxAngle)
}

// groupAnglePredicates returns one arm-angle predicate per distinct angle in
// the group. A params-level arm angle overrides the pitches' own angles.
func groupAnglePredicates(p CustomParams, group []model.UserPitch) []query.Predicate {
	if p.ArmAngle != nil {
		return []query.Predicate{customAnglePredicate(p, p.ArmAngle)}
	}
	seen := make(map[query.Predicate]struct{}, len(group))
	preds := make([]query.Predicate, 0, len(group))
	for _, up := range group {
		pred := customAnglePredicate(p, up.ArmAngle)
		if _, ok := seen[pred]; ok {
			continue
		}
		seen[pred] = struct{}{}
		preds = append(preds, pred)
	}
	return preds
}

func buildCard(pitcherData *query.Table, pitcher, pitchType string) (PitcherCard, error) {
	if pitcherData.Empty() {
		return PitcherCard{}, fmt.Errorf("%w: %w", ErrNoPitcherData, query.ErrEmptyResult)
	}
	armAngle, err := query.ComputeMean(pitcherData, model.ColArmAngle)
	if err != nil {
		if errors.Is(err, query.ErrEmptyResult) {
			return PitcherCard{}, fmt.Errorf("%w: %w", ErrNoPitcherData, err)
		}
		return PitcherCard{}, err
	}
	mean, err := meanPoint(pitcherData)
	if err != nil {
		if errors.Is(err, query.ErrEmptyResult) {
			return PitcherCard{}, fmt.Errorf("%w: %w", ErrNoPitcherData, err)
		}
		return PitcherCard{}, err
	}
	extras, err := query.Means(pitcherData, presentColumns(pitcherData, model.DescriptiveColumns)...)
	if err != nil {
		return PitcherCard{}, err
	}
	return PitcherCard{
		Pitcher:   pitcher,
		PitchType: pitchType,
		Throws:    pitcherData.Row(0).Throws,
		Count:     pitcherData.Len(),
		HB:        mean.X,
		IVB:       mean.Y,
		ArmAngle:  armAngle,
		Extras:    extras,
	}, nil
}

func meanPoint(t *query.Table) (density.Point, error) {
	hb, err := query.ComputeMean(t, model.ColHB)
	if err != nil {
		return density.Point{}, err
	}
	ivb, err := query.ComputeMean(t, model.ColIVB)
	if err != nil {
		return density.Point{}, err
	}
	return density.Point{X: hb, Y: ivb}, nil
}

// userMean averages the finite pitches of a group.
func userMean(pitches []model.UserPitch) (density.Point, bool) {
	var sum density.Point
	n := 0
	for _, up := range pitches {
		if !finite(up.HB) || !finite(up.IVB) {
			continue
		}
		sum.X += up.HB
		sum.Y += up.IVB
		n++
	}
	if n == 0 {
		return density.Point{}, false
	}
	return density.Point{X: sum.X / float64(n), Y: sum.Y / float64(n)}, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func presentColumns(t *query.Table, columns []string) []string {
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if t.HasColumn(c) {
			out = append(out, c)
		}
	}
	return out
}

func radiusOrDefault(r float64) float64 {
	if r <= 0 {
		return DefaultArmAngleRadius
	}
	return r
}

// Points extracts (HB, iVB) pairs from a table.
func Points(t *query.Table) []density.Point {
	out := make([]density.Point, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		out = append(out, density.Point{X: row.HB, Y: row.IVB})
	}
	return out
}

// UserPoints extracts finite (HB, iVB) pairs from user pitches.
func UserPoints(pitches []model.UserPitch) []density.Point {
	out := make([]density.Point, 0, len(pitches))
	for _, p := range pitches {
		if !finite(p.HB) || !finite(p.IVB) {
			continue
		}
		out = append(out, pointOfPitch(p))
	}
	return out
}

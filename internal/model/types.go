// Package model defines shared data structures.
package model

import (
	"math"
	"time"
)

// Column names as they appear in the source CSV header.
const (
	ColPitchType        = "pitch_type"
	ColPlayerName       = "player_name"
	ColThrows           = "p_throws"
	ColArmAngle         = "arm_angle"
	ColHB               = "HB"
	ColIVB              = "iVB"
	ColReleaseSpeed     = "release_speed"
	ColReleaseSpinRate  = "release_spin_rate"
	ColXWOBA            = "estimated_woba_using_speedangle"
	ColReleaseExtension = "release_extension"
	ColReleasePosZ      = "release_pos_z"
)

// RequiredColumns lists the columns every dataset must carry.
var RequiredColumns = []string{
	ColPitchType,
	ColPlayerName,
	ColThrows,
	ColArmAngle,
	ColHB,
	ColIVB,
}

// DescriptiveColumns lists the optional numeric columns used only for display.
var DescriptiveColumns = []string{
	ColReleaseSpeed,
	ColReleaseSpinRate,
	ColXWOBA,
	ColReleaseExtension,
	ColReleasePosZ,
}

// Observation is one recorded pitch. Missing numeric cells are NaN.
type Observation struct {
	PitchType        string
	PlayerName       string
	Throws           string
	ArmAngle         float64
	HB               float64
	IVB              float64
	ReleaseSpeed     float64
	ReleaseSpinRate  float64
	XWOBA            float64
	ReleaseExtension float64
	ReleasePosZ      float64
}

// NewObservation returns an observation with all descriptive fields unset.
func NewObservation(pitchType, player, throws string, armAngle, hb, ivb float64) Observation {
	nan := math.NaN()
	return Observation{
		PitchType:        pitchType,
		PlayerName:       player,
		Throws:           throws,
		ArmAngle:         armAngle,
		HB:               hb,
		IVB:              ivb,
		ReleaseSpeed:     nan,
		ReleaseSpinRate:  nan,
		XWOBA:            nan,
		ReleaseExtension: nan,
		ReleasePosZ:      nan,
	}
}

// UserPitch is a synthetic pitch entered by the user.
type UserPitch struct {
	PitchType string  `json:"pitch_type"`
	HB        float64 `json:"hb"`
	IVB       float64 `json:"ivb"`
	// ArmAngle is set only when the pitch was entered with an explicit arm angle.
	ArmAngle *float64 `json:"arm_angle,omitempty"`
}

// ExploreConfig defines dashboard settings.
type ExploreConfig struct {
	Dataset        string
	ArmAngleRadius float64
	MatchPolicy    string
	Tolerance      float64
	Levels         int
	Thresh         float64
	CreateMinAngle float64
	CreateMaxAngle float64
}

// Arm-angle match policies for explicit-angle queries.
const (
	MatchExact  = "exact"
	MatchApprox = "approx"
)

// DatasetInfo describes a cached dataset.
type DatasetInfo struct {
	Name      string
	SourceURL string
	Rows      int
	Columns   []string
	FetchedAt time.Time
}

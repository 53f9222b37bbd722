package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/pitchmap/internal/logging"
	"github.com/verte-zerg/pitchmap/internal/model"
	"github.com/verte-zerg/pitchmap/internal/query"
	"github.com/verte-zerg/pitchmap/internal/session"
	"github.com/verte-zerg/pitchmap/internal/stats"
)

var (
	comparePitcher   string
	comparePitchType string
	compareHand      string
	compareJSON      bool
	compareWidth     int
	compareHeight    int

	createThrows   string
	createArmAngle float64
	createPitches  []string
)

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare a pitcher's pitch or arsenal against the league",
		Args:  cobra.NoArgs,
		RunE:  runCompareCmd,
	}
	addExploreFlags(cmd)
	addOutputFlags(cmd)
	cmd.Flags().StringVar(&comparePitcher, "pitcher", "", "pitcher name as it appears in the dataset")
	cmd.Flags().StringVar(&comparePitchType, "pitch-type", "", "single pitch type (default: full arsenal)")
	cmd.Flags().StringVar(&compareHand, "hand", "", "league handedness for a single pitch (default: the pitcher's)")
	return cmd
}

func newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Compare custom pitches against the league",
		Args:  cobra.NoArgs,
		RunE:  runCreateCmd,
	}
	addExploreFlags(cmd)
	addOutputFlags(cmd)
	cmd.Flags().StringVar(&createThrows, "throws", "R", "custom pitcher handedness (R or L)")
	cmd.Flags().Float64Var(&createArmAngle, "arm-angle", 0, "match a single arm angle instead of the min/max range")
	cmd.Flags().StringArrayVar(&createPitches, "pitch", nil, "pitch as TYPE:HB:IVB[:ARM_ANGLE] (repeatable)")
	return cmd
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&compareJSON, "json", false, "print the comparison as JSON")
	cmd.Flags().IntVar(&compareWidth, "width", 0, "heatmap width (default: fit terminal)")
	cmd.Flags().IntVar(&compareHeight, "height", 0, "heatmap height")
}

func runCompareCmd(cmd *cobra.Command, _ []string) error {
	if strings.TrimSpace(comparePitcher) == "" {
		return fmt.Errorf("--pitcher is required")
	}
	cfg, data, err := loadComparisonData(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	opts := heatmapOptions(cfg)

	if comparePitchType != "" {
		hand := strings.ToUpper(strings.TrimSpace(compareHand))
		report, err := stats.BuildSinglePitch(data, stats.SinglePitchParams{
			PitchType: comparePitchType,
			Pitcher:   comparePitcher,
			Throws:    hand,
			Radius:    cfg.ArmAngleRadius,
		})
		if err != nil {
			return err
		}
		if compareJSON {
			return writeJSON(out, report)
		}
		return stats.RenderSinglePitch(out, report, opts)
	}

	report, err := stats.BuildArsenal(data, stats.ArsenalParams{Pitcher: comparePitcher, Radius: cfg.ArmAngleRadius})
	if err != nil {
		return err
	}
	if compareJSON {
		return writeJSON(out, report)
	}
	return stats.RenderArsenal(out, report, opts)
}

func runCreateCmd(cmd *cobra.Command, _ []string) error {
	cfg, data, err := loadComparisonData(cmd)
	if err != nil {
		return err
	}
	throws := strings.ToUpper(strings.TrimSpace(createThrows))
	if throws != "R" && throws != "L" {
		return fmt.Errorf("--throws must be R or L")
	}

	pitches := session.New()
	for _, raw := range createPitches {
		pitch, err := parsePitchFlag(raw)
		if err != nil {
			return err
		}
		pitches.Add(pitch)
	}

	params := stats.CustomParams{
		Throws:    throws,
		MinAngle:  cfg.CreateMinAngle,
		MaxAngle:  cfg.CreateMaxAngle,
		Match:     cfg.MatchPolicy,
		Tolerance: cfg.Tolerance,
	}
	if cmd.Flags().Changed("arm-angle") {
		if math.IsNaN(createArmAngle) || math.IsInf(createArmAngle, 0) {
			return fmt.Errorf("--arm-angle must be finite")
		}
		angle := createArmAngle
		params.ArmAngle = &angle
	}

	out := cmd.OutOrStdout()
	report, err := stats.BuildCustomPitcher(data, pitches, params)
	if errors.Is(err, stats.ErrNoUserPitches) {
		logErrf("No pitches added yet. Add one with --pitch TYPE:HB:IVB\n")
		if compareJSON {
			return writeJSON(out, report)
		}
		_, err = fmt.Fprintf(out, "League pool: %sHP, %d pitches\n", report.Throws, report.LeagueCount)
		return err
	}
	if err != nil {
		return err
	}
	if compareJSON {
		return writeJSON(out, report)
	}
	return stats.RenderCustom(out, report, heatmapOptions(cfg))
}

func loadComparisonData(cmd *cobra.Command) (model.ExploreConfig, *query.Table, error) {
	cfg, err := loadExploreConfig(cmd)
	if err != nil {
		return model.ExploreConfig{}, nil, err
	}
	st, err := openStore()
	if err != nil {
		return model.ExploreConfig{}, nil, err
	}
	defer closeStore(st)

	data, err := st.LoadDataset(context.Background(), cfg.Dataset)
	if err != nil {
		return model.ExploreConfig{}, nil, datasetLoadError(cfg.Dataset, err)
	}
	logging.Debug().Str("dataset", cfg.Dataset).Int("rows", data.Len()).Msg("dataset loaded")
	return cfg, data, nil
}

func heatmapOptions(cfg model.ExploreConfig) stats.HeatmapOptions {
	return stats.HeatmapOptions{
		Width:  compareWidth,
		Height: compareHeight,
		Levels: cfg.Levels,
		Thresh: cfg.Thresh,
	}
}

// parsePitchFlag parses TYPE:HB:IVB[:ARM_ANGLE].
func parsePitchFlag(raw string) (model.UserPitch, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 && len(parts) != 4 {
		return model.UserPitch{}, fmt.Errorf("invalid --pitch %q (use TYPE:HB:IVB[:ARM_ANGLE])", raw)
	}
	pitchType := strings.TrimSpace(parts[0])
	if pitchType == "" {
		return model.UserPitch{}, fmt.Errorf("invalid --pitch %q: pitch type is empty", raw)
	}
	nums := make([]float64, 0, 3)
	for _, part := range parts[1:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return model.UserPitch{}, fmt.Errorf("invalid --pitch %q: %w", raw, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return model.UserPitch{}, fmt.Errorf("invalid --pitch %q: values must be finite", raw)
		}
		nums = append(nums, v)
	}
	pitch := model.UserPitch{PitchType: pitchType, HB: nums[0], IVB: nums[1]}
	if len(nums) == 3 {
		angle := nums[2]
		pitch.ArmAngle = &angle
	}
	return pitch, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

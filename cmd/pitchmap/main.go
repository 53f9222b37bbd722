// Package main provides the CLI entrypoint for pitchmap.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/pitchmap/internal/config"
	"github.com/verte-zerg/pitchmap/internal/explorer"
	"github.com/verte-zerg/pitchmap/internal/logging"
	"github.com/verte-zerg/pitchmap/internal/model"
	"github.com/verte-zerg/pitchmap/internal/session"
	"github.com/verte-zerg/pitchmap/internal/stats"
	"github.com/verte-zerg/pitchmap/internal/store"
)

const (
	defaultDataset     = "league"
	defaultURL         = "https://drive.google.com/uc?export=download&id=1HHUgH9VK484dgUkX0Ryos7bM8pnukCcJ"
	defaultMatch       = model.MatchApprox
	defaultTolerance   = 1.0
	defaultLevels      = 10
	defaultThresh      = 0.05
	defaultMinArmAngle = -20.0
	defaultMaxArmAngle = 20.0
	defaultLogLevel    = "warn"
	defaultLogFormat   = "console"
	logLevelEnv        = "PITCHMAP_LOG_LEVEL"
)

var (
	globalLogLevel string
	globalDBPath   string

	exploreDataset   string
	exploreRadius    float64
	exploreMatch     string
	exploreTolerance float64
	exploreLevels    int
	exploreThresh    float64
	exploreMinAngle  float64
	exploreMaxAngle  float64
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "pitchmap",
		Short:             "Compare pitch movement against the league",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: initLogging,
		RunE:              runExploreCmd,
	}

	rootCmd.PersistentFlags().StringVar(&globalLogLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&globalDBPath, "db", "", "database path (default: XDG data dir)")

	addExploreFlags(rootCmd)

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newDatasetsCmd())
	rootCmd.AddCommand(newValuesCmd())
	rootCmd.AddCommand(newCompareCmd())
	rootCmd.AddCommand(newCreateCmd())

	return rootCmd
}

func addExploreFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&exploreDataset, "dataset", defaultDataset, "cached dataset name")
	cmd.Flags().Float64Var(&exploreRadius, "radius", stats.DefaultArmAngleRadius, "arm angle radius around the pitcher's average")
	cmd.Flags().StringVar(&exploreMatch, "match", defaultMatch, "arm angle match policy for a single angle (exact, approx)")
	cmd.Flags().Float64Var(&exploreTolerance, "tolerance", defaultTolerance, "tolerance for approx arm angle matching")
	cmd.Flags().IntVar(&exploreLevels, "levels", defaultLevels, "number of density shading levels")
	cmd.Flags().Float64Var(&exploreThresh, "thresh", defaultThresh, "lowest density drawn, as a fraction of the peak")
	cmd.Flags().Float64Var(&exploreMinAngle, "min-arm-angle", defaultMinArmAngle, "custom pitcher minimum arm angle")
	cmd.Flags().Float64Var(&exploreMaxAngle, "max-arm-angle", defaultMaxArmAngle, "custom pitcher maximum arm angle")
}

func initLogging(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	level := defaultLogLevel
	if fileCfg.Log.Level != nil {
		level = *fileCfg.Log.Level
	}
	if env := strings.TrimSpace(os.Getenv(logLevelEnv)); env != "" {
		level = env
	}
	if cmd.Flags().Changed("log-level") {
		level = globalLogLevel
	}
	format := defaultLogFormat
	if fileCfg.Log.Format != nil {
		format = *fileCfg.Log.Format
	}
	logging.Init(logging.Config{Level: level, Format: format})
	return nil
}

// loadExploreConfig merges config-file values into the explore flags that
// were not set on the command line.
func loadExploreConfig(cmd *cobra.Command) (model.ExploreConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.ExploreConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "dataset", &exploreDataset, fileCfg.Data.Dataset)
	applyFloatConfig(cmd, "radius", &exploreRadius, fileCfg.Explore.ArmAngleRadius)
	applyStringConfig(cmd, "match", &exploreMatch, fileCfg.Explore.Match)
	applyFloatConfig(cmd, "tolerance", &exploreTolerance, fileCfg.Explore.Tolerance)
	applyIntConfig(cmd, "levels", &exploreLevels, fileCfg.Explore.Levels)
	applyFloatConfig(cmd, "thresh", &exploreThresh, fileCfg.Explore.Thresh)
	applyFloatConfig(cmd, "min-arm-angle", &exploreMinAngle, fileCfg.Create.MinArmAngle)
	applyFloatConfig(cmd, "max-arm-angle", &exploreMaxAngle, fileCfg.Create.MaxArmAngle)

	cfg := model.ExploreConfig{
		Dataset:        exploreDataset,
		ArmAngleRadius: exploreRadius,
		MatchPolicy:    strings.ToLower(strings.TrimSpace(exploreMatch)),
		Tolerance:      exploreTolerance,
		Levels:         exploreLevels,
		Thresh:         exploreThresh,
		CreateMinAngle: exploreMinAngle,
		CreateMaxAngle: exploreMaxAngle,
	}
	if err := validateExploreConfig(cfg); err != nil {
		return model.ExploreConfig{}, err
	}
	return cfg, nil
}

func runExploreCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadExploreConfig(cmd)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	data, err := st.LoadDataset(context.Background(), cfg.Dataset)
	if err != nil {
		return datasetLoadError(cfg.Dataset, err)
	}
	logging.Info().Str("dataset", cfg.Dataset).Int("rows", data.Len()).Msg("dataset loaded")

	dashboard := explorer.NewModel(data, cfg, session.New())
	program := tea.NewProgram(dashboard, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

func openStore() (*store.Store, error) {
	path := globalDBPath
	if path == "" {
		path = config.DefaultDBPath()
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		logging.Error().Err(err).Msg("failed to close db")
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		logging.Info().Str("path", path).Msg("wrote default config")
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# pitchmap configuration
# Uncomment a value to enable it. CLI flags override config values.

[data]
# url = %q
# dataset = %q            # Cached dataset used by the dashboard

[explore]
# arm-angle-radius = %.1f   # Arm angle band around a pitcher's average
# match = %q              # Single arm angle matching: exact or approx
# tolerance = %.1f          # Tolerance for approx matching
# levels = %d               # Density shading levels
# thresh = %.2f            # Lowest density drawn, as a fraction of the peak

[create]
# min-arm-angle = %.1f     # Custom pitcher arm angle range
# max-arm-angle = %.1f

[log]
# level = %q             # debug, info, warn, error
# format = %q         # console or json
`,
		defaultURL,
		defaultDataset,
		stats.DefaultArmAngleRadius,
		defaultMatch,
		defaultTolerance,
		defaultLevels,
		defaultThresh,
		defaultMinArmAngle,
		defaultMaxArmAngle,
		defaultLogLevel,
		defaultLogFormat,
	)
}

func validateExploreConfig(cfg model.ExploreConfig) error {
	if strings.TrimSpace(cfg.Dataset) == "" {
		return fmt.Errorf("--dataset must not be empty")
	}
	if cfg.ArmAngleRadius <= 0 {
		return fmt.Errorf("--radius must be > 0")
	}
	if cfg.MatchPolicy != model.MatchExact && cfg.MatchPolicy != model.MatchApprox {
		return fmt.Errorf("--match must be %q or %q", model.MatchExact, model.MatchApprox)
	}
	if cfg.Tolerance < 0 {
		return fmt.Errorf("--tolerance must be >= 0")
	}
	if cfg.Levels < 1 {
		return fmt.Errorf("--levels must be >= 1")
	}
	if cfg.Thresh <= 0 || cfg.Thresh >= 1 {
		return fmt.Errorf("--thresh must be in (0, 1)")
	}
	if cfg.CreateMinAngle > cfg.CreateMaxAngle {
		return fmt.Errorf("--min-arm-angle must not exceed --max-arm-angle")
	}
	return nil
}

func datasetLoadError(name string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load dataset %q: %v", name, err),
		"Run: pitchmap datasets",
		fmt.Sprintf("Download: pitchmap fetch --name %s", name),
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

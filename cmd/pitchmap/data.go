package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/pitchmap/internal/config"
	"github.com/verte-zerg/pitchmap/internal/dataset"
	"github.com/verte-zerg/pitchmap/internal/logging"
	"github.com/verte-zerg/pitchmap/internal/model"
	"github.com/verte-zerg/pitchmap/internal/query"
	"github.com/verte-zerg/pitchmap/internal/stats"
)

var (
	fetchURL  string
	fetchName string
	fetchFile string
	fetchKeep bool

	valuesDataset string
	valuesColumn  string
	valuesPitcher string
)

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download a pitch dataset and cache it",
		Args:  cobra.NoArgs,
		RunE:  runFetchCmd,
	}
	cmd.Flags().StringVar(&fetchURL, "url", defaultURL, "CSV download URL")
	cmd.Flags().StringVar(&fetchName, "name", defaultDataset, "dataset name")
	cmd.Flags().StringVar(&fetchFile, "file", "", "import a local CSV instead of downloading")
	cmd.Flags().BoolVar(&fetchKeep, "keep", false, "keep the downloaded CSV in the download dir")
	return cmd
}

func runFetchCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "url", &fetchURL, fileCfg.Data.URL)
	applyStringConfig(cmd, "name", &fetchName, fileCfg.Data.Dataset)
	if fetchName == "" {
		return fmt.Errorf("--name must not be empty")
	}

	ctx := context.Background()
	source := fetchURL
	path := fetchFile
	if path == "" {
		logErrf("Downloading %s...\n", fetchURL)
		file, err := dataset.Fetch(ctx, fetchURL, config.DefaultDownloadDir(), fetchName)
		if err != nil {
			return fmt.Errorf("failed to download dataset: %w", err)
		}
		path = file.Path
		if !fetchKeep {
			defer func() {
				if err := os.Remove(file.Path); err != nil {
					logging.Warn().Err(err).Str("path", file.Path).Msg("failed to remove download")
				}
			}()
		}
	} else {
		source = fetchFile
	}

	data, err := dataset.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to parse dataset: %w", err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := st.ReplaceDataset(ctx, fetchName, source, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to store dataset: %w", err)
	}
	logging.Info().Str("dataset", fetchName).Int("rows", data.Len()).Msg("dataset imported")
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d pitches into %q\n", data.Len(), fetchName)
	return err
}

func newDatasetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List cached datasets",
		Args:  cobra.NoArgs,
		RunE:  runDatasetsCmd,
	}
}

func runDatasetsCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	infos, err := st.ListDatasets(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list datasets: %w", err)
	}
	if len(infos) == 0 {
		logErrf("No datasets found. Download with: pitchmap fetch\n")
	}
	return stats.RenderDatasets(cmd.OutOrStdout(), infos)
}

func newValuesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "values",
		Short: "List distinct pitchers, pitch types or handedness values",
		Args:  cobra.NoArgs,
		RunE:  runValuesCmd,
	}
	cmd.Flags().StringVar(&valuesDataset, "dataset", defaultDataset, "cached dataset name")
	cmd.Flags().StringVar(&valuesColumn, "column", model.ColPlayerName, "column to list (player_name, pitch_type, p_throws)")
	cmd.Flags().StringVar(&valuesPitcher, "pitcher", "", "restrict to one pitcher")
	return cmd
}

func runValuesCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "dataset", &valuesDataset, fileCfg.Data.Dataset)

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	data, err := st.LoadDataset(context.Background(), valuesDataset)
	if err != nil {
		return datasetLoadError(valuesDataset, err)
	}
	if valuesPitcher != "" {
		data, err = query.FilterByEquality(data, model.ColPlayerName, valuesPitcher)
		if err != nil {
			return err
		}
	}
	values, err := query.DistinctValues(data, valuesColumn)
	if err != nil {
		return fmt.Errorf("failed to list values: %w", err)
	}
	for _, v := range values {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), v); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

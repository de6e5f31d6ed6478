package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/agriassist-cli/internal/dataset"
	"github.com/KaramelBytes/agriassist-cli/internal/watch"
	"github.com/spf13/cobra"
)

var (
	cleanInput     string
	cleanOutputDir string
	cleanNoSave    bool
	cleanWatch     bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean [kind...]",
	Short: "Clean raw datasets into <kind>_clean.csv tables",
	Long: `Clean one or more datasets (weather, soil, crop_yield, market). With no kind
every dataset is cleaned in order and the crop image folder is checked.

Each kind drops rows with missing values, then applies its own steps:
  weather     parse dates, standardize temperature, humidity and rainfall
  soil        label-encode soil_type
  crop_yield  add rainfall_per_acre = rainfall / acreage
  market      parse dates, label-encode crop`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		kinds, err := parseKinds(args)
		if err != nil {
			return err
		}
		if cleanInput != "" && len(kinds) != 1 {
			return fmt.Errorf("--input requires exactly one kind")
		}
		dc := c.DatasetConfig()
		if cleanOutputDir != "" {
			dc.OutputDir = cleanOutputDir
		}
		cleaner := dataset.NewCleaner(dc, logger)
		save := !cleanNoSave

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		failed := 0
		for _, k := range kinds {
			df, err := cleaner.Clean(ctx, k, cleanInput, save)
			if err != nil && !errors.Is(err, dataset.ErrPersist) {
				fmt.Fprintf(out, "✗ %s: %v\n", k, err)
				failed++
				continue
			}
			if err != nil {
				fmt.Fprintf(out, "⚠ Warning: %s cleaned but not saved: %v\n", k, err)
				failed++
				continue
			}
			reportClean(out, dc, k, df.Nrow(), df.Ncol(), save)
		}
		if len(args) == 0 {
			cleaner.CropHealth(ctx, "")
		}

		if cleanWatch {
			return watchAndClean(ctx, out, cleaner, dc.DatasetDir, save)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d datasets failed", failed, len(kinds))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVar(&cleanInput, "input", "", "input file for a single kind (default <dataset_dir>/<kind>.csv)")
	cleanCmd.Flags().StringVar(&cleanOutputDir, "output-dir", "", "directory for cleaned tables (overrides output_dir)")
	cleanCmd.Flags().BoolVar(&cleanNoSave, "no-save", false, "clean without writing output files")
	cleanCmd.Flags().BoolVar(&cleanWatch, "watch", false, "keep running and re-clean a dataset when its input file changes")
}

func parseKinds(args []string) ([]dataset.Kind, error) {
	if len(args) == 0 {
		return dataset.Kinds(), nil
	}
	seen := map[dataset.Kind]bool{}
	var kinds []dataset.Kind
	for _, a := range args {
		k, err := dataset.ParseKind(a)
		if err != nil {
			return nil, err
		}
		if !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
	}
	return kinds, nil
}

func reportClean(out io.Writer, dc dataset.Config, k dataset.Kind, rows, cols int, saved bool) {
	if saved {
		fmt.Fprintf(out, "✓ %s: %d rows, %d cols → %s\n", k, rows, cols, dc.OutputPath(k))
		return
	}
	fmt.Fprintf(out, "✓ %s: %d rows, %d cols (not saved)\n", k, rows, cols)
}

func watchAndClean(ctx context.Context, out io.Writer, cleaner *dataset.Cleaner, dir string, save bool) error {
	w, err := watch.New(dir, logger)
	if err != nil {
		return err
	}
	defer w.Close()
	fmt.Fprintf(out, "Watching %s for changes (Ctrl+C to stop)\n", dir)
	return w.Run(ctx, func(ctx context.Context, k dataset.Kind, path string) {
		df := cleaner.Run(ctx, k, path, save)
		if df.Ncol() == 0 {
			fmt.Fprintf(out, "✗ %s: not cleaned (see log)\n", k)
			return
		}
		reportClean(out, cleaner.Config(), k, df.Nrow(), df.Ncol(), save)
	})
}

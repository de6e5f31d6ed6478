package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/agriassist-cli/internal/dataset"
	"github.com/KaramelBytes/agriassist-cli/internal/eda"
	"github.com/KaramelBytes/agriassist-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	edaInput  string
	edaCharts bool
	edaOut    string
	edaSave   bool
)

var edaCmd = &cobra.Command{
	Use:   "eda <kind>",
	Short: "Summarize a raw dataset and optionally render histograms",
	Long: `Load a raw dataset, drop rows with missing values and duplicates, and print
a summary: schema with per-column statistics, seasonal distribution (weather),
group-by means, correlations and sample rows.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		kind, err := dataset.ParseKind(args[0])
		if err != nil {
			return err
		}
		dc := c.DatasetConfig()
		path := edaInput
		if path == "" {
			path = dc.InputPath(kind)
		}
		df, err := dataset.Load(path, dc.Sheet)
		if err != nil {
			return err
		}
		rep := eda.Analyze(kind, dataset.PrepareForEDA(df))
		md := rep.Markdown()
		fmt.Fprint(cmd.OutOrStdout(), md)

		outDir := edaOut
		if outDir == "" {
			outDir = c.EDADir
		}
		if edaSave {
			p := filepath.Join(outDir, fmt.Sprintf("eda_%s.md", kind))
			if err := utils.SafeWriteFile(p, []byte(md)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n✓ Report saved to %s\n", p)
		}
		if edaCharts {
			paths, err := eda.RenderCharts(rep, outDir)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "⚠ Warning: no numeric columns to chart")
			}
			for _, p := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Chart saved to %s\n", p)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(edaCmd)
	edaCmd.Flags().StringVar(&edaInput, "input", "", "input file (default <dataset_dir>/<kind>.csv)")
	edaCmd.Flags().BoolVar(&edaCharts, "charts", false, "render a PNG histogram per numeric column")
	edaCmd.Flags().StringVar(&edaOut, "out", "", "directory for charts and saved reports (default eda_dir)")
	edaCmd.Flags().BoolVar(&edaSave, "save", false, "also write the report to <out>/eda_<kind>.md")
}

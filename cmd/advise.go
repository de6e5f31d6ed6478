package cmd

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/KaramelBytes/agriassist-cli/internal/advisory"
	"github.com/KaramelBytes/agriassist-cli/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var adviseOptimize bool

var adviseCmd = &cobra.Command{
	Use:   "advise <farm-id>",
	Short: "Generate and store advisories for a farm",
	Long: `Generate advisories for a registered farm from the given readings. Only the
sections with at least one flag set are evaluated:

  weather      --temperature --rainfall --humidity
  soil         --nitrogen --phosphorus --potassium --ph
  yield        --yield
  market       --market-crop --price --trend
  crop health  --health

With --optimize the weather and soil readings drive the irrigation and
fertilizer planners instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil || id == 0 {
			return fmt.Errorf("invalid farm id: %s", args[0])
		}
		f := cmd.Flags()
		w := &advisory.Weather{
			Temperature: floatFlag(f, "temperature"),
			Rainfall:    floatFlag(f, "rainfall"),
			Humidity:    floatFlag(f, "humidity"),
		}
		s := &advisory.Soil{
			Nitrogen:   floatFlag(f, "nitrogen"),
			Phosphorus: floatFlag(f, "phosphorus"),
			Potassium:  floatFlag(f, "potassium"),
			PH:         floatFlag(f, "ph"),
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		engine := advisory.NewEngine(st, logger)

		var res map[string][]string
		if adviseOptimize {
			res, err = engine.OptimizeResources(cmd.Context(), uint(id), w, s)
		} else {
			in := advisory.Inputs{
				Weather: w,
				Soil:    s,
				Yield:   floatFlag(f, "yield"),
				Market: &advisory.Market{
					Crop:     stringFlag(f, "market-crop"),
					AvgPrice: floatFlag(f, "price"),
					Trend:    stringFlag(f, "trend"),
				},
			}
			if h := stringFlag(f, "health"); h != nil {
				in.HealthStatus = *h
			}
			res, err = engine.GenerateAll(cmd.Context(), uint(id), in)
		}
		if err != nil {
			return err
		}
		printAdvisories(cmd.OutOrStdout(), uint(id), res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adviseCmd)
	f := adviseCmd.Flags()
	f.Float64("temperature", 0, "temperature in °C")
	f.Float64("rainfall", 0, "rainfall in mm")
	f.Float64("humidity", 0, "relative humidity in %")
	f.Float64("nitrogen", 0, "soil nitrogen")
	f.Float64("phosphorus", 0, "soil phosphorus")
	f.Float64("potassium", 0, "soil potassium")
	f.Float64("ph", 0, "soil pH")
	f.Float64("yield", 0, "predicted yield in tons/hectare")
	f.String("market-crop", "", "crop quoted by the market data (default the farm's crop)")
	f.Float64("price", 0, "average market price in INR/quintal")
	f.String("trend", "", "price trend: rising, falling or stable")
	f.String("health", "", "crop health status, e.g. healthy, rust, leaf blight")
	f.BoolVar(&adviseOptimize, "optimize", false, "run the irrigation and fertilizer planners")
}

// floatFlag returns nil unless the flag was given on the command line.
func floatFlag(f *pflag.FlagSet, name string) *float64 {
	if !f.Changed(name) {
		return nil
	}
	v, err := f.GetFloat64(name)
	if err != nil {
		return nil
	}
	return &v
}

func stringFlag(f *pflag.FlagSet, name string) *string {
	if !f.Changed(name) {
		return nil
	}
	v, err := f.GetString(name)
	if err != nil {
		return nil
	}
	return &v
}

func printAdvisories(out io.Writer, farmID uint, res map[string][]string) {
	if len(res) == 0 {
		fmt.Fprintln(out, "⚠ Warning: no inputs given; nothing to advise")
		return
	}
	order := make(map[string]int, len(store.Categories))
	for i, c := range store.Categories {
		order[c] = i
	}
	cats := make([]string, 0, len(res))
	for c := range res {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return order[cats[i]] < order[cats[j]] })

	fmt.Fprintf(out, "Advisories for farm %d\n", farmID)
	for _, c := range cats {
		fmt.Fprintf(out, "\n[%s]\n", c)
		if len(res[c]) == 0 {
			fmt.Fprintln(out, "- no action needed")
			continue
		}
		for _, m := range res[c] {
			fmt.Fprintf(out, "- %s\n", m)
		}
	}
}

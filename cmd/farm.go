package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/KaramelBytes/agriassist-cli/internal/store"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
)

var (
	farmName     string
	farmCrop     string
	farmAcreage  float64
	farmPlanted  string
	farmSoilType string
	farmRegion   string
)

var farmCmd = &cobra.Command{
	Use:   "farm",
	Short: "Manage farm profiles",
}

// farmInput mirrors the HTTP create request so both surfaces validate alike.
type farmInput struct {
	FarmerName   string  `validate:"required,max=128"`
	CropType     string  `validate:"required,max=64"`
	Acreage      float64 `validate:"gte=0"`
	PlantingDate string  `validate:"required,max=32"`
	SoilType     string  `validate:"max=64"`
	Region       string  `validate:"max=128"`
}

var farmValidate = validator.New()

var farmAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a farm profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := farmInput{
			FarmerName:   farmName,
			CropType:     farmCrop,
			Acreage:      farmAcreage,
			PlantingDate: farmPlanted,
			SoilType:     farmSoilType,
			Region:       farmRegion,
		}
		if err := farmValidate.Struct(in); err != nil {
			return fmt.Errorf("invalid farm profile: %w", err)
		}
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		p := store.FarmProfile{
			FarmerName:   in.FarmerName,
			CropType:     in.CropType,
			Acreage:      in.Acreage,
			PlantingDate: in.PlantingDate,
			SoilType:     in.SoilType,
			Region:       in.Region,
		}
		if err := st.CreateFarm(cmd.Context(), &p); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Farm profile %d created for %s (%s, %.2f acres)\n", p.ID, p.FarmerName, p.CropType, p.Acreage)
		return nil
	},
}

var farmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List farm profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		farms, err := st.ListFarms(cmd.Context())
		if err != nil {
			return err
		}
		if len(farms) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No farm profiles")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tFARMER\tCROP\tACRES\tPLANTED\tSOIL\tREGION")
		for _, f := range farms {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%s\t%s\t%s\n", f.ID, f.FarmerName, f.CropType, f.Acreage, f.PlantingDate, f.SoilType, f.Region)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(farmCmd)
	farmCmd.AddCommand(farmAddCmd)
	farmCmd.AddCommand(farmListCmd)

	farmAddCmd.Flags().StringVar(&farmName, "farmer", "", "farmer name (required)")
	farmAddCmd.Flags().StringVar(&farmCrop, "crop", "", "crop type (required)")
	farmAddCmd.Flags().Float64Var(&farmAcreage, "acreage", 0, "farm size in acres")
	farmAddCmd.Flags().StringVar(&farmPlanted, "planted", "", "planting date, e.g. 2024-06-15 (required)")
	farmAddCmd.Flags().StringVar(&farmSoilType, "soil-type", "", "soil type")
	farmAddCmd.Flags().StringVar(&farmRegion, "region", "", "region")
}

func openStore() (*store.Store, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(c.DatabaseDriver, c.DatabaseDSN, logger)
}

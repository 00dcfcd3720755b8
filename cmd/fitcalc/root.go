package main

import (
	"fmt"
	"os"

	"fitcore/internal/domain"

	"github.com/spf13/cobra"
)

var unitSystem string

var rootCmd = &cobra.Command{
	Use:   "fitcalc",
	Short: "fitcalc runs the fitcore calculators from your terminal",
	Long:  "fitcalc estimates BMI, calorie targets and macro goals, and summarizes program progress and food logs stored as JSON.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if unitSystem != "metric" && unitSystem != "imperial" {
			return fmt.Errorf("--unit must be metric or imperial, got %q", unitSystem)
		}
		return nil
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&unitSystem, "unit", "metric", "Unit system for --weight and --height: metric (kg, cm) or imperial (lb, in)")
}

// units returns the weight and height units selected by --unit.
func units() (domain.WeightUnit, domain.HeightUnit) {
	if unitSystem == "imperial" {
		return domain.Pounds, domain.Inches
	}
	return domain.Kilograms, domain.Centimeters
}

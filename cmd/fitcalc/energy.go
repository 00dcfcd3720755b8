package main

import (
	"fmt"

	"fitcore/internal/app"
	"fitcore/internal/domain"

	"github.com/spf13/cobra"
)

var (
	bodyWeight float64
	bodyHeight float64
	bodyAge    int
	activity   string
	goal       string
)

func profileFromFlags() domain.Profile {
	wu, hu := units()
	return domain.Profile{
		Weight:        bodyWeight,
		WeightUnit:    wu,
		Height:        bodyHeight,
		HeightUnit:    hu,
		AgeYears:      bodyAge,
		ActivityLevel: domain.ActivityLevel(activity),
		Goal:          domain.GoalCategory(goal),
	}
}

var bmiCmd = &cobra.Command{
	Use:   "bmi",
	Short: "Compute body mass index",
	RunE: func(cmd *cobra.Command, args []string) error {
		kg, cm, err := profileFromFlags().Metric()
		if err != nil {
			return err
		}
		bmi := domain.ComputeBMI(kg, cm)
		if bmi == 0 {
			return fmt.Errorf("weight and height must be positive")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "BMI: %.1f (%s)\n", bmi, domain.ClassifyBMI(bmi))
		return nil
	},
}

var caloriesCmd = &cobra.Command{
	Use:   "calories",
	Short: "Estimate the daily calorie target",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := app.BuildGoalsReport(profileFromFlags())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "BMR: %.0f kcal\n", r.BMR)
		fmt.Fprintf(out, "TDEE: %.0f kcal\n", r.TDEE)
		fmt.Fprintf(out, "Target: %d kcal (%s)\n", r.CalorieTarget, goal)
		return nil
	},
}

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Estimate the daily calorie target and split it into macros",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := app.BuildGoalsReport(profileFromFlags())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Calories: %d\nProtein: %.0fg\nCarbs: %.0fg\nFat: %.0fg\n",
			r.CalorieTarget, r.Goals.Protein, r.Goals.Carbs, r.Goals.Fat)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bmiCmd, caloriesCmd, goalsCmd)

	for _, c := range []*cobra.Command{bmiCmd, caloriesCmd, goalsCmd} {
		c.Flags().Float64Var(&bodyWeight, "weight", 0, "Body weight")
		c.Flags().Float64Var(&bodyHeight, "height", 0, "Body height")
		_ = c.MarkFlagRequired("weight")
		_ = c.MarkFlagRequired("height")
	}
	for _, c := range []*cobra.Command{caloriesCmd, goalsCmd} {
		c.Flags().IntVar(&bodyAge, "age", 0, "Age in years")
		c.Flags().StringVar(&activity, "activity", string(domain.ActivityModerate), "Activity level: sedentary, light, moderate, active, very_active")
		c.Flags().StringVar(&goal, "goal", string(domain.GoalMaintenance), "Goal: bulking, cutting, maintenance")
		_ = c.MarkFlagRequired("age")
	}
}

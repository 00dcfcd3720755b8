package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"fitcore/internal/app"
	"fitcore/internal/domain"

	"github.com/spf13/cobra"
)

var (
	programFile string
	entriesFile string
	mealFilter  string
)

func readJSON(path string, dst any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Summarize completion of a training program stored as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		var p domain.Program
		if err := readJSON(programFile, &p); err != nil {
			return err
		}
		sum := app.Summarize(p)

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "WEEK\tDONE\tPROGRESS\tSTATE\n")
		for _, wk := range sum.Weeks {
			state := "open"
			switch {
			case wk.Completed:
				state = "complete"
			case wk.Locked:
				state = "locked"
			}
			fmt.Fprintf(tw, "%d\t%d/%d\t%d%%\t%s\n", wk.Number, wk.Progress.Completed, wk.Progress.Total, wk.Progress.Percentage, state)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Program: %s %d%% (%d/%d workouts)\n",
			sum.Name, sum.Progress.Percentage, sum.Progress.Completed, sum.Progress.Total)
		if sum.ActiveWeek != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Active week: %d\n", *sum.ActiveWeek)
		}
		return nil
	},
}

var totalsCmd = &cobra.Command{
	Use:   "totals",
	Short: "Aggregate a JSON array of food entries per meal",
	RunE: func(cmd *cobra.Command, args []string) error {
		var entries []domain.FoodEntry
		if err := readJSON(entriesFile, &entries); err != nil {
			return err
		}
		if mealFilter != "" {
			meal, err := domain.ParseMealType(mealFilter)
			if err != nil {
				return err
			}
			var kept []domain.FoodEntry
			for e := range domain.FilterByMealType(entries, meal) {
				kept = append(kept, e)
			}
			entries = kept
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "MEAL\tN\tKCAL\tP\tC\tF\n")
		for _, m := range domain.MealBreakdown(entries) {
			fmt.Fprintf(tw, "%s\t%d\t%.0f\t%.1f\t%.1f\t%.1f\n", m.Meal, m.Entries, m.Total.Calories, m.Total.Protein, m.Total.Carbs, m.Total.Fat)
		}
		total := domain.AggregateDaily(entries)
		fmt.Fprintf(tw, "total\t%d\t%.0f\t%.1f\t%.1f\t%.1f\n", len(entries), total.Calories, total.Protein, total.Carbs, total.Fat)
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(progressCmd, totalsCmd)

	progressCmd.Flags().StringVar(&programFile, "file", "", "Program JSON file")
	_ = progressCmd.MarkFlagRequired("file")

	totalsCmd.Flags().StringVar(&entriesFile, "file", "", "Food entries JSON file")
	totalsCmd.Flags().StringVar(&mealFilter, "meal", "", "Only count one meal type")
	_ = totalsCmd.MarkFlagRequired("file")
}

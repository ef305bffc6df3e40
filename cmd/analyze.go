package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/locality-lens/internal/model"
)

var (
	analyzeLocation string
	analyzeProfile  string
	analyzeAll      bool
	analyzeJSON     bool
	analyzeNoSave   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [location]",
	Short: "Run one analysis and print the result",
	Long:  "Location is a free-text address or a \"lat, lon\" pair. The profile shapes which metrics are selected.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		location := analyzeLocation
		if location == "" {
			location = strings.Join(args, " ")
		}

		e, err := initEnv(ctx, "analyze")
		if err != nil {
			return err
		}
		defer e.Close()

		input := model.RawInput{
			Location:   location,
			Profile:    analyzeProfile,
			AllMetrics: analyzeAll,
		}

		var run *model.Run
		if !analyzeNoSave {
			run, err = e.Store.CreateRun(ctx, input)
			if err != nil {
				return err
			}
			if err := e.Store.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning); err != nil {
				return err
			}
		}

		result := e.Workflow.Run(ctx, input)

		if run != nil {
			result.RunID = run.ID
			if err := e.Store.UpdateRunResult(ctx, run.ID, result); err != nil {
				zap.L().Warn("persist result failed", zap.String("run_id", run.ID), zap.Error(err))
			}
		}

		if analyzeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return eris.Wrap(err, "encode result")
			}
		} else {
			printResult(result)
		}

		if result.Error != nil {
			return eris.Errorf("%s: %s", result.Error.Kind, result.Error.Message)
		}
		return nil
	},
}

func printResult(result *model.AnalysisResult) {
	if result.Address != "" {
		fmt.Printf("Location: %s\n", result.Address)
	}
	if result.Coordinates != nil {
		fmt.Printf("Coordinates: %s\n", result.Coordinates)
	}
	fmt.Println()

	for _, mv := range result.Statistics {
		if mv.Value == nil {
			fmt.Printf("  %-32s no data\n", mv.Name)
			continue
		}
		fmt.Printf("  %-32s %.2f %s\n", mv.Name, *mv.Value, mv.Unit)
	}
	if len(result.Statistics) > 0 {
		fmt.Println()
	}

	if result.Summary != "" {
		fmt.Println(result.Summary)
	}
	for _, w := range result.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeLocation, "location", "", "address or \"lat, lon\" pair (alternative to the positional argument)")
	analyzeCmd.Flags().StringVar(&analyzeProfile, "profile", "Custom", "user profile (e.g. \"Family with Kids\", \"Student\", or free text)")
	analyzeCmd.Flags().BoolVar(&analyzeAll, "all-metrics", false, "compute the full catalog instead of the profile selection")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "emit the full result as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeNoSave, "no-save", false, "do not persist the run")
	rootCmd.AddCommand(analyzeCmd)
}

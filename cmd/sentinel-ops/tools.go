package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one remediation cycle and print the recorded events",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := buildStack()
		if err != nil {
			return err
		}
		defer st.Close()

		// A one-shot scan acts regardless of the configured start mode.
		st.remediator.Enable()

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		events := st.ops.ScanOnce(ctx)
		if len(events) == 0 {
			fmt.Println("no anomalies detected")
			return nil
		}

		reports, err := st.ops.Reports()
		if err != nil {
			return err
		}
		return printJSON(map[string]any{
			"events":  events,
			"reports": reports,
		})
	},
}

var hygieneCmd = &cobra.Command{
	Use:   "hygiene",
	Short: "Compute the current infrastructure hygiene score",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := buildStack()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		score, err := st.ops.Hygiene(ctx)
		if err != nil {
			return err
		}
		return printJSON(score)
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

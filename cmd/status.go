package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tanachan3/looqn-all/internal/journal"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent generation runs from the journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := journal.Open(dataDir)
		if err != nil {
			return fmt.Errorf("opening journal: %w", err)
		}
		defer s.Close()

		ctx := context.Background()

		total, degraded, err := s.Counts(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Runs: %d total, %d degraded\n\n", total, degraded)

		entries, err := s.Recent(ctx, statusLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}

		for _, e := range entries {
			flag := ""
			if e.Degraded {
				flag = " [degraded]"
			}
			fmt.Printf("%s  (%.4f, %.4f) %s r=%dm count=%d -> %d messages%s\n",
				e.StartedAt.Format("2006-01-02 15:04:05"),
				e.Latitude, e.Longitude, e.Language, e.RadiusMeters, e.Count,
				e.MessageCount, flag)
			if len(e.Landmarks) > 0 {
				fmt.Printf("    landmarks: %s\n", strings.Join(e.Landmarks, ", "))
			}
			if len(e.Personas) > 0 {
				fmt.Printf("    personas:  %s\n", strings.Join(e.Personas, ", "))
			}
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 10, "Number of recent runs to show")
	rootCmd.AddCommand(statusCmd)
}

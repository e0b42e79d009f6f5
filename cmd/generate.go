package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tanachan3/looqn-all/internal/request"
)

var (
	genLat      float64
	genLon      float64
	genCount    int
	genLanguage string
	genRadius   int
	genHint     string
	genNouns    []string
	genPersonas []string
	genDebug    bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one generation request from the command line",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lon") {
			return fmt.Errorf("--lat and --lon are required")
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		p, closeJournal, err := buildPipeline(ctx)
		if err != nil {
			return err
		}
		defer closeJournal()

		payload := request.Payload{
			Position:     map[string]any{"latitude": genLat, "longitude": genLon},
			Language:     genLanguage,
			RadiusMeters: genRadius,
			Count:        genCount,
			PlaceHint:    genHint,
			Debug:        genDebug,
		}
		for _, n := range genNouns {
			payload.ProperNouns = append(payload.ProperNouns, n)
		}
		for _, pers := range genPersonas {
			payload.Personas = append(payload.Personas, pers)
		}

		result, err := p.Run(ctx, payload)
		if err != nil {
			return err
		}

		for i, m := range result.Messages {
			fmt.Printf("%d. %s\n", i+1, m)
		}
		if len(result.Messages) == 0 {
			fmt.Println("No messages generated.")
		}

		if genDebug && len(result.Debug) > 0 {
			out, err := json.MarshalIndent(result.Debug, "", "  ")
			if err == nil {
				fmt.Fprintf(os.Stderr, "%s\n", out)
			}
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().Float64Var(&genLat, "lat", 0, "Latitude of the query coordinate")
	generateCmd.Flags().Float64Var(&genLon, "lon", 0, "Longitude of the query coordinate")
	generateCmd.Flags().IntVar(&genCount, "count", 1, "Number of messages to generate (1-5)")
	generateCmd.Flags().StringVar(&genLanguage, "language", "", "Target language (defaults to Japanese)")
	generateCmd.Flags().IntVar(&genRadius, "radius", 500, "Landmark search radius in meters (100-1500)")
	generateCmd.Flags().StringVar(&genHint, "hint", "", "Optional place hint")
	generateCmd.Flags().StringArrayVar(&genNouns, "noun", nil, "Caller-supplied landmark name (repeatable)")
	generateCmd.Flags().StringArrayVar(&genPersonas, "persona", nil, "Caller-supplied persona label (repeatable)")
	generateCmd.Flags().BoolVar(&genDebug, "debug", false, "Print per-message persona/style mapping to stderr")
	rootCmd.AddCommand(generateCmd)
}

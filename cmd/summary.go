package cmd

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/crossview/internal/config"
	"github.com/lehigh-university-libraries/crossview/internal/dashboard"
	"github.com/lehigh-university-libraries/crossview/internal/report"
	"github.com/lehigh-university-libraries/crossview/internal/views"
)

func newSummaryCmd(flags *globalFlags) *cobra.Command {
	var (
		yearFrom    float64
		yearTo      float64
		countries   []string
		movements   []string
		format      string
		output      string
		top         int
		limit       int
		threshold   string
		clusterAttr string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print what every dashboard panel shows",
		Long: `Loads the dataset into a dashboard, applies the given filters the way a user
would click them, and prints the content of every panel.

Filters apply to every panel except the one that owns them: --country filters
everything but the country counts, --year-from/--year-to everything but the
year histogram, and --movement everything but the clusters.`,
		Example: `  # Summarize the whole dataset
  crossview summary --dataset artworks.csv

  # French and Spanish artworks from the 19th century, as YAML
  crossview summary --dataset artworks.csv --country France --country Spain \
    --year-from 1800 --year-to 1899 --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, settings, err := flags.resolve(config.ResolveOptions{
				CLIThreshold:        threshold,
				CLIClusterAttribute: clusterAttr,
			})
			if err != nil {
				return err
			}

			records, err := loadDataset(settings, limit)
			if err != nil {
				return err
			}

			opts := dashboardOptions(settings)
			opts.Fetcher = nil
			session, err := dashboard.New("summary", records, opts)
			if err != nil {
				return err
			}

			actions := summaryActions(yearFrom, yearTo, countries, movements)
			for _, a := range actions {
				if _, err := session.Apply(cmd.Context(), a); err != nil {
					return err
				}
			}

			sum := report.FromSession(session, settings.Dataset, top)
			if output != "" {
				if err := report.Save(output, sum, format); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Summary saved to: %s\n", output)
				return nil
			}
			return report.Write(cmd.OutOrStdout(), sum, format)
		},
	}

	cmd.Flags().Float64Var(&yearFrom, "year-from", math.NaN(), "Keep artworks created in or after this year")
	cmd.Flags().Float64Var(&yearTo, "year-to", math.NaN(), "Keep artworks created in or before this year")
	cmd.Flags().StringSliceVar(&countries, "country", nil, "Keep artworks by creators from this country (repeatable)")
	cmd.Flags().StringSliceVar(&movements, "movement", nil, "Keep artworks of this cluster category, \"Other\" included (repeatable)")
	cmd.Flags().StringVarP(&format, "format", "f", report.FormatText, "Output format: "+strings.Join(report.Formats, "|"))
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the summary to a file instead of stdout")
	cmd.Flags().IntVar(&top, "top", 10, "Entries per panel (0 for all)")
	cmd.Flags().IntVar(&limit, "limit", -1, "Load at most this many records (-1 for all)")
	cmd.Flags().StringVar(&threshold, "threshold", "", "Fraction of artworks at or below which a category joins \"Other\" (default 0.05)")
	cmd.Flags().StringVar(&clusterAttr, "cluster-attribute", "", "Attribute the cluster panel groups by (default movement)")

	return cmd
}

// summaryActions turns filter flags into panel interactions. An open year
// bound extends to infinity.
func summaryActions(yearFrom, yearTo float64, countries, movements []string) []dashboard.Action {
	var actions []dashboard.Action
	for _, c := range countries {
		actions = append(actions, dashboard.Action{Kind: dashboard.ActionToggle, View: views.GeographyID, Key: c})
	}
	if !math.IsNaN(yearFrom) || !math.IsNaN(yearTo) {
		lo, hi := yearFrom, yearTo
		if math.IsNaN(lo) {
			lo = math.Inf(-1)
		}
		if math.IsNaN(hi) {
			hi = math.Inf(1)
		}
		actions = append(actions, dashboard.Action{Kind: dashboard.ActionBrush, View: views.TimelineID, Lo: lo, Hi: hi})
	}
	for _, m := range movements {
		actions = append(actions, dashboard.Action{Kind: dashboard.ActionToggle, View: views.ClusterID, Key: m})
	}
	return actions
}


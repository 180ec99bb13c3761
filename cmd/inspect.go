package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/crossview/internal/config"
	"github.com/lehigh-university-libraries/crossview/internal/dashboard"
	"github.com/lehigh-university-libraries/crossview/internal/images"
	"github.com/lehigh-university-libraries/crossview/internal/views"
)

func newInspectCmd(flags *globalFlags) *cobra.Command {
	var (
		start       int
		count       int
		country     string
		fetchImages bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Page through artwork detail cards",
		Long: `Shows artworks one card at a time, the way the detail panel pages through
the current selection. Blank values are shown as "Unknown".

With --images, the preview size of every listed artwork is measured from its
image header, fetching up to --concurrency images at once.`,
		Example: `  # First five artworks
  crossview inspect --dataset artworks.csv --count 5

  # Italian artworks 10-19 with image dimensions
  crossview inspect --dataset artworks.csv --country Italy --start 10 --count 10 --images`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, settings, err := flags.resolve(config.ResolveOptions{})
			if err != nil {
				return err
			}

			records, err := loadDataset(settings, -1)
			if err != nil {
				return err
			}

			opts := dashboardOptions(settings)
			session, err := dashboard.New("inspect", records, opts)
			if err != nil {
				return err
			}
			if country != "" {
				if _, err := session.Apply(cmd.Context(), dashboard.Action{Kind: dashboard.ActionToggle, View: views.GeographyID, Key: country}); err != nil {
					return err
				}
			}

			subset := session.Coordinator().FilteredFor(views.DetailID)
			if start < 0 || (len(subset) > 0 && start >= len(subset)) {
				return fmt.Errorf("start %d out of range: %d artworks match", start, len(subset))
			}

			var metas map[string]images.Meta
			if fetchImages {
				end := min(start+count, len(subset))
				urls := make([]string, 0, end-start)
				for _, r := range subset[start:end] {
					urls = append(urls, strings.TrimSpace(r.ImageURL))
				}
				metas, err = opts.Fetcher.Prefetch(cmd.Context(), urls, concurrency)
				if err != nil {
					return fmt.Errorf("failed to prefetch images: %w", err)
				}
			}

			for range start {
				if _, err := session.Apply(cmd.Context(), dashboard.Action{Kind: dashboard.ActionNext, View: views.DetailID}); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			for i := 0; i < count; i++ {
				if req, ok := session.Detail.PendingImage(); ok {
					if meta, found := metas[req.URL]; found {
						session.Detail.ApplyImage(req, meta)
					}
				}

				snap := session.Detail.Snapshot().(views.DetailSnapshot)
				if snap.Card == nil {
					fmt.Fprintln(out, "No artworks match.")
					return nil
				}
				printCard(out, snap)

				if snap.Position == snap.Total {
					break
				}
				if _, err := session.Apply(cmd.Context(), dashboard.Action{Kind: dashboard.ActionNext, View: views.DetailID}); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&start, "start", 0, "Zero-based index of the first artwork")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of artworks to show")
	cmd.Flags().StringVar(&country, "country", "", "Only artworks by creators from this country")
	cmd.Flags().BoolVar(&fetchImages, "images", false, "Measure artwork images")
	cmd.Flags().IntVar(&concurrency, "concurrency", images.DefaultConcurrency, "Parallel image requests")

	return cmd
}

func printCard(w io.Writer, snap views.DetailSnapshot) {
	c := snap.Card
	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 70))
	fmt.Fprintf(w, "%d / %d  %s\n", snap.Position, snap.Total, c.Title)
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "Artist:   %s\n", c.Artist)
	fmt.Fprintf(w, "Location: %s\n", c.Where)
	fmt.Fprintf(w, "Movement: %s\n", c.Movement)
	fmt.Fprintf(w, "Genre:    %s\n", c.Genre)
	fmt.Fprintf(w, "Material: %s\n", c.Material)
	if c.ImageURL != "" {
		fmt.Fprintf(w, "Image:    %s\n", c.ImageURL)
	}
	if c.Image != nil {
		fmt.Fprintf(w, "Size:     %dx%d %s (preview %.0fx%.0f)\n", c.Image.Width, c.Image.Height, c.Image.Format, c.Preview[0], c.Preview[1])
	}
	if c.WikidataURL != "" {
		fmt.Fprintf(w, "Wikidata: %s\n", c.WikidataURL)
	}
}

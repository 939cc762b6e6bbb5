package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/astropenguin/pazel/core"
	"github.com/astropenguin/pazel/plot"
)

func newShowCmd() *cobra.Command {
	var date, timezone, ext string

	cmd := &cobra.Command{
		Use:   "show [location query...]",
		Short: "Plot one day of trajectories and open the chart",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := newSession(ctx, args, date, timezone)
			if err != nil {
				return err
			}
			defer s.persist(ctx)

			sampler := core.NewSampler(s.engine, core.WithLogger(s.log))
			trajectories := sampler.SampleAll(ctx, s.objects, s.loc, s.date, s.tz)
			if len(trajectories) == 0 {
				return fmt.Errorf("no object in the catalog could be sampled")
			}

			chart := plot.Chart{
				Location:     s.loc,
				Date:         s.date,
				Timezone:     s.tz,
				Trajectories: trajectories,
			}
			path := filepath.Join(os.TempDir(), chartName(s.key, s.date, ext))
			if err := chart.Save(path); err != nil {
				return err
			}

			if err := openViewer(path); err != nil {
				// No opener on this box; the path is still the product.
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "date to sample, YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&timezone, "timezone", "", `timezone: a location query, "UTC" or "LST" (default: the site's own)`)
	cmd.Flags().StringVar(&ext, "ext", plot.DefaultFormat, "chart format")
	return cmd
}

// openViewer hands the chart to the platform opener without waiting on it.
func openViewer(path string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", path).Start()
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path).Start()
	default:
		return exec.Command("xdg-open", path).Start()
	}
}

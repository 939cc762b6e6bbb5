package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/astropenguin/pazel/core"
	"github.com/astropenguin/pazel/plot"
)

func newSaveCmd() *cobra.Command {
	var date, timezone, ext string

	cmd := &cobra.Command{
		Use:   "save [location query...]",
		Short: "Plot one day of trajectories into a file",
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
			path := chartName(s.key, s.date, ext)
			if err := chart.Save(path); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "date to sample, YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&timezone, "timezone", "", `timezone: a location query, "UTC" or "LST" (default: the site's own)`)
	cmd.Flags().StringVar(&ext, "ext", plot.DefaultFormat, "output format, by extension")
	return cmd
}

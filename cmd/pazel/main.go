package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	flagLocations string
	flagObjects   string
	flagLogLevel  string
	flagLogFormat string
)

func main() {
	root := &cobra.Command{
		Use:           "pazel",
		Short:         "Azimuth/elevation planning and live monitoring for celestial objects",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional; a missing file is the normal case.
			_ = godotenv.Load()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flagLocations, "locations", "", "location directory file (default: <user config dir>/pazel/locations.json)")
	pf.StringVar(&flagObjects, "objects", "", "object catalog file (default: <user config dir>/pazel/objects.toml)")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&flagLogFormat, "log-format", "", "log format: text or json")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newShowCmd())
	root.AddCommand(newSaveCmd())
	root.AddCommand(newListCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "pazel:", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "pazel 0.1.0-dev")
		},
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/octaai/octaplay/internal/app"
)

func newRootCommand() *cobra.Command {
	var p app.Params

	cmd := &cobra.Command{
		Use:   "octaplay [sources...]",
		Short: "Terminal music player for files, folders, URLs and song feeds",
		Long: `octaplay plays local audio files, whole folders, remote audio URLs and
JSON song feeds. Sources given on the command line replace the configured
library and start playing the first track.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Sources = args
			return app.Run(cmd.Context(), p)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&p.ConfigPath, "config", "c", "", "config file (merged over the default locations)")
	f.StringVar(&p.LogLevel, "log-level", "", "log level: debug, info, warn or error")
	f.BoolVar(&p.NoResume, "no-resume", false, "do not restore the last session position")
	f.BoolVarP(&p.Shuffle, "shuffle", "s", false, "start with shuffle on")
	f.BoolVarP(&p.Repeat, "repeat", "r", false, "start with repeat on")

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/ffstatic/internal/config"
)

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.stdout, "ffstatic %s\n", Version)
			fmt.Fprintf(a.stdout, "default ffmpeg release: %s\n", config.DefaultRelease)
			fmt.Fprintf(a.stdout, "built with %s for %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}

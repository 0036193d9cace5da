package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/ffstatic/internal/installer"
)

func (a *app) pathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the path of the ffmpeg binary",
		Long: `Print the absolute path the ffmpeg binary is installed at. The path is
printed whether or not the binary exists yet; FFMPEG_BIN is printed as is.
Unsupported platforms fail.`,
		Args: cobra.NoArgs,
		RunE: a.runPath,
	}
}

func (a *app) runPath(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	path, ok := installer.New(cfg).BinaryPath()
	if !ok {
		return &installer.UnsupportedPlatformError{Key: cfg.Key()}
	}

	fmt.Fprintln(a.stdout, path)
	return nil
}

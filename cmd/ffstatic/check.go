package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/ffstatic/internal/installer"
)

func (a *app) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [binary]",
		Short: "Verify that the installed ffmpeg binary runs",
		Long: `Verify that the binary path is absolute, names an executable regular
file, and that running it with --help succeeds. Without an argument the
configured binary path is checked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.runCheck,
	}
}

func (a *app) runCheck(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	} else {
		cfg, err := a.loadConfig(cmd)
		if err != nil {
			return err
		}
		var ok bool
		if path, ok = installer.New(cfg).BinaryPath(); !ok {
			return &installer.UnsupportedPlatformError{Key: cfg.Key()}
		}
	}

	if err := installer.Check(cmd.Context(), path); err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "%s: ok\n", path)
	return nil
}

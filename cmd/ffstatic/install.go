package main

import (
	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/ffstatic/internal/config"
	"github.com/ZebulonRouseFrantzich/ffstatic/internal/installer"
	"github.com/ZebulonRouseFrantzich/ffstatic/internal/progress"
	"github.com/ZebulonRouseFrantzich/ffstatic/internal/transport"
)

func (a *app) installCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Download ffmpeg into <dir>/bin unless it is already there",
		Args:  cobra.NoArgs,
		RunE:  a.runInstall,
	}
}

func (a *app) runInstall(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []installer.Option{
		installer.WithLogger(a.logger),
		installer.WithEngine(transport.NewEngine(transport.WithLogger(a.logger))),
	}
	if !cfg.Quiet {
		indicator := progress.NewIndicator(a.stderr, "Downloading ffmpeg "+cfg.ReleaseName)
		opts = append(opts, installer.WithProgress(indicator))
	}

	result, err := installer.New(cfg, opts...).Install(cmd.Context())
	if err != nil {
		return err
	}

	switch {
	case result.Overridden:
		a.logger.Info("using ffmpeg from "+config.EnvBinary, "path", result.Path)
	case !result.AlreadyInstalled:
		a.logger.Info("ffmpeg installed", "path", result.Path)
	}
	return nil
}

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ZebulonRouseFrantzich/ffstatic/internal/config"
	"github.com/ZebulonRouseFrantzich/ffstatic/internal/platform"
)

// app holds the state shared by all commands of one invocation.
type app struct {
	v        *viper.Viper
	detector platform.Detector
	stdout   io.Writer
	stderr   io.Writer
	logger   *slog.Logger
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		v:        viper.New(),
		detector: platform.NewDetector(),
		stdout:   stdout,
		stderr:   stderr,
	}

	root := &cobra.Command{
		Use:   "ffstatic",
		Short: "Install a prebuilt ffmpeg binary",
		Long: `ffstatic downloads a static ffmpeg build for the current platform into
<dir>/bin and keeps its license next to it.

Running ffstatic without a command installs the binary. Settings come from
flags, then environment variables (FFMPEG_BIN, npm_config_platform,
npm_config_arch, FFMPEG_BINARY_RELEASE, FFMPEG_BINARY_CDNURL, ...), then
the ffstatic.lua manifest in <dir>.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Args:              cobra.NoArgs,
		PersistentPreRunE: a.setup,
		RunE:              a.runInstall,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	addConfigFlags(root.PersistentFlags())

	root.AddCommand(
		a.installCommand(),
		a.pathCommand(),
		a.checkCommand(),
		a.versionCommand(),
	)

	return root
}

func addConfigFlags(flags *pflag.FlagSet) {
	flags.String(config.KeyDir, "", "package directory holding bin/ and "+config.ManifestFile+" (default: directory of this executable)")
	flags.String(config.KeyPlatform, "", "target platform: darwin, freebsd, linux or win32 (default: detected)")
	flags.String(config.KeyArch, "", "target architecture: x64, ia32, arm64 or arm (default: detected)")
	flags.String(config.KeyRelease, "", "release tag to install (default: "+config.DefaultRelease+")")
	flags.String(config.KeyReleaseName, "", "release name shown while downloading (default: release tag)")
	flags.String(config.KeyBaseURL, "", "base URL of the release host or a mirror")
	flags.BoolP(config.KeyQuiet, "q", false, "only report warnings and errors")
	flags.BoolP(config.KeyVerbose, "v", false, "enable debug logging")
}

// setup binds flags and environment and creates the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	if err := config.BindEnv(a.v); err != nil {
		return err
	}

	a.logger = newLogger(a.stderr, a.v.GetBool(config.KeyVerbose), a.v.GetBool(config.KeyQuiet))
	slog.SetDefault(a.logger)
	return nil
}

// loadConfig assembles the configuration for cmd.
func (a *app) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(cmd.Context(), config.LoadOptions{
		Viper:    a.v,
		Detector: a.detector,
		Logger:   a.logger,
	})
	var parseErr *config.ParseError
	if errors.As(err, &parseErr) {
		return config.Config{}, errors.New(config.FormatError(err, a.v.GetBool(config.KeyVerbose)))
	}
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

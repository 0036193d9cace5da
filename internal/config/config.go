package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/ZebulonRouseFrantzich/ffstatic/internal/artifact"
	"github.com/ZebulonRouseFrantzich/ffstatic/internal/platform"
)

// Config is the effective configuration of one invocation.
type Config struct {
	Dir         string // package directory holding bin/ and the manifest
	BinaryPath  string // explicit binary path; bypasses installation when set
	Platform    string
	Arch        string
	Release     string
	ReleaseName string
	BaseURL     string
	Quiet       bool
	Debug       bool
}

// Key returns the target platform/architecture pair.
func (c Config) Key() platform.Key {
	return platform.Key{Platform: c.Platform, Arch: c.Arch}
}

// ArtifactRelease returns the release the artifacts are located in.
func (c Config) ArtifactRelease() artifact.Release {
	return artifact.Release{Tag: c.Release, Name: c.ReleaseName, BaseURL: c.BaseURL}
}

// Overridden reports whether an explicit binary path bypasses installation.
func (c Config) Overridden() bool {
	return c.BinaryPath != ""
}

// LoadOptions controls Load.
type LoadOptions struct {
	// Viper supplies flag bindings. A fresh instance is used when nil.
	Viper *viper.Viper
	// Detector reports the host platform. The runtime detector is used
	// when nil.
	Detector platform.Detector
	Logger   Logger
}

// executablePath locates the running binary; the package directory
// defaults to its directory.
var executablePath = os.Executable

// envBindings maps each viper key to its environment variables.
var envBindings = map[string][]string{
	KeyDir:         {EnvDir},
	KeyBinary:      {EnvBinary},
	KeyPlatform:    {EnvNpmPlatform, EnvPlatform},
	KeyArch:        {EnvNpmArch, EnvArch},
	KeyRelease:     {EnvRelease},
	KeyReleaseName: {EnvReleaseName},
	KeyBaseURL:     {EnvBaseURL},
	KeyVerbose:     {EnvDebug},
}

// BindEnv binds every setting to its environment variables.
func BindEnv(v *viper.Viper) error {
	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}

// Load assembles the configuration. Sources are layered, highest first:
// flags bound to the viper instance, environment variables, the package
// manifest, runtime detection and built-in defaults.
func Load(ctx context.Context, opts LoadOptions) (Config, error) {
	select {
	case <-ctx.Done():
		return Config{}, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := opts.Viper
	if v == nil {
		v = viper.New()
	}
	detector := opts.Detector
	if detector == nil {
		detector = platform.NewDetector()
	}
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	if err := BindEnv(v); err != nil {
		return Config{}, err
	}

	info, err := detector.Detect(ctx)
	if err != nil {
		return Config{}, fmt.Errorf("detect platform: %w", err)
	}

	v.SetDefault(KeyPlatform, info.Platform)
	v.SetDefault(KeyArch, info.Arch)
	v.SetDefault(KeyRelease, DefaultRelease)
	v.SetDefault(KeyBaseURL, DefaultBaseURL)

	dir, err := packageDir(v.GetString(KeyDir))
	if err != nil {
		return Config{}, err
	}

	// The manifest sees the target platform, which may differ from the host.
	target := *info
	target.Platform = v.GetString(KeyPlatform)
	target.Arch = v.GetString(KeyArch)

	manifestPath := filepath.Join(dir, ManifestFile)
	manifest, err := LoadManifest(ctx, manifestPath, &target)
	if err != nil {
		return Config{}, fmt.Errorf("load %s: %w", manifestPath, err)
	}
	if err := v.MergeConfigMap(manifest.settings()); err != nil {
		return Config{}, fmt.Errorf("merge manifest: %w", err)
	}

	cfg := Config{
		Dir:         dir,
		BinaryPath:  v.GetString(KeyBinary),
		Platform:    v.GetString(KeyPlatform),
		Arch:        v.GetString(KeyArch),
		Release:     v.GetString(KeyRelease),
		ReleaseName: v.GetString(KeyReleaseName),
		BaseURL:     v.GetString(KeyBaseURL),
		Quiet:       v.GetBool(KeyQuiet),
		Debug:       v.GetBool(KeyVerbose),
	}
	if cfg.ReleaseName == "" {
		cfg.ReleaseName = cfg.Release
	}

	logger.Debug("configuration loaded",
		"dir", cfg.Dir,
		"key", cfg.Key().String(),
		"release", cfg.Release,
		"base_url", cfg.BaseURL,
		"override", cfg.BinaryPath)

	return cfg, nil
}

// settings returns the fields the manifest sets, keyed for viper.
func (m Manifest) settings() map[string]any {
	settings := make(map[string]any)
	if m.ReleaseTag != "" {
		settings[KeyRelease] = m.ReleaseTag
	}
	if m.ReleaseName != "" {
		settings[KeyReleaseName] = m.ReleaseName
	}
	if m.BinaryURL != "" {
		settings[KeyBaseURL] = m.BinaryURL
	}
	return settings
}

// packageDir returns dir made absolute, or the directory of the running
// executable when dir is empty.
func packageDir(dir string) (string, error) {
	if dir == "" {
		exe, err := executablePath()
		if err != nil {
			return "", fmt.Errorf("locate executable: %w", err)
		}
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		dir = filepath.Dir(exe)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve package dir: %w", err)
	}
	return abs, nil
}

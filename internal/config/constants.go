package config

const (
	// DefaultBaseURL hosts the published release artifacts.
	DefaultBaseURL = "https://github.com/eugeneware/ffmpeg-static/releases/download"
	// DefaultRelease is the release tag installed when nothing overrides it.
	DefaultRelease = "b6.0"
	// ManifestFile is the package manifest looked up in the package directory.
	ManifestFile = "ffstatic.lua"
	// MaxManifestSize bounds the manifest read from disk.
	MaxManifestSize = 1 << 20
)

// Environment variables. Where a setting has two names, the first one set
// wins.
const (
	EnvBinary      = "FFMPEG_BIN"
	EnvNpmPlatform = "npm_config_platform"
	EnvPlatform    = "FFSTATIC_PLATFORM"
	EnvNpmArch     = "npm_config_arch"
	EnvArch        = "FFSTATIC_ARCH"
	EnvRelease     = "FFMPEG_BINARY_RELEASE"
	EnvReleaseName = "FFMPEG_BINARY_RELEASE_NAME"
	EnvBaseURL     = "FFMPEG_BINARY_CDNURL"
	EnvDir         = "FFSTATIC_DIR"
	EnvDebug       = "FFSTATIC_DEBUG"
)

// Viper keys. They double as the CLI flag names.
const (
	KeyDir         = "dir"
	KeyBinary      = "binary"
	KeyPlatform    = "platform"
	KeyArch        = "arch"
	KeyRelease     = "release"
	KeyReleaseName = "release-name"
	KeyBaseURL     = "base-url"
	KeyQuiet       = "quiet"
	KeyVerbose     = "verbose"
)

// Lua schema field names and globals
const (
	luaGlobalManifest = "ffstatic"
	luaFieldTag       = "binary_release_tag"
	luaFieldName      = "binary_release_name"
	luaFieldURL       = "binary_url"
)

// Package config assembles the effective configuration of an ffstatic
// invocation.
//
// # Sources
//
// Settings are layered, highest precedence first:
//
//  1. Command-line flags bound to the viper instance
//  2. Environment variables (FFMPEG_BIN, npm_config_platform, ...)
//  3. The package manifest, ffstatic.lua in the package directory
//  4. Runtime platform detection
//  5. Built-in defaults (release b6.0, the GitHub release host)
//
// The package directory itself comes from --dir or FFSTATIC_DIR, falling
// back to the directory of the running executable.
//
// # Manifest
//
// The manifest is a Lua file evaluated with gopher-lua in a restricted
// sandbox. It must define a global "ffstatic" table:
//
//	ffstatic = {
//	  binary_release_tag = "b6.0",
//	  binary_release_name = "6.0",
//	  binary_url = platform.when(platform.is_linux, "https://mirror.example/ffmpeg"),
//	}
//
// A read-only "platform" table describing the target platform is
// available while the manifest runs. Fields that evaluate to nil are
// treated as unset.
//
// The sandbox removes os, io, debug, every code loading function and the
// raw table and metatable accessors. Evaluation is bounded by the caller's
// context, or by DefaultParseTimeout when the context has no deadline.
// Manifests larger than MaxManifestSize are rejected.
//
// # Error Types
//
// Manifest problems are reported as *ParseError, which carries a short
// message and the raw Lua detail. FormatError renders one for display.
package config

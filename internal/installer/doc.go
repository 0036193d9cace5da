// Package installer provisions the ffmpeg binary into a package directory.
//
// An Installer runs a small state machine:
//
//	Start ──► AlreadyInstalled ──────────────────────────────────► Done
//	  │
//	  └─────► DownloadingBinary ─► SettingPermissions ─► DownloadingLicense ─► Done
//
// Any failure moves to FatalExit, except a license that the release host
// answers with 404, which is logged as a warning and ends in Done. When an
// explicit binary path is configured the machine goes straight from Start
// to Done without touching the filesystem or the network.
//
// Downloads hold a lock file next to the binary so two processes sharing a
// package directory do not write the same file. A process that finds the
// binary in place once it holds the lock reports AlreadyInstalled.
//
// Check runs the post-install smoke test against an installed binary.
package installer

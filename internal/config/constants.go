package config

// Default names of the registration macro and the application attribute.
const (
	DefaultMacro     = "bounds"
	DefaultAttribute = "bound_alias"
)

// SourceFileExt is the host-file extension processed when a directory is given.
const SourceFileExt = ".rs"

// ConfigFileNames are looked up, in order, in every directory FindConfig visits.
var ConfigFileNames = []string{"boundstore.yaml", "boundstore.yml"}

// Colour modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// DefaultWidth is the wrap width of rendered diagnostics.
const DefaultWidth = 100

// Version is reported by `boundstore version`.
// Can be set at build time using: -ldflags "-X github.com/funvibe/boundstore/internal/config.Version=..."
var Version = "0.1.0"

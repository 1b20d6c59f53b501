package constants

// Path limits
const (
	MaxPathLen = 4096 // Longest accepted path, in bytes, excluding the trailing separator
	Separator  = '/'
)

// Configuration defaults
const (
	DefaultArenaSize = "1 MiB"
	DefaultEditor    = "vi"
	ConfigName       = ".bulkmv"
	ConfigType       = "yaml"
	EnvPrefix        = "BULKMV"
	TempPrefix       = ".bulkmv-"
)

// File permissions
const (
	StandardDirPerms  = 0o755 // Standard directory permissions
	StandardFilePerms = 0o644 // Standard file permissions
)

// Process exit statuses
const (
	ExitOK        = 0
	ExitFatal     = 1 // Usage errors, aborted runs, resource exhaustion
	ExitConflicts = 2 // Unresolved naming conflicts, nothing renamed
	ExitMismatch  = 3 // Some planned renames failed, were skipped or went uncounted
)

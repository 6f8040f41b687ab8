package cli

// Config holds the configuration of one generator run.
type Config struct {
	// Directories lists the directories to scan. A "/..." suffix scans
	// recursively, like the go tool.
	Directories []string

	// ModuleName overrides the module path read from go.mod.
	ModuleName string
}

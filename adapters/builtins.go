package adapters

import "github.com/brettbedarf/datanode/config"

type BuiltInAdapterType = string

const (
	FileAdapterType  BuiltInAdapterType = "file"
	HTTPAdapterType  BuiltInAdapterType = "http"
	HTTPSAdapterType BuiltInAdapterType = "https"
)

// RegisterBuiltins registers all built-in node openers with
// [datanode.RegisterScheme] by default or only the specific ones if keys are
// provided. Nodes are configured from cfg; nil means defaults.
func RegisterBuiltins(cfg *config.Config, adapters ...BuiltInAdapterType) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	if len(adapters) == 0 {
		// Include all built-in adapters here when adding implementations
		adapters = append(adapters, FileAdapterType, HTTPAdapterType, HTTPSAdapterType)
	}

	for _, key := range adapters {
		switch key {
		case FileAdapterType:
			RegisterFile(FileOptionsFromConfig(cfg)...)
		case HTTPAdapterType, HTTPSAdapterType:
			RegisterHTTP(key, HTTPOptionsFromConfig(cfg)...)
		}
	}
}

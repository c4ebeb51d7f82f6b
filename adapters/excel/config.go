package excel

import (
	"corrscreen/adapters/datareadiness/coercer"
)

// ReaderConfig holds configuration for reading a data file
type ReaderConfig struct {
	FilePath       string                 `json:"file_path" mapstructure:"file_path"`
	Sheet          string                 `json:"sheet" mapstructure:"sheet"`         // XLSX sheet; first sheet when empty
	Delimiter      string                 `json:"delimiter" mapstructure:"delimiter"` // CSV delimiter; inferred from extension when empty
	CoercionConfig coercer.CoercionConfig `json:"coercion_config" mapstructure:"coercion"`
}

// DefaultReaderConfig returns sensible defaults for reading path
func DefaultReaderConfig(path string) ReaderConfig {
	return ReaderConfig{
		FilePath:       path,
		CoercionConfig: coercer.DefaultCoercionConfig(),
	}
}

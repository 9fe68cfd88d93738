package config

import "github.com/pepkit/eido/internal/pep"

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"log_level":          "info",
		"exclude_case":       false,
		"sample_table_index": pep.DefaultSampleTableIndex,
		"default_schema":     "",
		"show_progress":      true,
		"server_addr":        ":8080",
		"max_upload_mb":      32,
		"fetch_retries":      0,
	}
}

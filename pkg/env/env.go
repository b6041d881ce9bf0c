package env

import "os"

// Get reads an environment variable, substituting fallback when the
// variable is unset or empty. Used for knobs read before the typed config
// is loaded, such as the log format.
func Get(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

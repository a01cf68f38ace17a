package util

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// envValue returns the trimmed value of key and whether it is non-blank.
func envValue(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

// ParseBoolEnv reads key as a switch: true/1/yes/on or false/0/no/off, any case.
// Blank or unrecognised values yield defaultValue.
func ParseBoolEnv(key string, defaultValue bool) bool {
	val, ok := envValue(key)
	if !ok {
		return defaultValue
	}
	switch strings.ToLower(val) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	slog.Warn("ParseBoolEnv: unrecognised value, using default", "key", key, "value", val, "default", defaultValue)
	return defaultValue
}

// ParseIntEnv reads key as a decimal integer, falling back to defaultValue.
func ParseIntEnv(key string, defaultValue int) int {
	val, ok := envValue(key)
	if !ok {
		return defaultValue
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		slog.Warn("ParseIntEnv: invalid integer, using default", "key", key, "value", val, "default", defaultValue)
		return defaultValue
	}
	return n
}

// GetenvDefault returns the trimmed value of key, or defaultValue when unset or blank.
func GetenvDefault(key, defaultValue string) string {
	if v, ok := envValue(key); ok {
		return v
	}
	return defaultValue
}

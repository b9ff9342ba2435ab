// Package config reads settings from the process environment.
package config

import (
	"os"
	"strconv"
	"strings"
)

// New snapshots the process environment into a key/value map.
func New() map[string]string {
	environ := os.Environ()
	settings := make(map[string]string, len(environ))
	for _, entry := range environ {
		key, value, _ := strings.Cut(entry, "=")
		if key != "" {
			settings[key] = value
		}
	}
	return settings
}

// GetString returns the value of key, or defaultValue when it is unset or blank.
func GetString(config map[string]string, key string, defaultValue string) string {
	if val := strings.TrimSpace(config[key]); val != "" {
		return config[key]
	}
	return defaultValue
}

func GetInt(config map[string]string, key string, defaultValue int) int {
	return parse(config, key, defaultValue, strconv.Atoi)
}

func GetFloat(config map[string]string, key string, defaultValue float64) float64 {
	return parse(config, key, defaultValue, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

func GetBool(config map[string]string, key string, defaultValue bool) bool {
	return parse(config, key, defaultValue, strconv.ParseBool)
}

// GetStrings splits a comma separated value, dropping blank entries.
func GetStrings(config map[string]string, key string, defaultValue []string) []string {
	var values []string
	for _, part := range strings.Split(config[key], ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}

// parse falls back to defaultValue when key is missing or does not parse.
func parse[T any](config map[string]string, key string, defaultValue T, parseFn func(string) (T, error)) T {
	raw, ok := config[key]
	if !ok {
		return defaultValue
	}
	value, err := parseFn(strings.TrimSpace(raw))
	if err != nil {
		return defaultValue
	}
	return value
}

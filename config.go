package main

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Tunables overridable via MCP_QUERY_TIMEOUT (seconds) and MCP_MAX_DOCS.
var (
	QueryTimeout  = 30 * time.Second
	MaxResultDocs = 10000
)

const (
	ConnectTimeout    = 10 * time.Second
	DisconnectTimeout = 5 * time.Second
	MaxPoolSize       = 10
	DefaultFindLimit  = 100
)

// resolveURI returns the MongoDB connection string from the command line or
// environment. MONGODB_URI is preferred; db_uri is accepted for compatibility
// with existing deployments.
func resolveURI(args []string) (string, error) {
	if len(args) > 1 && args[1] != "" {
		return args[1], nil
	}
	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		return uri, nil
	}
	if uri := os.Getenv("db_uri"); uri != "" {
		return uri, nil
	}
	return "", fmt.Errorf("missing connection string: pass it as an argument or set MONGODB_URI")
}

// applyEnvOverrides adjusts tunables from MCP_* environment variables.
// Invalid values are logged and ignored.
func applyEnvOverrides() {
	if v := os.Getenv("MCP_QUERY_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			QueryTimeout = time.Duration(secs) * time.Second
		} else {
			logError("Ignoring invalid MCP_QUERY_TIMEOUT: %q", v)
		}
	}
	if v := os.Getenv("MCP_MAX_DOCS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			MaxResultDocs = n
		} else {
			logError("Ignoring invalid MCP_MAX_DOCS: %q", v)
		}
	}
}

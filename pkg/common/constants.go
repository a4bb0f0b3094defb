package common

import "time"

// This file centralizes miscellaneous constants used throughout opsagent.
// Capability names and context keys live in capabilities.go and cache_keys.go.

const (
	// AppName is the binary and logger name.
	AppName = "opsagent"
	// DefaultConfigFileName is looked up in the working directory when --config is not given.
	DefaultConfigFileName = "opsagent.yaml"
	// DefaultLogFileName is used when file logging is enabled without an explicit path.
	DefaultLogFileName = "opsagent.log"
)

// Remote management API defaults.
const (
	DefaultAPIBaseURL = "http://localhost:3001/api/v1"
	DefaultAPITimeout = 30 * time.Second

	// LegacyUsersSuffix is stripped from a configured base URL that points at the users collection.
	LegacyUsersSuffix = "/users"

	APIPathUsers     = "/users"
	APIPathUserRole  = "/users/role"
	APIPathSecrets   = "/secrets"
	APIPathProviders = "/providers"
)

// Planner defaults.
const (
	DefaultPlannerEndpoint    = "https://api.groq.com/openai/v1/chat/completions"
	DefaultPlannerModel       = "llama-3.1-8b-instant"
	DefaultPlannerTemperature = 0.0
	DefaultPlannerMaxTokens   = 1024
	DefaultPlannerTimeout     = 60 * time.Second
)

// HTTP front end defaults.
const (
	DefaultListenAddress   = ":5000"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 5 * time.Minute
	DefaultShutdownTimeout = 5 * time.Second
)

// Logging defaults.
const (
	DefaultLogLevel      = "info"
	DefaultLogMaxSizeMB  = 50
	DefaultLogMaxBackups = 3
)

// RedactedValue replaces sensitive argument values in log lines.
const RedactedValue = "******"

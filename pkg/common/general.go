package common

// Environment variables read by the config loader.
const (
	EnvAPIURL           = "OPSAGENT_API_URL"
	EnvAPIToken         = "OPSAGENT_API_TOKEN"
	EnvPlannerAPIKey    = "OPSAGENT_PLANNER_API_KEY"
	EnvPlannerModel     = "OPSAGENT_PLANNER_MODEL"
	EnvListenAddress    = "OPSAGENT_LISTEN_ADDRESS"
	EnvLegacyAPIURL     = "OPSIMATE_URL"
	EnvLegacyAPIToken   = "OPSIMATE_TOKEN"
	EnvLegacyPlannerKey = "GROQ_API_KEY"
)

// ParsePlanAction is the action name of the synthetic entry reported for a malformed plan.
const ParsePlanAction = "parse_plan"

// SensitiveArgumentKeys are argument names whose values are redacted in logs.
var SensitiveArgumentKeys = []string{"password", "secret_file", "token", "apiKey"}

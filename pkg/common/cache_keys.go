package common

// Execution context keys bound by capability exports. A later step reads them
// through a "{{key}}" placeholder.
const (
	// ContextKeyLastSecretID holds the id of the most recently created secret.
	ContextKeyLastSecretID = "last_secret_id"
	// ContextKeyLastClusterID holds the id of the most recently created cluster provider.
	ContextKeyLastClusterID = "last_cluster_id"
	// ContextKeyLastUserID holds the id of the most recently created user.
	ContextKeyLastUserID = "last_user_id"
)

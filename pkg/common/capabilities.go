package common

// Capability names accepted in a plan's "function" field.
const (
	CapabilityCreateUser    = "create_user"
	CapabilityGetAllUsers   = "get_all_users"
	CapabilityChangeRole    = "change_role"
	CapabilityCreateSecret  = "create_secret"
	CapabilityCreateCluster = "create_cluster"

	// CapabilityNone is what the planner emits when a request maps to nothing.
	// It is never registered.
	CapabilityNone = "none"
)

// Secret types understood by the remote API.
const (
	SecretTypeKubeconfig = "kubeconfig"
	SecretTypeSSH        = "ssh"
)

package capability

import (
	"fmt"

	"github.com/mensylisir/opsagent/pkg/logger"
	"github.com/mensylisir/opsagent/pkg/opsimate"
)

// Registry maps capability names to capabilities. It is filled once at
// construction and read-only afterwards, so it is safe for concurrent use.
type Registry struct {
	entries map[Name]Capability
	order   []Name
}

// NewRegistry builds a registry from caps. A nil capability or a duplicate
// name is a programming error and panics.
func NewRegistry(caps ...Capability) *Registry {
	r := &Registry{entries: make(map[Name]Capability, len(caps))}
	for _, c := range caps {
		if c == nil {
			panic("capability: NewRegistry called with a nil capability")
		}
		name := c.Name()
		if name == "" {
			panic("capability: capability name cannot be empty")
		}
		if _, dup := r.entries[name]; dup {
			panic(fmt.Sprintf("capability: %s registered twice", name))
		}
		r.entries[name] = c
		r.order = append(r.order, name)
	}
	return r
}

// Options configures the builtin capabilities.
type Options struct {
	// ValidateKubeconfig makes create_secret parse kubeconfig content before upload.
	ValidateKubeconfig bool
	Logger             *logger.Logger
}

// NewBuiltinRegistry wires the five Opsimate capabilities to api.
func NewBuiltinRegistry(api opsimate.API, opts Options) *Registry {
	log := opts.Logger
	if log == nil {
		log = logger.Get()
	}
	log = log.With("component", "capability")
	return NewRegistry(
		&createUser{api: api},
		&getAllUsers{api: api},
		&changeRole{api: api},
		&createSecret{api: api, validateKubeconfig: opts.ValidateKubeconfig, log: log},
		&createCluster{api: api},
	)
}

// Lookup returns the capability registered under name.
func (r *Registry) Lookup(name string) (Capability, bool) {
	if r == nil {
		return nil, false
	}
	c, ok := r.entries[Name(name)]
	return c, ok
}

// List returns the capabilities in registration order.
func (r *Registry) List() []Capability {
	if r == nil {
		return nil
	}
	out := make([]Capability, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.entries[n])
	}
	return out
}

// Descriptors summarizes every registered capability in registration order.
func (r *Registry) Descriptors() []Descriptor {
	caps := r.List()
	out := make([]Descriptor, 0, len(caps))
	for _, c := range caps {
		out = append(out, Describe(c))
	}
	return out
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Package resolver substitutes "{{identifier}}" placeholders in step
// arguments with values bound in the execution context.
//
// The grammar is deliberately small: an argument value is either a literal or
// a single placeholder token spanning the whole string. Placeholders embedded
// inside longer strings, or nested inside maps and lists, are left alone, and
// a substituted value is never scanned again.
package resolver

import (
	"regexp"
	"sort"

	"github.com/mensylisir/opsagent/pkg/cache"
	"github.com/mensylisir/opsagent/pkg/plan"
)

var placeholderRE = regexp.MustCompile(`^\{\{\s*([^{}\s]+)\s*\}\}$`)

// Placeholder returns the identifier named by v when v is a placeholder string.
func Placeholder(v interface{}) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	m := placeholderRE.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Resolution is the outcome of resolving one argument map.
type Resolution struct {
	Args plan.Arguments
	// Unresolved lists, sorted, the identifiers that had no binding. Their
	// placeholder strings stay in Args untouched.
	Unresolved []string
}

// Resolve returns a new argument map with every bound placeholder replaced.
// Neither args nor ctx is modified.
func Resolve(args plan.Arguments, ctx cache.Reader) Resolution {
	res := Resolution{Args: make(plan.Arguments, len(args))}
	for k, v := range args {
		id, ok := Placeholder(v)
		if !ok {
			res.Args[k] = v
			continue
		}
		if ctx != nil {
			if bound, found := ctx.Get(id); found {
				res.Args[k] = bound
				continue
			}
		}
		res.Args[k] = v
		res.Unresolved = append(res.Unresolved, id)
	}
	sort.Strings(res.Unresolved)
	return res
}

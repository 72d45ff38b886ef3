package suite

import "sort"

// Registry maps protocol version strings to the Suite that implements
// them (§4.5). Suites are registered once at startup and never removed —
// a deployment that stops trusting an old suite still needs it to verify
// documents signed before the change, it just stops using it to produce
// new ones.
type Registry struct {
	suites map[string]Suite
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{suites: make(map[string]Suite)}
}

// NewDefaultRegistry returns a registry with every suite this notary
// ships pre-registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(V1)
	return r
}

// Register adds suite under its own Protocol() name, replacing any
// previous registration under that name.
func (r *Registry) Register(s Suite) {
	r.suites[s.Protocol()] = s
}

// Lookup returns the suite registered under protocol, and false if none
// is registered.
func (r *Registry) Lookup(protocol string) (Suite, bool) {
	s, ok := r.suites[protocol]
	return s, ok
}

// Preferred returns the suite for operations that produce new artifacts:
// the lexicographically highest protocol version currently registered
// (§4.5). This is deterministic regardless of registration order, so a
// restart that re-registers suites in a different order still picks the
// same preferred protocol.
func (r *Registry) Preferred() (Suite, bool) {
	if len(r.suites) == 0 {
		return nil, false
	}
	names := make([]string, 0, len(r.suites))
	for name := range r.suites {
		names = append(names, name)
	}
	sort.Strings(names)
	return r.suites[names[len(names)-1]], true
}
